package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func newBufferLogger(t *testing.T, level LogLevel) (Logger, *bytes.Buffer) {
	t.Helper()

	buf := &bytes.Buffer{}
	logger, err := NewZapLogger(LogConfig{
		Level:      level,
		Output:     buf,
		TimeFormat: time.RFC3339,
	})
	if err != nil {
		t.Fatalf("NewZapLogger() error = %v", err)
	}
	return logger, buf
}

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{LogLevel(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"", InfoLevel},
		{"bogus", InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestZapLogger_Levels(t *testing.T) {
	logger, buf := newBufferLogger(t, DebugLevel)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message", errors.New("boom"))

	output := buf.String()
	for _, want := range []string{"debug message", "info message", "warn message", "error message", "boom"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, output)
		}
	}
}

func TestZapLogger_Filtering(t *testing.T) {
	logger, buf := newBufferLogger(t, WarnLevel)

	logger.Debug("too quiet")
	logger.Info("still too quiet")
	logger.Warn("loud enough")

	output := buf.String()
	if strings.Contains(output, "too quiet") {
		t.Errorf("expected debug/info to be filtered, got:\n%s", output)
	}
	if !strings.Contains(output, "loud enough") {
		t.Errorf("expected warn to pass the filter, got:\n%s", output)
	}
}

func TestZapLogger_WithFields(t *testing.T) {
	logger, buf := newBufferLogger(t, InfoLevel)

	logger.WithFields(String("component", "enricher")).Info("ready")

	output := buf.String()
	if !strings.Contains(output, "component") || !strings.Contains(output, "enricher") {
		t.Errorf("expected field in output, got:\n%s", output)
	}
}

func TestFieldConstructors(t *testing.T) {
	tests := []struct {
		field Field
		key   string
	}{
		{String("s", "v"), "s"},
		{Int("i", 1), "i"},
		{Int64("i64", 2), "i64"},
		{Bool("b", true), "b"},
		{Duration("d", time.Second), "d"},
		{Time("t", time.Now()), "t"},
		{Any("a", struct{}{}), "a"},
		{Err(errors.New("x")), "error"},
	}

	for _, tt := range tests {
		if tt.field.Key != tt.key {
			t.Errorf("expected key %q, got %q", tt.key, tt.field.Key)
		}
	}
}

func TestGlobalLogger(t *testing.T) {
	original := GetGlobalLogger()
	defer SetGlobalLogger(original)

	replacement, buf := newBufferLogger(t, InfoLevel)
	SetGlobalLogger(replacement)

	Info("through the global logger")

	if !strings.Contains(buf.String(), "through the global logger") {
		t.Errorf("expected global logger to be replaced, got:\n%s", buf.String())
	}
}
