package handlers

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"starboard/internal/common/logging"
	"starboard/internal/models"
)

const marketCacheTTL = 5 * time.Minute

// timeframeWindows maps the accepted timeframe query values to lookback
// durations.
var timeframeWindows = map[string]time.Duration{
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
}

type marketUpdatesResponse struct {
	Timeframe string              `json:"timeframe"`
	Stats     *models.MarketStats `json:"stats"`
}

// MarketUpdates serves aggregate market statistics for a lookback window.
// Responses carry an ETag derived from the payload; a matching If-None-Match
// short-circuits to 304. Computed stats are cached in Redis when available.
func (h *Handlers) MarketUpdates(w http.ResponseWriter, r *http.Request) {
	timeframe := r.URL.Query().Get("timeframe")
	if timeframe == "" {
		timeframe = "24h"
	}

	window, ok := timeframeWindows[timeframe]
	if !ok {
		http.Error(w, "Invalid timeframe, expected 24h, 7d, or 30d", http.StatusBadRequest)
		return
	}

	stats := h.cachedMarketStats(r, timeframe, window)
	if stats == nil {
		http.Error(w, "Failed to compute market statistics", http.StatusInternalServerError)
		return
	}

	etag := marketETag(timeframe, stats)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, max-age=300")

	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	payload, err := json.Marshal(marketUpdatesResponse{Timeframe: timeframe, Stats: stats})
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

// marketETag derives a validator from the stable stats fields. ComputedAt
// changes on every recomputation even when the figures do not, so it stays
// out of the hash; otherwise revalidation would never return 304.
func marketETag(timeframe string, stats *models.MarketStats) string {
	snapshot := *stats
	snapshot.ComputedAt = time.Time{}
	digest := sha256.Sum256([]byte(fmt.Sprintf("%s|%v", timeframe, snapshot)))
	return fmt.Sprintf(`"%x"`, digest)
}

func (h *Handlers) cachedMarketStats(r *http.Request, timeframe string, window time.Duration) *models.MarketStats {
	cacheKey := "market:stats:" + timeframe

	if h.cache != nil {
		var cached models.MarketStats
		if err := h.cache.GetJSON(r.Context(), cacheKey, &cached); err == nil {
			return &cached
		}
	}

	stats, err := h.storage.GetMarketStats(time.Now().Add(-window))
	if err != nil {
		logging.Error("Failed to compute market stats", err,
			logging.Field{Key: "timeframe", Value: timeframe},
		)
		return nil
	}

	if h.cache != nil {
		if err := h.cache.Set(r.Context(), cacheKey, stats, marketCacheTTL); err != nil {
			logging.Warn("Failed to cache market stats",
				logging.Field{Key: "error", Value: err.Error()},
			)
		}
	}

	return stats
}
