package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rishee01/smartfix/internal/cache"
	"github.com/rishee01/smartfix/internal/service"
)

type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	cache     *cache.RedisCache
}

func NewAnalyticsHandler(analytics *service.AnalyticsService, redisCache *cache.RedisCache) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, cache: redisCache}
}

// Heatmap returns every unresolved report as a weighted map point.
func (h *AnalyticsHandler) Heatmap(c *gin.Context) {
	if h.serveCached(c, cache.KeyHeatmap) {
		return
	}

	points, err := h.analytics.Heatmap(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.storeCached(c, cache.KeyHeatmap, points)
	c.JSON(http.StatusOK, points)
}

// Leaderboard returns the top users by points.
func (h *AnalyticsHandler) Leaderboard(c *gin.Context) {
	if h.serveCached(c, cache.KeyLeaderboard) {
		return
	}

	entries, err := h.analytics.Leaderboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.storeCached(c, cache.KeyLeaderboard, entries)
	c.JSON(http.StatusOK, entries)
}

// serveCached replies from the analytics cache when possible. Cache failures
// fall through to a direct read.
func (h *AnalyticsHandler) serveCached(c *gin.Context, key string) bool {
	if h.cache == nil {
		return false
	}
	data, err := h.cache.Get(c.Request.Context(), key)
	if err != nil {
		return false
	}
	c.Data(http.StatusOK, "application/json", data)
	return true
}

func (h *AnalyticsHandler) storeCached(c *gin.Context, key string, value any) {
	if h.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := h.cache.Set(c.Request.Context(), key, data, cache.AnalyticsTTL); err != nil {
		log.Printf("Warning: failed to cache %s: %v", key, err)
	}
}
