package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rishee01/smartfix/internal/cache"
	"github.com/rishee01/smartfix/internal/middleware"
	"github.com/rishee01/smartfix/internal/scoring"
	"github.com/rishee01/smartfix/internal/service"
)

type AdminHandler struct {
	reports   *service.ReportService
	analytics *service.AnalyticsService
	cache     *cache.RedisCache
}

func NewAdminHandler(reports *service.ReportService, analytics *service.AnalyticsService, redisCache *cache.RedisCache) *AdminHandler {
	return &AdminHandler{
		reports:   reports,
		analytics: analytics,
		cache:     redisCache,
	}
}

// Metrics returns the dashboard rollup.
func (h *AdminHandler) Metrics(c *gin.Context) {
	if h.cache != nil {
		if data, err := h.cache.Get(c.Request.Context(), cache.KeyMetrics); err == nil {
			c.Data(http.StatusOK, "application/json", data)
			return
		}
	}

	metrics, err := h.analytics.Metrics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if h.cache != nil {
		if data, err := json.Marshal(metrics); err == nil {
			if err := h.cache.Set(c.Request.Context(), cache.KeyMetrics, data, cache.AnalyticsTTL); err != nil {
				log.Printf("Warning: failed to cache metrics: %v", err)
			}
		}
	}

	c.JSON(http.StatusOK, metrics)
}

type UpdateStatusRequest struct {
	Status      string `json:"status"`
	VolunteerID string `json:"volunteerId"`
}

// UpdateStatus is the admin override over a report's status.
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	points, err := h.reports.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.VolunteerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if points > 0 {
		middleware.RecordPointsAwarded(string(scoring.ActionVolunteerResolve), points)
	}
	if h.cache != nil {
		if err := h.cache.InvalidateAnalytics(c.Request.Context()); err != nil {
			log.Printf("Warning: failed to invalidate analytics cache: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Status updated",
		"points_awarded": points,
	})
}

// ExportCSV streams every report as a CSV attachment.
func (h *AdminHandler) ExportCSV(c *gin.Context) {
	data, err := h.analytics.ExportCSV(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="smartfix-reports.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}
