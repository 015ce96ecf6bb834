package handler

import (
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rishee01/smartfix/internal/cache"
	"github.com/rishee01/smartfix/internal/middleware"
	"github.com/rishee01/smartfix/internal/scoring"
	"github.com/rishee01/smartfix/internal/service"
)

const placeholderPhotoURL = "https://via.placeholder.com/500"

type ReportHandler struct {
	reports   *service.ReportService
	cache     *cache.RedisCache
	uploadDir string
}

func NewReportHandler(reports *service.ReportService, redisCache *cache.RedisCache, uploadDir string) *ReportHandler {
	return &ReportHandler{
		reports:   reports,
		cache:     redisCache,
		uploadDir: uploadDir,
	}
}

// Create handles the multipart report submission.
func (h *ReportHandler) Create(c *gin.Context) {
	label := c.PostForm("label")
	latStr := c.PostForm("lat")
	lonStr := c.PostForm("lon")
	confidenceStr := c.PostForm("confidence")

	if label == "" || latStr == "" || lonStr == "" || confidenceStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "label, lat, lon and confidence are required"})
		return
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lat"})
		return
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lon"})
		return
	}
	confidence, err := strconv.ParseFloat(confidenceStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid confidence"})
		return
	}

	photoURL := placeholderPhotoURL
	if file, err := c.FormFile("photo"); err == nil {
		dst := filepath.Join(h.uploadDir, uuid.NewString()+filepath.Ext(file.Filename))
		if err := c.SaveUploadedFile(file, dst); err != nil {
			log.Printf("Warning: failed to save uploaded photo: %v", err)
		} else {
			photoURL = "/" + filepath.ToSlash(dst)
		}
	}

	input := service.CreateReportInput{
		Description: c.PostForm("description"),
		Lat:         lat,
		Lon:         lon,
		Label:       label,
		Confidence:  confidence,
		IsAnonymous: c.PostForm("isAnonymous") == "true",
		IsSOS:       c.PostForm("isSOS") == "true",
		UserID:      c.PostForm("userId"),
		PhotoURL:    photoURL,
	}

	result, err := h.reports.Create(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	middleware.RecordReportCreated(input.Label, result.Severity, input.IsSOS)
	h.invalidateAnalytics(c)

	c.JSON(http.StatusCreated, gin.H{
		"id":         result.ID,
		"message":    "Issue reported successfully",
		"severity":   result.Severity,
		"department": result.Department,
	})
}

// List returns reports matching the query filters, newest first.
func (h *ReportHandler) List(c *gin.Context) {
	filter := service.ListFilter{
		Severity:     c.Query("severity"),
		Status:       c.Query("status"),
		Department:   c.Query("department"),
		VerifiedOnly: c.Query("verified") == "true",
	}

	reports, err := h.reports.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reports)
}

// Get returns a single report with its derived fields.
func (h *ReportHandler) Get(c *gin.Context) {
	detail, err := h.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, detail)
}

type VerifyRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// Verify records a community verification of a report.
func (h *ReportHandler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	result, err := h.reports.Verify(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyVerified):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Already verified by this user"})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	middleware.RecordVerification()
	middleware.RecordPointsAwarded(string(scoring.ActionVerifyIssue), result.PointsEarned)
	h.invalidateAnalytics(c)

	c.JSON(http.StatusOK, gin.H{
		"message":        "Issue verified",
		"verified_count": result.VerifiedCount,
		"points_earned":  result.PointsEarned,
		"new_severity":   result.NewSeverity,
	})
}

type ClaimRequest struct {
	VolunteerID string `json:"volunteerId" binding:"required"`
}

// Assign routes a report to a volunteer.
func (h *ReportHandler) Assign(c *gin.Context) {
	h.claim(c, "Issue assigned to volunteer")
}

// Claim lets a volunteer pick up a report directly.
func (h *ReportHandler) Claim(c *gin.Context) {
	h.claim(c, "Issue claimed")
}

func (h *ReportHandler) claim(c *gin.Context, message string) {
	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "volunteerId is required"})
		return
	}

	if err := h.reports.Claim(c.Request.Context(), c.Param("id"), req.VolunteerID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.invalidateAnalytics(c)
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *ReportHandler) invalidateAnalytics(c *gin.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateAnalytics(c.Request.Context()); err != nil {
		log.Printf("Warning: failed to invalidate analytics cache: %v", err)
	}
}
