package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"staff-appraisal-api/config"
	"staff-appraisal-api/services"
	"staff-appraisal-api/utils"
)

type upsertDeadlineRequest struct {
	AcademicYear string    `json:"academic_year" binding:"required"`
	DeadlineDate time.Time `json:"deadline_date" binding:"required"`
}

// GetDeadlines lists the configured submission deadlines.
func GetDeadlines(c *gin.Context) {
	configs, err := services.NewDeadlineService(config.DB).List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch deadlines"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"deadlines": configs,
	})
}

// GetDeadlineStatus reports whether a year is currently open for submission.
func GetDeadlineStatus(c *gin.Context) {
	year := utils.SanitizeInput(c.Query("year"))
	if !utils.ValidateAcademicYear(year) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid academic year"})
		return
	}

	svc := services.NewDeadlineService(config.DB)
	deadline, err := svc.Get(year)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	open := svc.CheckOpen(year) == nil
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"deadline": deadline,
		"open":     open,
	})
}

// UpsertDeadline creates or moves a year's deadline (admin only). Deadlines
// that have already passed are frozen.
func UpsertDeadline(c *gin.Context) {
	var req upsertDeadlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	year := utils.SanitizeInput(req.AcademicYear)
	if !utils.ValidateAcademicYear(year) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid academic year, expected e.g. 2024-25"})
		return
	}

	deadline, err := services.NewDeadlineService(config.DB).Upsert(year, req.DeadlineDate)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"deadline": deadline,
	})
}
