package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"staff-appraisal-api/config"
	"staff-appraisal-api/services"
	"staff-appraisal-api/utils"
)

type createAppraisalRequest struct {
	AcademicYear string `json:"academic_year" binding:"required"`
}

// CreateAppraisal opens the caller's draft for one academic year.
func CreateAppraisal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req createAppraisalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	year := utils.SanitizeInput(req.AcademicYear)
	if !utils.ValidateAcademicYear(year) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid academic year, expected e.g. 2024-25"})
		return
	}

	form, err := services.NewFormService(config.DB).CreateDraft(userID, year)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"form":    form,
	})
}

// GetAppraisal returns one form with its owner.
func GetAppraisal(c *gin.Context) {
	formID, ok := paramID(c, "id")
	if !ok {
		return
	}

	form, err := services.NewFormService(config.DB).Get(formID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"form":    form,
	})
}

// GetMyAppraisals lists the caller's forms across years.
func GetMyAppraisals(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	forms, err := services.NewFormService(config.DB).ListByOwner(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch forms"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"forms":   forms,
		"total":   len(forms),
	})
}

// GetAppraisalsByStatus lists forms sitting at one stage (reviewer worklists).
func GetAppraisalsByStatus(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		status = services.StatusSubmitted
	}

	forms, err := services.NewFormService(config.DB).ListByStatus(status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"forms":   forms,
		"total":   len(forms),
	})
}

// SubmitAppraisal passes the deadline gate and locks the form into SUBMITTED.
func SubmitAppraisal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	formID, ok := paramID(c, "id")
	if !ok {
		return
	}

	formSvc := services.NewFormService(config.DB)
	form, err := formSvc.Get(formID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if form.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Form belongs to another user"})
		return
	}

	submitted, err := services.NewStatusService(config.DB).Submit(formID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Form submitted",
		"form":    submitted,
	})
}

// GetAppraisalVersions returns the audit trail newest first.
func GetAppraisalVersions(c *gin.Context) {
	formID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if _, err := services.NewFormService(config.DB).Get(formID); err != nil {
		respondServiceError(c, err)
		return
	}

	versions, err := services.NewVersionService(config.DB).ListByForm(formID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch versions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"versions": versions,
		"total":    len(versions),
	})
}

// GetAppraisalReviews returns the recorded decisions for a form.
func GetAppraisalReviews(c *gin.Context) {
	formID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if _, err := services.NewFormService(config.DB).Get(formID); err != nil {
		respondServiceError(c, err)
		return
	}

	reviews, err := services.NewReviewService(config.DB).ListByForm(formID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch reviews"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reviews": reviews,
		"total":   len(reviews),
	})
}

// GetAppraisalAssignments returns the form's current reviewer pool.
func GetAppraisalAssignments(c *gin.Context) {
	formID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if _, err := services.NewFormService(config.DB).Get(formID); err != nil {
		respondServiceError(c, err)
		return
	}

	assignments, err := services.NewAssignmentService(config.DB).ListByForm(formID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch assignments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"assignments": assignments,
		"total":       len(assignments),
	})
}
