package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"staff-appraisal-api/config"
	"staff-appraisal-api/services"
)

type submitReviewRequest struct {
	Decision  string `json:"decision" binding:"required"`
	Level     string `json:"level" binding:"required"`
	Remarks   string `json:"remarks"`
	ForwardTo int    `json:"forward_to"`
}

// SubmitReview records the caller's decision at one level and lets the
// aggregator advance, return or hold the form.
func SubmitReview(c *gin.Context) {
	reviewerID, ok := currentUserID(c)
	if !ok {
		return
	}
	formID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	err := services.NewReviewService(config.DB).SubmitReview(services.SubmitReviewInput{
		ReviewerUserID: reviewerID,
		FormID:         formID,
		Decision:       req.Decision,
		Level:          req.Level,
		Remarks:        req.Remarks,
		ForwardTo:      req.ForwardTo,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	form, err := services.NewFormService(config.DB).Get(formID)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Review recorded"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Review recorded",
		"form":    form,
	})
}
