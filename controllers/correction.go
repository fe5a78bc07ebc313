package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"staff-appraisal-api/config"
	"staff-appraisal-api/services"
)

type finalizeCorrectionsRequest struct {
	RestartLevel string `json:"restart_level" binding:"required"`
}

// FinalizeCorrections restarts a corrected form from REUPLOAD_REQUIRED at
// the level the HOD chooses.
func FinalizeCorrections(c *gin.Context) {
	hodID, ok := currentUserID(c)
	if !ok {
		return
	}
	formID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req finalizeCorrectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	if err := services.NewStatusService(config.DB).
		FinalizeCorrections(formID, hodID, req.RestartLevel); err != nil {
		respondServiceError(c, err)
		return
	}

	form, err := services.NewFormService(config.DB).Get(formID)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Corrections finalized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Corrections finalized",
		"form":    form,
	})
}
