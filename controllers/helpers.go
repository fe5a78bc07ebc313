package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"staff-appraisal-api/services"
)

// respondServiceError maps workflow error kinds onto HTTP statuses so the
// front end can tell "fix your input" from "re-fetch and retry" apart.
func respondServiceError(c *gin.Context, err error) {
	kind, ok := services.KindOf(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	status := http.StatusInternalServerError
	switch kind {
	case services.KindNotFound:
		status = http.StatusNotFound
	case services.KindConflict:
		status = http.StatusConflict
	case services.KindIllegalArgument:
		status = http.StatusBadRequest
	case services.KindIllegalState:
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}

func currentUserID(c *gin.Context) (int, bool) {
	value, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "User context missing"})
		return 0, false
	}
	userID, ok := value.(int)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Invalid user context"})
		return 0, false
	}
	return userID, true
}

func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid " + name})
		return 0, false
	}
	return id, true
}
