package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"staff-appraisal-api/config"
	"staff-appraisal-api/services"
)

type committeeRequest struct {
	MemberUserIDs []int `json:"member_user_ids" binding:"required"`
}

type singleAssignmentRequest struct {
	ReviewerUserID int    `json:"reviewer_user_id" binding:"required"`
	Level          string `json:"level" binding:"required"`
}

// AssignDepartmentCommittee sets the same-department committee and moves
// the form into DEPARTMENT_REVIEW.
func AssignDepartmentCommittee(c *gin.Context) {
	assignCommittee(c, true)
}

// AssignCollegeCommittee sets the cross-department committee and moves the
// form into COLLEGE_REVIEW.
func AssignCollegeCommittee(c *gin.Context) {
	assignCommittee(c, false)
}

func assignCommittee(c *gin.Context, sameDepartment bool) {
	assignerID, ok := currentUserID(c)
	if !ok {
		return
	}
	formID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req committeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	svc := services.NewAssignmentService(config.DB)
	var err error
	if sameDepartment {
		err = svc.AssignDepartmentCommittee(formID, req.MemberUserIDs, assignerID)
	} else {
		err = svc.AssignCollegeCommittee(formID, req.MemberUserIDs, assignerID)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Committee assigned",
	})
}

// AssignReviewer adds a single reviewer (verifying staff, principal) with no
// department constraint and no status change.
func AssignReviewer(c *gin.Context) {
	assignerID, ok := currentUserID(c)
	if !ok {
		return
	}
	formID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req singleAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	if err := services.NewAssignmentService(config.DB).
		AssignSingle(formID, req.ReviewerUserID, &assignerID, req.Level); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Reviewer assigned",
	})
}
