package services

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"staff-appraisal-api/models"
)

// AssignmentService manages a form's reviewer pool: single reviewers for
// the individual levels, and same-/cross-department committees.
type AssignmentService struct {
	db       *gorm.DB
	status   *StatusService
	notifier *NotificationService
	now      func() time.Time
}

func NewAssignmentService(db *gorm.DB) *AssignmentService {
	return &AssignmentService{
		db:       db,
		status:   NewStatusService(db),
		notifier: NewNotificationService(db),
		now:      time.Now,
	}
}

func assignReviewerTx(tx *gorm.DB, formID, reviewerID int, assignedBy *int, level string, now time.Time) error {
	assignment := models.ReviewerAssignment{
		FormID:     formID,
		ReviewerID: reviewerID,
		Level:      level,
		AssignedBy: assignedBy,
		CreateAt:   now,
	}
	return tx.Create(&assignment).Error
}

// AssignSingle adds one reviewer for a single-reviewer level with no
// department constraint (verifying staff, principal). The assignee is
// notified; the form status is left to the caller.
func (s *AssignmentService) AssignSingle(formID, reviewerUserID int, assignerUserID *int, level string) error {
	level = strings.ToUpper(strings.TrimSpace(level))
	if !IsValidLevel(level) || IsCommitteeLevel(level) {
		return IllegalArgumentf("invalid single-reviewer level '%s'", level)
	}

	if _, err := getFormTx(s.db, formID); err != nil {
		return err
	}
	reviewer, err := getUserTx(s.db, reviewerUserID)
	if err != nil {
		return err
	}

	if err := assignReviewerTx(s.db, formID, reviewerUserID, assignerUserID, level, s.now()); err != nil {
		return err
	}

	s.notifier.Notify(reviewer.UserID,
		"Appraisal assigned for review",
		fmt.Sprintf("Appraisal form %d has been assigned to you for review.", formID),
		&formID)
	return nil
}

// AssignDepartmentCommittee replaces the form's pool with members of the
// owner's own department and moves the form to DEPARTMENT_REVIEW.
func (s *AssignmentService) AssignDepartmentCommittee(formID int, memberUserIDs []int, assignerUserID int) error {
	return s.assignCommittee(formID, memberUserIDs, assignerUserID, true)
}

// AssignCollegeCommittee replaces the pool with members from other
// departments and moves the form to COLLEGE_REVIEW.
func (s *AssignmentService) AssignCollegeCommittee(formID int, memberUserIDs []int, assignerUserID int) error {
	return s.assignCommittee(formID, memberUserIDs, assignerUserID, false)
}

func (s *AssignmentService) assignCommittee(formID int, memberUserIDs []int, assignerUserID int, sameDepartment bool) error {
	if len(memberUserIDs) == 0 {
		return IllegalArgumentf("at least one committee member is required")
	}

	form, err := getFormTx(s.db, formID)
	if err != nil {
		return err
	}
	owner, err := getUserTx(s.db, form.UserID)
	if err != nil {
		return err
	}
	if owner.DepartmentID == nil || owner.Department == nil {
		return IllegalStatef("department not found for form owner %s", owner.FullName())
	}
	if _, err := getUserTx(s.db, assignerUserID); err != nil {
		return err
	}

	// Every member is validated before the pool is touched: a bad member
	// list leaves the current committee intact.
	members := make([]*models.User, 0, len(memberUserIDs))
	for _, memberID := range memberUserIDs {
		member, err := getUserTx(s.db, memberID)
		if err != nil {
			return err
		}
		if member.DepartmentID == nil {
			return IllegalStatef("department not found for committee member %s", member.FullName())
		}
		if sameDepartment && *member.DepartmentID != *owner.DepartmentID {
			return IllegalArgumentf("committee member %s must belong to department %s",
				member.FullName(), owner.Department.DepartmentName)
		}
		if !sameDepartment && *member.DepartmentID == *owner.DepartmentID {
			return IllegalArgumentf("committee member %s belongs to department %s; college committee members must come from a different department",
				member.FullName(), owner.Department.DepartmentName)
		}
		members = append(members, member)
	}

	nextStatus := StatusDepartmentReview
	level := LevelDepartmentReview
	committeeName := "department committee"
	if !sameDepartment {
		nextStatus = StatusCollegeReview
		level = LevelCollegeReview
		committeeName = "college committee"
	}

	// Pool replacement, member rows and the transition commit together, so
	// a failure midway rolls back to the previous committee.
	var effects []notificationEffect
	err = s.db.Transaction(func(tx *gorm.DB) error {
		locked, err := lockFormTx(tx, formID)
		if err != nil {
			return err
		}
		if err := tx.Where("form_id = ? AND level = ?", formID, level).
			Delete(&models.ReviewerAssignment{}).Error; err != nil {
			return err
		}
		for _, member := range members {
			if err := assignReviewerTx(tx, formID, member.UserID, &assignerUserID, level, s.now()); err != nil {
				return err
			}
		}
		remark := fmt.Sprintf("Assigned to %s (%d members)", committeeName, len(members))
		effect, err := s.status.transitionTx(tx, locked, nextStatus, remark)
		if err != nil {
			return err
		}
		effects = append(effects, effect)
		return nil
	})
	if err != nil {
		return err
	}

	for _, member := range members {
		effects = append(effects, notificationEffect{
			UserID:  member.UserID,
			Title:   "Appraisal assigned for review",
			Message: fmt.Sprintf("You have been assigned to the %s for appraisal form %d.", committeeName, formID),
			FormID:  formID,
		})
	}
	s.notifier.dispatch(effects)
	return nil
}

// ListByForm returns the current reviewer pool.
func (s *AssignmentService) ListByForm(formID int) ([]models.ReviewerAssignment, error) {
	var assignments []models.ReviewerAssignment
	err := s.db.Preload("Reviewer").
		Where("form_id = ?", formID).
		Order("assignment_id ASC").
		Find(&assignments).Error
	return assignments, err
}
