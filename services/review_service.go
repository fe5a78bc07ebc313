package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"staff-appraisal-api/models"
)

// ReviewService records reviewer decisions and resolves each level:
// single-reviewer levels are decided by the one decision, committee levels
// by unanimous approval or any single rejection.
type ReviewService struct {
	db       *gorm.DB
	status   *StatusService
	versions *VersionService
	notifier *NotificationService
	now      func() time.Time
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{
		db:       db,
		status:   NewStatusService(db),
		versions: NewVersionService(db),
		notifier: NewNotificationService(db),
		now:      time.Now,
	}
}

type SubmitReviewInput struct {
	ReviewerUserID int
	FormID         int
	Decision       string
	Level          string
	Remarks        string
	// ForwardTo names the verifying staff member for HOD forward decisions.
	ForwardTo int
}

func (s *ReviewService) SubmitReview(in SubmitReviewInput) error {
	decision := strings.ToUpper(strings.TrimSpace(in.Decision))
	level := strings.ToUpper(strings.TrimSpace(in.Level))

	if !IsValidDecision(decision) {
		return IllegalArgumentf("invalid decision '%s'", in.Decision)
	}
	if !IsValidLevel(level) {
		return IllegalArgumentf("invalid review level '%s'", in.Level)
	}
	if decision == DecisionForward && level != LevelHODReview {
		return IllegalArgumentf("forward decisions are only available at %s", LevelHODReview)
	}

	var effects []notificationEffect
	err := s.db.Transaction(func(tx *gorm.DB) error {
		form, err := lockFormTx(tx, in.FormID)
		if err != nil {
			return err
		}
		reviewer, err := getUserTx(tx, in.ReviewerUserID)
		if err != nil {
			return err
		}

		if !levelAcceptsStatus(level, form.Status) {
			return Conflictf("form %d is not awaiting %s (status %s)", form.FormID, level, form.Status)
		}

		// Committee, verifier and principal decisions only count from the
		// assigned pool; HOD and chairperson resolve by role instead.
		if levelRequiresAssignment(level) {
			var assigned int64
			if err := tx.Model(&models.ReviewerAssignment{}).
				Where("form_id = ? AND reviewer_id = ? AND level = ?",
					form.FormID, reviewer.UserID, level).
				Count(&assigned).Error; err != nil {
				return err
			}
			if assigned == 0 {
				return NotFoundf("no %s assignment for user %d on form %d", level, reviewer.UserID, form.FormID)
			}
		}

		var existing int64
		if err := tx.Model(&models.Review{}).
			Where("form_id = ? AND reviewer_id = ? AND review_round = ?",
				form.FormID, reviewer.UserID, form.ReviewRound).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return Conflictf("reviewer already reviewed this form")
		}

		review := models.Review{
			FormID:      form.FormID,
			ReviewerID:  reviewer.UserID,
			Decision:    decision,
			Level:       level,
			ReviewRound: form.ReviewRound,
			ReviewedAt:  s.now(),
		}
		if remarks := strings.TrimSpace(in.Remarks); remarks != "" {
			review.Remarks = &remarks
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}

		remark := fmt.Sprintf("%s: %s by %s (round %d)", level, decision, reviewer.FullName(), form.ReviewRound)
		if err := s.versions.Append(tx, form, form.Status, remark); err != nil {
			return err
		}

		if IsCommitteeLevel(level) {
			resolved, err := s.resolveCommitteeTx(tx, form, level, reviewer)
			if err != nil {
				return err
			}
			effects = append(effects, resolved...)
			return nil
		}

		resolved, err := s.resolveSingleTx(tx, form, level, decision, reviewer, in.ForwardTo)
		if err != nil {
			return err
		}
		effects = append(effects, resolved...)
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.dispatch(effects)
	return nil
}

// resolveCommitteeTx re-tallies the level from the stored rows. The re-count
// runs under the form-row lock, so two concurrent final approvals cannot
// both observe an unresolved level.
func (s *ReviewService) resolveCommitteeTx(tx *gorm.DB, form *models.AppraisalForm, level string, reviewer *models.User) ([]notificationEffect, error) {
	var assignedCount int64
	if err := tx.Model(&models.ReviewerAssignment{}).
		Where("form_id = ? AND level = ?", form.FormID, level).
		Count(&assignedCount).Error; err != nil {
		return nil, err
	}

	var rows []models.Review
	if err := tx.Where("form_id = ? AND level = ? AND review_round = ?",
		form.FormID, level, form.ReviewRound).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	decisions := make([]string, 0, len(rows))
	for _, row := range rows {
		decisions = append(decisions, row.Decision)
	}

	switch resolveCommittee(int(assignedCount), decisions) {
	case committeeReupload:
		remark := fmt.Sprintf("Reupload requested at %s by %s", level, reviewer.FullName())
		effect, err := s.status.transitionTx(tx, form, StatusReuploadRequired, remark)
		if err != nil {
			return nil, err
		}
		return []notificationEffect{effect}, nil
	case committeeApproved:
		next := committeeNextStatus[level]
		remark := fmt.Sprintf("Approved by all %d members at %s", assignedCount, level)
		effect, err := s.status.transitionTx(tx, form, next, remark)
		if err != nil {
			return nil, err
		}
		return []notificationEffect{effect}, nil
	default:
		// Still pending; the decision is recorded and nothing moves.
		return nil, nil
	}
}

func (s *ReviewService) resolveSingleTx(tx *gorm.DB, form *models.AppraisalForm, level, decision string, reviewer *models.User, forwardTo int) ([]notificationEffect, error) {
	switch level {
	case LevelHODReview:
		switch decision {
		case DecisionApprove:
			effect, err := s.status.transitionTx(tx, form, StatusHODApproved,
				fmt.Sprintf("Approved by HOD %s", reviewer.FullName()))
			if err != nil {
				return nil, err
			}
			return []notificationEffect{effect}, nil
		case DecisionReupload:
			effect, err := s.status.transitionTx(tx, form, StatusReuploadRequired,
				fmt.Sprintf("Reupload requested by HOD %s", reviewer.FullName()))
			if err != nil {
				return nil, err
			}
			return []notificationEffect{effect}, nil
		case DecisionForward:
			return s.forwardToVerifierTx(tx, form, reviewer, forwardTo)
		}

	case LevelChairpersonReview:
		switch decision {
		case DecisionApprove:
			// The principal is resolved and assigned here; a directory
			// failure aborts the whole transition (no partial state).
			principal, err := findFirstUserWithRoleTx(tx, models.RoleNamePrincipal)
			if err != nil {
				return nil, err
			}
			assignerID := reviewer.UserID
			if err := assignReviewerTx(tx, form.FormID, principal.UserID, &assignerID, LevelPrincipalReview, s.now()); err != nil {
				return nil, IllegalStatef("failed to assign principal: %v", err)
			}
			effect, err := s.status.transitionTx(tx, form, StatusPendingPrincipalApproval,
				fmt.Sprintf("Approved by chairperson %s", reviewer.FullName()))
			if err != nil {
				return nil, err
			}
			return []notificationEffect{effect, {
				UserID:  principal.UserID,
				Title:   "Appraisal awaiting principal approval",
				Message: fmt.Sprintf("Appraisal form %d is awaiting your approval.", form.FormID),
				FormID:  form.FormID,
			}}, nil
		case DecisionReupload:
			effects, err := s.returnToHODTx(tx, form,
				fmt.Sprintf("Returned to HOD by chairperson %s", reviewer.FullName()))
			if err != nil {
				return nil, err
			}
			return effects, nil
		}

	case LevelPrincipalReview:
		switch decision {
		case DecisionApprove:
			effect, err := s.status.transitionTx(tx, form, StatusCompleted,
				fmt.Sprintf("Approved by principal %s", reviewer.FullName()))
			if err != nil {
				return nil, err
			}
			effect.Title = "Appraisal approved"
			return []notificationEffect{effect}, nil
		case DecisionReupload:
			// Fresh round, otherwise the chairperson's earlier decision
			// blocks the re-decision this return asks for.
			if err := bumpReviewRoundTx(tx, form); err != nil {
				return nil, err
			}
			effect, err := s.status.transitionTx(tx, form, StatusReturnedToChairperson,
				fmt.Sprintf("Returned to chairperson by principal %s", reviewer.FullName()))
			if err != nil {
				return nil, err
			}
			effects := []notificationEffect{effect}
			// Chairperson is notified, not reassigned; a lookup failure is
			// a best-effort gap, not a reason to abort.
			if chairperson, err := findFirstUserWithRoleTx(tx, models.RoleNameChairperson); err != nil {
				log.Printf("Warning: chairperson notification skipped for form %d: %v", form.FormID, err)
			} else {
				effects = append(effects, notificationEffect{
					UserID:  chairperson.UserID,
					Title:   "Appraisal returned by principal",
					Message: fmt.Sprintf("Appraisal form %d was returned by the principal.", form.FormID),
					FormID:  form.FormID,
				})
			}
			return effects, nil
		}

	case LevelVerifyingStaffReview:
		switch decision {
		case DecisionApprove:
			return s.returnToHODTx(tx, form,
				fmt.Sprintf("Verification completed by %s", reviewer.FullName()))
		case DecisionReupload:
			effect, err := s.status.transitionTx(tx, form, StatusReuploadRequired,
				fmt.Sprintf("Reupload requested by verifying staff %s", reviewer.FullName()))
			if err != nil {
				return nil, err
			}
			return []notificationEffect{effect}, nil
		}
	}

	return nil, IllegalArgumentf("decision %s is not supported at %s", decision, level)
}

// forwardToVerifierTx assigns the named verifier and moves the form to
// PENDING_VERIFICATION atomically. The owner notification is deliberately
// dropped: the verifier is the one who needs to act.
func (s *ReviewService) forwardToVerifierTx(tx *gorm.DB, form *models.AppraisalForm, reviewer *models.User, forwardTo int) ([]notificationEffect, error) {
	if forwardTo == 0 {
		return nil, IllegalArgumentf("forward target reviewer is required")
	}
	target, err := getUserTx(tx, forwardTo)
	if err != nil {
		return nil, err
	}

	assignerID := reviewer.UserID
	if err := assignReviewerTx(tx, form.FormID, target.UserID, &assignerID, LevelVerifyingStaffReview, s.now()); err != nil {
		return nil, IllegalStatef("failed to assign verifying staff: %v", err)
	}

	if _, err := s.status.transitionTx(tx, form, StatusPendingVerification,
		fmt.Sprintf("Forwarded to verifying staff %s by HOD %s", target.FullName(), reviewer.FullName())); err != nil {
		return nil, err
	}

	return []notificationEffect{{
		UserID:  target.UserID,
		Title:   "Appraisal assigned for verification",
		Message: fmt.Sprintf("Appraisal form %d has been forwarded to you for verification.", form.FormID),
		FormID:  form.FormID,
	}}, nil
}

// returnToHODTx moves the form to RETURNED_TO_HOD in a fresh review round
// (the HOD usually holds a decision from the current one) and notifies the
// owner's department head.
func (s *ReviewService) returnToHODTx(tx *gorm.DB, form *models.AppraisalForm, remark string) ([]notificationEffect, error) {
	if err := bumpReviewRoundTx(tx, form); err != nil {
		return nil, err
	}

	effect, err := s.status.transitionTx(tx, form, StatusReturnedToHOD, remark)
	if err != nil {
		return nil, err
	}
	effects := []notificationEffect{effect}

	owner, err := getUserTx(tx, form.UserID)
	if err != nil {
		return nil, err
	}
	if owner.DepartmentID == nil {
		log.Printf("Warning: HOD notification skipped, owner of form %d has no department", form.FormID)
		return effects, nil
	}
	if hod, err := findDepartmentHeadTx(tx, *owner.DepartmentID); err != nil {
		log.Printf("Warning: HOD notification skipped for form %d: %v", form.FormID, err)
	} else {
		effects = append(effects, notificationEffect{
			UserID:  hod.UserID,
			Title:   "Appraisal returned for HOD review",
			Message: fmt.Sprintf("Appraisal form %d requires your review. %s", form.FormID, remark),
			FormID:  form.FormID,
		})
	}
	return effects, nil
}

// ListByForm returns the decisions recorded for a form, newest first.
func (s *ReviewService) ListByForm(formID int) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.Preload("Reviewer").
		Where("form_id = ?", formID).
		Order("reviewed_at DESC").
		Find(&reviews).Error
	return reviews, err
}
