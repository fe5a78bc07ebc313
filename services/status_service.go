package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"staff-appraisal-api/models"
)

// StatusService owns every appraisal status change. The Transition
// primitive performs no legality checks: each caller (submit, assignment,
// review resolution, corrections) encodes its own slice of the graph, and
// the primitive stays reusable for forward, backward and lateral moves.
type StatusService struct {
	db        *gorm.DB
	versions  *VersionService
	deadlines *DeadlineService
	notifier  *NotificationService
	now       func() time.Time
}

func NewStatusService(db *gorm.DB) *StatusService {
	return &StatusService{
		db:        db,
		versions:  NewVersionService(db),
		deadlines: NewDeadlineService(db),
		notifier:  NewNotificationService(db),
		now:       time.Now,
	}
}

// lockFormTx loads the form row FOR UPDATE, serializing concurrent
// reviewers behind one transaction.
func lockFormTx(tx *gorm.DB, formID int) (*models.AppraisalForm, error) {
	var form models.AppraisalForm
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("form_id = ? AND delete_at IS NULL", formID).
		First(&form).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("appraisal form %d not found", formID)
		}
		return nil, err
	}
	return &form, nil
}

// getFormTx loads a form without locking, for read-mostly validation.
func getFormTx(tx *gorm.DB, formID int) (*models.AppraisalForm, error) {
	var form models.AppraisalForm
	err := tx.Where("form_id = ? AND delete_at IS NULL", formID).First(&form).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("appraisal form %d not found", formID)
		}
		return nil, err
	}
	return &form, nil
}

// bumpReviewRoundTx opens a fresh review round: decisions recorded before
// the bump no longer count toward duplicate checks or committee tallies.
func bumpReviewRoundTx(tx *gorm.DB, form *models.AppraisalForm) error {
	if err := tx.Model(&models.AppraisalForm{}).
		Where("form_id = ?", form.FormID).
		Update("review_round", gorm.Expr("review_round + 1")).Error; err != nil {
		return err
	}
	form.ReviewRound++
	return nil
}

// Transition moves a form to newStatus, writes the audit version in the
// same transaction, and notifies the owner after commit.
func (s *StatusService) Transition(formID int, newStatus, remark string, actorUserID int) error {
	if !IsValidStatus(newStatus) {
		return IllegalArgumentf("unknown status '%s'", newStatus)
	}

	var effects []notificationEffect
	err := s.db.Transaction(func(tx *gorm.DB) error {
		form, err := lockFormTx(tx, formID)
		if err != nil {
			return err
		}
		if _, err := getUserTx(tx, actorUserID); err != nil {
			return err
		}
		effect, err := s.transitionTx(tx, form, newStatus, remark)
		if err != nil {
			return err
		}
		effects = append(effects, effect)
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.dispatch(effects)
	return nil
}

// transitionTx is the transactional core shared by every workflow mutation:
// status + lock flag update, then the audit version, inside the caller's
// transaction. The returned owner notification is dispatched by the caller
// after commit (callers may drop it, e.g. the forward-to-verifier path).
func (s *StatusService) transitionTx(tx *gorm.DB, form *models.AppraisalForm, newStatus, remark string) (notificationEffect, error) {
	now := s.now()
	locked := newStatus != StatusDraft

	updates := map[string]interface{}{
		"status":    newStatus,
		"locked":    locked,
		"update_at": now,
	}
	if err := tx.Model(&models.AppraisalForm{}).
		Where("form_id = ?", form.FormID).
		Updates(updates).Error; err != nil {
		return notificationEffect{}, err
	}

	form.Status = newStatus
	form.Locked = locked
	form.UpdateAt = now

	if err := s.versions.Append(tx, form, newStatus, remark); err != nil {
		return notificationEffect{}, err
	}

	message := fmt.Sprintf("Your appraisal for %s is now %s.", form.AcademicYear, newStatus)
	if remark != "" {
		message = message + " " + remark
	}
	return notificationEffect{
		UserID:  form.UserID,
		Title:   "Appraisal status updated",
		Message: message,
		FormID:  form.FormID,
	}, nil
}

// Submit passes the deadline gate and moves a draft into the pipeline.
// No notification is sent on submit.
func (s *StatusService) Submit(formID int) (*models.AppraisalForm, error) {
	var submitted *models.AppraisalForm
	err := s.db.Transaction(func(tx *gorm.DB) error {
		form, err := lockFormTx(tx, formID)
		if err != nil {
			return err
		}
		if err := checkDeadlineOpenTx(tx, form.AcademicYear, s.now()); err != nil {
			return err
		}
		if form.Locked {
			return Conflictf("form %d is already submitted", form.FormID)
		}

		owner, err := getUserTx(tx, form.UserID)
		if err != nil {
			return err
		}

		now := s.now()
		updates := map[string]interface{}{
			"status":            StatusSubmitted,
			"locked":            true,
			"submitted_date":    now,
			"submitted_as_role": owner.Role.Role,
			"update_at":         now,
		}
		if err := tx.Model(&models.AppraisalForm{}).
			Where("form_id = ?", form.FormID).
			Updates(updates).Error; err != nil {
			return err
		}

		form.Status = StatusSubmitted
		form.Locked = true
		form.SubmittedDate = &now
		form.SubmittedAsRole = owner.Role.Role
		form.UpdateAt = now

		if err := s.versions.Append(tx, form, StatusSubmitted, "Form submitted by staff"); err != nil {
			return err
		}

		submitted = form
		return nil
	})
	if err != nil {
		return nil, err
	}
	return submitted, nil
}

// FinalizeCorrections restarts a corrected form from REUPLOAD_REQUIRED at
// the requested level, opening a fresh review round.
func (s *StatusService) FinalizeCorrections(formID, hodUserID int, restartLevel string) error {
	restartStatus, ok := restartStatusForLevel[restartLevel]
	if !ok {
		return IllegalArgumentf("invalid restart level '%s'", restartLevel)
	}

	var effects []notificationEffect
	err := s.db.Transaction(func(tx *gorm.DB) error {
		form, err := lockFormTx(tx, formID)
		if err != nil {
			return err
		}
		if form.Status != StatusReuploadRequired {
			return IllegalStatef("form %d is not awaiting corrections (status %s)", form.FormID, form.Status)
		}

		hod, err := getUserTx(tx, hodUserID)
		if err != nil {
			return err
		}

		if err := bumpReviewRoundTx(tx, form); err != nil {
			return err
		}

		remark := fmt.Sprintf("Corrections finalized by HOD %s; review restarted at %s", hod.FullName(), restartLevel)
		effect, err := s.transitionTx(tx, form, restartStatus, remark)
		if err != nil {
			return err
		}
		effects = append(effects, effect)
		effects = append(effects, notificationEffect{
			UserID:  hodUserID,
			Title:   "Corrections finalized",
			Message: fmt.Sprintf("Form %d has been moved back to %s.", form.FormID, restartStatus),
			FormID:  form.FormID,
		})
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.dispatch(effects)
	return nil
}
