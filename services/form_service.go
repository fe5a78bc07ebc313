package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"staff-appraisal-api/models"
)

// FormService covers the form lifecycle outside the review pipeline:
// draft creation and reads.
type FormService struct {
	db       *gorm.DB
	versions *VersionService
	now      func() time.Time
}

func NewFormService(db *gorm.DB) *FormService {
	return &FormService{
		db:       db,
		versions: NewVersionService(db),
		now:      time.Now,
	}
}

// CreateDraft opens the single allowed form per (owner, academic year).
func (s *FormService) CreateDraft(ownerUserID int, academicYear string) (*models.AppraisalForm, error) {
	if _, err := getUserTx(s.db, ownerUserID); err != nil {
		return nil, err
	}

	var form *models.AppraisalForm
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.AppraisalForm{}).
			Where("user_id = ? AND academic_year = ? AND delete_at IS NULL", ownerUserID, academicYear).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return Conflictf("an appraisal form for %s already exists", academicYear)
		}

		now := s.now()
		created := models.AppraisalForm{
			UserID:       ownerUserID,
			AcademicYear: academicYear,
			Status:       StatusDraft,
			Locked:       false,
			ReviewRound:  1,
			CreateAt:     now,
			UpdateAt:     now,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}
		if err := s.versions.Append(tx, &created, StatusDraft, "Form created"); err != nil {
			return err
		}
		form = &created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return form, nil
}

func (s *FormService) Get(formID int) (*models.AppraisalForm, error) {
	var form models.AppraisalForm
	err := s.db.Preload("Owner").Preload("Owner.Department").
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

func (s *FormService) ListByOwner(ownerUserID int) ([]models.AppraisalForm, error) {
	var forms []models.AppraisalForm
	err := s.db.Where("user_id = ? AND delete_at IS NULL", ownerUserID).
		Order("academic_year DESC").
		Find(&forms).Error
	return forms, err
}

// ListByStatus lists forms sitting at one stage, for reviewer worklists.
func (s *FormService) ListByStatus(status string) ([]models.AppraisalForm, error) {
	if !IsValidStatus(status) {
		return nil, IllegalArgumentf("unknown status '%s'", status)
	}
	var forms []models.AppraisalForm
	err := s.db.Preload("Owner").
		Where("status = ? AND delete_at IS NULL", status).
		Order("update_at DESC").
		Find(&forms).Error
	return forms, err
}
