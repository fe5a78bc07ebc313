package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"staff-appraisal-api/models"
)

// SectionService is the contact point between the section-record tables
// (publications, awards, ...) and the workflow core: owner edits are only
// allowed on unlocked drafts, HOD edits only during the correction window,
// and every HOD edit appends an audit version.
type SectionService struct {
	db       *gorm.DB
	versions *VersionService
	now      func() time.Time
}

func NewSectionService(db *gorm.DB) *SectionService {
	return &SectionService{
		db:       db,
		versions: NewVersionService(db),
		now:      time.Now,
	}
}

// CheckOwnerEditable guards staff edits: only the owner, only while DRAFT.
func (s *SectionService) CheckOwnerEditable(form *models.AppraisalForm, actorUserID int) error {
	if form.UserID != actorUserID {
		return IllegalArgumentf("form %d does not belong to user %d", form.FormID, actorUserID)
	}
	if form.Locked {
		return Conflictf("form %d is locked; records cannot be edited", form.FormID)
	}
	return nil
}

// CheckHODEditable guards HOD corrections: status must be exactly
// REUPLOAD_REQUIRED for the whole edit.
func (s *SectionService) CheckHODEditable(form *models.AppraisalForm) error {
	if form.Status != StatusReuploadRequired {
		return IllegalStatef("form %d is not in the correction window (status %s)", form.FormID, form.Status)
	}
	return nil
}

// RecordHODEdit appends the audit version for one HOD correction without
// changing the form's status.
func (s *SectionService) RecordHODEdit(tx *gorm.DB, form *models.AppraisalForm, hod *models.User, section, title string) error {
	remark := fmt.Sprintf("HOD %s modified %s: %s. Previous status: %s.",
		hod.FullName(), section, title, StatusReuploadRequired)
	return s.versions.Append(tx, form, form.Status, remark)
}

// RecalculateTotalScore sums section points into the form's total.
func (s *SectionService) RecalculateTotalScore(tx *gorm.DB, formID int) error {
	var publicationPoints, awardPoints float64
	if err := tx.Model(&models.Publication{}).
		Where("form_id = ? AND delete_at IS NULL", formID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&publicationPoints).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.Award{}).
		Where("form_id = ? AND delete_at IS NULL", formID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&awardPoints).Error; err != nil {
		return err
	}

	return tx.Model(&models.AppraisalForm{}).
		Where("form_id = ?", formID).
		Updates(map[string]interface{}{
			"total_score": publicationPoints + awardPoints,
			"update_at":   s.now(),
		}).Error
}
