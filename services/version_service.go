package services

import (
	"encoding/json"
	"log"
	"time"

	"gorm.io/gorm"

	"staff-appraisal-api/models"
)

// VersionService appends to a form's immutable audit trail. Snapshot
// serialization is best effort: a failure stores a null snapshot, never
// blocks the transition.
type VersionService struct {
	db        *gorm.DB
	serialize func(*models.AppraisalForm) (string, error)
	now       func() time.Time
}

func NewVersionService(db *gorm.DB) *VersionService {
	return &VersionService{
		db:        db,
		serialize: jsonSnapshot,
		now:       time.Now,
	}
}

func jsonSnapshot(form *models.AppraisalForm) (string, error) {
	data, err := json.Marshal(form)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Append writes one audit version inside the caller's transaction.
func (s *VersionService) Append(tx *gorm.DB, form *models.AppraisalForm, statusAtVersion, remarks string) error {
	version := models.AppraisalVersion{
		FormID:           form.FormID,
		StatusAtVersion:  statusAtVersion,
		Remarks:          remarks,
		VersionTimestamp: s.now(),
	}

	if snapshot, err := s.serialize(form); err != nil {
		log.Printf("Warning: snapshot serialization failed for form %d: %v", form.FormID, err)
	} else {
		version.SerializedSnapshot = &snapshot
	}

	return tx.Create(&version).Error
}

// ListByForm returns the trail newest first.
func (s *VersionService) ListByForm(formID int) ([]models.AppraisalVersion, error) {
	var versions []models.AppraisalVersion
	err := s.db.Where("form_id = ?", formID).
		Order("version_timestamp DESC").
		Order("version_id DESC").
		Find(&versions).Error
	return versions, err
}
