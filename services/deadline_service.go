package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"staff-appraisal-api/models"
)

// DeadlineService is the submission gate: one deadline row per academic year.
type DeadlineService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDeadlineService(db *gorm.DB) *DeadlineService {
	return &DeadlineService{db: db, now: time.Now}
}

func (s *DeadlineService) Get(academicYear string) (*models.DeadlineConfig, error) {
	return getDeadlineTx(s.db, academicYear)
}

func getDeadlineTx(tx *gorm.DB, academicYear string) (*models.DeadlineConfig, error) {
	var config models.DeadlineConfig
	err := tx.Where("academic_year = ?", academicYear).First(&config).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("no submission deadline configured for %s", academicYear)
		}
		return nil, err
	}
	return &config, nil
}

func (s *DeadlineService) List() ([]models.DeadlineConfig, error) {
	var configs []models.DeadlineConfig
	err := s.db.Order("academic_year DESC").Find(&configs).Error
	return configs, err
}

// CheckOpen returns nil while submissions for the year are allowed.
func (s *DeadlineService) CheckOpen(academicYear string) error {
	return checkDeadlineOpenTx(s.db, academicYear, s.now())
}

func checkDeadlineOpenTx(tx *gorm.DB, academicYear string, now time.Time) error {
	config, err := getDeadlineTx(tx, academicYear)
	if err != nil {
		if IsKind(err, KindNotFound) {
			return Conflictf("submission period is not configured for %s", academicYear)
		}
		return err
	}
	if now.After(config.DeadlineDate) {
		return Conflictf("Submission deadline passed")
	}
	return nil
}

// Upsert creates or moves a deadline. A deadline that has already passed is
// frozen; moving it afterwards would reopen a closed year.
func (s *DeadlineService) Upsert(academicYear string, deadlineDate time.Time) (*models.DeadlineConfig, error) {
	now := s.now()

	existing, err := getDeadlineTx(s.db, academicYear)
	if err != nil && !IsKind(err, KindNotFound) {
		return nil, err
	}

	if existing != nil {
		if now.After(existing.DeadlineDate) {
			return nil, Conflictf("deadline for %s has already passed and cannot be changed", academicYear)
		}
		updates := map[string]interface{}{
			"deadline_date": deadlineDate,
			"update_at":     now,
		}
		if err := s.db.Model(&models.DeadlineConfig{}).
			Where("deadline_id = ?", existing.DeadlineID).
			Updates(updates).Error; err != nil {
			return nil, err
		}
		existing.DeadlineDate = deadlineDate
		existing.UpdateAt = &now
		return existing, nil
	}

	config := models.DeadlineConfig{
		AcademicYear: academicYear,
		DeadlineDate: deadlineDate,
		CreateAt:     now,
	}
	if err := s.db.Create(&config).Error; err != nil {
		return nil, err
	}
	return &config, nil
}
