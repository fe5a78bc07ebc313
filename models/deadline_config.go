package models

import "time"

// DeadlineConfig gates submissions for one academic year.
type DeadlineConfig struct {
	DeadlineID   int        `gorm:"primaryKey;column:deadline_id" json:"deadline_id"`
	AcademicYear string     `gorm:"column:academic_year;unique" json:"academic_year"`
	DeadlineDate time.Time  `gorm:"column:deadline_date" json:"deadline_date"`
	CreateAt     time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`
}

func (DeadlineConfig) TableName() string {
	return "deadline_configs"
}
