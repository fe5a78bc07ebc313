package models

import "time"

// AppraisalForm is one staff member's appraisal for one academic year.
// Status is only ever changed through services.StatusService.
type AppraisalForm struct {
	FormID          int        `gorm:"primaryKey;column:form_id" json:"form_id"`
	UserID          int        `gorm:"column:user_id" json:"user_id"`
	AcademicYear    string     `gorm:"column:academic_year" json:"academic_year"`
	Status          string     `gorm:"column:status" json:"status"`
	TotalScore      float64    `gorm:"column:total_score" json:"total_score"`
	Locked          bool       `gorm:"column:locked" json:"locked"`
	SubmittedDate   *time.Time `gorm:"column:submitted_date" json:"submitted_date,omitempty"`
	SubmittedAsRole string     `gorm:"column:submitted_as_role" json:"submitted_as_role"`
	ReviewRound     int        `gorm:"column:review_round" json:"review_round"`
	CreateAt        time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt        time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt        *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Owner    *User              `gorm:"foreignKey:UserID;references:UserID" json:"owner,omitempty"`
	Versions []AppraisalVersion `gorm:"foreignKey:FormID;references:FormID" json:"versions,omitempty"`
	Reviews  []Review           `gorm:"foreignKey:FormID;references:FormID" json:"reviews,omitempty"`
}

func (AppraisalForm) TableName() string {
	return "appraisal_forms"
}
