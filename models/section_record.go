package models

import "time"

// Section records are the plain keyed collections attached to a form.
// They contribute points to the form's total score and are otherwise
// outside the review workflow, except for the HOD correction window
// (see services.SectionService).

type Publication struct {
	PublicationID int        `gorm:"primaryKey;column:publication_id" json:"publication_id"`
	FormID        int        `gorm:"column:form_id" json:"form_id"`
	Title         string     `gorm:"column:title" json:"title"`
	JournalName   string     `gorm:"column:journal_name" json:"journal_name"`
	IndexedIn     string     `gorm:"column:indexed_in" json:"indexed_in"`
	PublishedYear string     `gorm:"column:published_year" json:"published_year"`
	Points        float64    `gorm:"column:points" json:"points"`
	ProofPath     *string    `gorm:"column:proof_path" json:"proof_path,omitempty"`
	CreateAt      time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt      time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt      *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (Publication) TableName() string {
	return "publications"
}

type Award struct {
	AwardID     int        `gorm:"primaryKey;column:award_id" json:"award_id"`
	FormID      int        `gorm:"column:form_id" json:"form_id"`
	Title       string     `gorm:"column:title" json:"title"`
	AwardedBy   string     `gorm:"column:awarded_by" json:"awarded_by"`
	AwardedDate *time.Time `gorm:"column:awarded_date" json:"awarded_date,omitempty"`
	Points      float64    `gorm:"column:points" json:"points"`
	ProofPath   *string    `gorm:"column:proof_path" json:"proof_path,omitempty"`
	CreateAt    time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt    time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt    *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (Award) TableName() string {
	return "awards"
}
