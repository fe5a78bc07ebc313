package models

import "time"

// Review is a single reviewer's decision at one level. ReviewRound copies
// the form's round at submission time; the no-double-review check and
// committee tallies only consider rows from the current round.
type Review struct {
	ReviewID    int       `gorm:"primaryKey;column:review_id" json:"review_id"`
	FormID      int       `gorm:"column:form_id" json:"form_id"`
	ReviewerID  int       `gorm:"column:reviewer_id" json:"reviewer_id"`
	Decision    string    `gorm:"column:decision" json:"decision"`
	Level       string    `gorm:"column:level" json:"level"`
	ReviewRound int       `gorm:"column:review_round" json:"review_round"`
	Remarks     *string   `gorm:"column:remarks" json:"remarks,omitempty"`
	ReviewedAt  time.Time `gorm:"column:reviewed_at" json:"reviewed_at"`

	Reviewer *User `gorm:"foreignKey:ReviewerID;references:UserID" json:"reviewer,omitempty"`
}

func (Review) TableName() string {
	return "reviews"
}
