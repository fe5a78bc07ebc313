package models

import "time"

// ReviewerAssignment is the form's current reviewer pool, one row per
// reviewer per level. Committee assignment calls replace the level's pool;
// single assignments append. Uniqueness per reviewer is not enforced here;
// the Review layer rejects duplicate decisions instead.
type ReviewerAssignment struct {
	AssignmentID int       `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	FormID       int       `gorm:"column:form_id" json:"form_id"`
	ReviewerID   int       `gorm:"column:reviewer_id" json:"reviewer_id"`
	Level        string    `gorm:"column:level" json:"level"`
	AssignedBy   *int      `gorm:"column:assigned_by" json:"assigned_by,omitempty"`
	CreateAt     time.Time `gorm:"column:create_at" json:"create_at"`

	Reviewer *User `gorm:"foreignKey:ReviewerID;references:UserID" json:"reviewer,omitempty"`
}

func (ReviewerAssignment) TableName() string {
	return "reviewer_assignments"
}
