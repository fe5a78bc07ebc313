package models

import "time"

// AppraisalVersion is the append-only audit trail of a form. Rows are never
// updated or deleted; display order is version_timestamp descending.
type AppraisalVersion struct {
	VersionID          int       `gorm:"primaryKey;column:version_id" json:"version_id"`
	FormID             int       `gorm:"column:form_id" json:"form_id"`
	StatusAtVersion    string    `gorm:"column:status_at_version" json:"status_at_version"`
	Remarks            string    `gorm:"column:remarks" json:"remarks"`
	SerializedSnapshot *string   `gorm:"column:serialized_snapshot" json:"serialized_snapshot,omitempty"`
	VersionTimestamp   time.Time `gorm:"column:version_timestamp" json:"version_timestamp"`
}

func (AppraisalVersion) TableName() string {
	return "appraisal_versions"
}
