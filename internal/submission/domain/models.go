// Package domain contains persistence models for submissions, the
// protected resource guarded by the admission pipeline.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Status is the submission lifecycle state. The admission pipeline only
// ever places a submission into pending or queued; every later
// transition belongs to the review workflow.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusPending    Status = "pending"
	StatusQueued     Status = "queued"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
)

// Valid reports whether s names a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusQueued, StatusInProgress, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

type Submission struct {
	ID             snowflake.ID      `gorm:"primaryKey"`
	PrincipalID    snowflake.ID      `gorm:"not null;index"`
	SubmissionType string            `gorm:"type:text;not null"`
	Status         Status            `gorm:"type:text;not null;index"`
	QueuePosition  *int              `gorm:""`
	Title          string            `gorm:"type:text;not null"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
	UpdatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Submission) TableName() string { return "submissions" }
