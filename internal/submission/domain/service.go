package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Submission, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Submission, error)
	ListByPrincipal(ctx context.Context, principalID snowflake.ID, limit int) ([]Submission, error)
	ListByStatus(ctx context.Context, status Status, limit int) ([]Submission, error)
	// CountInMonth counts the principal's submissions created in the
	// given calendar month holding any of the statuses.
	CountInMonth(ctx context.Context, principalID snowflake.ID, statuses []Status, month time.Time) (int, error)
	// Transition moves a submission to a new status; this is the entry
	// point the external review workflow drives, including promoting
	// queued submissions once a slot frees up.
	Transition(ctx context.Context, id snowflake.ID, status Status) (*Submission, error)
}

type CreateRequest struct {
	PrincipalID    snowflake.ID
	SubmissionType string
	Title          string
	Status         Status
	QueuePosition  *int
	Metadata       map[string]any
}

var (
	ErrInvalidType   = errors.New("invalid_submission_type")
	ErrInvalidTitle  = errors.New("invalid_title")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrNotFound      = errors.New("submission_not_found")
)
