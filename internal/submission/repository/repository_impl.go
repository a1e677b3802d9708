package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/deckforge/deckforge/internal/submission/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, sub *domain.Submission) error {
	if sub == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO submissions (id, principal_id, submission_type, status, queue_position, title, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID,
		sub.PrincipalID,
		sub.SubmissionType,
		sub.Status,
		sub.QueuePosition,
		sub.Title,
		sub.Metadata,
		sub.CreatedAt,
		sub.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Submission, error) {
	var sub domain.Submission
	err := db.WithContext(ctx).Raw(
		`SELECT id, principal_id, submission_type, status, queue_position, title, metadata, created_at, updated_at
		 FROM submissions WHERE id = ?`,
		id,
	).Scan(&sub).Error
	if err != nil {
		return nil, err
	}
	if sub.ID == 0 {
		return nil, nil
	}
	return &sub, nil
}

func (r *repo) ListByPrincipal(ctx context.Context, db *gorm.DB, principalID snowflake.ID, limit int) ([]domain.Submission, error) {
	var items []domain.Submission
	err := db.WithContext(ctx).Raw(
		`SELECT id, principal_id, submission_type, status, queue_position, title, metadata, created_at, updated_at
		 FROM submissions
		 WHERE principal_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		principalID,
		limit,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListByStatus(ctx context.Context, db *gorm.DB, status domain.Status, limit int) ([]domain.Submission, error) {
	var items []domain.Submission
	// FIFO by creation order so queued work is reviewed oldest first.
	err := db.WithContext(ctx).Raw(
		`SELECT id, principal_id, submission_type, status, queue_position, title, metadata, created_at, updated_at
		 FROM submissions
		 WHERE status = ?
		 ORDER BY created_at ASC, id ASC
		 LIMIT ?`,
		status,
		limit,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) CountCreatedBetween(ctx context.Context, db *gorm.DB, principalID snowflake.ID, statuses []domain.Status, from, to time.Time) (int, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM submissions
		 WHERE principal_id = ? AND status IN ? AND created_at >= ? AND created_at < ?`,
		principalID,
		statuses,
		from,
		to,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.Status, now time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE submissions
		 SET status = ?, queue_position = NULL, updated_at = ?
		 WHERE id = ?`,
		status,
		now,
		id,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
