package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/deckforge/deckforge/internal/ledger/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) GetBalance(ctx context.Context, db *gorm.DB, key domain.BucketKey) (int, bool, error) {
	var row struct {
		PrincipalID snowflake.ID
		Balance     int
	}
	err := db.WithContext(ctx).Raw(
		`SELECT principal_id, balance FROM credit_balances
		 WHERE principal_id = ? AND credit_month = ? AND credit_type = ?`,
		key.PrincipalID,
		key.Month,
		key.CreditType,
	).Scan(&row).Error
	if err != nil {
		return 0, false, err
	}
	if row.PrincipalID == 0 {
		return 0, false, nil
	}
	return row.Balance, true, nil
}

func (r *repo) ListBalances(ctx context.Context, db *gorm.DB, principalID snowflake.ID, month time.Time) ([]domain.CreditBalance, error) {
	var items []domain.CreditBalance
	err := db.WithContext(ctx).Raw(
		`SELECT principal_id, credit_month, credit_type, balance, granted_at, created_at, updated_at
		 FROM credit_balances
		 WHERE principal_id = ? AND credit_month = ?
		 ORDER BY credit_type`,
		principalID,
		month,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// InsertGrant leans on the primary key for idempotency: a bucket that
// already carries a granted_at marker is left untouched. A bucket that
// exists without the marker (created by an administrative increment)
// still receives its allotment on top of the current balance.
func (r *repo) InsertGrant(ctx context.Context, db *gorm.DB, key domain.BucketKey, amount int, now time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`INSERT INTO credit_balances (principal_id, credit_month, credit_type, balance, granted_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (principal_id, credit_month, credit_type) DO UPDATE
		 SET balance = credit_balances.balance + excluded.balance,
		     granted_at = excluded.granted_at,
		     updated_at = excluded.updated_at
		 WHERE credit_balances.granted_at IS NULL`,
		key.PrincipalID,
		key.Month,
		key.CreditType,
		amount,
		now,
		now,
		now,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DecrementIfEnough closes the read-then-write race: the balance check
// and the decrement are one statement, so two concurrent consumers of a
// one-credit bucket serialize in the storage layer and exactly one wins.
func (r *repo) DecrementIfEnough(ctx context.Context, db *gorm.DB, key domain.BucketKey, amount int, now time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE credit_balances
		 SET balance = balance - ?, updated_at = ?
		 WHERE principal_id = ? AND credit_month = ? AND credit_type = ? AND balance >= ?`,
		amount,
		now,
		key.PrincipalID,
		key.Month,
		key.CreditType,
		amount,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) IncrementBalance(ctx context.Context, db *gorm.DB, key domain.BucketKey, amount int, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO credit_balances (principal_id, credit_month, credit_type, balance, granted_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, NULL, ?, ?)
		 ON CONFLICT (principal_id, credit_month, credit_type) DO UPDATE
		 SET balance = credit_balances.balance + excluded.balance,
		     updated_at = excluded.updated_at`,
		key.PrincipalID,
		key.Month,
		key.CreditType,
		amount,
		now,
		now,
	).Error
}

func (r *repo) InsertReservation(ctx context.Context, db *gorm.DB, res *domain.CreditReservation) error {
	if res == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO credit_reservations (id, principal_id, credit_month, credit_type, amount, status, created_at, released_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, NULL)`,
		res.ID,
		res.PrincipalID,
		res.CreditMonth,
		res.CreditType,
		res.Amount,
		res.Status,
		res.CreatedAt,
	).Error
}

func (r *repo) ReleaseReservation(ctx context.Context, db *gorm.DB, requestID string, now time.Time) (*domain.CreditReservation, bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE credit_reservations
		 SET status = ?, released_at = ?
		 WHERE id = ? AND status = ?`,
		domain.ReservationReleased,
		now,
		requestID,
		domain.ReservationConsumed,
	)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, false, nil
	}

	var res domain.CreditReservation
	err := db.WithContext(ctx).Raw(
		`SELECT id, principal_id, credit_month, credit_type, amount, status, created_at, released_at
		 FROM credit_reservations WHERE id = ?`,
		requestID,
	).Scan(&res).Error
	if err != nil {
		return nil, false, err
	}
	return &res, true, nil
}
