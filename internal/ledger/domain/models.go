// Package domain contains persistence models for the credit ledger: the
// per-principal, per-month, per-credit-type balance store.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	benefitdomain "github.com/deckforge/deckforge/internal/benefit/domain"
)

// CreditBalance is one ledger bucket entry. The composite key keeps
// contention naturally partitioned: unrelated principals never touch
// the same row. GrantedAt doubles as the idempotency marker for the
// monthly grant.
type CreditBalance struct {
	PrincipalID snowflake.ID             `gorm:"primaryKey;autoIncrement:false"`
	CreditMonth time.Time                `gorm:"primaryKey;type:date"`
	CreditType  benefitdomain.CreditType `gorm:"primaryKey;column:credit_type;type:text"`
	Balance     int                      `gorm:"not null;default:0"`
	GrantedAt   *time.Time               `gorm:""`
	CreatedAt   time.Time                `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time                `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (CreditBalance) TableName() string { return "credit_balances" }

// ReservationStatus tracks whether a consumption has been compensated.
type ReservationStatus string

const (
	ReservationConsumed ReservationStatus = "consumed"
	ReservationReleased ReservationStatus = "released"
)

// CreditReservation records one successful consume, keyed by the
// caller's request ID. Releasing a reservation is the only refund path,
// which makes refunds idempotent: a reservation flips from consumed to
// released at most once.
type CreditReservation struct {
	ID          string                   `gorm:"primaryKey;type:text"`
	PrincipalID snowflake.ID             `gorm:"not null;index"`
	CreditMonth time.Time                `gorm:"type:date;not null"`
	CreditType  benefitdomain.CreditType `gorm:"column:credit_type;type:text;not null"`
	Amount      int                      `gorm:"not null"`
	Status      ReservationStatus        `gorm:"type:text;not null"`
	CreatedAt   time.Time                `gorm:"not null;default:CURRENT_TIMESTAMP"`
	ReleasedAt  *time.Time               `gorm:""`
}

// TableName sets the database table name.
func (CreditReservation) TableName() string { return "credit_reservations" }

// MonthOf truncates t to the first day of its calendar month in UTC.
// UTC is the canonical bucket timezone; grant, consume and refund all
// key buckets through this function.
func MonthOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}
