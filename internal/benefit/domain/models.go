// Package domain contains the tier benefit table: the static mapping
// from subscription tier and credit type to the monthly allotment.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/deckforge/deckforge/internal/hierarchy"
)

// CreditType names a distinct monthly allowance pool. It is an open
// identifier, not a closed enum; new pools are registered by inserting
// benefit rows for them.
type CreditType string

const (
	CreditTypeDeck   CreditType = "deck"
	CreditTypeRoast  CreditType = "roast"
	CreditTypeReview CreditType = "review"
)

// TierBenefit maps (tier, credit type) to a monthly allotment. Changing
// a row only affects future grants, never already-granted buckets.
type TierBenefit struct {
	ID               snowflake.ID   `gorm:"primaryKey"`
	Tier             hierarchy.Tier `gorm:"type:text;not null;index:ux_tier_benefits_tier_type,unique,priority:1"`
	CreditType       CreditType     `gorm:"column:credit_type;type:text;not null;index:ux_tier_benefits_tier_type,unique,priority:2"`
	MonthlyAllotment int            `gorm:"not null;default:0"`
	CreatedAt        time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (TierBenefit) TableName() string { return "tier_benefits" }
