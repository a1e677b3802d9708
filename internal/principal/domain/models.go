// Package domain contains persistence models for principals.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/deckforge/deckforge/internal/hierarchy"
)

// Principal is an authenticated actor. Rows are created on first
// authentication; role and tier are mutated by external administrative
// and subscription-sync processes and never deleted here.
type Principal struct {
	ID        snowflake.ID   `gorm:"primaryKey"`
	Username  string         `gorm:"type:text;not null;uniqueIndex"`
	Role      hierarchy.Role `gorm:"type:text;not null;default:user"`
	Tier      hierarchy.Tier `gorm:"type:text;not null;default:''"`
	Active    bool           `gorm:"not null;default:true"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Principal) TableName() string { return "principals" }

// HasTier reports whether the principal carries any named tier.
func (p Principal) HasTier() bool { return p.Tier.Valid() }
