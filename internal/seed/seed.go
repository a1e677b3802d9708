package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	benefitdomain "github.com/deckforge/deckforge/internal/benefit/domain"
	"github.com/deckforge/deckforge/internal/clock"
	"github.com/deckforge/deckforge/internal/hierarchy"
	principaldomain "github.com/deckforge/deckforge/internal/principal/domain"
	"gorm.io/gorm"
)

// defaultBenefits is the out-of-the-box allotment matrix. Rows are
// inserted only when missing, so operator overrides survive restarts.
var defaultBenefits = []benefitdomain.TierBenefit{
	{Tier: hierarchy.TierCitizen, CreditType: benefitdomain.CreditTypeDeck, MonthlyAllotment: 0},
	{Tier: hierarchy.TierKnight, CreditType: benefitdomain.CreditTypeDeck, MonthlyAllotment: 2},
	{Tier: hierarchy.TierEmissary, CreditType: benefitdomain.CreditTypeDeck, MonthlyAllotment: 5},
	{Tier: hierarchy.TierDuke, CreditType: benefitdomain.CreditTypeDeck, MonthlyAllotment: 10},
	{Tier: hierarchy.TierWizard, CreditType: benefitdomain.CreditTypeDeck, MonthlyAllotment: 20},
	{Tier: hierarchy.TierArchMage, CreditType: benefitdomain.CreditTypeDeck, MonthlyAllotment: 40},

	{Tier: hierarchy.TierKnight, CreditType: benefitdomain.CreditTypeRoast, MonthlyAllotment: 1},
	{Tier: hierarchy.TierEmissary, CreditType: benefitdomain.CreditTypeRoast, MonthlyAllotment: 3},
	{Tier: hierarchy.TierDuke, CreditType: benefitdomain.CreditTypeRoast, MonthlyAllotment: 6},
	{Tier: hierarchy.TierWizard, CreditType: benefitdomain.CreditTypeRoast, MonthlyAllotment: 12},
	{Tier: hierarchy.TierArchMage, CreditType: benefitdomain.CreditTypeRoast, MonthlyAllotment: 24},

	{Tier: hierarchy.TierEmissary, CreditType: benefitdomain.CreditTypeReview, MonthlyAllotment: 2},
	{Tier: hierarchy.TierDuke, CreditType: benefitdomain.CreditTypeReview, MonthlyAllotment: 4},
	{Tier: hierarchy.TierWizard, CreditType: benefitdomain.CreditTypeReview, MonthlyAllotment: 8},
	{Tier: hierarchy.TierArchMage, CreditType: benefitdomain.CreditTypeReview, MonthlyAllotment: 16},
}

// devPrincipals cover each privileged role plus a paying member, for
// local development only.
var devPrincipals = []principaldomain.Principal{
	{Username: "dev-admin", Role: hierarchy.RoleAdmin, Tier: hierarchy.TierNone, Active: true},
	{Username: "dev-moderator", Role: hierarchy.RoleModerator, Tier: hierarchy.TierNone, Active: true},
	{Username: "dev-operator", Role: hierarchy.RoleDeveloper, Tier: hierarchy.TierNone, Active: true},
	{Username: "dev-wizard", Role: hierarchy.RoleMember, Tier: hierarchy.TierWizard, Active: true},
	{Username: "dev-citizen", Role: hierarchy.RoleUser, Tier: hierarchy.TierCitizen, Active: true},
}

// EnsureDefaultBenefits seeds the benefit matrix for startup bootstrap.
func EnsureDefaultBenefits(db *gorm.DB, clk clock.Clock) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, benefit := range defaultBenefits {
			if err := ensureBenefitTx(ctx, tx, node, clk, benefit); err != nil {
				return err
			}
		}
		return nil
	})
}

// EnsureDevPrincipals seeds well-known principals for local work. Never
// enabled in production configs.
func EnsureDevPrincipals(db *gorm.DB, clk clock.Clock) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, principal := range devPrincipals {
			if err := ensurePrincipalTx(ctx, tx, node, clk, principal); err != nil {
				return err
			}
		}
		return nil
	})
}

func ensureBenefitTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, clk clock.Clock, benefit benefitdomain.TierBenefit) error {
	var existing benefitdomain.TierBenefit
	err := tx.WithContext(ctx).
		Where("tier = ? AND credit_type = ?", benefit.Tier, benefit.CreditType).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := clk.Now()
	benefit.ID = node.Generate()
	benefit.CreatedAt = now
	benefit.UpdatedAt = now
	return tx.WithContext(ctx).Create(&benefit).Error
}

func ensurePrincipalTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, clk clock.Clock, principal principaldomain.Principal) error {
	var existing principaldomain.Principal
	err := tx.WithContext(ctx).
		Where("username = ?", principal.Username).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := clk.Now()
	principal.ID = node.Generate()
	principal.CreatedAt = now
	principal.UpdatedAt = now
	return tx.WithContext(ctx).Create(&principal).Error
}
