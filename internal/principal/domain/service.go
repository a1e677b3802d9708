package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/deckforge/deckforge/internal/hierarchy"
)

type Service interface {
	// Ensure resolves a principal by username, creating it with the
	// default role on first authentication.
	Ensure(ctx context.Context, username string) (*Principal, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Principal, error)
	SetRole(ctx context.Context, id snowflake.ID, role hierarchy.Role) (*Principal, error)
	SetTier(ctx context.Context, id snowflake.ID, tier hierarchy.Tier) (*Principal, error)
	// ListActive pages active principals in id order for batch work.
	ListActive(ctx context.Context, afterID snowflake.ID, limit int) ([]Principal, error)
}

var (
	ErrInvalidUsername = errors.New("invalid_username")
	ErrInvalidRole     = errors.New("invalid_role")
	ErrInvalidTier     = errors.New("invalid_tier")
	ErrNotFound        = errors.New("principal_not_found")
)
