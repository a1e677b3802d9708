package admission

import (
	"sync"

	benefitdomain "github.com/deckforge/deckforge/internal/benefit/domain"
	"github.com/deckforge/deckforge/internal/hierarchy"
)

// Action binds a submission type to the credit pool it draws from and
// the minimum tier it requires. Credit types are open: registering a
// new action is how a new pool enters the system.
type Action struct {
	Type       string
	CreditType benefitdomain.CreditType
	MinTier    hierarchy.Tier
}

// Registry maps submission types to their actions.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]Action
}

func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]Action)}
}

// DefaultRegistry carries the platform's built-in protected actions.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Action{Type: "deck", CreditType: benefitdomain.CreditTypeDeck, MinTier: hierarchy.TierCitizen})
	r.Register(Action{Type: "roast", CreditType: benefitdomain.CreditTypeRoast, MinTier: hierarchy.TierKnight})
	r.Register(Action{Type: "review", CreditType: benefitdomain.CreditTypeReview, MinTier: hierarchy.TierEmissary})
	return r
}

func (r *Registry) Register(a Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[a.Type] = a
}

func (r *Registry) Lookup(submissionType string) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actions[submissionType]
	return a, ok
}
