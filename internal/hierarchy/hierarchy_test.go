package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleAtLeastIsMonotonic(t *testing.T) {
	roles := Roles()
	for i, actual := range roles {
		for j, min := range roles {
			got := actual.AtLeast(min)
			want := i >= j
			if got != want {
				t.Fatalf("AtLeast(%s, %s) = %v, want %v", actual, min, got, want)
			}
		}
	}
}

func TestTierAtLeastIsMonotonic(t *testing.T) {
	tiers := Tiers()
	for i, actual := range tiers {
		for j, min := range tiers {
			got := actual.AtLeast(min)
			want := i >= j
			if got != want {
				t.Fatalf("AtLeast(%s, %s) = %v, want %v", actual, min, got, want)
			}
		}
	}
}

func TestNoTierFailsEveryCheck(t *testing.T) {
	for _, min := range Tiers() {
		assert.False(t, TierNone.AtLeast(min), "no tier must not satisfy %s", min)
	}
	assert.False(t, TierNone.AtLeast(TierNone), "no tier must not satisfy an empty minimum")
}

func TestUnknownRanksFail(t *testing.T) {
	assert.False(t, Role("archduke").AtLeast(RoleUser))
	assert.False(t, RoleAdmin.AtLeast(Role("archduke")))
	assert.False(t, Tier("Peasant").AtLeast(TierCitizen))
}

func TestParse(t *testing.T) {
	r, ok := ParseRole("moderator")
	assert.True(t, ok)
	assert.Equal(t, RoleModerator, r)

	_, ok = ParseRole("wizard")
	assert.False(t, ok)

	tier, ok := ParseTier("")
	assert.True(t, ok)
	assert.Equal(t, TierNone, tier)

	tier, ok = ParseTier("Duke")
	assert.True(t, ok)
	assert.Equal(t, TierDuke, tier)

	_, ok = ParseTier("duke")
	assert.False(t, ok)
}

func TestIsPrivileged(t *testing.T) {
	assert.False(t, IsPrivileged(RoleUser))
	assert.False(t, IsPrivileged(RoleMember))
	assert.True(t, IsPrivileged(RoleModerator))
	assert.True(t, IsPrivileged(RoleAdmin))
	assert.True(t, IsPrivileged(RoleDeveloper))
}
