// Package hierarchy defines the platform's two privilege orders: the
// internal Role ladder and the subscription Tier ladder. Both are fixed
// total orders; a rank check is a plain ordinal comparison.
package hierarchy

// Role is the internal privilege level of a principal.
type Role string

const (
	RoleUser      Role = "user"
	RoleMember    Role = "member"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
	RoleDeveloper Role = "developer"
)

// Tier is the externally-sourced subscription level of a principal.
// The zero value means "no tier", which is distinct from (and below)
// the lowest named tier.
type Tier string

const (
	TierNone     Tier = ""
	TierCitizen  Tier = "Citizen"
	TierKnight   Tier = "Knight"
	TierEmissary Tier = "Emissary"
	TierDuke     Tier = "Duke"
	TierWizard   Tier = "Wizard"
	TierArchMage Tier = "ArchMage"
)

var roleRanks = map[Role]int{
	RoleUser:      1,
	RoleMember:    2,
	RoleModerator: 3,
	RoleAdmin:     4,
	RoleDeveloper: 5,
}

var tierRanks = map[Tier]int{
	TierCitizen:  1,
	TierKnight:   2,
	TierEmissary: 3,
	TierDuke:     4,
	TierWizard:   5,
	TierArchMage: 6,
}

// Valid reports whether r names a known role.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// AtLeast reports whether r satisfies the minimum role min. Unknown
// roles never satisfy anything.
func (r Role) AtLeast(min Role) bool {
	ra, ok := roleRanks[r]
	if !ok {
		return false
	}
	rb, ok := roleRanks[min]
	if !ok {
		return false
	}
	return ra >= rb
}

// Valid reports whether t names a known tier. TierNone is not valid.
func (t Tier) Valid() bool {
	_, ok := tierRanks[t]
	return ok
}

// AtLeast reports whether t satisfies the minimum tier min. A principal
// with no tier fails every check, including against the lowest named
// tier.
func (t Tier) AtLeast(min Tier) bool {
	ta, ok := tierRanks[t]
	if !ok {
		return false
	}
	tb, ok := tierRanks[min]
	if !ok {
		return false
	}
	return ta >= tb
}

// ParseRole resolves a stored role value.
func ParseRole(raw string) (Role, bool) {
	r := Role(raw)
	return r, r.Valid()
}

// ParseTier resolves a stored tier value. An empty string resolves to
// TierNone, which is reported as valid input but fails every AtLeast.
func ParseTier(raw string) (Tier, bool) {
	if raw == "" {
		return TierNone, true
	}
	t := Tier(raw)
	return t, t.Valid()
}

// Roles lists all roles from lowest to highest rank.
func Roles() []Role {
	return []Role{RoleUser, RoleMember, RoleModerator, RoleAdmin, RoleDeveloper}
}

// Tiers lists all named tiers from lowest to highest rank.
func Tiers() []Tier {
	return []Tier{TierCitizen, TierKnight, TierEmissary, TierDuke, TierWizard, TierArchMage}
}

// IsPrivileged reports whether a role is exempt from tier and credit
// checks. Moderators and above act without quota.
func IsPrivileged(r Role) bool {
	return r.AtLeast(RoleModerator)
}
