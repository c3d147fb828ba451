package accred

import "fmt"

// Tier is the accreditation level of a user. Tiers are totally ordered:
// comparing two tiers compares their ordinals.
type Tier int

const (
	External Tier = iota
	Internal
	TeamMember
	TeamLeader
	Admin
)

// ApprovalTier is the minimum tier allowed to approve or deny a
// tier-grant request.
const ApprovalTier = TeamLeader

var labels = map[Tier]string{
	External:   "Externe",
	Internal:   "Equipe ou CdD",
	TeamMember: "Equipe Logistique",
	TeamLeader: "Responsable Logistique",
	Admin:      "Admin",
}

func (t Tier) String() string {
	if label, ok := labels[t]; ok {
		return label
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

// Valid reports whether t is a declared tier.
func (t Tier) Valid() bool {
	return t >= External && t <= Admin
}

// Compare returns -1, 0 or 1 as t is below, equal to or above other.
func (t Tier) Compare(other Tier) int {
	switch {
	case t < other:
		return -1
	case t > other:
		return 1
	default:
		return 0
	}
}

// FromValue returns the tier with the given ordinal.
func FromValue(value int) (Tier, error) {
	t := Tier(value)
	if !t.Valid() {
		return External, fmt.Errorf("no accreditation tier with value %d", value)
	}
	return t, nil
}

// All returns the tiers in ascending order.
func All() []Tier {
	return []Tier{External, Internal, TeamMember, TeamLeader, Admin}
}
