package scheduling

import (
	"sort"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
)

// TieBreakPolicy orders members before any load comparison, so that among
// equal loads the earlier member wins. Roles in Leading sort first, roles in
// Trailing sort last, everyone else keeps their place in between.
type TieBreakPolicy struct {
	Leading  []models.FamilyRole
	Trailing []models.FamilyRole
}

// DefaultTieBreakPolicy puts parents first and kids last.
func DefaultTieBreakPolicy() TieBreakPolicy {
	return TieBreakPolicy{
		Leading:  []models.FamilyRole{models.FamilyRoleParent},
		Trailing: []models.FamilyRole{models.FamilyRoleKid},
	}
}

// Order returns a stably sorted copy of members.
func (policy TieBreakPolicy) Order(members []models.Member) []models.Member {
	ordered := append([]models.Member(nil), members...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return policy.rank(ordered[i].FamilyRole) < policy.rank(ordered[j].FamilyRole)
	})
	return ordered
}

func (policy TieBreakPolicy) rank(role models.FamilyRole) int {
	for i, leading := range policy.Leading {
		if role == leading {
			return i
		}
	}
	for i, trailing := range policy.Trailing {
		if role == trailing {
			return len(policy.Leading) + 1 + i
		}
	}
	return len(policy.Leading)
}
