package scheduling

import (
	"fmt"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
)

// AssignmentRequest is everything a strategy may look at for one task.
type AssignmentRequest struct {
	Task Task
	// History holds earlier instances in chronological order.
	History []models.TaskInstance
	// Loads is the caller's running table; strategies bump the chosen
	// member's entry. May be nil.
	Loads LoadTable
}

// Assigner picks a member for a single task.
type Assigner interface {
	Assign(people []models.Member, request AssignmentRequest) models.AssignmentSuggestion
}

// StrategyFor selects the strategy for a definition once, from its
// assignment mode. A nil definition gets the fair strategy.
func StrategyFor(definition *models.TaskDefinition, policy TieBreakPolicy) Assigner {
	fair := FairStrategy{Policy: policy}
	if definition == nil {
		return fair
	}
	switch definition.AssignmentMode {
	case models.AssignmentModeRotate:
		return RotationStrategy{}
	case models.AssignmentModeSpecific:
		if definition.PreferredAssigneeID != nil {
			return SpecificStrategy{PreferredID: *definition.PreferredAssigneeID, Fallback: fair}
		}
	}
	return fair
}

// FairStrategy is the single-task form of RuleBasedAssigner.
type FairStrategy struct {
	Policy TieBreakPolicy
}

func (strategy FairStrategy) Assign(people []models.Member, request AssignmentRequest) models.AssignmentSuggestion {
	loads := request.Loads
	if loads == nil {
		loads = SeedLoads(people, request.History)
	}
	return pickLightest(strategy.Policy.Order(people), request.Task, loads)
}

// RotationStrategy cycles the task through its eligible members in the
// order given.
type RotationStrategy struct{}

func (RotationStrategy) Assign(people []models.Member, request AssignmentRequest) models.AssignmentSuggestion {
	candidates := eligibleMembers(people, request.Task)
	chosen, ok := RotationAssigner{}.Assign(candidates, request.History, request.Task.Title)
	if !ok {
		return noEligible(request.Task)
	}
	if request.Loads != nil {
		request.Loads[chosen.ID]++
	}

	reasoning := fmt.Sprintf("%s starts the rotation for this chore", chosen.Name)
	if previous := previousAssignee(request.History, request.Task.Title); previous != "" {
		reasoning = fmt.Sprintf("%s is next in the rotation after %s", chosen.Name, previous)
	}
	return suggestionFor(request.Task, chosen, reasoning)
}

// SpecificStrategy always picks the preferred member while they remain
// eligible and falls back otherwise.
type SpecificStrategy struct {
	PreferredID string
	Fallback    Assigner
}

func (strategy SpecificStrategy) Assign(people []models.Member, request AssignmentRequest) models.AssignmentSuggestion {
	for _, member := range eligibleMembers(people, request.Task) {
		if member.ID != strategy.PreferredID {
			continue
		}
		if request.Loads != nil {
			request.Loads[member.ID]++
		}
		return suggestionFor(request.Task, member, fmt.Sprintf("%s is the preferred assignee for this chore", member.Name))
	}
	return strategy.Fallback.Assign(people, request)
}
