package scheduling

import (
	"fmt"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
)

// NoEligibleReason is the reasoning attached to tasks nobody may take.
const NoEligibleReason = "no eligible members match criteria"

// Task is the assignable view of a task instance.
type Task struct {
	ID    string
	Title string
	// Restricted limits the task to EligibleMemberIDs; an empty list then
	// means nobody qualifies.
	Restricted        bool
	EligibleMemberIDs []string
	// PreferredMemberID is a hint for the advisor; the fair pick ignores it.
	PreferredMemberID string
}

// TaskFor builds the assignable view of instance under its definition, which
// may be nil for ad-hoc instances.
func TaskFor(instance models.TaskInstance, definition *models.TaskDefinition) Task {
	task := Task{ID: instance.ID, Title: instance.Title}
	if definition == nil {
		return task
	}
	if definition.Restricted() {
		task.Restricted = true
		task.EligibleMemberIDs = append([]string(nil), definition.EligibleMemberIDs...)
	}
	if definition.PreferredAssigneeID != nil {
		task.PreferredMemberID = *definition.PreferredAssigneeID
	}
	return task
}

// RuleBasedAssigner gives each task to the least-loaded eligible member,
// preferring members without declared working hours. It is the fallback when
// the assignment advisor cannot be used.
type RuleBasedAssigner struct {
	Policy TieBreakPolicy
}

func NewRuleBasedAssigner(policy TieBreakPolicy) RuleBasedAssigner {
	return RuleBasedAssigner{Policy: policy}
}

// Assign returns one suggestion per task, in task order, and the running load
// table after the batch. seed is read but never modified; nil means everyone
// starts at zero. Each pick bumps the chosen member's load by one, so the
// outcome depends on task order.
func (assigner RuleBasedAssigner) Assign(people []models.Member, tasks []Task, seed LoadTable) ([]models.AssignmentSuggestion, LoadTable) {
	ordered := assigner.Policy.Order(people)
	loads := make(LoadTable, len(ordered))
	for _, member := range ordered {
		loads[member.ID] = seed[member.ID]
	}

	suggestions := make([]models.AssignmentSuggestion, 0, len(tasks))
	for _, task := range tasks {
		suggestions = append(suggestions, pickLightest(ordered, task, loads))
	}
	return suggestions, loads
}

// pickLightest expects ordered to already be in tie-break order and updates
// loads for the chosen member.
func pickLightest(ordered []models.Member, task Task, loads LoadTable) models.AssignmentSuggestion {
	candidates := eligibleMembers(ordered, task)
	if len(candidates) == 0 {
		return noEligible(task)
	}

	pool := make([]models.Member, 0, len(candidates))
	for _, candidate := range candidates {
		if !candidate.HasWorkingHours() {
			pool = append(pool, candidate)
		}
	}
	despiteWorkingHours := false
	if len(pool) == 0 {
		pool = candidates
		despiteWorkingHours = true
	}

	chosen := pool[0]
	for _, candidate := range pool[1:] {
		if loads[candidate.ID] < loads[chosen.ID] {
			chosen = candidate
		}
	}
	loads[chosen.ID]++

	var reasoning string
	switch {
	case task.Restricted:
		reasoning = fmt.Sprintf("%s is eligible for this chore and has the lightest load among eligible members", chosen.Name)
	case despiteWorkingHours:
		reasoning = fmt.Sprintf("%s has declared working hours (%s) but was picked to keep the workload fair", chosen.Name, chosen.WorkingHours)
	default:
		reasoning = fmt.Sprintf("%s currently has the lightest workload", chosen.Name)
	}
	return suggestionFor(task, chosen, reasoning)
}

// Allows reports whether member may take the task.
func (task Task) Allows(member models.Member) bool {
	return len(eligibleMembers([]models.Member{member}, task)) == 1
}

func eligibleMembers(ordered []models.Member, task Task) []models.Member {
	if !task.Restricted && len(task.EligibleMemberIDs) == 0 {
		return ordered
	}
	allowed := make(map[string]bool, len(task.EligibleMemberIDs))
	for _, id := range task.EligibleMemberIDs {
		allowed[id] = true
	}
	var eligible []models.Member
	for _, member := range ordered {
		if allowed[member.ID] {
			eligible = append(eligible, member)
		}
	}
	return eligible
}

func noEligible(task Task) models.AssignmentSuggestion {
	return models.AssignmentSuggestion{
		TaskID:    task.ID,
		TaskTitle: task.Title,
		Reasoning: NoEligibleReason,
		Error:     true,
	}
}

func suggestionFor(task Task, member models.Member, reasoning string) models.AssignmentSuggestion {
	id, name := member.ID, member.Name
	return models.AssignmentSuggestion{
		TaskID:            task.ID,
		TaskTitle:         task.Title,
		AssigneeID:        &id,
		SuggestedAssignee: &name,
		Reasoning:         reasoning,
	}
}
