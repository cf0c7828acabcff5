package scheduling

import (
	"math"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
)

// historyWeight scales the lifetime task count against pending work.
const historyWeight = 0.3

// LoadTable is a running load score per member ID. It is built per call and
// never shared between requests.
type LoadTable map[string]float64

// Score is the member's load: incomplete tasks plus 0.3 per task ever
// assigned. Only meaningful relative to other members' scores.
func Score(member models.Member, tasks []models.TaskInstance) float64 {
	return loadOf(tasks, func(task models.TaskInstance) bool { return assignedTo(task, member) })
}

// ScoreByName is Score for callers that only hold a display name. Duplicate
// names share one score.
func ScoreByName(name string, tasks []models.TaskInstance) float64 {
	if name == "" || name == models.Unassigned {
		return 0
	}
	return loadOf(tasks, func(task models.TaskInstance) bool { return task.AssigneeName == name })
}

func loadOf(tasks []models.TaskInstance, matches func(models.TaskInstance) bool) float64 {
	pending, total := 0, 0
	for _, task := range tasks {
		if !matches(task) {
			continue
		}
		total++
		if !task.Completed {
			pending++
		}
	}
	return float64(pending) + historyWeight*float64(total)
}

// SeedLoads scores every member against history.
func SeedLoads(members []models.Member, history []models.TaskInstance) LoadTable {
	table := make(LoadTable, len(members))
	for _, member := range members {
		table[member.ID] = Score(member, history)
	}
	return table
}

// Clone returns an independent copy; a nil table clones to an empty one.
func (table LoadTable) Clone() LoadTable {
	clone := make(LoadTable, len(table))
	for id, load := range table {
		clone[id] = load
	}
	return clone
}

// Spread is the gap between the heaviest and lightest load in the table.
func (table LoadTable) Spread() float64 {
	if len(table) == 0 {
		return 0
	}
	lowest, highest := math.Inf(1), math.Inf(-1)
	for _, load := range table {
		lowest = math.Min(lowest, load)
		highest = math.Max(highest, load)
	}
	return highest - lowest
}

// assignedTo matches by member ID. Rows written before IDs were recorded only
// carry the display name, so those fall back to a name comparison.
func assignedTo(task models.TaskInstance, member models.Member) bool {
	if task.AssigneeID != nil {
		return *task.AssigneeID == member.ID
	}
	return task.AssigneeName != "" && task.AssigneeName == member.Name
}
