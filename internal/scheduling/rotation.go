package scheduling

import (
	"strings"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
)

// RotationAssigner hands a task to the member after whoever had it last.
type RotationAssigner struct{}

// Assign picks the next member for title. existing must be in chronological
// order; only the last instance whose title matches (case-insensitively)
// counts. With no prior instance, or a previous assignee who is no longer in
// people, the rotation starts at people[0].
func (RotationAssigner) Assign(people []models.Member, existing []models.TaskInstance, title string) (models.Member, bool) {
	switch len(people) {
	case 0:
		return models.Member{}, false
	case 1:
		return people[0], true
	}

	var last *models.TaskInstance
	for i := range existing {
		if strings.EqualFold(existing[i].Title, title) {
			last = &existing[i]
		}
	}
	if last == nil {
		return people[0], true
	}

	index := -1
	for i, member := range people {
		if assignedTo(*last, member) {
			index = i
			break
		}
	}
	return people[(index+1)%len(people)], true
}

// previousAssignee names whoever held title last, for reasoning text.
func previousAssignee(existing []models.TaskInstance, title string) string {
	name := ""
	for _, instance := range existing {
		if !strings.EqualFold(instance.Title, title) {
			continue
		}
		name = ""
		if instance.IsAssigned() {
			name = instance.AssigneeName
		}
	}
	return name
}
