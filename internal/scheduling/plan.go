package scheduling

import (
	"time"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
)

// PlannedWeekdays returns the days of the week starting at weekStart on which
// definition is due. Weekly definitions with an occurrences-per-week count are
// spread with DistributeWeekdays; daily ones fill the week; other recurring
// frequencies follow their rule anchored at the definition's creation date.
func PlannedWeekdays(definition models.TaskDefinition, weekStart time.Time) []time.Weekday {
	if !definition.IsRecurring || definition.Frequency == models.FrequencyOneTime {
		return nil
	}
	if definition.Frequency == models.FrequencyWeekly && definition.OccurrencesPerWeek != nil && *definition.OccurrencesPerWeek > 0 {
		return DistributeWeekdays(*definition.OccurrencesPerWeek)
	}
	if definition.Frequency == models.FrequencyDaily {
		return DistributeWeekdays(len(mondayFirst))
	}

	anchor := definition.CreatedAt
	if anchor.IsZero() {
		anchor = weekStart
	}
	rule := DefinitionRule(definition, anchor.In(weekStart.Location()))
	weekEnd := weekStart.AddDate(0, 0, 7).Add(-time.Nanosecond)

	var days []time.Weekday
	seen := make(map[time.Weekday]bool)
	for _, occurrence := range Expand(&rule, weekStart, weekEnd) {
		day := occurrence.StartsAt.Weekday()
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	return days
}

// PlanWeek builds the unassigned instances the definitions call for in the
// week starting at weekStart, ordered by definition then by day.
func PlanWeek(definitions []models.TaskDefinition, weekStart time.Time) []models.TaskInstance {
	weekStart = WeekStart(weekStart)

	var instances []models.TaskInstance
	for _, definition := range definitions {
		definitionID := definition.ID
		for _, day := range PlannedWeekdays(definition, weekStart) {
			dueDate := weekStart.AddDate(0, 0, MondayOffset(day))
			instances = append(instances, models.TaskInstance{
				DefinitionID: &definitionID,
				Title:        definition.Title,
				Weekday:      day.String(),
				DueDate:      &dueDate,
				AssigneeName: models.Unassigned,
			})
		}
	}
	return instances
}

// Titles returns the distinct titles of instances in first-seen order.
func Titles(instances []models.TaskInstance) []string {
	seen := make(map[string]bool)
	var titles []string
	for _, instance := range instances {
		if !seen[instance.Title] {
			seen[instance.Title] = true
			titles = append(titles, instance.Title)
		}
	}
	return titles
}
