// Package scheduling holds the recurring-task and fair-assignment engine. It
// performs no I/O: callers load members, definitions and instances, hand them
// in, and persist whatever comes back.
package scheduling

import (
	"time"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
)

const (
	// MaxOccurrences caps a single expansion.
	MaxOccurrences = 500

	// walkHorizonYears bounds how far past the range end a walk may go.
	walkHorizonYears = 2
)

// Expand returns the occurrences of rule whose start lies in
// [rangeStart, rangeEnd]. A rule without a pattern yields its original
// occurrence when it falls in range.
func Expand(rule *models.RecurrenceRule, rangeStart, rangeEnd time.Time) []models.Occurrence {
	if rule == nil {
		return nil
	}

	if !rule.Recurring() {
		if inRange(rule.StartsAt, rangeStart, rangeEnd) {
			return []models.Occurrence{{StartsAt: rule.StartsAt, EndsAt: copyTime(rule.EndsAt)}}
		}
		return nil
	}

	var duration *time.Duration
	if rule.EndsAt != nil {
		d := rule.EndsAt.Sub(rule.StartsAt)
		duration = &d
	}

	interval := rule.Interval
	if interval <= 0 {
		interval = 1
	}
	hardStop := rangeEnd.AddDate(walkHorizonYears, 0, 0)

	var occurrences []models.Occurrence
	for n := 0; ; n++ {
		current := rule.Pattern.Step(rule.StartsAt, interval, n)
		if current.After(rangeEnd) || current.After(hardStop) {
			break
		}
		if rule.Until != nil && current.After(*rule.Until) {
			break
		}
		if current.Before(rangeStart) {
			continue
		}

		occurrence := models.Occurrence{StartsAt: current}
		if duration != nil {
			end := current.Add(*duration)
			occurrence.EndsAt = &end
		}
		occurrences = append(occurrences, occurrence)
		if len(occurrences) >= MaxOccurrences {
			break
		}
	}
	return occurrences
}

// DefinitionRule derives the recurrence rule a task definition implies,
// anchored at the start of anchor's day. One-time definitions get a rule with
// no pattern.
func DefinitionRule(definition models.TaskDefinition, anchor time.Time) models.RecurrenceRule {
	rule := models.RecurrenceRule{
		Interval: 1,
		StartsAt: startOfDay(anchor),
	}
	if !definition.IsRecurring {
		return rule
	}

	switch definition.Frequency {
	case models.FrequencyDaily:
		rule.Pattern = models.Daily
	case models.FrequencyWeekly:
		rule.Pattern = models.Weekly
	case models.FrequencyBiweekly:
		rule.Pattern = models.Weekly
		rule.Interval = 2
	case models.FrequencyMonthly:
		rule.Pattern = models.Monthly
	case models.FrequencyCustom:
		rule.Pattern = models.Daily
		if definition.CustomEveryDays != nil {
			rule.Interval = *definition.CustomEveryDays
		}
	}
	return rule
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	value := *t
	return &value
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
