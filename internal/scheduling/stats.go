package scheduling

import (
	"time"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
)

type MemberWeekStats struct {
	MemberID       string  `json:"memberId"`
	Name           string  `json:"name"`
	Assigned       int     `json:"assigned"`
	Completed      int     `json:"completed"`
	Pending        int     `json:"pending"`
	CompletionRate float64 `json:"completionRate"`
	Load           float64 `json:"load"`
}

type WeekSummary struct {
	WeekStart  time.Time         `json:"weekStart"`
	Members    []MemberWeekStats `json:"members"`
	Total      int               `json:"total"`
	Completed  int               `json:"completed"`
	Unassigned int               `json:"unassigned"`
}

// WeeklyStats aggregates the instances due in the week starting at
// weekStart. Instances without a due date count by creation time.
func WeeklyStats(members []models.Member, instances []models.TaskInstance, weekStart time.Time) WeekSummary {
	weekStart = WeekStart(weekStart)
	weekEnd := weekStart.AddDate(0, 0, 7)

	var week []models.TaskInstance
	for _, instance := range instances {
		when := instance.CreatedAt
		if instance.DueDate != nil {
			when = *instance.DueDate
		}
		if !when.Before(weekStart) && when.Before(weekEnd) {
			week = append(week, instance)
		}
	}

	summary := WeekSummary{
		WeekStart: weekStart,
		Members:   make([]MemberWeekStats, 0, len(members)),
		Total:     len(week),
	}
	for _, instance := range week {
		if instance.Completed {
			summary.Completed++
		}
		if !instance.IsAssigned() {
			summary.Unassigned++
		}
	}

	for _, member := range members {
		stats := MemberWeekStats{MemberID: member.ID, Name: member.Name}
		for _, instance := range week {
			if !assignedTo(instance, member) {
				continue
			}
			stats.Assigned++
			if instance.Completed {
				stats.Completed++
			} else {
				stats.Pending++
			}
		}
		if stats.Assigned > 0 {
			stats.CompletionRate = float64(stats.Completed) / float64(stats.Assigned)
		}
		stats.Load = Score(member, week)
		summary.Members = append(summary.Members, stats)
	}
	return summary
}
