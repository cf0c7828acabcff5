package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
)

func intPtr(value int) *int {
	return &value
}

func TestPlannedWeekdays(t *testing.T) {
	weekStart := date(2024, 1, 8)

	tests := []struct {
		name       string
		definition models.TaskDefinition
		want       []string
	}{
		{
			name:       "one time",
			definition: models.TaskDefinition{Frequency: models.FrequencyOneTime},
			want:       nil,
		},
		{
			name:       "weekly three times",
			definition: models.TaskDefinition{IsRecurring: true, Frequency: models.FrequencyWeekly, OccurrencesPerWeek: intPtr(3)},
			want:       []string{"Monday", "Wednesday", "Saturday"},
		},
		{
			name:       "daily",
			definition: models.TaskDefinition{IsRecurring: true, Frequency: models.FrequencyDaily},
			want:       []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"},
		},
		{
			name:       "weekly without count follows its anchor",
			definition: models.TaskDefinition{IsRecurring: true, Frequency: models.FrequencyWeekly, CreatedAt: date(2024, 1, 4)},
			want:       []string{"Thursday"},
		},
		{
			name:       "biweekly off week",
			definition: models.TaskDefinition{IsRecurring: true, Frequency: models.FrequencyBiweekly, CreatedAt: date(2024, 1, 2)},
			want:       nil,
		},
		{
			name:       "biweekly on week",
			definition: models.TaskDefinition{IsRecurring: true, Frequency: models.FrequencyBiweekly, CreatedAt: date(2023, 12, 26)},
			want:       []string{"Tuesday"},
		},
		{
			name:       "custom every other day",
			definition: models.TaskDefinition{IsRecurring: true, Frequency: models.FrequencyCustom, CustomEveryDays: intPtr(2), CreatedAt: date(2024, 1, 8)},
			want:       []string{"Monday", "Wednesday", "Friday", "Sunday"},
		},
		{
			name:       "monthly",
			definition: models.TaskDefinition{IsRecurring: true, Frequency: models.FrequencyMonthly, CreatedAt: date(2023, 11, 10)},
			want:       []string{"Wednesday"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			days := PlannedWeekdays(test.definition, weekStart)
			if test.want == nil {
				require.Empty(t, days)
				return
			}
			require.Equal(t, test.want, WeekdayNames(days))
		})
	}
}

func TestPlanWeek(t *testing.T) {
	definitions := []models.TaskDefinition{
		{ID: "dishes", Title: "Dishes", IsRecurring: true, Frequency: models.FrequencyWeekly, OccurrencesPerWeek: intPtr(2)},
		{ID: "party", Title: "Party prep", Frequency: models.FrequencyOneTime},
		{ID: "trash", Title: "Trash", IsRecurring: true, Frequency: models.FrequencyWeekly, OccurrencesPerWeek: intPtr(1)},
	}

	// mid-week input is normalised to Monday
	instances := PlanWeek(definitions, time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC))
	require.Len(t, instances, 3)

	require.Equal(t, "Dishes", instances[0].Title)
	require.Equal(t, "Monday", instances[0].Weekday)
	require.True(t, instances[0].DueDate.Equal(date(2024, 1, 8)))
	require.Equal(t, "Friday", instances[1].Weekday)
	require.True(t, instances[1].DueDate.Equal(date(2024, 1, 12)))
	require.Equal(t, "Trash", instances[2].Title)

	for _, instance := range instances {
		require.Equal(t, models.Unassigned, instance.AssigneeName)
		require.Nil(t, instance.AssigneeID)
		require.False(t, instance.Completed)
		require.NotNil(t, instance.DefinitionID)
	}
	require.Equal(t, "dishes", *instances[0].DefinitionID)
	require.Equal(t, "trash", *instances[2].DefinitionID)

	require.Equal(t, []string{"Dishes", "Trash"}, Titles(instances))
}
