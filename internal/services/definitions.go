package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/repository"
)

var ErrInvalidTaskDefinition = errors.New("invalid task definition")

// ApplyDefinitionDefaults fills the fields a form may leave empty: a
// non-recurring definition is ONE_TIME, eligibility defaults to ALL and the
// assignment mode to ai.
func ApplyDefinitionDefaults(definition models.TaskDefinition) models.TaskDefinition {
	definition.Title = strings.TrimSpace(definition.Title)
	if definition.Frequency == "" && !definition.IsRecurring {
		definition.Frequency = models.FrequencyOneTime
	}
	if definition.Eligibility == "" {
		definition.Eligibility = models.EligibilityAll
	}
	if definition.AssignmentMode == "" {
		definition.AssignmentMode = models.AssignmentModeAI
	}
	return definition
}

// ValidateTaskDefinition rejects definitions the scheduler cannot plan. Every
// error wraps ErrInvalidTaskDefinition.
func ValidateTaskDefinition(definition models.TaskDefinition) error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidTaskDefinition, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(definition.Title) == "" {
		return invalid("title is required")
	}

	switch definition.Frequency {
	case models.FrequencyOneTime, models.FrequencyDaily, models.FrequencyWeekly,
		models.FrequencyBiweekly, models.FrequencyMonthly, models.FrequencyCustom:
	default:
		return invalid("unknown frequency %q", definition.Frequency)
	}
	if !definition.IsRecurring && definition.Frequency != models.FrequencyOneTime {
		return invalid("a non-recurring chore must be ONE_TIME")
	}
	if definition.IsRecurring && definition.Frequency == models.FrequencyOneTime {
		return invalid("a recurring chore needs a repeating frequency")
	}
	if definition.Frequency == models.FrequencyCustom && (definition.CustomEveryDays == nil || *definition.CustomEveryDays < 1) {
		return invalid("CUSTOM frequency needs a day count of at least 1")
	}
	if definition.OccurrencesPerWeek != nil {
		if definition.Frequency != models.FrequencyWeekly {
			return invalid("occurrences per week only apply to WEEKLY chores")
		}
		if *definition.OccurrencesPerWeek < 1 || *definition.OccurrencesPerWeek > 7 {
			return invalid("occurrences per week must be between 1 and 7")
		}
	}

	switch definition.Eligibility {
	case models.EligibilityAll:
	case models.EligibilitySelected:
		if len(definition.EligibleMemberIDs) == 0 {
			return invalid("SELECTED eligibility needs at least one member")
		}
	default:
		return invalid("unknown eligibility %q", definition.Eligibility)
	}

	switch definition.AssignmentMode {
	case models.AssignmentModeAI, models.AssignmentModeRotate:
	case models.AssignmentModeSpecific:
		if definition.PreferredAssigneeID == nil || *definition.PreferredAssigneeID == "" {
			return invalid("specific assignment needs a preferred assignee")
		}
	default:
		return invalid("unknown assignment mode %q", definition.AssignmentMode)
	}

	if definition.PreferredAssigneeID != nil && definition.Restricted() && !contains(definition.EligibleMemberIDs, *definition.PreferredAssigneeID) {
		return invalid("the preferred assignee must be eligible")
	}
	return nil
}

// CreateDefinition validates and stores a definition created by creatorID.
func (service *ChoreService) CreateDefinition(ctx context.Context, definition models.TaskDefinition, creatorID string) (models.TaskDefinition, error) {
	definition = ApplyDefinitionDefaults(definition)
	if err := ValidateTaskDefinition(definition); err != nil {
		return models.TaskDefinition{}, err
	}

	known, err := service.memberIDs(ctx)
	if err != nil {
		return models.TaskDefinition{}, err
	}
	for _, id := range definition.EligibleMemberIDs {
		if !known[id] {
			return models.TaskDefinition{}, fmt.Errorf("%w: unknown member %q", ErrInvalidTaskDefinition, id)
		}
	}
	if definition.PreferredAssigneeID != nil && !known[*definition.PreferredAssigneeID] {
		return models.TaskDefinition{}, fmt.Errorf("%w: unknown member %q", ErrInvalidTaskDefinition, *definition.PreferredAssigneeID)
	}

	definition.CreatedByMemberID = creatorID
	created, err := service.definitionRepo.Create(ctx, definition)
	if err != nil {
		return models.TaskDefinition{}, fmt.Errorf("creating task definition: %w", err)
	}
	return created, nil
}

func (service *ChoreService) ListDefinitions(ctx context.Context) ([]models.TaskDefinition, error) {
	definitions, err := service.definitionRepo.FindAll(ctx, repository.TaskDefinitionFilter{})
	if err != nil {
		return nil, fmt.Errorf("finding task definitions: %w", err)
	}
	return definitions, nil
}

func (service *ChoreService) memberIDs(ctx context.Context) (map[string]bool, error) {
	members, err := service.memberRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("finding members: %w", err)
	}
	ids := make(map[string]bool, len(members))
	for _, member := range members {
		ids[member.ID] = true
	}
	return ids, nil
}

func contains(values []string, value string) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}
