package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/ai"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/metrics"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/repository"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/scheduling"
)

var (
	ErrTaskAlreadyComplete = errors.New("task is already completed")
	ErrNoMembers           = errors.New("no family members")
	ErrTaskNotFound        = errors.New("task not found")
)

const (
	MessageNoMembers = "Add family members before generating suggestions."
	MessageNoTasks   = "There are no incomplete chores to assign."
)

// SuggestionAdvisor is the external assignment service. *ai.Advisor
// implements it.
type SuggestionAdvisor interface {
	Configured() bool
	Suggest(ctx context.Context, people []models.Member, tasks []scheduling.Task, loads scheduling.LoadTable) ([]models.AssignmentSuggestion, error)
}

type WeekGeneration struct {
	Created     int                           `json:"created"`
	Assignments []models.AssignmentSuggestion `json:"assignments"`
}

type SuggestionResult struct {
	Suggestions []models.AssignmentSuggestion `json:"suggestions,omitempty"`
	Source      string                        `json:"source,omitempty"`
	Message     string                        `json:"message,omitempty"`
}

type ChoreService struct {
	memberRepo     repository.MemberRepository
	definitionRepo repository.TaskDefinitionRepository
	instanceRepo   repository.TaskInstanceRepository
	advisor        SuggestionAdvisor
	policy         scheduling.TieBreakPolicy
	metrics        metrics.Collector
	aiTimeout      time.Duration
	now            func() time.Time
}

func NewChoreService(
	memberRepo repository.MemberRepository,
	definitionRepo repository.TaskDefinitionRepository,
	instanceRepo repository.TaskInstanceRepository,
	advisor SuggestionAdvisor,
	policy scheduling.TieBreakPolicy,
	collector metrics.Collector,
	aiTimeout time.Duration,
) *ChoreService {
	if collector == nil {
		collector = metrics.NewNop()
	}
	return &ChoreService{
		memberRepo:     memberRepo,
		definitionRepo: definitionRepo,
		instanceRepo:   instanceRepo,
		advisor:        advisor,
		policy:         policy,
		metrics:        collector,
		aiTimeout:      aiTimeout,
		now:            time.Now,
	}
}

// GenerateWeek materializes the recurring definitions for the week containing
// weekStart and assigns the new instances. Incomplete instances of the same
// titles are replaced; completed ones are kept. Only instances that got a
// named assignee are written back.
func (service *ChoreService) GenerateWeek(ctx context.Context, weekStart time.Time) (WeekGeneration, error) {
	definitions, err := service.definitionRepo.FindAll(ctx, repository.TaskDefinitionFilter{RecurringOnly: true})
	if err != nil {
		return WeekGeneration{}, fmt.Errorf("finding recurring definitions: %w", err)
	}

	planned := scheduling.PlanWeek(definitions, weekStart)
	if len(planned) == 0 {
		return WeekGeneration{Assignments: []models.AssignmentSuggestion{}}, nil
	}

	created, err := service.instanceRepo.ReplaceIncomplete(ctx, scheduling.Titles(planned), planned)
	if err != nil {
		return WeekGeneration{}, fmt.Errorf("replacing week instances: %w", err)
	}

	people, err := service.memberRepo.FindAll(ctx)
	if err != nil {
		return WeekGeneration{}, fmt.Errorf("finding members: %w", err)
	}

	history, err := service.historyExcluding(ctx, created)
	if err != nil {
		return WeekGeneration{}, err
	}

	suggestions, _ := service.assignBatch(ctx, people, created, indexDefinitions(definitions), history)

	assigned := 0
	for _, suggestion := range suggestions {
		if !suggestion.Named() {
			continue
		}
		if err := service.instanceRepo.Assign(ctx, suggestion.TaskID, suggestion.AssigneeID, *suggestion.SuggestedAssignee); err != nil {
			return WeekGeneration{}, fmt.Errorf("writing assignment: %w", err)
		}
		assigned++
	}

	service.metrics.RecordWeekGenerated(len(created), assigned)
	slog.Info("generated week", "week", scheduling.WeekStart(weekStart).Format("2006-01-02"),
		"created", len(created), "assigned", assigned)

	return WeekGeneration{Created: len(created), Assignments: suggestions}, nil
}

// SuggestAssignments proposes an assignee for every incomplete instance
// without writing anything. When there is nothing to assign the result
// carries a message instead of suggestions.
func (service *ChoreService) SuggestAssignments(ctx context.Context) (SuggestionResult, error) {
	people, err := service.memberRepo.FindAll(ctx)
	if err != nil {
		return SuggestionResult{}, fmt.Errorf("finding members: %w", err)
	}
	if len(people) == 0 {
		return SuggestionResult{Message: MessageNoMembers}, nil
	}

	all, err := service.instanceRepo.FindAll(ctx, repository.TaskInstanceFilter{})
	if err != nil {
		return SuggestionResult{}, fmt.Errorf("finding task instances: %w", err)
	}
	var open, history []models.TaskInstance
	for _, instance := range all {
		if instance.Completed {
			history = append(history, instance)
		} else {
			open = append(open, instance)
		}
	}
	if len(open) == 0 {
		return SuggestionResult{Message: MessageNoTasks}, nil
	}

	definitions, err := service.definitionRepo.FindAll(ctx, repository.TaskDefinitionFilter{})
	if err != nil {
		return SuggestionResult{}, fmt.Errorf("finding definitions: %w", err)
	}

	// Open instances are planned afresh, so only completed work seeds the loads.
	suggestions, source := service.assignBatch(ctx, people, unassignedCopies(open), indexDefinitions(definitions), history)
	return SuggestionResult{Suggestions: suggestions, Source: source}, nil
}

// AssignInstance picks an assignee for one instance with its definition's
// strategy and stores the pick when someone was named.
func (service *ChoreService) AssignInstance(ctx context.Context, id string) (models.AssignmentSuggestion, error) {
	instance, err := service.findInstance(ctx, id)
	if err != nil {
		return models.AssignmentSuggestion{}, err
	}
	if instance.Completed {
		return models.AssignmentSuggestion{}, ErrTaskAlreadyComplete
	}

	people, err := service.memberRepo.FindAll(ctx)
	if err != nil {
		return models.AssignmentSuggestion{}, fmt.Errorf("finding members: %w", err)
	}
	if len(people) == 0 {
		return models.AssignmentSuggestion{}, ErrNoMembers
	}

	var definition *models.TaskDefinition
	if instance.DefinitionID != nil {
		found, err := service.definitionRepo.FindByID(ctx, *instance.DefinitionID)
		switch {
		case err == nil:
			definition = &found
		case !errors.Is(err, sql.ErrNoRows):
			return models.AssignmentSuggestion{}, fmt.Errorf("finding definition: %w", err)
		}
	}

	history, err := service.historyExcluding(ctx, []models.TaskInstance{instance})
	if err != nil {
		return models.AssignmentSuggestion{}, err
	}

	suggestion := scheduling.StrategyFor(definition, service.policy).Assign(people, scheduling.AssignmentRequest{
		Task:    scheduling.TaskFor(instance, definition),
		History: history,
	})
	service.recordDeadEnds([]models.AssignmentSuggestion{suggestion})
	if !suggestion.Named() {
		return suggestion, nil
	}

	if err := service.instanceRepo.Assign(ctx, instance.ID, suggestion.AssigneeID, *suggestion.SuggestedAssignee); err != nil {
		return models.AssignmentSuggestion{}, fmt.Errorf("writing assignment: %w", err)
	}
	return suggestion, nil
}

func (service *ChoreService) CompleteInstance(ctx context.Context, id string) error {
	instance, err := service.findInstance(ctx, id)
	if err != nil {
		return err
	}
	if instance.Completed {
		return ErrTaskAlreadyComplete
	}

	if err := service.instanceRepo.Complete(ctx, id, service.now()); err != nil {
		return fmt.Errorf("completing task instance: %w", err)
	}
	service.metrics.RecordTaskCompleted()
	return nil
}

// WeekInstances lists the instances due in the week containing weekStart.
func (service *ChoreService) WeekInstances(ctx context.Context, weekStart time.Time) ([]models.TaskInstance, error) {
	from := scheduling.WeekStart(weekStart)
	before := from.AddDate(0, 0, 7)
	instances, err := service.instanceRepo.FindAll(ctx, repository.TaskInstanceFilter{DueFrom: &from, DueBefore: &before})
	if err != nil {
		return nil, fmt.Errorf("finding week instances: %w", err)
	}
	return instances, nil
}

func (service *ChoreService) WeeklyStats(ctx context.Context, weekStart time.Time) (scheduling.WeekSummary, error) {
	people, err := service.memberRepo.FindAll(ctx)
	if err != nil {
		return scheduling.WeekSummary{}, fmt.Errorf("finding members: %w", err)
	}
	instances, err := service.instanceRepo.FindAll(ctx, repository.TaskInstanceFilter{})
	if err != nil {
		return scheduling.WeekSummary{}, fmt.Errorf("finding task instances: %w", err)
	}
	return scheduling.WeeklyStats(people, instances, weekStart), nil
}

// assignBatch assigns every instance of batch. Instances whose definition
// uses rotation or a fixed assignee go through that strategy first, in batch
// order; the rest are sent to the advisor in one call and fall back to the
// rule-based assigner when it fails or names nobody usable. The result is in
// batch order together with the source that served the advised part.
func (service *ChoreService) assignBatch(
	ctx context.Context,
	people []models.Member,
	batch []models.TaskInstance,
	definitions map[string]models.TaskDefinition,
	history []models.TaskInstance,
) ([]models.AssignmentSuggestion, string) {
	loads := scheduling.SeedLoads(people, history)
	history = append([]models.TaskInstance(nil), history...)
	suggestions := make([]models.AssignmentSuggestion, len(batch))

	var advised []int
	var advisedTasks []scheduling.Task
	for i, instance := range batch {
		definition := definitionFor(instance, definitions)
		task := scheduling.TaskFor(instance, definition)
		if definition == nil || definition.AssignmentMode == models.AssignmentModeAI {
			advised = append(advised, i)
			advisedTasks = append(advisedTasks, task)
			continue
		}

		suggestion := scheduling.StrategyFor(definition, service.policy).Assign(people, scheduling.AssignmentRequest{
			Task:    task,
			History: history,
			Loads:   loads,
		})
		suggestions[i] = suggestion
		history = append(history, withAssignee(instance, suggestion))
	}

	source := metrics.SourceFallback
	if len(advisedTasks) > 0 {
		retry := make([]int, 0, len(advisedTasks))
		if advice, ok := service.advise(ctx, people, advisedTasks, loads); ok {
			source = metrics.SourceAI
			for j, task := range advisedTasks {
				suggestion, found := advice[task.ID]
				if !found || !suggestion.Named() {
					retry = append(retry, j)
					continue
				}
				loads[*suggestion.AssigneeID]++
				suggestions[advised[j]] = suggestion
			}
		} else {
			for j := range advisedTasks {
				retry = append(retry, j)
			}
		}

		if len(retry) > 0 {
			tasks := make([]scheduling.Task, len(retry))
			for k, j := range retry {
				tasks[k] = advisedTasks[j]
			}
			picks, _ := scheduling.NewRuleBasedAssigner(service.policy).Assign(people, tasks, loads)
			for k, j := range retry {
				suggestions[advised[j]] = picks[k]
			}
			service.metrics.RecordSuggestions(metrics.SourceFallback, len(picks))
		}
	}

	service.recordDeadEnds(suggestions)
	return suggestions, source
}

// advise calls the advisor under the configured timeout and reports whether
// its answer can be used. Suggestions are keyed by task ID.
func (service *ChoreService) advise(ctx context.Context, people []models.Member, tasks []scheduling.Task, loads scheduling.LoadTable) (map[string]models.AssignmentSuggestion, bool) {
	if service.advisor == nil || !service.advisor.Configured() {
		return nil, false
	}

	if service.aiTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, service.aiTimeout)
		defer cancel()
	}

	started := time.Now()
	advice, err := service.advisor.Suggest(ctx, people, tasks, loads.Clone())
	service.metrics.ObserveAIRequest(aiResult(err), time.Since(started).Seconds())
	if err != nil {
		slog.Warn("assignment advisor failed, using rule-based assignment", "error", err)
		return nil, false
	}

	byTask := make(map[string]models.AssignmentSuggestion, len(advice))
	named := 0
	for _, suggestion := range advice {
		byTask[suggestion.TaskID] = suggestion
		if suggestion.Named() {
			named++
		}
	}
	service.metrics.RecordSuggestions(metrics.SourceAI, named)
	return byTask, true
}

func (service *ChoreService) recordDeadEnds(suggestions []models.AssignmentSuggestion) {
	for _, suggestion := range suggestions {
		if suggestion.Error {
			service.metrics.RecordEligibilityDeadEnd()
		}
	}
}

func (service *ChoreService) findInstance(ctx context.Context, id string) (models.TaskInstance, error) {
	instance, err := service.instanceRepo.FindByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TaskInstance{}, ErrTaskNotFound
	}
	if err != nil {
		return models.TaskInstance{}, fmt.Errorf("finding task instance: %w", err)
	}
	return instance, nil
}

// historyExcluding returns every stored instance except those in skip, in
// creation order.
func (service *ChoreService) historyExcluding(ctx context.Context, skip []models.TaskInstance) ([]models.TaskInstance, error) {
	all, err := service.instanceRepo.FindAll(ctx, repository.TaskInstanceFilter{})
	if err != nil {
		return nil, fmt.Errorf("finding task history: %w", err)
	}

	excluded := make(map[string]bool, len(skip))
	for _, instance := range skip {
		excluded[instance.ID] = true
	}
	history := make([]models.TaskInstance, 0, len(all))
	for _, instance := range all {
		if !excluded[instance.ID] {
			history = append(history, instance)
		}
	}
	return history, nil
}

func aiResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, ai.ErrNotConfigured):
		return metrics.ResultNotConfigured
	case errors.Is(err, ai.ErrMalformedResponse):
		return metrics.ResultMalformed
	default:
		return metrics.ResultError
	}
}

func indexDefinitions(definitions []models.TaskDefinition) map[string]models.TaskDefinition {
	index := make(map[string]models.TaskDefinition, len(definitions))
	for _, definition := range definitions {
		index[definition.ID] = definition
	}
	return index
}

func definitionFor(instance models.TaskInstance, definitions map[string]models.TaskDefinition) *models.TaskDefinition {
	if instance.DefinitionID == nil {
		return nil
	}
	definition, ok := definitions[*instance.DefinitionID]
	if !ok {
		return nil
	}
	return &definition
}

func withAssignee(instance models.TaskInstance, suggestion models.AssignmentSuggestion) models.TaskInstance {
	if suggestion.Named() {
		instance.AssigneeID = suggestion.AssigneeID
		instance.AssigneeName = *suggestion.SuggestedAssignee
	}
	return instance
}

// unassignedCopies strips current assignees so suggestions are made afresh.
func unassignedCopies(instances []models.TaskInstance) []models.TaskInstance {
	copies := make([]models.TaskInstance, len(instances))
	for i, instance := range instances {
		instance.AssigneeID = nil
		instance.AssigneeName = models.Unassigned
		copies[i] = instance
	}
	return copies
}
