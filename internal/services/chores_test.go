package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/ai"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/metrics"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/repository"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/scheduling"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/services"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/testutil"
)

var weekOf8Jan = time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

type fakeAdvisor struct {
	configured bool
	calls      int
	suggest    func(ctx context.Context, people []models.Member, tasks []scheduling.Task) ([]models.AssignmentSuggestion, error)
}

func (advisor *fakeAdvisor) Configured() bool {
	return advisor.configured
}

func (advisor *fakeAdvisor) Suggest(ctx context.Context, people []models.Member, tasks []scheduling.Task, _ scheduling.LoadTable) ([]models.AssignmentSuggestion, error) {
	advisor.calls++
	return advisor.suggest(ctx, people, tasks)
}

// namesEveryone suggests name for every task.
func namesEveryone(name string) func(context.Context, []models.Member, []scheduling.Task) ([]models.AssignmentSuggestion, error) {
	return func(_ context.Context, people []models.Member, tasks []scheduling.Task) ([]models.AssignmentSuggestion, error) {
		var suggestions []models.AssignmentSuggestion
		for _, task := range tasks {
			for _, member := range people {
				if member.Name != name {
					continue
				}
				id, memberName := member.ID, member.Name
				suggestions = append(suggestions, models.AssignmentSuggestion{
					TaskID: task.ID, TaskTitle: task.Title,
					AssigneeID: &id, SuggestedAssignee: &memberName,
					Reasoning: "asked for it",
				})
			}
		}
		return suggestions, nil
	}
}

type recordingCollector struct {
	sources   map[string]int
	aiResults []string
	deadEnds  int
	created   int
	assigned  int
	completed int
}

func newRecordingCollector() *recordingCollector {
	return &recordingCollector{sources: make(map[string]int)}
}

func (collector *recordingCollector) RecordSuggestions(source string, count int) {
	collector.sources[source] += count
}

func (collector *recordingCollector) ObserveAIRequest(result string, _ float64) {
	collector.aiResults = append(collector.aiResults, result)
}

func (collector *recordingCollector) RecordEligibilityDeadEnd() {
	collector.deadEnds++
}

func (collector *recordingCollector) RecordWeekGenerated(created, assigned int) {
	collector.created += created
	collector.assigned += assigned
}

func (collector *recordingCollector) RecordTaskCompleted() {
	collector.completed++
}

type choreFixture struct {
	service     *services.ChoreService
	members     *repository.SQLiteMemberRepository
	definitions *repository.SQLiteTaskDefinitionRepository
	instances   *repository.SQLiteTaskInstanceRepository
	collector   *recordingCollector
}

func setupChoreService(t *testing.T, advisor services.SuggestionAdvisor, aiTimeout time.Duration) choreFixture {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	fixture := choreFixture{
		members:     repository.NewMemberRepository(db),
		definitions: repository.NewTaskDefinitionRepository(db),
		instances:   repository.NewTaskInstanceRepository(db),
		collector:   newRecordingCollector(),
	}
	fixture.service = services.NewChoreService(
		fixture.members, fixture.definitions, fixture.instances,
		advisor, scheduling.DefaultTieBreakPolicy(), fixture.collector, aiTimeout,
	)
	return fixture
}

func (fixture choreFixture) addMember(t *testing.T, name string, role models.FamilyRole) models.Member {
	t.Helper()
	member, err := fixture.members.Create(context.Background(), models.Member{Name: name, FamilyRole: role})
	if err != nil {
		t.Fatalf("creating member %s: %v", name, err)
	}
	return member
}

func (fixture choreFixture) addWeekly(t *testing.T, title string, perWeek int, mode models.AssignmentMode) models.TaskDefinition {
	t.Helper()
	definition, err := fixture.definitions.Create(context.Background(), models.TaskDefinition{
		Title:              title,
		IsRecurring:        true,
		Frequency:          models.FrequencyWeekly,
		OccurrencesPerWeek: &perWeek,
		AssignmentMode:     mode,
	})
	if err != nil {
		t.Fatalf("creating definition %s: %v", title, err)
	}
	return definition
}

func assigneeNames(suggestions []models.AssignmentSuggestion) []string {
	names := make([]string, len(suggestions))
	for i, suggestion := range suggestions {
		if suggestion.SuggestedAssignee != nil {
			names[i] = *suggestion.SuggestedAssignee
		}
	}
	return names
}

func equalNames(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestChoreService_GenerateWeek_FallbackIsFair(t *testing.T) {
	fixture := setupChoreService(t, nil, 0)
	ctx := context.Background()

	fixture.addMember(t, "Avery", models.FamilyRoleParent)
	fixture.addMember(t, "Bo", models.FamilyRoleKid)
	fixture.addWeekly(t, "Dishes", 3, models.AssignmentModeAI)

	result, err := fixture.service.GenerateWeek(ctx, weekOf8Jan)
	if err != nil {
		t.Fatalf("generating week: %v", err)
	}
	if result.Created != 3 {
		t.Fatalf("expected 3 created, got %d", result.Created)
	}
	if got := assigneeNames(result.Assignments); !equalNames(got, []string{"Avery", "Bo", "Avery"}) {
		t.Errorf("expected Avery, Bo, Avery, got %v", got)
	}

	stored, err := fixture.instances.FindAll(ctx, repository.TaskInstanceFilter{})
	if err != nil {
		t.Fatalf("finding instances: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("expected 3 stored instances, got %d", len(stored))
	}
	wantDays := []string{"Monday", "Wednesday", "Saturday"}
	for i, instance := range stored {
		if instance.Weekday != wantDays[i] {
			t.Errorf("instance %d: expected %s, got %s", i, wantDays[i], instance.Weekday)
		}
		if instance.AssigneeID == nil {
			t.Errorf("instance %d: expected an assignee", i)
		}
	}

	if fixture.collector.created != 3 || fixture.collector.assigned != 3 {
		t.Errorf("expected 3 created and assigned in metrics, got %d/%d", fixture.collector.created, fixture.collector.assigned)
	}
	if fixture.collector.sources[metrics.SourceFallback] != 3 {
		t.Errorf("expected 3 fallback suggestions, got %d", fixture.collector.sources[metrics.SourceFallback])
	}
}

func TestChoreService_GenerateWeek_RegenerationKeepsCompleted(t *testing.T) {
	fixture := setupChoreService(t, nil, 0)
	ctx := context.Background()

	fixture.addMember(t, "Avery", models.FamilyRoleParent)
	fixture.addWeekly(t, "Trash", 2, models.AssignmentModeAI)

	first, err := fixture.service.GenerateWeek(ctx, weekOf8Jan)
	if err != nil {
		t.Fatalf("first generation: %v", err)
	}
	if err := fixture.service.CompleteInstance(ctx, first.Assignments[0].TaskID); err != nil {
		t.Fatalf("completing: %v", err)
	}

	second, err := fixture.service.GenerateWeek(ctx, weekOf8Jan)
	if err != nil {
		t.Fatalf("second generation: %v", err)
	}
	if second.Created != 2 {
		t.Errorf("expected 2 created, got %d", second.Created)
	}

	all, err := fixture.instances.FindAll(ctx, repository.TaskInstanceFilter{})
	if err != nil {
		t.Fatalf("finding instances: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 1 completed plus 2 regenerated, got %d", len(all))
	}
	if all[0].ID != first.Assignments[0].TaskID || !all[0].Completed {
		t.Errorf("expected the completed instance to survive, got %+v", all[0])
	}
}

func TestChoreService_GenerateWeek_NothingToPlan(t *testing.T) {
	fixture := setupChoreService(t, nil, 0)

	result, err := fixture.service.GenerateWeek(context.Background(), weekOf8Jan)
	if err != nil {
		t.Fatalf("generating week: %v", err)
	}
	if result.Created != 0 || len(result.Assignments) != 0 {
		t.Errorf("expected an empty generation, got %+v", result)
	}
}

func TestChoreService_GenerateWeek_RotationContinuesAcrossWeeks(t *testing.T) {
	fixture := setupChoreService(t, nil, 0)
	ctx := context.Background()

	fixture.addMember(t, "Avery", models.FamilyRoleParent)
	fixture.addMember(t, "Bo", models.FamilyRoleParent)
	fixture.addMember(t, "Cam", models.FamilyRoleParent)
	fixture.addWeekly(t, "Laundry", 2, models.AssignmentModeRotate)

	first, err := fixture.service.GenerateWeek(ctx, weekOf8Jan)
	if err != nil {
		t.Fatalf("first week: %v", err)
	}
	if got := assigneeNames(first.Assignments); !equalNames(got, []string{"Avery", "Bo"}) {
		t.Fatalf("expected Avery, Bo, got %v", got)
	}
	for _, suggestion := range first.Assignments {
		if err := fixture.service.CompleteInstance(ctx, suggestion.TaskID); err != nil {
			t.Fatalf("completing: %v", err)
		}
	}

	second, err := fixture.service.GenerateWeek(ctx, weekOf8Jan.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("second week: %v", err)
	}
	if got := assigneeNames(second.Assignments); !equalNames(got, []string{"Cam", "Avery"}) {
		t.Errorf("expected Cam, Avery, got %v", got)
	}
	if second.Assignments[0].Reasoning != "Cam is next in the rotation after Bo" {
		t.Errorf("unexpected reasoning %q", second.Assignments[0].Reasoning)
	}
}

func TestChoreService_GenerateWeek_UsesAdvisor(t *testing.T) {
	advisor := &fakeAdvisor{configured: true, suggest: namesEveryone("Bo")}
	fixture := setupChoreService(t, advisor, time.Second)
	ctx := context.Background()

	fixture.addMember(t, "Avery", models.FamilyRoleParent)
	fixture.addMember(t, "Bo", models.FamilyRoleKid)
	fixture.addWeekly(t, "Dishes", 2, models.AssignmentModeAI)

	result, err := fixture.service.GenerateWeek(ctx, weekOf8Jan)
	if err != nil {
		t.Fatalf("generating week: %v", err)
	}
	if advisor.calls != 1 {
		t.Errorf("expected one advisor call, got %d", advisor.calls)
	}
	if got := assigneeNames(result.Assignments); !equalNames(got, []string{"Bo", "Bo"}) {
		t.Errorf("expected Bo twice, got %v", got)
	}
	if len(fixture.collector.aiResults) != 1 || fixture.collector.aiResults[0] != metrics.ResultSuccess {
		t.Errorf("expected one successful AI request, got %v", fixture.collector.aiResults)
	}
}

func TestChoreService_GenerateWeek_AdvisorFailureFallsBack(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		result string
	}{
		{"malformed", ai.ErrMalformedResponse, metrics.ResultMalformed},
		{"server error", errors.New("status 502"), metrics.ResultError},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			advisor := &fakeAdvisor{configured: true, suggest: func(context.Context, []models.Member, []scheduling.Task) ([]models.AssignmentSuggestion, error) {
				return nil, test.err
			}}
			fixture := setupChoreService(t, advisor, time.Second)

			fixture.addMember(t, "Avery", models.FamilyRoleParent)
			fixture.addWeekly(t, "Dishes", 1, models.AssignmentModeAI)

			result, err := fixture.service.GenerateWeek(context.Background(), weekOf8Jan)
			if err != nil {
				t.Fatalf("generating week: %v", err)
			}
			if got := assigneeNames(result.Assignments); !equalNames(got, []string{"Avery"}) {
				t.Errorf("expected fallback to pick Avery, got %v", got)
			}
			if len(fixture.collector.aiResults) != 1 || fixture.collector.aiResults[0] != test.result {
				t.Errorf("expected AI result %s, got %v", test.result, fixture.collector.aiResults)
			}
		})
	}
}

func TestChoreService_GenerateWeek_AdvisorTimeoutFallsBack(t *testing.T) {
	advisor := &fakeAdvisor{configured: true, suggest: func(ctx context.Context, _ []models.Member, _ []scheduling.Task) ([]models.AssignmentSuggestion, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	fixture := setupChoreService(t, advisor, 20*time.Millisecond)

	fixture.addMember(t, "Avery", models.FamilyRoleParent)
	fixture.addWeekly(t, "Dishes", 1, models.AssignmentModeAI)

	result, err := fixture.service.GenerateWeek(context.Background(), weekOf8Jan)
	if err != nil {
		t.Fatalf("generating week: %v", err)
	}
	if len(result.Assignments) != 1 || !result.Assignments[0].Named() {
		t.Errorf("expected the fallback to assign, got %+v", result.Assignments)
	}
}

func TestChoreService_GenerateWeek_UnusableAdviceIsFilled(t *testing.T) {
	advisor := &fakeAdvisor{configured: true, suggest: func(_ context.Context, _ []models.Member, tasks []scheduling.Task) ([]models.AssignmentSuggestion, error) {
		// first task names a stranger, second task is left out
		return []models.AssignmentSuggestion{{
			TaskID: tasks[0].ID, TaskTitle: tasks[0].Title,
			Reasoning: "Zed is not a member of this family", Error: true,
		}}, nil
	}}
	fixture := setupChoreService(t, advisor, time.Second)

	fixture.addMember(t, "Avery", models.FamilyRoleParent)
	fixture.addWeekly(t, "Dishes", 2, models.AssignmentModeAI)

	result, err := fixture.service.GenerateWeek(context.Background(), weekOf8Jan)
	if err != nil {
		t.Fatalf("generating week: %v", err)
	}
	for i, suggestion := range result.Assignments {
		if !suggestion.Named() || suggestion.Error {
			t.Errorf("assignment %d: expected a fallback pick, got %+v", i, suggestion)
		}
	}
}

func TestChoreService_GenerateWeek_EligibilityDeadEnd(t *testing.T) {
	fixture := setupChoreService(t, nil, 0)
	ctx := context.Background()

	avery := fixture.addMember(t, "Avery", models.FamilyRoleParent)
	leaving := fixture.addMember(t, "Leaving", models.FamilyRoleKid)

	perWeek := 1
	if _, err := fixture.definitions.Create(ctx, models.TaskDefinition{
		Title: "Feed fish", IsRecurring: true, Frequency: models.FrequencyWeekly, OccurrencesPerWeek: &perWeek,
		Eligibility: models.EligibilitySelected, EligibleMemberIDs: []string{leaving.ID},
	}); err != nil {
		t.Fatalf("creating definition: %v", err)
	}
	fixture.addWeekly(t, "Dishes", 1, models.AssignmentModeAI)
	if err := fixture.members.Delete(ctx, leaving.ID); err != nil {
		t.Fatalf("deleting member: %v", err)
	}

	result, err := fixture.service.GenerateWeek(ctx, weekOf8Jan)
	if err != nil {
		t.Fatalf("generating week: %v", err)
	}
	if len(result.Assignments) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(result.Assignments))
	}

	deadEnd := result.Assignments[0]
	if !deadEnd.Error || deadEnd.SuggestedAssignee != nil || deadEnd.Reasoning != scheduling.NoEligibleReason {
		t.Errorf("expected a dead end for Feed fish, got %+v", deadEnd)
	}
	if result.Assignments[1].AssigneeID == nil || *result.Assignments[1].AssigneeID != avery.ID {
		t.Errorf("expected Dishes to go to Avery, got %+v", result.Assignments[1])
	}

	stored, err := fixture.instances.FindByID(ctx, deadEnd.TaskID)
	if err != nil {
		t.Fatalf("finding instance: %v", err)
	}
	if stored.AssigneeName != models.Unassigned {
		t.Errorf("expected dead end to stay unassigned, got %q", stored.AssigneeName)
	}
	if fixture.collector.deadEnds != 1 {
		t.Errorf("expected 1 dead end recorded, got %d", fixture.collector.deadEnds)
	}
}

func TestChoreService_SuggestAssignments_Messages(t *testing.T) {
	fixture := setupChoreService(t, nil, 0)
	ctx := context.Background()

	result, err := fixture.service.SuggestAssignments(ctx)
	if err != nil {
		t.Fatalf("suggesting: %v", err)
	}
	if result.Message != services.MessageNoMembers {
		t.Errorf("expected no-members message, got %+v", result)
	}

	fixture.addMember(t, "Avery", models.FamilyRoleParent)
	result, err = fixture.service.SuggestAssignments(ctx)
	if err != nil {
		t.Fatalf("suggesting: %v", err)
	}
	if result.Message != services.MessageNoTasks {
		t.Errorf("expected no-tasks message, got %+v", result)
	}
}

func TestChoreService_SuggestAssignments_DoesNotWrite(t *testing.T) {
	advisor := &fakeAdvisor{configured: true, suggest: namesEveryone("Bo")}
	fixture := setupChoreService(t, advisor, time.Second)
	ctx := context.Background()

	fixture.addMember(t, "Avery", models.FamilyRoleParent)
	fixture.addMember(t, "Bo", models.FamilyRoleTeen)
	instance, err := fixture.instances.Create(ctx, models.TaskInstance{Title: "Sweep porch"})
	if err != nil {
		t.Fatalf("creating instance: %v", err)
	}

	result, err := fixture.service.SuggestAssignments(ctx)
	if err != nil {
		t.Fatalf("suggesting: %v", err)
	}
	if result.Source != metrics.SourceAI {
		t.Errorf("expected source ai, got %q", result.Source)
	}
	if got := assigneeNames(result.Suggestions); !equalNames(got, []string{"Bo"}) {
		t.Errorf("expected Bo, got %v", got)
	}

	stored, err := fixture.instances.FindByID(ctx, instance.ID)
	if err != nil {
		t.Fatalf("finding instance: %v", err)
	}
	if stored.AssigneeID != nil {
		t.Error("expected suggestions not to be written")
	}

	advisor.configured = false
	result, err = fixture.service.SuggestAssignments(ctx)
	if err != nil {
		t.Fatalf("suggesting: %v", err)
	}
	if result.Source != metrics.SourceFallback {
		t.Errorf("expected source fallback, got %q", result.Source)
	}
}

func TestChoreService_AssignInstance(t *testing.T) {
	fixture := setupChoreService(t, nil, 0)
	ctx := context.Background()

	fixture.addMember(t, "Avery", models.FamilyRoleParent)
	bo := fixture.addMember(t, "Bo", models.FamilyRoleKid)

	definition, err := fixture.definitions.Create(ctx, models.TaskDefinition{
		Title: "Walk dog", AssignmentMode: models.AssignmentModeSpecific, PreferredAssigneeID: &bo.ID,
	})
	if err != nil {
		t.Fatalf("creating definition: %v", err)
	}
	instance, err := fixture.instances.Create(ctx, models.TaskInstance{Title: "Walk dog", DefinitionID: &definition.ID})
	if err != nil {
		t.Fatalf("creating instance: %v", err)
	}

	suggestion, err := fixture.service.AssignInstance(ctx, instance.ID)
	if err != nil {
		t.Fatalf("assigning: %v", err)
	}
	if suggestion.AssigneeID == nil || *suggestion.AssigneeID != bo.ID {
		t.Fatalf("expected Bo, got %+v", suggestion)
	}

	stored, _ := fixture.instances.FindByID(ctx, instance.ID)
	if stored.AssigneeName != "Bo" {
		t.Errorf("expected Bo stored, got %q", stored.AssigneeName)
	}

	if _, err := fixture.service.AssignInstance(ctx, "missing"); !errors.Is(err, services.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestChoreService_AssignInstance_NoMembers(t *testing.T) {
	fixture := setupChoreService(t, nil, 0)
	ctx := context.Background()

	instance, _ := fixture.instances.Create(ctx, models.TaskInstance{Title: "Dust"})
	if _, err := fixture.service.AssignInstance(ctx, instance.ID); !errors.Is(err, services.ErrNoMembers) {
		t.Errorf("expected ErrNoMembers, got %v", err)
	}
}

func TestChoreService_CompleteInstance(t *testing.T) {
	fixture := setupChoreService(t, nil, 0)
	ctx := context.Background()

	instance, _ := fixture.instances.Create(ctx, models.TaskInstance{Title: "Dust"})

	if err := fixture.service.CompleteInstance(ctx, instance.ID); err != nil {
		t.Fatalf("completing: %v", err)
	}
	if err := fixture.service.CompleteInstance(ctx, instance.ID); !errors.Is(err, services.ErrTaskAlreadyComplete) {
		t.Errorf("expected ErrTaskAlreadyComplete, got %v", err)
	}
	if _, err := fixture.service.AssignInstance(ctx, instance.ID); !errors.Is(err, services.ErrTaskAlreadyComplete) {
		t.Errorf("expected ErrTaskAlreadyComplete from assign, got %v", err)
	}
	if fixture.collector.completed != 1 {
		t.Errorf("expected 1 completion recorded, got %d", fixture.collector.completed)
	}
}

func TestChoreService_WeeklyStatsAndInstances(t *testing.T) {
	fixture := setupChoreService(t, nil, 0)
	ctx := context.Background()

	fixture.addMember(t, "Avery", models.FamilyRoleParent)
	fixture.addMember(t, "Bo", models.FamilyRoleKid)
	fixture.addWeekly(t, "Dishes", 4, models.AssignmentModeAI)

	generated, err := fixture.service.GenerateWeek(ctx, weekOf8Jan)
	if err != nil {
		t.Fatalf("generating: %v", err)
	}
	if err := fixture.service.CompleteInstance(ctx, generated.Assignments[0].TaskID); err != nil {
		t.Fatalf("completing: %v", err)
	}

	week, err := fixture.service.WeekInstances(ctx, weekOf8Jan.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("listing week: %v", err)
	}
	if len(week) != 4 {
		t.Errorf("expected 4 instances this week, got %d", len(week))
	}

	summary, err := fixture.service.WeeklyStats(ctx, weekOf8Jan)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if summary.Total != 4 || summary.Completed != 1 || summary.Unassigned != 0 {
		t.Errorf("unexpected totals %+v", summary)
	}
	if len(summary.Members) != 2 || summary.Members[0].Assigned != 2 || summary.Members[1].Assigned != 2 {
		t.Errorf("expected an even split, got %+v", summary.Members)
	}
}
