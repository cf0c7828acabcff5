package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/scheduling"
)

var weekdayKeys = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Advisor turns members and tasks into a prompt and the reply into
// suggestions keyed by member ID.
type Advisor struct {
	client *Client
}

func NewAdvisor(client *Client) *Advisor {
	return &Advisor{client: client}
}

// Configured reports whether Suggest can reach the service at all.
func (advisor *Advisor) Configured() bool {
	return advisor != nil && advisor.client.Configured()
}

// Suggest asks the service for one assignee per task. A reply that is not
// the expected JSON shape fails as a whole with ErrMalformedResponse.
// Suggestions naming someone outside people, or outside a task's eligible
// set, come back flagged with Error and no assignee.
func (advisor *Advisor) Suggest(ctx context.Context, people []models.Member, tasks []scheduling.Task, loads scheduling.LoadTable) ([]models.AssignmentSuggestion, error) {
	if !advisor.Configured() {
		return nil, ErrNotConfigured
	}
	if len(tasks) == 0 {
		return nil, nil
	}

	raw, err := advisor.client.Chat(ctx, []Message{
		{Role: RoleSystem, Content: PromptAssign},
		{Role: RoleUser, Content: BuildPrompt(people, tasks, loads)},
	})
	if err != nil {
		return nil, fmt.Errorf("requesting suggestions: %w", err)
	}
	return ParseSuggestions(raw, people, tasks)
}

// BuildPrompt lists people with their load and constraints, then the tasks
// with their eligibility and preference annotations.
func BuildPrompt(people []models.Member, tasks []scheduling.Task, loads scheduling.LoadTable) string {
	names := make(map[string]string, len(people))
	for _, member := range people {
		names[member.ID] = member.Name
	}

	var b strings.Builder
	b.WriteString("PEOPLE:\n")
	for _, member := range people {
		fmt.Fprintf(&b, "- %s (role: %s, load: %.1f)", member.Name, roleLabel(member.FamilyRole), loads[member.ID])
		if member.HasWorkingHours() {
			fmt.Fprintf(&b, "; working hours: %s", strings.TrimSpace(member.WorkingHours))
		}
		if availability := describeAvailability(member.Availability); availability != "" {
			fmt.Fprintf(&b, "; available: %s", availability)
		}
		writeList(&b, "abilities", member.Abilities)
		writeList(&b, "likes", member.Likes)
		writeList(&b, "dislikes", member.Dislikes)
		if restrictions := strings.TrimSpace(member.Restrictions); restrictions != "" {
			fmt.Fprintf(&b, "; restrictions: %s", restrictions)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nCHORES:\n")
	for _, task := range tasks {
		fmt.Fprintf(&b, "- id: %s, title: %s", task.ID, task.Title)
		if task.Restricted {
			eligible := make([]string, 0, len(task.EligibleMemberIDs))
			for _, id := range task.EligibleMemberIDs {
				if name, ok := names[id]; ok {
					eligible = append(eligible, name)
				}
			}
			if len(eligible) == 0 {
				b.WriteString("; only: nobody")
			} else {
				fmt.Fprintf(&b, "; only: %s", strings.Join(eligible, ", "))
			}
		}
		if name, ok := names[task.PreferredMemberID]; ok {
			fmt.Fprintf(&b, "; preferred: %s", name)
		}
		b.WriteString("\n")
	}
	return b.String()
}

type suggestionsEnvelope struct {
	Suggestions *[]wireSuggestion `json:"suggestions"`
}

type wireSuggestion struct {
	ChoreID           string  `json:"choreId"`
	ChoreTitle        string  `json:"choreTitle"`
	SuggestedAssignee *string `json:"suggestedAssignee"`
	Reasoning         string  `json:"reasoning"`
}

// ParseSuggestions decodes a reply into suggestions in task order. Entries for
// unknown task IDs and repeats of a task are dropped; tasks the reply leaves
// out get no suggestion.
func ParseSuggestions(raw string, people []models.Member, tasks []scheduling.Task) ([]models.AssignmentSuggestion, error) {
	var envelope suggestionsEnvelope
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if envelope.Suggestions == nil {
		return nil, fmt.Errorf("%w: missing suggestions", ErrMalformedResponse)
	}

	byTask := make(map[string]wireSuggestion, len(*envelope.Suggestions))
	for _, suggestion := range *envelope.Suggestions {
		if suggestion.ChoreID == "" {
			return nil, fmt.Errorf("%w: suggestion without choreId", ErrMalformedResponse)
		}
		if _, seen := byTask[suggestion.ChoreID]; seen {
			continue
		}
		byTask[suggestion.ChoreID] = suggestion
	}

	suggestions := make([]models.AssignmentSuggestion, 0, len(tasks))
	for _, task := range tasks {
		wire, ok := byTask[task.ID]
		if !ok {
			continue
		}
		delete(byTask, task.ID)
		suggestions = append(suggestions, resolve(wire, task, people))
	}
	for id := range byTask {
		slog.Warn("ignoring suggestion for unknown chore", "choreId", id)
	}
	return suggestions, nil
}

func resolve(wire wireSuggestion, task scheduling.Task, people []models.Member) models.AssignmentSuggestion {
	suggestion := models.AssignmentSuggestion{
		TaskID:    task.ID,
		TaskTitle: task.Title,
		Reasoning: strings.TrimSpace(wire.Reasoning),
	}

	name := ""
	if wire.SuggestedAssignee != nil {
		name = strings.TrimSpace(*wire.SuggestedAssignee)
	}
	if name == "" || strings.EqualFold(name, "null") {
		suggestion.Error = true
		if suggestion.Reasoning == "" {
			suggestion.Reasoning = scheduling.NoEligibleReason
		}
		return suggestion
	}

	for _, member := range people {
		if !strings.EqualFold(member.Name, name) {
			continue
		}
		if !task.Allows(member) {
			suggestion.Error = true
			suggestion.Reasoning = fmt.Sprintf("%s is not eligible for this chore", member.Name)
			return suggestion
		}
		id, memberName := member.ID, member.Name
		suggestion.AssigneeID = &id
		suggestion.SuggestedAssignee = &memberName
		return suggestion
	}

	suggestion.Error = true
	suggestion.Reasoning = fmt.Sprintf("%s is not a member of this family", name)
	return suggestion
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

func roleLabel(role models.FamilyRole) string {
	if role == "" {
		return "unspecified"
	}
	return string(role)
}

func writeList(b *strings.Builder, label string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(b, "; %s: %s", label, strings.Join(values, ", "))
}

func describeAvailability(availability models.WeeklyAvailability) string {
	if len(availability) == 0 {
		return ""
	}

	var days []string
	for _, key := range weekdayKeys {
		day, ok := availability[key]
		if !ok || !day.Available {
			continue
		}
		label := key[:3]
		if day.From != "" && day.To != "" {
			label += " " + day.From + "-" + day.To
		}
		days = append(days, label)
	}

	// keys outside the weekday names still get shown, in a stable order
	var extra []string
	for key, day := range availability {
		if day.Available && !isWeekdayKey(key) {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	days = append(days, extra...)

	if len(days) == 0 {
		return "none"
	}
	return strings.Join(days, ", ")
}

func isWeekdayKey(key string) bool {
	for _, weekday := range weekdayKeys {
		if key == weekday {
			return true
		}
	}
	return false
}
