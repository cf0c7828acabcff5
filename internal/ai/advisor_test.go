package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/scheduling"
)

var (
	alex  = models.Member{ID: "m1", Name: "Alex", FamilyRole: models.FamilyRoleParent, WorkingHours: "Mon-Fri 9-5"}
	blair = models.Member{ID: "m2", Name: "Blair", FamilyRole: models.FamilyRoleKid, Likes: []string{"cooking"}}
)

func chatServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body payload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Messages, 2)
		require.Equal(t, RoleSystem, body.Messages[0].Role)

		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestAdvisor_Suggest(t *testing.T) {
	reply := "```json\n" + `{"suggestions":[
		{"choreId":"t2","choreTitle":"Cook","suggestedAssignee":"blair","reasoning":"Blair likes cooking"},
		{"choreId":"t1","choreTitle":"Dishes","suggestedAssignee":"Alex","reasoning":"Alex has the lightest load"}
	]}` + "\n```"
	server := chatServer(t, http.StatusOK, reply)

	advisor := NewAdvisor(NewClient(server.URL, "secret"))
	tasks := []scheduling.Task{{ID: "t1", Title: "Dishes"}, {ID: "t2", Title: "Cook"}}

	suggestions, err := advisor.Suggest(context.Background(), []models.Member{alex, blair}, tasks, nil)
	require.NoError(t, err)
	require.Len(t, suggestions, 2)

	require.Equal(t, "t1", suggestions[0].TaskID)
	require.Equal(t, "m1", *suggestions[0].AssigneeID)
	require.Equal(t, "Alex", *suggestions[0].SuggestedAssignee)

	require.Equal(t, "t2", suggestions[1].TaskID)
	require.Equal(t, "m2", *suggestions[1].AssigneeID)
	require.Equal(t, "Blair", *suggestions[1].SuggestedAssignee)
	require.Equal(t, "Blair likes cooking", suggestions[1].Reasoning)
}

func TestAdvisor_NotConfigured(t *testing.T) {
	var nilAdvisor *Advisor
	_, err := nilAdvisor.Suggest(context.Background(), nil, []scheduling.Task{{ID: "t1"}}, nil)
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewAdvisor(NewClient("", "")).Suggest(context.Background(), nil, []scheduling.Task{{ID: "t1"}}, nil)
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestAdvisor_Failures(t *testing.T) {
	tasks := []scheduling.Task{{ID: "t1", Title: "Dishes"}}

	tests := []struct {
		name      string
		status    int
		content   string
		malformed bool
	}{
		{"server error", http.StatusInternalServerError, "", false},
		{"prose", http.StatusOK, "Alex should do the dishes.", true},
		{"wrong shape", http.StatusOK, `{"assignments":[]}`, true},
		{"suggestions not a list", http.StatusOK, `{"suggestions":"Alex"}`, true},
		{"missing chore id", http.StatusOK, `{"suggestions":[{"suggestedAssignee":"Alex"}]}`, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			server := chatServer(t, test.status, test.content)
			_, err := NewAdvisor(NewClient(server.URL, "secret")).Suggest(context.Background(), []models.Member{alex}, tasks, nil)
			require.Error(t, err)
			require.Equal(t, test.malformed, errors.Is(err, ErrMalformedResponse))
		})
	}
}

func TestAdvisor_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewAdvisor(NewClient(server.URL, "secret")).Suggest(ctx, []models.Member{alex}, []scheduling.Task{{ID: "t1"}}, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestParseSuggestions(t *testing.T) {
	people := []models.Member{alex, blair}
	tasks := []scheduling.Task{
		{ID: "t1", Title: "Dishes"},
		{ID: "t2", Title: "Mow", Restricted: true, EligibleMemberIDs: []string{"m1"}},
		{ID: "t3", Title: "Trash"},
		{ID: "t4", Title: "Vacuum"},
		{ID: "t5", Title: "Laundry"},
	}
	raw := `{"suggestions":[
		{"choreId":"t1","suggestedAssignee":"Alex","reasoning":"first"},
		{"choreId":"t1","suggestedAssignee":"Blair","reasoning":"repeat"},
		{"choreId":"t2","suggestedAssignee":"Blair","reasoning":"not allowed"},
		{"choreId":"t3","suggestedAssignee":"Morgan","reasoning":"stranger"},
		{"choreId":"t4","suggestedAssignee":null,"reasoning":""},
		{"choreId":"t9","suggestedAssignee":"Alex","reasoning":"unknown chore"}
	]}`

	suggestions, err := ParseSuggestions(raw, people, tasks)
	require.NoError(t, err)
	require.Len(t, suggestions, 4)

	require.Equal(t, "m1", *suggestions[0].AssigneeID)
	require.Equal(t, "first", suggestions[0].Reasoning)

	require.True(t, suggestions[1].Error)
	require.Nil(t, suggestions[1].AssigneeID)
	require.Contains(t, suggestions[1].Reasoning, "not eligible")

	require.True(t, suggestions[2].Error)
	require.Nil(t, suggestions[2].SuggestedAssignee)

	require.True(t, suggestions[3].Error)
	require.Equal(t, scheduling.NoEligibleReason, suggestions[3].Reasoning)
}

func TestBuildPrompt(t *testing.T) {
	member := alex
	member.Availability = models.WeeklyAvailability{
		"saturday": {Available: true, From: "09:00", To: "12:00"},
		"monday":   {Available: true},
		"tuesday":  {Available: false},
	}
	member.Restrictions = "bad back"

	tasks := []scheduling.Task{
		{ID: "t1", Title: "Mow", Restricted: true, EligibleMemberIDs: []string{"m1", "gone"}},
		{ID: "t2", Title: "Cook", PreferredMemberID: "m2"},
		{ID: "t3", Title: "Sweep", Restricted: true},
	}

	prompt := BuildPrompt([]models.Member{member, blair}, tasks, scheduling.LoadTable{"m1": 1.3})
	require.Contains(t, prompt, "- Alex (role: parent, load: 1.3); working hours: Mon-Fri 9-5; available: mon, sat 09:00-12:00; restrictions: bad back")
	require.Contains(t, prompt, "- Blair (role: kid, load: 0.0); likes: cooking")
	require.Contains(t, prompt, "- id: t1, title: Mow; only: Alex\n")
	require.Contains(t, prompt, "- id: t2, title: Cook; preferred: Blair\n")
	require.Contains(t, prompt, "- id: t3, title: Sweep; only: nobody\n")
	require.True(t, strings.Index(prompt, "PEOPLE:") < strings.Index(prompt, "CHORES:"))
}

func TestStripCodeFence(t *testing.T) {
	require.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	require.Equal(t, `{"a":1}`, stripCodeFence("  {\"a\":1}  "))
}
