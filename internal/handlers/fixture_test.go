package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/middleware"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/repository"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/scheduling"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/services"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/testutil"
)

type apiFixture struct {
	router       chi.Router
	admin        models.Member
	members      *repository.SQLiteMemberRepository
	tokenService *services.TokenService
	icalHandler  *ICalHandler
}

// setupAPI wires the JSON handlers over an in-memory database with an admin
// already signed in.
func setupAPI(t *testing.T) apiFixture {
	t.Helper()
	db := testutil.NewTestDatabase(t)

	memberRepo := repository.NewMemberRepository(db)
	instanceRepo := repository.NewTaskInstanceRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	choreService := services.NewChoreService(
		memberRepo, repository.NewTaskDefinitionRepository(db), instanceRepo,
		nil, scheduling.DefaultTieBreakPolicy(), nil, 0,
	)
	eventService := services.NewEventService(repository.NewEventRepository(db), instanceRepo, settingsRepo)
	tokenService := services.NewTokenService(repository.NewAPITokenRepository(db), memberRepo)
	memberService := services.NewMemberService(memberRepo, settingsRepo)

	admin, err := memberRepo.Create(context.Background(), models.Member{Name: "Avery", FamilyRole: models.FamilyRoleParent, IsAdmin: true})
	if err != nil {
		t.Fatalf("creating admin: %v", err)
	}

	choreHandler := NewChoreHandler(choreService)
	eventHandler := NewEventHandler(eventService)
	adminHandler := NewAdminHandler(memberService, tokenService)
	icalHandler := NewICalHandler(eventService, tokenService)

	router := chi.NewRouter()
	router.Get("/ical", icalHandler.Feed)
	router.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(middleware.WithMember(req.Context(), admin)))
			})
		})

		r.Post("/api/chores/generate-week", choreHandler.GenerateWeek)
		r.Post("/api/chores/suggestions", choreHandler.Suggestions)
		r.Post("/api/chores/{id}/assign", choreHandler.Assign)
		r.Post("/api/chores/{id}/complete", choreHandler.Complete)
		r.Get("/api/chores", choreHandler.ListWeek)
		r.Get("/api/stats/weekly", choreHandler.WeeklyStats)
		r.Post("/api/task-definitions", choreHandler.CreateDefinition)
		r.Get("/api/task-definitions", choreHandler.ListDefinitions)

		r.Get("/api/events", eventHandler.List)
		r.Post("/api/events", eventHandler.Create)

		r.Get("/api/members", adminHandler.ListMembers)
		r.Post("/api/members", adminHandler.CreateMember)
		r.Put("/api/members/{id}", adminHandler.UpdateMember)
		r.Delete("/api/members/{id}", adminHandler.DeleteMember)
		r.Post("/api/members/{id}/promote", adminHandler.PromoteMember)
		r.Post("/api/members/{id}/demote", adminHandler.DemoteMember)
		r.Put("/api/settings", adminHandler.UpdateSettings)
		r.Get("/api/tokens", adminHandler.ListTokens)
		r.Post("/api/tokens", adminHandler.CreateToken)
		r.Delete("/api/tokens/{id}", adminHandler.DeleteToken)
	})

	return apiFixture{
		router:       router,
		admin:        admin,
		members:      memberRepo,
		tokenService: tokenService,
		icalHandler:  icalHandler,
	}
}

func (fixture apiFixture) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			payload.WriteString(raw)
		} else if err := json.NewEncoder(&payload).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}

	request := httptest.NewRequest(method, target, &payload)
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	fixture.router.ServeHTTP(recorder, request)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.NewDecoder(recorder.Body).Decode(target); err != nil {
		t.Fatalf("decoding response %q: %v", recorder.Body.String(), err)
	}
}
