package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/middleware"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/services"
)

type ChoreHandler struct {
	choreService *services.ChoreService
	now          func() time.Time
}

func NewChoreHandler(choreService *services.ChoreService) *ChoreHandler {
	return &ChoreHandler{choreService: choreService, now: time.Now}
}

func (handler *ChoreHandler) GenerateWeek(w http.ResponseWriter, r *http.Request) {
	weekStart, err := weekParam(r, handler.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	generated, err := handler.choreService.GenerateWeek(r.Context(), weekStart)
	if err != nil {
		slog.Error("generating week", "week", weekStart.Format(dateLayout), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate week")
		return
	}
	writeJSON(w, http.StatusOK, generated)
}

func (handler *ChoreHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	result, err := handler.choreService.SuggestAssignments(r.Context())
	if err != nil {
		slog.Error("suggesting assignments", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate suggestions")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (handler *ChoreHandler) Assign(w http.ResponseWriter, r *http.Request) {
	suggestion, err := handler.choreService.AssignInstance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handler.writeChoreError(w, "assigning chore", err)
		return
	}
	writeJSON(w, http.StatusOK, suggestion)
}

func (handler *ChoreHandler) Complete(w http.ResponseWriter, r *http.Request) {
	if err := handler.choreService.CompleteInstance(r.Context(), chi.URLParam(r, "id")); err != nil {
		handler.writeChoreError(w, "completing chore", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"completed": true})
}

func (handler *ChoreHandler) ListWeek(w http.ResponseWriter, r *http.Request) {
	weekStart, err := weekParam(r, handler.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	instances, err := handler.choreService.WeekInstances(r.Context(), weekStart)
	if err != nil {
		slog.Error("listing chores", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list chores")
		return
	}
	if instances == nil {
		instances = []models.TaskInstance{}
	}
	writeJSON(w, http.StatusOK, instances)
}

func (handler *ChoreHandler) WeeklyStats(w http.ResponseWriter, r *http.Request) {
	weekStart, err := weekParam(r, handler.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := handler.choreService.WeeklyStats(r.Context(), weekStart)
	if err != nil {
		slog.Error("computing weekly stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (handler *ChoreHandler) CreateDefinition(w http.ResponseWriter, r *http.Request) {
	var definition models.TaskDefinition
	if err := decodeJSON(r, &definition); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	creator := middleware.GetMember(r.Context())
	created, err := handler.choreService.CreateDefinition(r.Context(), definition, creator.ID)
	if err != nil {
		handler.writeChoreError(w, "creating task definition", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (handler *ChoreHandler) ListDefinitions(w http.ResponseWriter, r *http.Request) {
	definitions, err := handler.choreService.ListDefinitions(r.Context())
	if err != nil {
		slog.Error("listing task definitions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list task definitions")
		return
	}
	if definitions == nil {
		definitions = []models.TaskDefinition{}
	}
	writeJSON(w, http.StatusOK, definitions)
}

func (handler *ChoreHandler) writeChoreError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidTaskDefinition):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "chore not found")
	case errors.Is(err, services.ErrTaskAlreadyComplete):
		writeError(w, http.StatusConflict, "chore is already completed")
	case errors.Is(err, services.ErrNoMembers):
		writeError(w, http.StatusUnprocessableEntity, services.MessageNoMembers)
	default:
		slog.Error(action, "error", err)
		writeError(w, http.StatusInternalServerError, "failed: "+action)
	}
}
