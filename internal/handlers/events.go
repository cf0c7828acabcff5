package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/middleware"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/services"
)

// defaultEventWindow is how far ahead /api/events looks without ?to=.
const defaultEventWindow = 30 * 24 * time.Hour

type EventHandler struct {
	eventService *services.EventService
	now          func() time.Time
}

func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService, now: time.Now}
}

type eventRequest struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Location           string     `json:"location"`
	StartTime          time.Time  `json:"startTime"`
	EndTime            *time.Time `json:"endTime"`
	AllDay             bool       `json:"allDay"`
	Recurrence         string     `json:"recurrence"`
	RecurrenceInterval int        `json:"recurrenceInterval"`
	RecurrenceUntil    *time.Time `json:"recurrenceUntil"`
}

type eventResponse struct {
	models.Event
	Recurrence string `json:"recurrence,omitempty"`
}

func (handler *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	today := startOfDay(handler.now())
	from, err := dateParam(r, "from", today)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := dateParam(r, "to", from.Add(defaultEventWindow))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// ?to= names a whole day.
	to = endOfDay(to)
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "to must not be before from")
		return
	}

	occurrences, err := handler.eventService.ExpandRange(r.Context(), from, to)
	if err != nil {
		slog.Error("expanding events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	writeJSON(w, http.StatusOK, occurrences)
}

func (handler *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request eventRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pattern, err := models.ParsePattern(request.Recurrence)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := handler.eventService.Create(r.Context(), models.Event{
		Title:           request.Title,
		Description:     request.Description,
		Location:        request.Location,
		StartTime:       request.StartTime,
		EndTime:         request.EndTime,
		AllDay:          request.AllDay,
		Recurrence:      pattern,
		RecurrenceEvery: request.RecurrenceInterval,
		RecurrenceUntil: request.RecurrenceUntil,
	}, middleware.GetMember(r.Context()).ID)
	if errors.Is(err, services.ErrInvalidEvent) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("creating event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	writeJSON(w, http.StatusCreated, eventResponse{Event: created, Recurrence: models.PatternName(created.Recurrence)})
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
