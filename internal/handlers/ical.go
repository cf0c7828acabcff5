package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/services"
)

const (
	icalLookBack  = 30
	icalLookAhead = 180
)

type ICalHandler struct {
	eventService *services.EventService
	tokenService *services.TokenService
	now          func() time.Time
}

func NewICalHandler(eventService *services.EventService, tokenService *services.TokenService) *ICalHandler {
	return &ICalHandler{eventService: eventService, tokenService: tokenService, now: time.Now}
}

// Feed serves the family calendar to subscribers holding an ical-scoped
// token in ?token=.
func (handler *ICalHandler) Feed(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if _, err := handler.tokenService.Authenticate(r.Context(), token, models.TokenScopeICal); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	today := startOfDay(handler.now())
	feed, err := handler.eventService.Calendar(r.Context(), today.AddDate(0, 0, -icalLookBack), today.AddDate(0, 0, icalLookAhead))
	if err != nil {
		slog.Error("rendering ical feed", "error", err)
		http.Error(w, "Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=family-planner.ics")
	w.Write([]byte(feed))
}
