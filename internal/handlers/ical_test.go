package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
)

func TestICalHandler_Feed(t *testing.T) {
	fixture := setupAPI(t)
	ctx := context.Background()
	fixture.icalHandler.now = func() time.Time { return time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC) }

	if recorder := fixture.do(t, http.MethodPost, "/api/events", map[string]interface{}{
		"title": "Piano lesson", "startTime": "2025-01-12T10:00:00Z",
	}); recorder.Code != http.StatusCreated {
		t.Fatalf("creating event: %d %s", recorder.Code, recorder.Body.String())
	}

	feedToken, err := fixture.tokenService.Issue(ctx, "Phone", models.TokenScopeICal, fixture.admin.ID, 0)
	if err != nil {
		t.Fatalf("issuing feed token: %v", err)
	}

	recorder := fixture.do(t, http.MethodGet, "/ical?token="+feedToken.Token, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if contentType := recorder.Header().Get("Content-Type"); !strings.HasPrefix(contentType, "text/calendar") {
		t.Errorf("expected text/calendar, got %q", contentType)
	}
	body := recorder.Body.String()
	if !strings.Contains(body, "BEGIN:VCALENDAR") || !strings.Contains(body, "SUMMARY:Piano lesson") {
		t.Errorf("expected the event in the feed:\n%s", body)
	}
}

func TestICalHandler_RejectsApiScopedToken(t *testing.T) {
	fixture := setupAPI(t)

	apiToken, err := fixture.tokenService.Issue(context.Background(), "Script", models.TokenScopeAPI, fixture.admin.ID, 0)
	if err != nil {
		t.Fatalf("issuing api token: %v", err)
	}

	for _, target := range []string{"/ical", "/ical?token=nope", "/ical?token=" + apiToken.Token} {
		if recorder := fixture.do(t, http.MethodGet, target, nil); recorder.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", target, recorder.Code)
		}
	}
}
