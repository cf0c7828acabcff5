package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/scheduling"
)

const dateLayout = "2006-01-02"

var errBadRequestBody = errors.New("invalid request body")

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, target interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: %v", errBadRequestBody, err)
	}
	return nil
}

// weekParam reads ?week=YYYY-MM-DD in local time and returns the Monday of
// that week. Without the parameter it is the current week.
func weekParam(r *http.Request, now time.Time) (time.Time, error) {
	value := r.URL.Query().Get("week")
	if value == "" {
		return scheduling.WeekStart(now), nil
	}
	day, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("week must be YYYY-MM-DD")
	}
	return scheduling.WeekStart(day), nil
}

// dateParam reads a YYYY-MM-DD query parameter in local time.
func dateParam(r *http.Request, name string, fallback time.Time) (time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return fallback, nil
	}
	day, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD", name)
	}
	return day, nil
}
