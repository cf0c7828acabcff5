package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/repository"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/scheduling"
)

var ErrInvalidEvent = errors.New("invalid event")

// EventOccurrence is one concrete appearance of an event on the calendar.
type EventOccurrence struct {
	EventID  string     `json:"eventId"`
	Title    string     `json:"title"`
	Location string     `json:"location,omitempty"`
	AllDay   bool       `json:"allDay"`
	StartsAt time.Time  `json:"startsAt"`
	EndsAt   *time.Time `json:"endsAt,omitempty"`
}

type EventService struct {
	eventRepo    repository.EventRepository
	instanceRepo repository.TaskInstanceRepository
	settingsRepo repository.SettingsRepository
}

func NewEventService(
	eventRepo repository.EventRepository,
	instanceRepo repository.TaskInstanceRepository,
	settingsRepo repository.SettingsRepository,
) *EventService {
	return &EventService{
		eventRepo:    eventRepo,
		instanceRepo: instanceRepo,
		settingsRepo: settingsRepo,
	}
}

func (service *EventService) Create(ctx context.Context, event models.Event, creatorID string) (models.Event, error) {
	event.Title = strings.TrimSpace(event.Title)
	if event.Title == "" {
		return models.Event{}, fmt.Errorf("%w: title is required", ErrInvalidEvent)
	}
	if event.StartTime.IsZero() {
		return models.Event{}, fmt.Errorf("%w: start time is required", ErrInvalidEvent)
	}
	if event.EndTime != nil && event.EndTime.Before(event.StartTime) {
		return models.Event{}, fmt.Errorf("%w: end time is before start time", ErrInvalidEvent)
	}
	if event.RecurrenceEvery < 1 {
		event.RecurrenceEvery = 1
	}
	if event.Recurrence == nil {
		event.RecurrenceUntil = nil
	} else if event.RecurrenceUntil != nil && event.RecurrenceUntil.Before(event.StartTime) {
		return models.Event{}, fmt.Errorf("%w: recurrence ends before the event starts", ErrInvalidEvent)
	}

	event.CreatedByMemberID = creatorID
	created, err := service.eventRepo.Create(ctx, event)
	if err != nil {
		return models.Event{}, fmt.Errorf("creating event: %w", err)
	}
	return created, nil
}

// ExpandRange returns every occurrence starting in [from, to], earliest
// first.
func (service *EventService) ExpandRange(ctx context.Context, from, to time.Time) ([]EventOccurrence, error) {
	events, err := service.eventRepo.FindAll(ctx, repository.EventFilter{ActiveFrom: &from, StartBefore: &to})
	if err != nil {
		return nil, fmt.Errorf("finding events: %w", err)
	}

	occurrences := make([]EventOccurrence, 0, len(events))
	for _, event := range events {
		rule := event.Rule()
		for _, occurrence := range scheduling.Expand(&rule, from, to) {
			occurrences = append(occurrences, EventOccurrence{
				EventID:  event.ID,
				Title:    event.Title,
				Location: event.Location,
				AllDay:   event.AllDay,
				StartsAt: occurrence.StartsAt,
				EndsAt:   occurrence.EndsAt,
			})
		}
	}

	sort.SliceStable(occurrences, func(i, j int) bool {
		return occurrences[i].StartsAt.Before(occurrences[j].StartsAt)
	})
	return occurrences, nil
}

// Calendar renders the expanded events in [from, to] and the chores due in
// that range as an iCalendar feed.
func (service *EventService) Calendar(ctx context.Context, from, to time.Time) (string, error) {
	occurrences, err := service.ExpandRange(ctx, from, to)
	if err != nil {
		return "", err
	}

	instances, err := service.instanceRepo.FindAll(ctx, repository.TaskInstanceFilter{DueFrom: &from, DueBefore: &to})
	if err != nil {
		return "", fmt.Errorf("finding chores for calendar: %w", err)
	}

	familyName, err := service.settingsRepo.GetOrDefault(ctx, repository.SettingFamilyName, "Family")
	if err != nil {
		return "", fmt.Errorf("getting family name: %w", err)
	}
	calendarName := familyName + " Planner"

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//" + calendarName + "//EN")
	cal.SetXWRCalName(calendarName)

	stamp := time.Now()
	for _, occurrence := range occurrences {
		event := cal.AddEvent(fmt.Sprintf("%s-%s@family-planner", occurrence.EventID, occurrence.StartsAt.UTC().Format("20060102T150405Z")))
		event.SetDtStampTime(stamp)
		event.SetSummary(occurrence.Title)
		if occurrence.Location != "" {
			event.SetLocation(occurrence.Location)
		}
		if occurrence.AllDay {
			event.SetAllDayStartAt(occurrence.StartsAt)
			end := occurrence.StartsAt.AddDate(0, 0, 1)
			if occurrence.EndsAt != nil && occurrence.EndsAt.After(end) {
				end = *occurrence.EndsAt
			}
			event.SetAllDayEndAt(end)
			continue
		}
		event.SetStartAt(occurrence.StartsAt)
		if occurrence.EndsAt != nil {
			event.SetEndAt(*occurrence.EndsAt)
		}
	}

	for _, instance := range instances {
		if instance.DueDate == nil {
			continue
		}
		event := cal.AddEvent(instance.ID + "@family-planner")
		event.SetDtStampTime(stamp)
		event.SetSummary("[Chore] " + instance.Title)
		description := "Assigned to: " + instance.AssigneeName
		if instance.Completed {
			description += " (done)"
		}
		event.SetDescription(description)
		event.SetAllDayStartAt(*instance.DueDate)
		event.SetAllDayEndAt(instance.DueDate.AddDate(0, 0, 1))
	}

	return cal.Serialize(), nil
}
