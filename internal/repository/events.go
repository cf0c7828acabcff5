package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
)

const noRecurrence = "NONE"

type EventFilter struct {
	// ActiveFrom keeps one-off events starting at or after it, plus recurring
	// events whose series has not ended before it.
	ActiveFrom  *time.Time
	StartBefore *time.Time
}

type EventRepository interface {
	FindByID(ctx context.Context, id string) (models.Event, error)
	FindAll(ctx context.Context, filter EventFilter) ([]models.Event, error)
	Create(ctx context.Context, event models.Event) (models.Event, error)
	Update(ctx context.Context, event models.Event) error
	Delete(ctx context.Context, id string) error
}

type SQLiteEventRepository struct {
	database *sql.DB
}

func NewEventRepository(database *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{database: database}
}

const eventColumns = `id, title, description, location, start_time, end_time, all_day,
	recurrence, recurrence_every, recurrence_until, created_by_member_id, created_at, updated_at`

func (repository *SQLiteEventRepository) FindByID(ctx context.Context, id string) (models.Event, error) {
	event, err := scanEvent(repository.database.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE id = ?", id,
	))
	if err != nil {
		return models.Event{}, fmt.Errorf("finding event by id: %w", err)
	}
	return event, nil
}

func (repository *SQLiteEventRepository) FindAll(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	query := "SELECT " + eventColumns + " FROM events WHERE 1=1"
	var args []interface{}

	if filter.ActiveFrom != nil {
		query += ` AND (start_time >= ? OR (recurrence != ? AND (recurrence_until IS NULL OR recurrence_until >= ?)))`
		args = append(args, *filter.ActiveFrom, noRecurrence, *filter.ActiveFrom)
	}
	if filter.StartBefore != nil {
		query += " AND start_time <= ?"
		args = append(args, *filter.StartBefore)
	}

	query += " ORDER BY start_time ASC"

	rows, err := repository.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("finding events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (repository *SQLiteEventRepository) Create(ctx context.Context, event models.Event) (models.Event, error) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.RecurrenceEvery <= 0 {
		event.RecurrenceEvery = 1
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO events ("+eventColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		event.ID, event.Title, event.Description, event.Location,
		event.StartTime, event.EndTime, event.AllDay,
		recurrenceColumn(event.Recurrence), event.RecurrenceEvery, event.RecurrenceUntil,
		nullString(event.CreatedByMemberID), event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return models.Event{}, fmt.Errorf("creating event: %w", err)
	}
	return event, nil
}

func (repository *SQLiteEventRepository) Update(ctx context.Context, event models.Event) error {
	if event.RecurrenceEvery <= 0 {
		event.RecurrenceEvery = 1
	}
	_, err := repository.database.ExecContext(ctx,
		`UPDATE events SET title = ?, description = ?, location = ?,
			start_time = ?, end_time = ?, all_day = ?,
			recurrence = ?, recurrence_every = ?, recurrence_until = ?, updated_at = ?
		WHERE id = ?`,
		event.Title, event.Description, event.Location,
		event.StartTime, event.EndTime, event.AllDay,
		recurrenceColumn(event.Recurrence), event.RecurrenceEvery, event.RecurrenceUntil, time.Now(),
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("updating event: %w", err)
	}
	return nil
}

func (repository *SQLiteEventRepository) Delete(ctx context.Context, id string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return nil
}

func recurrenceColumn(pattern models.RecurrencePattern) string {
	if pattern == nil {
		return noRecurrence
	}
	return pattern.String()
}

func scanEvent(row rowScanner) (models.Event, error) {
	var event models.Event
	var recurrence string
	var createdBy sql.NullString
	if err := row.Scan(
		&event.ID, &event.Title, &event.Description, &event.Location,
		&event.StartTime, &event.EndTime, &event.AllDay,
		&recurrence, &event.RecurrenceEvery, &event.RecurrenceUntil,
		&createdBy, &event.CreatedAt, &event.UpdatedAt,
	); err != nil {
		return models.Event{}, err
	}

	pattern, err := models.ParsePattern(recurrence)
	if err != nil {
		return models.Event{}, err
	}
	event.Recurrence = pattern
	event.CreatedByMemberID = createdBy.String
	return event, nil
}
