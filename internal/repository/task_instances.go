package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
)

type TaskInstanceFilter struct {
	DueFrom    *time.Time
	DueBefore  *time.Time
	Completed  *bool
	Titles     []string
	AssigneeID *string
}

type TaskInstanceRepository interface {
	FindByID(ctx context.Context, id string) (models.TaskInstance, error)
	FindAll(ctx context.Context, filter TaskInstanceFilter) ([]models.TaskInstance, error)
	Create(ctx context.Context, instance models.TaskInstance) (models.TaskInstance, error)
	ReplaceIncomplete(ctx context.Context, titles []string, instances []models.TaskInstance) ([]models.TaskInstance, error)
	Assign(ctx context.Context, id string, assigneeID *string, assigneeName string) error
	Complete(ctx context.Context, id string, completedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

type SQLiteTaskInstanceRepository struct {
	database *sql.DB

	mutex   sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewTaskInstanceRepository(database *sql.DB) *SQLiteTaskInstanceRepository {
	return &SQLiteTaskInstanceRepository{
		database: database,
		entropy:  ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

// newID returns a ULID, so ids created later always sort after earlier ones.
func (repository *SQLiteTaskInstanceRepository) newID(now time.Time) string {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), repository.entropy).String()
}

const taskInstanceColumns = `id, definition_id, title, weekday, due_date, completed, completed_at,
	assignee_id, assignee_name, created_at`

func (repository *SQLiteTaskInstanceRepository) FindByID(ctx context.Context, id string) (models.TaskInstance, error) {
	instance, err := scanTaskInstance(repository.database.QueryRowContext(ctx,
		"SELECT "+taskInstanceColumns+" FROM task_instances WHERE id = ?", id,
	))
	if err != nil {
		return models.TaskInstance{}, fmt.Errorf("finding task instance by id: %w", err)
	}
	return instance, nil
}

// FindAll returns matching instances in creation order, which is the
// chronological order rotation relies on.
func (repository *SQLiteTaskInstanceRepository) FindAll(ctx context.Context, filter TaskInstanceFilter) ([]models.TaskInstance, error) {
	query := "SELECT " + taskInstanceColumns + " FROM task_instances WHERE 1=1"
	var args []interface{}

	if filter.DueFrom != nil {
		query += " AND due_date >= ?"
		args = append(args, *filter.DueFrom)
	}
	if filter.DueBefore != nil {
		query += " AND due_date < ?"
		args = append(args, *filter.DueBefore)
	}
	if filter.Completed != nil {
		query += " AND completed = ?"
		args = append(args, *filter.Completed)
	}
	if len(filter.Titles) > 0 {
		query += " AND title IN (" + placeholders(len(filter.Titles)) + ")"
		for _, title := range filter.Titles {
			args = append(args, title)
		}
	}
	if filter.AssigneeID != nil {
		query += " AND assignee_id = ?"
		args = append(args, *filter.AssigneeID)
	}
	query += " ORDER BY created_at, id"

	rows, err := repository.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("finding task instances: %w", err)
	}
	defer rows.Close()

	var instances []models.TaskInstance
	for rows.Next() {
		instance, err := scanTaskInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task instance: %w", err)
		}
		instances = append(instances, instance)
	}
	return instances, rows.Err()
}

func (repository *SQLiteTaskInstanceRepository) Create(ctx context.Context, instance models.TaskInstance) (models.TaskInstance, error) {
	instance = repository.prepare(instance, time.Now())
	if err := insertTaskInstance(ctx, repository.database, instance); err != nil {
		return models.TaskInstance{}, err
	}
	return instance, nil
}

// ReplaceIncomplete deletes the incomplete instances titled any of titles and
// inserts instances, in one transaction. Completed history is never touched.
func (repository *SQLiteTaskInstanceRepository) ReplaceIncomplete(ctx context.Context, titles []string, instances []models.TaskInstance) ([]models.TaskInstance, error) {
	transaction, err := repository.database.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer transaction.Rollback()

	if len(titles) > 0 {
		args := make([]interface{}, 0, len(titles))
		for _, title := range titles {
			args = append(args, title)
		}
		if _, err := transaction.ExecContext(ctx,
			"DELETE FROM task_instances WHERE completed = 0 AND title IN ("+placeholders(len(titles))+")",
			args...,
		); err != nil {
			return nil, fmt.Errorf("deleting incomplete task instances: %w", err)
		}
	}

	now := time.Now()
	created := make([]models.TaskInstance, 0, len(instances))
	for _, instance := range instances {
		instance = repository.prepare(instance, now)
		if err := insertTaskInstance(ctx, transaction, instance); err != nil {
			return nil, err
		}
		created = append(created, instance)
	}

	if err := transaction.Commit(); err != nil {
		return nil, fmt.Errorf("committing task instances: %w", err)
	}
	return created, nil
}

func (repository *SQLiteTaskInstanceRepository) Assign(ctx context.Context, id string, assigneeID *string, assigneeName string) error {
	if assigneeName == "" {
		assigneeName = models.Unassigned
	}
	result, err := repository.database.ExecContext(ctx,
		"UPDATE task_instances SET assignee_id = ?, assignee_name = ? WHERE id = ?",
		assigneeID, assigneeName, id,
	)
	if err != nil {
		return fmt.Errorf("assigning task instance: %w", err)
	}
	return requireAffected(result, "assigning task instance")
}

func (repository *SQLiteTaskInstanceRepository) Complete(ctx context.Context, id string, completedAt time.Time) error {
	result, err := repository.database.ExecContext(ctx,
		"UPDATE task_instances SET completed = 1, completed_at = ? WHERE id = ?",
		completedAt, id,
	)
	if err != nil {
		return fmt.Errorf("completing task instance: %w", err)
	}
	return requireAffected(result, "completing task instance")
}

func (repository *SQLiteTaskInstanceRepository) Delete(ctx context.Context, id string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM task_instances WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting task instance: %w", err)
	}
	return nil
}

func (repository *SQLiteTaskInstanceRepository) prepare(instance models.TaskInstance, now time.Time) models.TaskInstance {
	if instance.ID == "" {
		instance.ID = repository.newID(now)
	}
	if instance.CreatedAt.IsZero() {
		instance.CreatedAt = now
	}
	if instance.AssigneeName == "" {
		instance.AssigneeName = models.Unassigned
	}
	return instance
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTaskInstance(ctx context.Context, database execer, instance models.TaskInstance) error {
	_, err := database.ExecContext(ctx,
		"INSERT INTO task_instances ("+taskInstanceColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		instance.ID, instance.DefinitionID, instance.Title, instance.Weekday, instance.DueDate,
		instance.Completed, instance.CompletedAt, instance.AssigneeID, instance.AssigneeName, instance.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating task instance: %w", err)
	}
	return nil
}

func requireAffected(result sql.Result, action string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", action, sql.ErrNoRows)
	}
	return nil
}

func scanTaskInstance(row rowScanner) (models.TaskInstance, error) {
	var instance models.TaskInstance
	if err := row.Scan(
		&instance.ID, &instance.DefinitionID, &instance.Title, &instance.Weekday, &instance.DueDate,
		&instance.Completed, &instance.CompletedAt, &instance.AssigneeID, &instance.AssigneeName, &instance.CreatedAt,
	); err != nil {
		return models.TaskInstance{}, err
	}
	return instance, nil
}
