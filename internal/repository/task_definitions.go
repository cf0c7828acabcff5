package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
)

type TaskDefinitionFilter struct {
	RecurringOnly bool
	Frequencies   []models.Frequency
}

type TaskDefinitionRepository interface {
	FindByID(ctx context.Context, id string) (models.TaskDefinition, error)
	FindAll(ctx context.Context, filter TaskDefinitionFilter) ([]models.TaskDefinition, error)
	Create(ctx context.Context, definition models.TaskDefinition) (models.TaskDefinition, error)
	Update(ctx context.Context, definition models.TaskDefinition) error
	Delete(ctx context.Context, id string) error
	SetEligibleMembers(ctx context.Context, definitionID string, memberIDs []string) error
	GetEligibleMembers(ctx context.Context, definitionID string) ([]string, error)
}

type SQLiteTaskDefinitionRepository struct {
	database *sql.DB
}

func NewTaskDefinitionRepository(database *sql.DB) *SQLiteTaskDefinitionRepository {
	return &SQLiteTaskDefinitionRepository{database: database}
}

const taskDefinitionColumns = `id, title, description, is_recurring, frequency,
	custom_every_days, occurrences_per_week, eligibility, preferred_assignee_id,
	assignment_mode, created_by_member_id, created_at, updated_at`

func (repository *SQLiteTaskDefinitionRepository) FindByID(ctx context.Context, id string) (models.TaskDefinition, error) {
	definition, err := scanTaskDefinition(repository.database.QueryRowContext(ctx,
		"SELECT "+taskDefinitionColumns+" FROM task_definitions WHERE id = ?", id,
	))
	if err != nil {
		return models.TaskDefinition{}, fmt.Errorf("finding task definition by id: %w", err)
	}

	definition.EligibleMemberIDs, err = repository.GetEligibleMembers(ctx, id)
	if err != nil {
		return models.TaskDefinition{}, err
	}
	return definition, nil
}

// FindAll returns definitions oldest first, each with its eligible members.
func (repository *SQLiteTaskDefinitionRepository) FindAll(ctx context.Context, filter TaskDefinitionFilter) ([]models.TaskDefinition, error) {
	query := "SELECT " + taskDefinitionColumns + " FROM task_definitions WHERE 1=1"
	var args []interface{}

	if filter.RecurringOnly {
		query += " AND is_recurring = 1"
	}
	if len(filter.Frequencies) > 0 {
		query += " AND frequency IN (" + placeholders(len(filter.Frequencies)) + ")"
		for _, frequency := range filter.Frequencies {
			args = append(args, string(frequency))
		}
	}
	query += " ORDER BY created_at, title"

	rows, err := repository.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("finding task definitions: %w", err)
	}

	var definitions []models.TaskDefinition
	for rows.Next() {
		definition, err := scanTaskDefinition(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning task definition: %w", err)
		}
		definitions = append(definitions, definition)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("finding task definitions: %w", err)
	}
	rows.Close()

	eligible, err := repository.eligibleByDefinition(ctx)
	if err != nil {
		return nil, err
	}
	for i := range definitions {
		definitions[i].EligibleMemberIDs = eligible[definitions[i].ID]
	}
	return definitions, nil
}

func (repository *SQLiteTaskDefinitionRepository) Create(ctx context.Context, definition models.TaskDefinition) (models.TaskDefinition, error) {
	if definition.ID == "" {
		definition.ID = uuid.New().String()
	}
	if definition.Frequency == "" {
		definition.Frequency = models.FrequencyOneTime
	}
	if definition.Eligibility == "" {
		definition.Eligibility = models.EligibilityAll
	}
	if definition.AssignmentMode == "" {
		definition.AssignmentMode = models.AssignmentModeAI
	}
	now := time.Now()
	definition.CreatedAt = now
	definition.UpdatedAt = now

	transaction, err := repository.database.BeginTx(ctx, nil)
	if err != nil {
		return models.TaskDefinition{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer transaction.Rollback()

	_, err = transaction.ExecContext(ctx,
		"INSERT INTO task_definitions ("+taskDefinitionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		definition.ID, definition.Title, definition.Description, definition.IsRecurring, definition.Frequency,
		definition.CustomEveryDays, definition.OccurrencesPerWeek, definition.Eligibility, definition.PreferredAssigneeID,
		definition.AssignmentMode, nullString(definition.CreatedByMemberID), definition.CreatedAt, definition.UpdatedAt,
	)
	if err != nil {
		return models.TaskDefinition{}, fmt.Errorf("creating task definition: %w", err)
	}

	if err := replaceEligibleMembers(ctx, transaction, definition.ID, definition.EligibleMemberIDs); err != nil {
		return models.TaskDefinition{}, err
	}

	if err := transaction.Commit(); err != nil {
		return models.TaskDefinition{}, fmt.Errorf("committing task definition: %w", err)
	}
	return definition, nil
}

func (repository *SQLiteTaskDefinitionRepository) Update(ctx context.Context, definition models.TaskDefinition) error {
	transaction, err := repository.database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer transaction.Rollback()

	_, err = transaction.ExecContext(ctx,
		`UPDATE task_definitions SET title = ?, description = ?, is_recurring = ?, frequency = ?,
			custom_every_days = ?, occurrences_per_week = ?, eligibility = ?, preferred_assignee_id = ?,
			assignment_mode = ?, updated_at = ?
		WHERE id = ?`,
		definition.Title, definition.Description, definition.IsRecurring, definition.Frequency,
		definition.CustomEveryDays, definition.OccurrencesPerWeek, definition.Eligibility, definition.PreferredAssigneeID,
		definition.AssignmentMode, time.Now(),
		definition.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task definition: %w", err)
	}

	if err := replaceEligibleMembers(ctx, transaction, definition.ID, definition.EligibleMemberIDs); err != nil {
		return err
	}
	return transaction.Commit()
}

func (repository *SQLiteTaskDefinitionRepository) Delete(ctx context.Context, id string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM task_definitions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting task definition: %w", err)
	}
	return nil
}

func (repository *SQLiteTaskDefinitionRepository) SetEligibleMembers(ctx context.Context, definitionID string, memberIDs []string) error {
	transaction, err := repository.database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer transaction.Rollback()

	if err := replaceEligibleMembers(ctx, transaction, definitionID, memberIDs); err != nil {
		return err
	}
	return transaction.Commit()
}

func (repository *SQLiteTaskDefinitionRepository) GetEligibleMembers(ctx context.Context, definitionID string) ([]string, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT member_id FROM task_definition_eligible_members WHERE definition_id = ? ORDER BY member_id",
		definitionID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding eligible members: %w", err)
	}
	defer rows.Close()

	var memberIDs []string
	for rows.Next() {
		var memberID string
		if err := rows.Scan(&memberID); err != nil {
			return nil, fmt.Errorf("scanning eligible member: %w", err)
		}
		memberIDs = append(memberIDs, memberID)
	}
	return memberIDs, rows.Err()
}

func (repository *SQLiteTaskDefinitionRepository) eligibleByDefinition(ctx context.Context) (map[string][]string, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT definition_id, member_id FROM task_definition_eligible_members ORDER BY definition_id, member_id",
	)
	if err != nil {
		return nil, fmt.Errorf("finding eligible members: %w", err)
	}
	defer rows.Close()

	eligible := make(map[string][]string)
	for rows.Next() {
		var definitionID, memberID string
		if err := rows.Scan(&definitionID, &memberID); err != nil {
			return nil, fmt.Errorf("scanning eligible member: %w", err)
		}
		eligible[definitionID] = append(eligible[definitionID], memberID)
	}
	return eligible, rows.Err()
}

func replaceEligibleMembers(ctx context.Context, transaction *sql.Tx, definitionID string, memberIDs []string) error {
	if _, err := transaction.ExecContext(ctx, "DELETE FROM task_definition_eligible_members WHERE definition_id = ?", definitionID); err != nil {
		return fmt.Errorf("clearing eligible members: %w", err)
	}

	for _, memberID := range memberIDs {
		if _, err := transaction.ExecContext(ctx,
			"INSERT OR IGNORE INTO task_definition_eligible_members (definition_id, member_id) VALUES (?, ?)",
			definitionID, memberID,
		); err != nil {
			return fmt.Errorf("inserting eligible member: %w", err)
		}
	}
	return nil
}

func scanTaskDefinition(row rowScanner) (models.TaskDefinition, error) {
	var definition models.TaskDefinition
	var createdBy sql.NullString
	if err := row.Scan(
		&definition.ID, &definition.Title, &definition.Description, &definition.IsRecurring, &definition.Frequency,
		&definition.CustomEveryDays, &definition.OccurrencesPerWeek, &definition.Eligibility, &definition.PreferredAssigneeID,
		&definition.AssignmentMode, &createdBy, &definition.CreatedAt, &definition.UpdatedAt,
	); err != nil {
		return models.TaskDefinition{}, err
	}
	definition.CreatedByMemberID = createdBy.String
	return definition, nil
}
