package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
)

type APITokenRepository interface {
	Create(ctx context.Context, token models.APIToken) (models.APIToken, error)
	FindByTokenHash(ctx context.Context, tokenHash string) (models.APIToken, error)
	FindByMemberID(ctx context.Context, memberID string) ([]models.APIToken, error)
	FindAll(ctx context.Context) ([]models.APIToken, error)
	Delete(ctx context.Context, id string) error
}

type SQLiteAPITokenRepository struct {
	database *sql.DB
}

func NewAPITokenRepository(database *sql.DB) *SQLiteAPITokenRepository {
	return &SQLiteAPITokenRepository{database: database}
}

// HashToken returns the hex SHA-256 of a raw token. Only hashes are stored.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

const apiTokenColumns = "id, name, token_hash, scope, created_by_member_id, expires_at, created_at"

func (repository *SQLiteAPITokenRepository) Create(ctx context.Context, token models.APIToken) (models.APIToken, error) {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.Scope == "" {
		token.Scope = models.TokenScopeAPI
	}
	token.CreatedAt = time.Now()

	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO api_tokens ("+apiTokenColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		token.ID, token.Name, token.TokenHash, token.Scope, token.CreatedByMemberID, token.ExpiresAt, token.CreatedAt,
	)
	if err != nil {
		return models.APIToken{}, fmt.Errorf("creating api token: %w", err)
	}
	return token, nil
}

func (repository *SQLiteAPITokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (models.APIToken, error) {
	token, err := scanAPIToken(repository.database.QueryRowContext(ctx,
		"SELECT "+apiTokenColumns+" FROM api_tokens WHERE token_hash = ?", tokenHash,
	))
	if err != nil {
		return models.APIToken{}, fmt.Errorf("finding token by hash: %w", err)
	}
	return token, nil
}

func (repository *SQLiteAPITokenRepository) FindByMemberID(ctx context.Context, memberID string) ([]models.APIToken, error) {
	return repository.query(ctx,
		"SELECT "+apiTokenColumns+" FROM api_tokens WHERE created_by_member_id = ? ORDER BY created_at DESC", memberID,
	)
}

func (repository *SQLiteAPITokenRepository) FindAll(ctx context.Context) ([]models.APIToken, error) {
	return repository.query(ctx, "SELECT "+apiTokenColumns+" FROM api_tokens ORDER BY created_at DESC")
}

func (repository *SQLiteAPITokenRepository) Delete(ctx context.Context, id string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM api_tokens WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	return nil
}

func (repository *SQLiteAPITokenRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.APIToken, error) {
	rows, err := repository.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("finding tokens: %w", err)
	}
	defer rows.Close()

	var tokens []models.APIToken
	for rows.Next() {
		token, err := scanAPIToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning token: %w", err)
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

func scanAPIToken(row rowScanner) (models.APIToken, error) {
	var token models.APIToken
	err := row.Scan(&token.ID, &token.Name, &token.TokenHash, &token.Scope,
		&token.CreatedByMemberID, &token.ExpiresAt, &token.CreatedAt)
	return token, err
}
