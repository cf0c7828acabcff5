package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/database"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
)

func NewTestDatabase(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// InsertMember writes a bare member row and returns it, for tests that need
// foreign keys satisfied without going through a repository.
func InsertMember(t *testing.T, db *sql.DB, name string, role models.FamilyRole) models.Member {
	t.Helper()

	now := time.Now()
	member := models.Member{
		ID:         uuid.New().String(),
		Name:       name,
		FamilyRole: role,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := db.Exec(
		"INSERT INTO members (id, name, family_role, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		member.ID, member.Name, member.FamilyRole, member.CreatedAt, member.UpdatedAt,
	); err != nil {
		t.Fatalf("inserting member %s: %v", name, err)
	}
	return member
}
