package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
)

type MemberRepository interface {
	FindByID(ctx context.Context, id string) (models.Member, error)
	FindByOIDCSubject(ctx context.Context, subject string) (models.Member, error)
	FindAll(ctx context.Context) ([]models.Member, error)
	Create(ctx context.Context, member models.Member) (models.Member, error)
	Update(ctx context.Context, member models.Member) error
	UpdateProfile(ctx context.Context, id string, name string, email string, avatarURL string) error
	SetAdmin(ctx context.Context, id string, isAdmin bool) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	CountAdmins(ctx context.Context) (int, error)
}

type SQLiteMemberRepository struct {
	database *sql.DB
}

func NewMemberRepository(database *sql.DB) *SQLiteMemberRepository {
	return &SQLiteMemberRepository{database: database}
}

const memberColumns = `id, oidc_subject, email, name, avatar_url, family_role, is_admin,
	working_hours, availability, abilities, likes, dislikes, restrictions,
	created_at, updated_at`

func (repository *SQLiteMemberRepository) FindByID(ctx context.Context, id string) (models.Member, error) {
	member, err := scanMember(repository.database.QueryRowContext(ctx,
		"SELECT "+memberColumns+" FROM members WHERE id = ?", id,
	))
	if err != nil {
		return models.Member{}, fmt.Errorf("finding member by id: %w", err)
	}
	return member, nil
}

func (repository *SQLiteMemberRepository) FindByOIDCSubject(ctx context.Context, subject string) (models.Member, error) {
	member, err := scanMember(repository.database.QueryRowContext(ctx,
		"SELECT "+memberColumns+" FROM members WHERE oidc_subject = ?", subject,
	))
	if err != nil {
		return models.Member{}, fmt.Errorf("finding member by oidc subject: %w", err)
	}
	return member, nil
}

// FindAll returns members in the order they joined, which is the order the
// assigners see them in before tie-breaking.
func (repository *SQLiteMemberRepository) FindAll(ctx context.Context) ([]models.Member, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT "+memberColumns+" FROM members ORDER BY created_at, name",
	)
	if err != nil {
		return nil, fmt.Errorf("finding all members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func (repository *SQLiteMemberRepository) Create(ctx context.Context, member models.Member) (models.Member, error) {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if member.FamilyRole == "" {
		member.FamilyRole = models.FamilyRoleMember
	}
	now := time.Now()
	member.CreatedAt = now
	member.UpdatedAt = now

	profile, err := encodeProfile(member)
	if err != nil {
		return models.Member{}, err
	}

	_, err = repository.database.ExecContext(ctx,
		"INSERT INTO members ("+memberColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		member.ID, nullString(member.OIDCSubject), member.Email, member.Name, member.AvatarURL, member.FamilyRole, member.IsAdmin,
		member.WorkingHours, profile.availability, profile.abilities, profile.likes, profile.dislikes, member.Restrictions,
		member.CreatedAt, member.UpdatedAt,
	)
	if err != nil {
		return models.Member{}, fmt.Errorf("creating member: %w", err)
	}
	return member, nil
}

// Update rewrites the household profile of a member. Login identity and the
// admin flag are left alone.
func (repository *SQLiteMemberRepository) Update(ctx context.Context, member models.Member) error {
	profile, err := encodeProfile(member)
	if err != nil {
		return err
	}

	_, err = repository.database.ExecContext(ctx,
		`UPDATE members SET name = ?, family_role = ?, working_hours = ?, availability = ?,
			abilities = ?, likes = ?, dislikes = ?, restrictions = ?, updated_at = ?
		WHERE id = ?`,
		member.Name, member.FamilyRole, member.WorkingHours, profile.availability,
		profile.abilities, profile.likes, profile.dislikes, member.Restrictions, time.Now(),
		member.ID,
	)
	if err != nil {
		return fmt.Errorf("updating member: %w", err)
	}
	return nil
}

func (repository *SQLiteMemberRepository) UpdateProfile(ctx context.Context, id string, name string, email string, avatarURL string) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE members SET name = ?, email = ?, avatar_url = ?, updated_at = ? WHERE id = ?",
		name, email, avatarURL, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("updating member profile: %w", err)
	}
	return nil
}

func (repository *SQLiteMemberRepository) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE members SET is_admin = ?, updated_at = ? WHERE id = ?",
		isAdmin, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("updating member admin flag: %w", err)
	}
	return nil
}

func (repository *SQLiteMemberRepository) Delete(ctx context.Context, id string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM members WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting member: %w", err)
	}
	return nil
}

func (repository *SQLiteMemberRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := repository.database.QueryRowContext(ctx, "SELECT COUNT(*) FROM members").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting members: %w", err)
	}
	return count, nil
}

func (repository *SQLiteMemberRepository) CountAdmins(ctx context.Context) (int, error) {
	var count int
	err := repository.database.QueryRowContext(ctx, "SELECT COUNT(*) FROM members WHERE is_admin = 1").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting admins: %w", err)
	}
	return count, nil
}

type encodedProfile struct {
	availability string
	abilities    string
	likes        string
	dislikes     string
}

func encodeProfile(member models.Member) (encodedProfile, error) {
	var profile encodedProfile
	var err error
	if profile.availability, err = encodeJSON(member.Availability, "{}"); err != nil {
		return encodedProfile{}, fmt.Errorf("encoding availability: %w", err)
	}
	if profile.abilities, err = encodeJSON(member.Abilities, "[]"); err != nil {
		return encodedProfile{}, fmt.Errorf("encoding abilities: %w", err)
	}
	if profile.likes, err = encodeJSON(member.Likes, "[]"); err != nil {
		return encodedProfile{}, fmt.Errorf("encoding likes: %w", err)
	}
	if profile.dislikes, err = encodeJSON(member.Dislikes, "[]"); err != nil {
		return encodedProfile{}, fmt.Errorf("encoding dislikes: %w", err)
	}
	return profile, nil
}

func encodeJSON[T any](value T, empty string) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	if string(data) == "null" {
		return empty, nil
	}
	return string(data), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (models.Member, error) {
	var member models.Member
	var subject sql.NullString
	var availability, abilities, likes, dislikes string
	if err := row.Scan(
		&member.ID, &subject, &member.Email, &member.Name, &member.AvatarURL, &member.FamilyRole, &member.IsAdmin,
		&member.WorkingHours, &availability, &abilities, &likes, &dislikes, &member.Restrictions,
		&member.CreatedAt, &member.UpdatedAt,
	); err != nil {
		return models.Member{}, err
	}
	member.OIDCSubject = subject.String

	if err := json.Unmarshal([]byte(availability), &member.Availability); err != nil {
		return models.Member{}, fmt.Errorf("decoding availability: %w", err)
	}
	for _, field := range []struct {
		raw    string
		target *[]string
	}{{abilities, &member.Abilities}, {likes, &member.Likes}, {dislikes, &member.Dislikes}} {
		if err := json.Unmarshal([]byte(field.raw), field.target); err != nil {
			return models.Member{}, fmt.Errorf("decoding member profile: %w", err)
		}
	}
	return member, nil
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
