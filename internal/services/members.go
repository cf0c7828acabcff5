package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/repository"
)

var (
	ErrInvalidMember  = errors.New("invalid member")
	ErrMemberNotFound = errors.New("member not found")
	ErrLastAdmin      = errors.New("the family needs at least one admin")
)

// MemberService manages the household roster. Members added here have no
// login; they still take part in assignment.
type MemberService struct {
	memberRepo   repository.MemberRepository
	settingsRepo repository.SettingsRepository
}

func NewMemberService(memberRepo repository.MemberRepository, settingsRepo repository.SettingsRepository) *MemberService {
	return &MemberService{memberRepo: memberRepo, settingsRepo: settingsRepo}
}

func (service *MemberService) List(ctx context.Context) ([]models.Member, error) {
	return service.memberRepo.FindAll(ctx)
}

func (service *MemberService) Create(ctx context.Context, member models.Member) (models.Member, error) {
	member, err := normalizeMember(member)
	if err != nil {
		return models.Member{}, err
	}
	member.OIDCSubject = ""
	member.IsAdmin = false
	return service.memberRepo.Create(ctx, member)
}

func (service *MemberService) Update(ctx context.Context, member models.Member) (models.Member, error) {
	existing, err := service.find(ctx, member.ID)
	if err != nil {
		return models.Member{}, err
	}

	member, err = normalizeMember(member)
	if err != nil {
		return models.Member{}, err
	}
	if err := service.memberRepo.Update(ctx, member); err != nil {
		return models.Member{}, err
	}

	member.OIDCSubject = existing.OIDCSubject
	member.Email = existing.Email
	member.AvatarURL = existing.AvatarURL
	member.IsAdmin = existing.IsAdmin
	member.CreatedAt = existing.CreatedAt
	return member, nil
}

func (service *MemberService) Delete(ctx context.Context, id string) error {
	member, err := service.find(ctx, id)
	if err != nil {
		return err
	}
	if member.IsAdmin {
		if err := service.ensureOtherAdmin(ctx); err != nil {
			return err
		}
	}
	return service.memberRepo.Delete(ctx, id)
}

func (service *MemberService) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	member, err := service.find(ctx, id)
	if err != nil {
		return err
	}
	if member.IsAdmin && !isAdmin {
		if err := service.ensureOtherAdmin(ctx); err != nil {
			return err
		}
	}
	return service.memberRepo.SetAdmin(ctx, id, isAdmin)
}

func (service *MemberService) FamilyName(ctx context.Context) (string, error) {
	return service.settingsRepo.GetOrDefault(ctx, repository.SettingFamilyName, "Family")
}

func (service *MemberService) SetFamilyName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: family name is required", ErrInvalidMember)
	}
	return service.settingsRepo.Set(ctx, repository.SettingFamilyName, name)
}

func (service *MemberService) find(ctx context.Context, id string) (models.Member, error) {
	member, err := service.memberRepo.FindByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Member{}, ErrMemberNotFound
	}
	if err != nil {
		return models.Member{}, err
	}
	return member, nil
}

func (service *MemberService) ensureOtherAdmin(ctx context.Context) error {
	admins, err := service.memberRepo.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("counting admins: %w", err)
	}
	if admins <= 1 {
		return ErrLastAdmin
	}
	return nil
}

func normalizeMember(member models.Member) (models.Member, error) {
	member.Name = strings.TrimSpace(member.Name)
	if member.Name == "" {
		return models.Member{}, fmt.Errorf("%w: name is required", ErrInvalidMember)
	}
	if member.FamilyRole == "" {
		member.FamilyRole = models.FamilyRoleMember
	}
	if !member.FamilyRole.Valid() {
		return models.Member{}, fmt.Errorf("%w: unknown role %q", ErrInvalidMember, member.FamilyRole)
	}
	for day := range member.Availability {
		if !validWeekdayKey(day) {
			return models.Member{}, fmt.Errorf("%w: unknown availability day %q", ErrInvalidMember, day)
		}
	}
	return member, nil
}

func validWeekdayKey(key string) bool {
	switch key {
	case "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday":
		return true
	}
	return false
}
