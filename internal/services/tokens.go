package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/repository"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrInvalidScope = errors.New("unknown token scope")
)

// IssuedToken carries the raw token, which is only ever shown once.
type IssuedToken struct {
	models.APIToken
	Token string `json:"token"`
}

type TokenService struct {
	tokenRepo  repository.APITokenRepository
	memberRepo repository.MemberRepository
	now        func() time.Time
}

func NewTokenService(tokenRepo repository.APITokenRepository, memberRepo repository.MemberRepository) *TokenService {
	return &TokenService{tokenRepo: tokenRepo, memberRepo: memberRepo, now: time.Now}
}

func (service *TokenService) Issue(ctx context.Context, name string, scope models.TokenScope, memberID string, ttl time.Duration) (IssuedToken, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return IssuedToken{}, fmt.Errorf("%w: name is required", ErrInvalidToken)
	}
	if scope == "" {
		scope = models.TokenScopeAPI
	}
	if scope != models.TokenScopeAPI && scope != models.TokenScopeICal {
		return IssuedToken{}, fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}

	raw, err := generateToken()
	if err != nil {
		return IssuedToken{}, err
	}

	token := models.APIToken{
		Name:              name,
		TokenHash:         repository.HashToken(raw),
		Scope:             scope,
		CreatedByMemberID: memberID,
	}
	if ttl > 0 {
		expires := service.now().Add(ttl)
		token.ExpiresAt = &expires
	}

	created, err := service.tokenRepo.Create(ctx, token)
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{APIToken: created, Token: raw}, nil
}

// Authenticate resolves a raw token to the member who issued it. The token's
// scope must match exactly.
func (service *TokenService) Authenticate(ctx context.Context, raw string, scope models.TokenScope) (models.Member, error) {
	if raw == "" {
		return models.Member{}, ErrInvalidToken
	}

	token, err := service.tokenRepo.FindByTokenHash(ctx, repository.HashToken(raw))
	if err != nil {
		return models.Member{}, ErrInvalidToken
	}
	if token.Expired(service.now()) {
		return models.Member{}, ErrInvalidToken
	}
	if token.Scope != scope {
		return models.Member{}, ErrInvalidToken
	}

	member, err := service.memberRepo.FindByID(ctx, token.CreatedByMemberID)
	if err != nil {
		return models.Member{}, fmt.Errorf("finding token owner: %w", err)
	}
	return member, nil
}

func (service *TokenService) List(ctx context.Context) ([]models.APIToken, error) {
	return service.tokenRepo.FindAll(ctx)
}

func (service *TokenService) Revoke(ctx context.Context, id string) error {
	return service.tokenRepo.Delete(ctx, id)
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
