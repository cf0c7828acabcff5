package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gorilla/securecookie"
	"golang.org/x/oauth2"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/config"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/repository"
)

const (
	sessionCookieName = "session"
	devSubject        = "dev-admin"
)

var ErrOIDCNotConfigured = errors.New("OIDC not configured")

type AuthService struct {
	oauthConfig  *oauth2.Config
	oidcVerifier *oidc.IDTokenVerifier
	secureCookie *securecookie.SecureCookie
	memberRepo   repository.MemberRepository
}

type SessionData struct {
	MemberID string `json:"member_id"`
}

func NewAuthService(ctx context.Context, cfg config.Config, memberRepo repository.MemberRepository) (*AuthService, error) {
	if cfg.OIDCIssuer == "" {
		slog.Warn("OIDC not configured, only dev login is available")
		return &AuthService{
			secureCookie: securecookie.New([]byte(cfg.SessionSecret), nil),
			memberRepo:   memberRepo,
		}, nil
	}

	provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
	if err != nil {
		return nil, fmt.Errorf("creating OIDC provider: %w", err)
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		RedirectURL:  cfg.OIDCRedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID})

	return &AuthService{
		oauthConfig:  oauthConfig,
		oidcVerifier: verifier,
		secureCookie: securecookie.New([]byte(cfg.SessionSecret), nil),
		memberRepo:   memberRepo,
	}, nil
}

func (service *AuthService) OIDCConfigured() bool {
	return service.oauthConfig != nil
}

func (service *AuthService) LoginURL(state string) string {
	if service.oauthConfig == nil {
		return ""
	}
	return service.oauthConfig.AuthCodeURL(state)
}

func (service *AuthService) GenerateState() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

func (service *AuthService) HandleCallback(ctx context.Context, code string) (models.Member, error) {
	if service.oauthConfig == nil {
		return models.Member{}, ErrOIDCNotConfigured
	}

	token, err := service.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return models.Member{}, fmt.Errorf("exchanging code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return models.Member{}, errors.New("no id_token in response")
	}

	idToken, err := service.oidcVerifier.Verify(ctx, rawIDToken)
	if err != nil {
		return models.Member{}, fmt.Errorf("verifying id token: %w", err)
	}

	var claims struct {
		Subject           string `json:"sub"`
		Email             string `json:"email"`
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
		Picture           string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return models.Member{}, fmt.Errorf("parsing claims: %w", err)
	}

	displayName := claims.Name
	if displayName == "" {
		displayName = claims.PreferredUsername
	}
	if displayName == "" {
		displayName = claims.Email
	}

	return service.provisionMember(ctx, claims.Subject, claims.Email, displayName, claims.Picture)
}

// DevLogin signs in a fixed local admin. It only works while OIDC is not
// configured.
func (service *AuthService) DevLogin(ctx context.Context) (models.Member, error) {
	if service.OIDCConfigured() {
		return models.Member{}, errors.New("dev login is disabled while OIDC is configured")
	}
	return service.provisionMember(ctx, devSubject, "dev@localhost", "Dev Admin", "")
}

// provisionMember finds the member behind an OIDC subject or creates one.
// The first account created while the family has no admin becomes admin.
func (service *AuthService) provisionMember(ctx context.Context, subject, email, name, avatarURL string) (models.Member, error) {
	existing, err := service.memberRepo.FindByOIDCSubject(ctx, subject)
	if err == nil {
		if err := service.memberRepo.UpdateProfile(ctx, existing.ID, name, email, avatarURL); err != nil {
			slog.Warn("failed to update member profile on login", "error", err)
		}
		existing.Name = name
		existing.Email = email
		existing.AvatarURL = avatarURL
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Member{}, fmt.Errorf("looking up member: %w", err)
	}

	admins, err := service.memberRepo.CountAdmins(ctx)
	if err != nil {
		return models.Member{}, fmt.Errorf("counting admins: %w", err)
	}

	created, err := service.memberRepo.Create(ctx, models.Member{
		OIDCSubject: subject,
		Email:       email,
		Name:        name,
		AvatarURL:   avatarURL,
		FamilyRole:  models.FamilyRoleParent,
		IsAdmin:     admins == 0,
	})
	if err != nil {
		return models.Member{}, fmt.Errorf("creating member: %w", err)
	}

	slog.Info("provisioned new member", "id", created.ID, "name", created.Name, "admin", created.IsAdmin)
	return created, nil
}

func (service *AuthService) SetSession(w http.ResponseWriter, memberID string) error {
	encoded, err := json.Marshal(SessionData{MemberID: memberID})
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	value, err := service.secureCookie.Encode(sessionCookieName, string(encoded))
	if err != nil {
		return fmt.Errorf("encoding session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 30,
	})
	return nil
}

func (service *AuthService) GetSession(r *http.Request) (SessionData, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return SessionData{}, fmt.Errorf("no session cookie: %w", err)
	}

	var decoded string
	if err := service.secureCookie.Decode(sessionCookieName, cookie.Value, &decoded); err != nil {
		return SessionData{}, fmt.Errorf("decoding session cookie: %w", err)
	}

	var session SessionData
	if err := json.Unmarshal([]byte(decoded), &session); err != nil {
		return SessionData{}, fmt.Errorf("unmarshaling session: %w", err)
	}
	return session, nil
}

func (service *AuthService) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func (service *AuthService) GetCurrentMember(r *http.Request) (models.Member, error) {
	session, err := service.GetSession(r)
	if err != nil {
		return models.Member{}, err
	}

	member, err := service.memberRepo.FindByID(r.Context(), session.MemberID)
	if err != nil {
		return models.Member{}, fmt.Errorf("finding member: %w", err)
	}
	return member, nil
}
