package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/middleware"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/services"
)

type AdminHandler struct {
	memberService *services.MemberService
	tokenService  *services.TokenService
}

func NewAdminHandler(memberService *services.MemberService, tokenService *services.TokenService) *AdminHandler {
	return &AdminHandler{memberService: memberService, tokenService: tokenService}
}

func (handler *AdminHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := handler.memberService.List(r.Context())
	if err != nil {
		slog.Error("listing members", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	if members == nil {
		members = []models.Member{}
	}
	writeJSON(w, http.StatusOK, members)
}

func (handler *AdminHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var member models.Member
	if err := decodeJSON(r, &member); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := handler.memberService.Create(r.Context(), member)
	if err != nil {
		writeMemberError(w, "creating member", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (handler *AdminHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	var member models.Member
	if err := decodeJSON(r, &member); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	member.ID = chi.URLParam(r, "id")

	updated, err := handler.memberService.Update(r.Context(), member)
	if err != nil {
		writeMemberError(w, "updating member", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (handler *AdminHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	if err := handler.memberService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeMemberError(w, "deleting member", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *AdminHandler) PromoteMember(w http.ResponseWriter, r *http.Request) {
	handler.setAdmin(w, r, true)
}

func (handler *AdminHandler) DemoteMember(w http.ResponseWriter, r *http.Request) {
	handler.setAdmin(w, r, false)
}

func (handler *AdminHandler) setAdmin(w http.ResponseWriter, r *http.Request, isAdmin bool) {
	if err := handler.memberService.SetAdmin(r.Context(), chi.URLParam(r, "id"), isAdmin); err != nil {
		writeMemberError(w, "changing admin flag", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var request struct {
		FamilyName string `json:"familyName"`
	}
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := handler.memberService.SetFamilyName(r.Context(), request.FamilyName); err != nil {
		writeMemberError(w, "updating settings", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"familyName": request.FamilyName})
}

func (handler *AdminHandler) ListTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := handler.tokenService.List(r.Context())
	if err != nil {
		slog.Error("listing tokens", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tokens")
		return
	}
	if tokens == nil {
		tokens = []models.APIToken{}
	}
	writeJSON(w, http.StatusOK, tokens)
}

func (handler *AdminHandler) CreateToken(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Name      string            `json:"name"`
		Scope     models.TokenScope `json:"scope"`
		ExpiresIn string            `json:"expiresIn"`
	}
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var ttl time.Duration
	if request.ExpiresIn != "" {
		parsed, err := time.ParseDuration(request.ExpiresIn)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "expiresIn must be a positive duration such as 720h")
			return
		}
		ttl = parsed
	}

	issued, err := handler.tokenService.Issue(r.Context(), request.Name, request.Scope, middleware.GetMember(r.Context()).ID, ttl)
	if errors.Is(err, services.ErrInvalidToken) || errors.Is(err, services.ErrInvalidScope) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("creating token", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}
	writeJSON(w, http.StatusCreated, issued)
}

func (handler *AdminHandler) DeleteToken(w http.ResponseWriter, r *http.Request) {
	if err := handler.tokenService.Revoke(r.Context(), chi.URLParam(r, "id")); err != nil {
		slog.Error("deleting token", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete token")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeMemberError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidMember):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrMemberNotFound):
		writeError(w, http.StatusNotFound, "member not found")
	case errors.Is(err, services.ErrLastAdmin):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error(action, "error", err)
		writeError(w, http.StatusInternalServerError, "failed: "+action)
	}
}
