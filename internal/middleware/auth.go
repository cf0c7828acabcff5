package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/models"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/services"
)

type contextKey string

const MemberContextKey contextKey = "member"

// RequireAuth resolves the caller from a bearer API token when one is sent,
// otherwise from the session cookie. API callers get a JSON 401; browsers are
// sent to /login.
func RequireAuth(authService *services.AuthService, tokenService *services.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var member models.Member
			var err error

			if header := r.Header.Get("Authorization"); header != "" {
				raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
				member, err = tokenService.Authenticate(r.Context(), raw, models.TokenScopeAPI)
			} else {
				member, err = authService.GetCurrentMember(r)
			}

			if err != nil {
				if isAPIRequest(r) {
					writeError(w, http.StatusUnauthorized, "unauthorized")
					return
				}
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			ctx := WithMember(r.Context(), member)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !GetMember(r.Context()).IsAdmin {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetMember(ctx context.Context) models.Member {
	member, _ := ctx.Value(MemberContextKey).(models.Member)
	return member
}

// WithMember stores a member the way RequireAuth does.
func WithMember(ctx context.Context, member models.Member) context.Context {
	return context.WithValue(ctx, MemberContextKey, member)
}

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") || r.Header.Get("Authorization") != ""
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
