package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/example/streamflix/internal/authctx"
	"github.com/example/streamflix/internal/httputil"
)

// ProfileHeader names the active viewing profile for the request. The
// account comes from the token; the profile is always explicit, never
// ambient server-side state.
const ProfileHeader = "X-Profile-ID"

type AccountContext = authctx.AccountContext

// ProfileChecker verifies that a profile belongs to an account.
type ProfileChecker interface {
	BelongsTo(ctx context.Context, profileID, accountID uuid.UUID) (bool, error)
}

type Middleware struct {
	tokens   Tokens
	profiles ProfileChecker
}

func NewMiddleware(tokens Tokens, profiles ProfileChecker) *Middleware {
	return &Middleware{tokens: tokens, profiles: profiles}
}

func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			httputil.WriteError(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "authentication required")
			return
		}

		claims, err := m.tokens.Parse(token)
		if err != nil {
			httputil.WriteError(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "invalid token")
			return
		}
		accountID, err := claims.AccountID()
		if err != nil {
			httputil.WriteError(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "invalid token subject")
			return
		}

		ctx := authctx.WithAccount(r.Context(), AccountContext{
			AccountID: accountID,
			IsAdmin:   claims.IsAdmin,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireProfile resolves the X-Profile-ID header and verifies the profile
// belongs to the authenticated account.
func (m *Middleware) RequireProfile(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acct := AccountFromContext(r.Context())
		if acct == nil {
			httputil.WriteError(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "authentication required")
			return
		}

		raw := r.Header.Get(ProfileHeader)
		if raw == "" {
			httputil.WriteError(w, http.StatusUnauthorized, httputil.CodeUnauthenticated, "active profile required")
			return
		}
		profileID, err := uuid.Parse(raw)
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, httputil.CodeInvalid, "invalid profile id")
			return
		}

		ok, err := m.profiles.BelongsTo(r.Context(), profileID, acct.AccountID)
		if err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeInternal, "failed to resolve profile")
			return
		}
		if !ok {
			httputil.WriteError(w, http.StatusForbidden, httputil.CodeForbidden, "profile does not belong to this account")
			return
		}

		ctx := authctx.WithProfile(r.Context(), profileID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acct := AccountFromContext(r.Context())
		if acct == nil || !acct.IsAdmin {
			httputil.WriteError(w, http.StatusForbidden, httputil.CodeForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func AccountFromContext(ctx context.Context) *AccountContext {
	return authctx.AccountFromContext(ctx)
}

func ProfileFromContext(ctx context.Context) (uuid.UUID, bool) {
	return authctx.ProfileFromContext(ctx)
}

func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	return ""
}
