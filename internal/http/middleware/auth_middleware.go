package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/m3dev4/essenz/internal/domain"
	"github.com/m3dev4/essenz/internal/http/response"
	"github.com/m3dev4/essenz/internal/repository"
	"github.com/m3dev4/essenz/internal/security"
	"github.com/m3dev4/essenz/internal/service"
)

type ctxKey int

const (
	userCtxKey ctxKey = iota
	sessionCtxKey
)

const SessionHeader = "X-Session-Id"

// UserFromContext returns the authenticated account, if any.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userCtxKey).(*domain.User)
	return u, ok
}

// SessionFromContext returns the session the request authenticated
// with. Only set on the session-header path.
func SessionFromContext(ctx context.Context) (*domain.Session, bool) {
	s, ok := ctx.Value(sessionCtxKey).(*domain.Session)
	return s, ok
}

// Authenticator guards routes. It accepts the auth cookie, a bearer
// token, or a session id header; all three resolve to a fresh account
// lookup, and the session path runs full lifecycle validation.
type Authenticator struct {
	auth *service.AuthService
}

func NewAuthenticator(auth *service.AuthService) *Authenticator {
	return &Authenticator{auth: auth}
}

func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// Already authenticated by an enclosing group; do not resolve
		// the credentials a second time.
		if _, ok := UserFromContext(ctx); ok {
			next.ServeHTTP(w, r)
			return
		}

		if token := tokenFromRequest(r); token != "" {
			user, err := a.auth.Authenticate(ctx, token)
			if err != nil {
				writeAuthError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, userCtxKey, user)))
			return
		}

		if sessionID := r.Header.Get(SessionHeader); sessionID != "" {
			user, session, err := a.auth.AuthenticateSession(ctx, sessionID)
			if err != nil {
				writeAuthError(w, r, err)
				return
			}
			ctx = context.WithValue(ctx, userCtxKey, user)
			ctx = context.WithValue(ctx, sessionCtxKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
	})
}

// RequireAdmin layers a role check on top of Require.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return a.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok || user.Role != domain.RoleAdmin {
			response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "admin access required", nil)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(security.AuthCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	const prefix = "Bearer "
	if h := r.Header.Get("Authorization"); len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrSessionExpired):
		response.Error(w, r, http.StatusUnauthorized, "SESSION_EXPIRED", "session expired", nil)
	case errors.Is(err, security.ErrTokenExpired):
		response.Error(w, r, http.StatusUnauthorized, "TOKEN_EXPIRED", "token expired", nil)
	case errors.Is(err, repository.ErrSessionNotFound),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, security.ErrTokenInvalid):
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials", nil)
	default:
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "authentication failed", nil)
	}
}
