package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/m3dev4/essenz/internal/device"
	"github.com/m3dev4/essenz/internal/http/middleware"
	"github.com/m3dev4/essenz/internal/http/response"
	"github.com/m3dev4/essenz/internal/observability"
	"github.com/m3dev4/essenz/internal/security"
	"github.com/m3dev4/essenz/internal/service"
)

type AuthHandler struct {
	auth    *service.AuthService
	cookies *security.CookieManager
}

func NewAuthHandler(auth *service.AuthService, cookies *security.CookieManager) *AuthHandler {
	return &AuthHandler{auth: auth, cookies: cookies}
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (req *registerRequest) validate() map[string]string {
	problems := map[string]string{}
	if !strings.Contains(req.Email, "@") {
		problems["email"] = "must be a valid email address"
	}
	if len(strings.TrimSpace(req.Username)) < 3 {
		problems["username"] = "must be at least 3 characters"
	}
	if len(req.Password) < 8 {
		problems["password"] = "must be at least 8 characters"
	}
	if len(problems) == 0 {
		return nil
	}
	return problems
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := response.Decode(r, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	if problems := req.validate(); problems != nil {
		badRequest(w, r, problems)
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, "account created, verification code sent", user)
}

type verifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type verifyEmailResponse struct {
	User      any    `json:"user"`
	SessionID string `json:"session_id"`
}

// VerifyEmail confirms the code and hands back the first session so the
// client is signed in immediately after verifying.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := response.Decode(r, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	if req.Email == "" || len(req.Code) != 6 {
		badRequest(w, r, "email and a 6-digit code are required")
		return
	}

	user, session, err := h.auth.VerifyEmail(r.Context(), service.VerifyEmailInput{
		Email:     req.Email,
		Code:      req.Code,
		IP:        device.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, "email verified", verifyEmailResponse{
		User:      user,
		SessionID: session.ID,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User      any    `json:"user"`
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := response.Decode(r, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		badRequest(w, r, "email and password are required")
		return
	}

	result, err := h.auth.Login(r.Context(), service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IP:        device.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.cookies.Set(w, result.Token)
	response.JSON(w, r, http.StatusOK, "logged in", loginResponse{
		User:      result.User,
		SessionID: result.Session.ID,
		Token:     result.Token,
	})
}

type logoutRequest struct {
	SessionID string `json:"session_id"`
}

// Logout accepts the session id from the body or the session header,
// and always clears the auth cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := response.Decode(r, &req); err != nil {
			badRequest(w, r, err.Error())
			return
		}
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = r.Header.Get(middleware.SessionHeader)
	}
	if sessionID == "" {
		badRequest(w, r, "session id is required")
		return
	}

	if err := h.auth.Logout(r.Context(), sessionID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.cookies.Clear(w)
	observability.Audit(r, "session.closed", slog.String("session_id", sessionID))
	response.JSON(w, r, http.StatusOK, "logged out", nil)
}
