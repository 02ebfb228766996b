package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/m3dev4/essenz/internal/http/middleware"
	"github.com/m3dev4/essenz/internal/http/response"
	"github.com/m3dev4/essenz/internal/repository"
	"github.com/m3dev4/essenz/internal/security"
	"github.com/m3dev4/essenz/internal/service"
)

type UserHandler struct {
	users    *service.UserService
	sessions *service.SessionService
	cookies  *security.CookieManager
}

func NewUserHandler(users *service.UserService, sessions *service.SessionService, cookies *security.CookieManager) *UserHandler {
	return &UserHandler{users: users, sessions: sessions, cookies: cookies}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	response.JSON(w, r, http.StatusOK, "", user)
}

// PublicProfile is unauthenticated and only exposes the public
// projection.
func (h *UserHandler) PublicProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	profile, err := h.users.ProfileByUsername(r.Context(), username)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, "", profile)
}

type updateProfileRequest struct {
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	Age       *int    `json:"age"`
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var req updateProfileRequest
	if err := response.Decode(r, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	if req.Username != nil && len(*req.Username) < 3 {
		badRequest(w, r, map[string]string{"username": "must be at least 3 characters"})
		return
	}
	if req.Age != nil && (*req.Age < 13 || *req.Age > 120) {
		badRequest(w, r, map[string]string{"age": "must be between 13 and 120"})
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), user.ID, service.UpdateProfileInput{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Age:       req.Age,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, "profile updated", updated)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var req changePasswordRequest
	if err := response.Decode(r, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	if len(req.NewPassword) < 8 {
		badRequest(w, r, map[string]string{"new_password": "must be at least 8 characters"})
		return
	}

	keepSessionID := ""
	if session, ok := middleware.SessionFromContext(r.Context()); ok {
		keepSessionID = session.ID
	}
	if err := h.users.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword, keepSessionID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, "password changed", nil)
}

func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	if err := h.users.Delete(r.Context(), user.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.cookies.Clear(w)
	response.JSON(w, r, http.StatusOK, "account deleted", nil)
}

func (h *UserHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	sessions, err := h.sessions.List(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, "", sessions)
}

// CloseSession only closes sessions owned by the caller.
func (h *UserHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	owned, err := h.sessions.List(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var mine bool
	for _, s := range owned {
		if s.ID == sessionID {
			mine = true
			break
		}
	}
	if !mine {
		writeServiceError(w, r, repository.ErrSessionNotFound)
		return
	}

	if err := h.sessions.Close(r.Context(), sessionID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, "session closed", nil)
}

func (h *UserHandler) CloseAllSessions(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	n, err := h.sessions.CloseAll(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.cookies.Clear(w)
	response.JSON(w, r, http.StatusOK, "sessions closed", map[string]int64{"closed": n})
}
