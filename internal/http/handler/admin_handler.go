package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/m3dev4/essenz/internal/domain"
	"github.com/m3dev4/essenz/internal/http/middleware"
	"github.com/m3dev4/essenz/internal/http/response"
	"github.com/m3dev4/essenz/internal/service"
)

// AdminHandler serves the role-gated account management surface.
type AdminHandler struct {
	users *service.UserService
}

func NewAdminHandler(users *service.UserService) *AdminHandler {
	return &AdminHandler{users: users}
}

type userPage struct {
	Users  []domain.User `json:"users"`
	Total  int64         `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	users, total, err := h.users.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, "", userPage{Users: users, Total: total, Limit: limit, Offset: offset})
}

func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, "", user)
}

type setRoleRequest struct {
	Role string `json:"role"`
}

func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "userID")

	var req setRoleRequest
	if err := response.Decode(r, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	role := domain.UserRole(req.Role)
	if role != domain.RoleUser && role != domain.RoleAdmin {
		badRequest(w, r, map[string]string{"role": "must be USER or ADMIN"})
		return
	}

	// Admins cannot demote themselves; someone has to keep the keys.
	if caller, ok := middleware.UserFromContext(r.Context()); ok && caller.ID == targetID && role != domain.RoleAdmin {
		badRequest(w, r, map[string]string{"role": "cannot change your own role"})
		return
	}

	user, err := h.users.SetRole(r.Context(), targetID, role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, "role updated", user)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "userID")

	if caller, ok := middleware.UserFromContext(r.Context()); ok && caller.ID == targetID {
		badRequest(w, r, "use the profile endpoint to delete your own account")
		return
	}

	if err := h.users.Delete(r.Context(), targetID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, "user deleted", nil)
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
