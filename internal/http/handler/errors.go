package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/m3dev4/essenz/internal/http/response"
	"github.com/m3dev4/essenz/internal/repository"
	"github.com/m3dev4/essenz/internal/service"
)

// writeServiceError maps domain errors onto the HTTP error taxonomy.
// Anything unmapped is a 500 and gets logged with its cause; the cause
// never leaves the process.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrEmailTaken):
		response.Error(w, r, http.StatusConflict, "EMAIL_TAKEN", "email already registered", nil)
	case errors.Is(err, repository.ErrUsernameTaken):
		response.Error(w, r, http.StatusConflict, "USERNAME_TAKEN", "username already taken", nil)
	case errors.Is(err, repository.ErrCategoryExists):
		response.Error(w, r, http.StatusConflict, "CATEGORY_EXISTS", "category name already exists", nil)
	case errors.Is(err, repository.ErrUserNotFound):
		response.Error(w, r, http.StatusNotFound, "USER_NOT_FOUND", "user not found", nil)
	case errors.Is(err, repository.ErrSessionNotFound):
		response.Error(w, r, http.StatusNotFound, "SESSION_NOT_FOUND", "session not found", nil)
	case errors.Is(err, repository.ErrCategoryNotFound):
		response.Error(w, r, http.StatusNotFound, "CATEGORY_NOT_FOUND", "category not found", nil)
	case errors.Is(err, service.ErrInvalidVerificationCode):
		response.Error(w, r, http.StatusNotFound, "INVALID_CODE", "verification code does not match", nil)
	case errors.Is(err, service.ErrInvalidPassword):
		response.Error(w, r, http.StatusUnauthorized, "INVALID_PASSWORD", "invalid password", nil)
	case errors.Is(err, service.ErrSessionExpired):
		response.Error(w, r, http.StatusUnauthorized, "SESSION_EXPIRED", "session expired", nil)
	case errors.Is(err, service.ErrVerificationExpired):
		response.Error(w, r, http.StatusBadRequest, "CODE_EXPIRED", "verification code expired", nil)
	case errors.Is(err, service.ErrRoleUnchanged):
		response.Error(w, r, http.StatusBadRequest, "ROLE_UNCHANGED", "user already has that role", nil)
	case errors.Is(err, service.ErrOnboardingDone):
		response.Error(w, r, http.StatusBadRequest, "ONBOARDING_DONE", "onboarding already completed", nil)
	case errors.Is(err, service.ErrNothingToUpdate):
		response.Error(w, r, http.StatusBadRequest, "EMPTY_UPDATE", "no fields to update", nil)
	case errors.Is(err, service.ErrAvatarTooLarge):
		response.Error(w, r, http.StatusBadRequest, "AVATAR_TOO_LARGE", "avatar exceeds size limit", nil)
	case errors.Is(err, service.ErrUnsupportedAvatarType):
		response.Error(w, r, http.StatusBadRequest, "AVATAR_TYPE", "unsupported avatar content type", nil)
	default:
		slog.Default().ErrorContext(r.Context(), "unhandled service error", slog.String("error", err.Error()))
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
	}
}

func badRequest(w http.ResponseWriter, r *http.Request, details any) {
	response.Error(w, r, http.StatusBadRequest, "VALIDATION", "invalid request", details)
}
