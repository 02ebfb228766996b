package handler

import (
	"net/http"

	"github.com/m3dev4/essenz/internal/http/middleware"
	"github.com/m3dev4/essenz/internal/http/response"
	"github.com/m3dev4/essenz/internal/service"
)

const maxAvatarUpload = 5 << 20

type OnboardingHandler struct {
	onboarding *service.OnboardingService
}

func NewOnboardingHandler(onboarding *service.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{onboarding: onboarding}
}

type stepOneRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (h *OnboardingHandler) StepOne(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var req stepOneRequest
	if err := response.Decode(r, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	if req.FirstName == "" || req.LastName == "" {
		badRequest(w, r, "first_name and last_name are required")
		return
	}

	updated, err := h.onboarding.StepOne(r.Context(), user.ID, req.FirstName, req.LastName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, "step one complete", updated)
}

type stepTwoRequest struct {
	Age int `json:"age"`
}

func (h *OnboardingHandler) StepTwo(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var req stepTwoRequest
	if err := response.Decode(r, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	if req.Age < 13 || req.Age > 120 {
		badRequest(w, r, map[string]string{"age": "must be between 13 and 120"})
		return
	}

	updated, err := h.onboarding.StepTwo(r.Context(), user.ID, req.Age)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, "step two complete", updated)
}

type stepThreeRequest struct {
	Bio string `json:"bio"`
}

func (h *OnboardingHandler) StepThree(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var req stepThreeRequest
	if err := response.Decode(r, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	if req.Bio == "" {
		badRequest(w, r, "bio is required")
		return
	}

	updated, err := h.onboarding.StepThree(r.Context(), user.ID, req.Bio)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, "step three complete", updated)
}

// StepFour takes a multipart upload with the avatar under "avatar".
func (h *OnboardingHandler) StepFour(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	if err := r.ParseMultipartForm(maxAvatarUpload); err != nil {
		badRequest(w, r, "multipart form with an avatar file is required")
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		badRequest(w, r, "avatar file is required")
		return
	}
	defer file.Close()

	updated, err := h.onboarding.StepFour(r.Context(), user.ID, file, header.Size)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, "onboarding complete", updated)
}
