package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/m3dev4/essenz/internal/domain"
	"github.com/m3dev4/essenz/internal/observability"
	"github.com/m3dev4/essenz/internal/repository"
)

// OnboardingService walks a fresh account through the four profile
// setup steps. Steps may be replayed until the flow is complete; a
// finished flow rejects further writes.
type OnboardingService struct {
	users   repository.UserRepository
	storage ObjectStorage
	log     *slog.Logger
}

func NewOnboardingService(users repository.UserRepository, storage ObjectStorage, log *slog.Logger) *OnboardingService {
	return &OnboardingService{users: users, storage: storage, log: log}
}

func (s *OnboardingService) guard(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsOnboardingDone {
		return nil, ErrOnboardingDone
	}
	return user, nil
}

func (s *OnboardingService) step(ctx context.Context, userID string, fields map[string]any, next domain.OnboardingStep) (*domain.User, error) {
	fields["onboarding_step"] = next
	if err := s.users.UpdateFields(ctx, userID, fields); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, userID)
}

func (s *OnboardingService) StepOne(ctx context.Context, userID, firstName, lastName string) (*domain.User, error) {
	if _, err := s.guard(ctx, userID); err != nil {
		return nil, err
	}
	return s.step(ctx, userID, map[string]any{
		"first_name": firstName,
		"last_name":  lastName,
	}, domain.OnboardingStepTwo)
}

func (s *OnboardingService) StepTwo(ctx context.Context, userID string, age int) (*domain.User, error) {
	if _, err := s.guard(ctx, userID); err != nil {
		return nil, err
	}
	return s.step(ctx, userID, map[string]any{"age": age}, domain.OnboardingStepThree)
}

func (s *OnboardingService) StepThree(ctx context.Context, userID, bio string) (*domain.User, error) {
	if _, err := s.guard(ctx, userID); err != nil {
		return nil, err
	}
	return s.step(ctx, userID, map[string]any{"bio": bio}, domain.OnboardingStepFour)
}

// StepFour uploads the avatar and closes the flow.
func (s *OnboardingService) StepFour(ctx context.Context, userID string, body io.Reader, size int64) (*domain.User, error) {
	if _, err := s.guard(ctx, userID); err != nil {
		return nil, err
	}
	url, err := s.storage.UploadAvatar(ctx, userID, body, size)
	if err != nil {
		return nil, err
	}
	user, err := s.step(ctx, userID, map[string]any{
		"avatar_url":         url,
		"is_onboarding_done": true,
	}, domain.OnboardingDone)
	if err != nil {
		return nil, err
	}
	observability.AuditCtx(ctx, "user.onboarding_completed", slog.String("user_id", userID))
	return user, nil
}
