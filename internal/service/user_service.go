package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3dev4/essenz/internal/domain"
	"github.com/m3dev4/essenz/internal/observability"
	"github.com/m3dev4/essenz/internal/repository"
	"github.com/m3dev4/essenz/internal/security"
)

// UpdateProfileInput carries a partial profile update. Nil means leave
// the field alone; a pointer to the zero value clears it.
type UpdateProfileInput struct {
	Username  *string
	FirstName *string
	LastName  *string
	Bio       *string
	Age       *int
}

type UserService struct {
	users    repository.UserRepository
	sessions *SessionService
	hasher   *security.PasswordHasher
	log      *slog.Logger
}

func NewUserService(users repository.UserRepository, sessions *SessionService, hasher *security.PasswordHasher, log *slog.Logger) *UserService {
	return &UserService{users: users, sessions: sessions, hasher: hasher, log: log}
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

// ProfileByUsername returns the public projection only; callers never
// see credentials or verification state through this path.
func (s *UserService) ProfileByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	profile := user.Profile()
	return &profile, nil
}

// UpdateProfile applies the provided fields and nothing else. A
// username change is checked for collisions before writing.
func (s *UserService) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (*domain.User, error) {
	fields := map[string]any{}
	if in.Username != nil {
		taken, err := s.users.FindByUsername(ctx, *in.Username)
		if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
		if taken != nil && taken.ID != id {
			return nil, repository.ErrUsernameTaken
		}
		fields["username"] = *in.Username
	}
	if in.FirstName != nil {
		fields["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		fields["last_name"] = *in.LastName
	}
	if in.Bio != nil {
		fields["bio"] = *in.Bio
	}
	if in.Age != nil {
		fields["age"] = *in.Age
	}
	if len(fields) == 0 {
		return nil, ErrNothingToUpdate
	}

	if err := s.users.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, id)
}

// ChangePassword rotates the credential after re-proving the current
// one and revokes every other session of the account.
func (s *UserService) ChangePassword(ctx context.Context, id, current, next, keepSessionID string) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.hasher.Verify(current, user.PasswordHash); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return ErrInvalidPassword
		}
		return err
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	if err := s.users.UpdateFields(ctx, id, map[string]any{"password_hash": hash}); err != nil {
		return err
	}

	sessions, err := s.sessions.List(ctx, id)
	if err != nil {
		return fmt.Errorf("list sessions after password change: %w", err)
	}
	for _, sess := range sessions {
		if sess.ID == keepSessionID {
			continue
		}
		if err := s.sessions.Close(ctx, sess.ID); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
			s.log.WarnContext(ctx, "revoke session after password change",
				slog.String("session_id", sess.ID),
				slog.String("error", err.Error()))
		}
	}

	observability.AuditCtx(ctx, "user.password_changed", slog.String("user_id", id))
	return nil
}

// Delete removes the account and all its sessions atomically.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.DeleteCascade(ctx, id); err != nil {
		return err
	}
	observability.AuditCtx(ctx, "user.deleted", slog.String("user_id", id))
	return nil
}

func (s *UserService) List(ctx context.Context, limit, offset int) ([]domain.User, int64, error) {
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// SetRole changes an account's role. Re-applying the current role is
// rejected so audit trails only record real transitions.
func (s *UserService) SetRole(ctx context.Context, id string, role domain.UserRole) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return nil, ErrRoleUnchanged
	}
	if err := s.users.UpdateFields(ctx, id, map[string]any{"role": role}); err != nil {
		return nil, err
	}
	user.Role = role
	observability.AuditCtx(ctx, "user.role_changed",
		slog.String("user_id", id),
		slog.String("role", string(role)))
	return user, nil
}
