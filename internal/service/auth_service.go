package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m3dev4/essenz/internal/domain"
	"github.com/m3dev4/essenz/internal/observability"
	"github.com/m3dev4/essenz/internal/repository"
	"github.com/m3dev4/essenz/internal/security"
)

// NormalizeEmail lowercases and trims an address. All account lookups
// go through this, so casing at the edge never splits an identity.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type RegisterInput struct {
	Email    string
	Username string
	Password string
}

type VerifyEmailInput struct {
	Email     string
	Code      string
	IP        string
	UserAgent string
}

type LoginInput struct {
	Email     string
	Password  string
	IP        string
	UserAgent string
}

type LoginResult struct {
	User    *domain.User
	Session *domain.Session
	Token   string
}

type AuthService struct {
	users    repository.UserRepository
	sessions *SessionService
	hasher   *security.PasswordHasher
	jwt      *security.JWTManager
	notifier VerificationNotifier
	metrics  *observability.AuthMetrics
	codeTTL  time.Duration
	log      *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	sessions *SessionService,
	hasher *security.PasswordHasher,
	jwt *security.JWTManager,
	notifier VerificationNotifier,
	metrics *observability.AuthMetrics,
	codeTTL time.Duration,
	log *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		jwt:      jwt,
		notifier: notifier,
		metrics:  metrics,
		codeTTL:  codeTTL,
		log:      log,
	}
}

// Register creates an unverified account and emails its verification
// code. The insert and both uniqueness checks run in one transaction.
// A delivery failure fails the call; the persisted row stays behind so
// the address cannot be re-registered.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := NormalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.metrics.RecordRegistration(ctx, "error")
		return nil, err
	}
	code, err := security.NewVerificationCode()
	if err != nil {
		s.metrics.RecordRegistration(ctx, "error")
		return nil, err
	}
	expiresAt := time.Now().Add(s.codeTTL)

	user := &domain.User{
		ID:                         uuid.NewString(),
		Email:                      email,
		Username:                   username,
		PasswordHash:               hash,
		Role:                       domain.RoleUser,
		OnboardingStep:             domain.OnboardingStepOne,
		VerificationToken:          &code,
		VerificationTokenExpiresAt: &expiresAt,
	}
	if err := s.users.CreateUnique(ctx, user); err != nil {
		s.metrics.RecordRegistration(ctx, "conflict")
		return nil, err
	}

	if err := s.notifier.SendVerificationCode(ctx, email, username, code); err != nil {
		s.metrics.RecordRegistration(ctx, "mail_error")
		s.log.ErrorContext(ctx, "send verification email",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("send verification email: %w", err)
	}

	s.metrics.RecordRegistration(ctx, "ok")
	observability.AuditCtx(ctx, "user.registered", slog.String("user_id", user.ID))
	return user, nil
}

// VerifyEmail confirms ownership of the address and opens the account's
// first session for the verifying device. An already-verified account
// answers exactly like a code mismatch, so a caller holding only an
// email cannot learn whether the account finished verification.
func (s *AuthService) VerifyEmail(ctx context.Context, in VerifyEmailInput) (*domain.User, *domain.Session, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(in.Email))
	if err != nil {
		s.metrics.RecordVerification(ctx, "not_found")
		return nil, nil, err
	}
	if user.IsVerified {
		s.metrics.RecordVerification(ctx, "already_verified")
		return nil, nil, ErrInvalidVerificationCode
	}
	if user.VerificationToken == nil || *user.VerificationToken != in.Code {
		s.metrics.RecordVerification(ctx, "invalid_code")
		return nil, nil, ErrInvalidVerificationCode
	}
	if user.VerificationTokenExpiresAt == nil || time.Now().After(*user.VerificationTokenExpiresAt) {
		s.metrics.RecordVerification(ctx, "expired")
		return nil, nil, ErrVerificationExpired
	}

	err = s.users.UpdateFields(ctx, user.ID, map[string]any{
		"is_verified":                   true,
		"verification_token":            nil,
		"verification_token_expires_at": nil,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("mark verified: %w", err)
	}
	user.IsVerified = true
	user.VerificationToken = nil
	user.VerificationTokenExpiresAt = nil

	session, err := s.sessions.Open(ctx, user.ID, in.IP, in.UserAgent)
	if err != nil {
		return nil, nil, err
	}

	s.metrics.RecordVerification(ctx, "ok")
	observability.AuditCtx(ctx, "user.email_verified",
		slog.String("user_id", user.ID),
		slog.String("session_id", session.ID))
	return user, session, nil
}

// Login authenticates the credentials, opens a session for the calling
// device and signs a bearer token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	start := time.Now()

	user, err := s.users.FindByEmail(ctx, NormalizeEmail(in.Email))
	if err != nil {
		s.metrics.RecordLogin(ctx, "not_found", time.Since(start))
		return nil, err
	}
	if err := s.hasher.Verify(in.Password, user.PasswordHash); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			s.metrics.RecordLogin(ctx, "bad_password", time.Since(start))
			observability.AuditCtx(ctx, "user.login_rejected", slog.String("user_id", user.ID))
			return nil, ErrInvalidPassword
		}
		return nil, err
	}

	session, err := s.sessions.Open(ctx, user.ID, in.IP, in.UserAgent)
	if err != nil {
		s.metrics.RecordLogin(ctx, "error", time.Since(start))
		return nil, err
	}
	token, err := s.jwt.Sign(user.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordLogin(ctx, "ok", time.Since(start))
	observability.AuditCtx(ctx, "user.login",
		slog.String("user_id", user.ID),
		slog.String("session_id", session.ID))
	return &LoginResult{User: user, Session: session, Token: token}, nil
}

// Logout closes the session. Unknown ids surface as not found so a
// replayed logout is visible to the caller.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Close(ctx, sessionID); err != nil {
		return err
	}
	observability.AuditCtx(ctx, "user.logout", slog.String("session_id", sessionID))
	return nil
}

// Authenticate resolves a bearer token to its account.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, claims.UserID)
}

// AuthenticateSession resolves a session id through the same lifecycle
// rules as every other credential, then loads the owning account.
func (s *AuthService) AuthenticateSession(ctx context.Context, sessionID string) (*domain.User, *domain.Session, error) {
	session, err := s.sessions.Validate(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}
