package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/m3dev4/essenz/internal/device"
	"github.com/m3dev4/essenz/internal/domain"
	"github.com/m3dev4/essenz/internal/observability"
	"github.com/m3dev4/essenz/internal/repository"
)

// SessionService owns the session lifecycle. Every authenticated
// request funnels through Validate, whichever credential carried it.
type SessionService struct {
	sessions repository.SessionRepository
	ttl      time.Duration
	metrics  *observability.AuthMetrics
	log      *slog.Logger
}

func NewSessionService(sessions repository.SessionRepository, ttl time.Duration, metrics *observability.AuthMetrics, log *slog.Logger) *SessionService {
	return &SessionService{sessions: sessions, ttl: ttl, metrics: metrics, log: log}
}

// Open records a fresh session for the device behind ip and userAgent.
func (s *SessionService) Open(ctx context.Context, userID, ip, userAgent string) (*domain.Session, error) {
	info := device.Parse(userAgent)
	now := time.Now()
	session := &domain.Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		IP:           ip,
		UserAgent:    userAgent,
		DeviceType:   info.Type,
		Browser:      info.Browser,
		OS:           info.OS,
		IsOnline:     true,
		LastActiveAt: now,
		ExpiresAt:    now.Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	s.metrics.SessionOpened(ctx)
	return session, nil
}

// Validate resolves a session id to a live session. Expired rows are
// deleted on sight and reported as ErrSessionExpired; valid sessions
// get their activity timestamp refreshed.
func (s *SessionService) Validate(ctx context.Context, id string) (*domain.Session, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now()) {
		if delErr := s.sessions.DeleteByID(ctx, id); delErr != nil && !errors.Is(delErr, repository.ErrSessionNotFound) {
			s.log.WarnContext(ctx, "delete expired session", slog.String("error", delErr.Error()))
		}
		s.metrics.SessionClosed(ctx, 1)
		return nil, ErrSessionExpired
	}
	if err := s.sessions.Touch(ctx, id, time.Now()); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		s.log.WarnContext(ctx, "touch session", slog.String("error", err.Error()))
	}
	return session, nil
}

func (s *SessionService) List(ctx context.Context, userID string) ([]domain.Session, error) {
	return s.sessions.ListByUserID(ctx, userID)
}

func (s *SessionService) Close(ctx context.Context, id string) error {
	if err := s.sessions.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.metrics.SessionClosed(ctx, 1)
	return nil
}

func (s *SessionService) CloseAll(ctx context.Context, userID string) (int64, error) {
	n, err := s.sessions.DeleteByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.metrics.SessionClosed(ctx, n)
	}
	return n, nil
}

// PurgeExpired sweeps expired rows. Expiry is otherwise lazy, so this
// only reclaims rows from sessions that never came back.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, time.Now())
}
