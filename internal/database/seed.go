package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/m3dev4/essenz/internal/domain"
)

// BootstrapAdmin promotes the configured account to ADMIN. The account
// must already exist; there is no silent user creation from config.
func BootstrapAdmin(ctx context.Context, db *gorm.DB, email string, log *slog.Logger) error {
	if email == "" {
		return nil
	}
	var user domain.User
	err := db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn("bootstrap admin not found", slog.String("email", email))
		return nil
	}
	if err != nil {
		return fmt.Errorf("find bootstrap admin: %w", err)
	}
	if user.Role == domain.RoleAdmin {
		return nil
	}
	if err := db.WithContext(ctx).Model(&user).Update("role", domain.RoleAdmin).Error; err != nil {
		return fmt.Errorf("promote bootstrap admin: %w", err)
	}
	log.Info("bootstrap admin promoted", slog.String("email", email))
	return nil
}

// ForceVerifyEmail marks the account verified and clears any pending
// code. Used by the seed CLI for local environments.
func ForceVerifyEmail(ctx context.Context, db *gorm.DB, email string) error {
	res := db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Updates(map[string]any{
		"is_verified":                   true,
		"verification_token":            nil,
		"verification_token_expires_at": nil,
	})
	if res.Error != nil {
		return fmt.Errorf("force verify email: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("no account with email %q", email)
	}
	return nil
}

// ExpireSessions backdates every session for a user so the next
// validation rejects it. Used by the seed CLI to exercise expiry paths.
func ExpireSessions(ctx context.Context, db *gorm.DB, email string) (int64, error) {
	var user domain.User
	if err := db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("no account with email %q", email)
		}
		return 0, fmt.Errorf("find user: %w", err)
	}
	res := db.WithContext(ctx).Model(&domain.Session{}).Where("user_id = ?", user.ID).
		Update("expires_at", time.Now().Add(-time.Minute))
	if res.Error != nil {
		return 0, fmt.Errorf("expire sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}
