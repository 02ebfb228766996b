package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/m3dev4/essenz/internal/domain"
)

// Migrate brings the schema up to date for every persisted model.
func Migrate(db *gorm.DB, log *slog.Logger) error {
	models := []any{
		&domain.User{},
		&domain.Session{},
		&domain.Category{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Info("schema migrated", slog.Int("models", len(models)))
	return nil
}
