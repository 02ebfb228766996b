// Package seed implements the local admin CLI: promote accounts,
// force-verify emails and manipulate sessions without going through
// the HTTP surface.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/m3dev4/essenz/internal/database"
	"github.com/m3dev4/essenz/internal/domain"
	"github.com/m3dev4/essenz/internal/tools/common"
	"github.com/m3dev4/essenz/internal/tools/ui"
)

func Execute() error {
	root := &cobra.Command{
		Use:           "essenz-admin",
		Short:         "Local administration for the Essenz+ backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		promoteAdminCmd(),
		verifyEmailCmd(),
		expireSessionsCmd(),
		purgeSessionsCmd(),
	)

	if err := root.Execute(); err != nil {
		common.Error("%v", err)
		return err
	}
	return nil
}

func openDB() (*gorm.DB, error) {
	dsn, err := common.RequireEnv("DATABASE_URL")
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func promoteAdminCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "promote-admin",
		Short: "Grant the ADMIN role to an existing account",
		RunE: func(_ *cobra.Command, _ []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			err = ui.Run("promoting "+email, func(ctx context.Context) error {
				return database.BootstrapAdmin(ctx, db, email, slog.Default())
			})
			if err != nil {
				return err
			}
			common.Success("%s promoted to ADMIN", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.MarkFlagRequired("email")
	return cmd
}

func verifyEmailCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "verify-email",
		Short: "Mark an account's email as verified without a code",
		RunE: func(_ *cobra.Command, _ []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			err = ui.Run("verifying "+email, func(ctx context.Context) error {
				return database.ForceVerifyEmail(ctx, db, email)
			})
			if err != nil {
				return err
			}
			common.Success("%s verified", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.MarkFlagRequired("email")
	return cmd
}

func expireSessionsCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "expire-sessions",
		Short: "Backdate every session of an account so it must log in again",
		RunE: func(_ *cobra.Command, _ []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			var n int64
			err = ui.Run("expiring sessions for "+email, func(ctx context.Context) error {
				n, err = database.ExpireSessions(ctx, db, email)
				return err
			})
			if err != nil {
				return err
			}
			common.Success("%d session(s) expired for %s", n, email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.MarkFlagRequired("email")
	return cmd
}

func purgeSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-sessions",
		Short: "Delete all expired session rows",
		RunE: func(_ *cobra.Command, _ []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			var n int64
			err = ui.Run("purging expired sessions", func(ctx context.Context) error {
				res := db.WithContext(ctx).Delete(&domain.Session{}, "expires_at < ?", time.Now())
				n = res.RowsAffected
				return res.Error
			})
			if err != nil {
				return err
			}
			common.Success("%d expired session(s) purged", n)
			return nil
		},
	}
}
