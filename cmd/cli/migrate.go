package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"CastingCall/internal/bootstrap"
	"CastingCall/internal/db"
	"CastingCall/internal/hashing"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			// db.Open применяет миграции сам
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()
			e.log.Info("migrations applied", zap.String("database", db.SafeURL(e.cfg.DatabaseURL)))
			return nil
		},
	}
}

func newBootstrapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the first admin from ADMIN_USERNAME / ADMIN_PASSWORD if none exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()
			_, err = ensureAdmin(cmd.Context(), e)
			return err
		},
	}
}

func ensureAdmin(ctx context.Context, e *env) (bool, error) {
	created, err := bootstrap.EnsureFirstAdmin(ctx, e.store.Admins(),
		hashing.NewHasher(e.cfg.BcryptCost),
		bootstrap.Credentials{Username: e.cfg.AdminUsername, Password: e.cfg.AdminPassword},
		e.log.Named("bootstrap"),
	)
	if errors.Is(err, bootstrap.ErrMissingCredentials) {
		return false, fmt.Errorf("no admin accounts exist: %w", err)
	}
	return created, err
}
