package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"eduplay-service/internal/config"
	"eduplay-service/internal/infra/store"
)

// NewMigrateCmd applies database migrations and exits.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

func runMigrations(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := store.Migrate(ctx, db); err != nil {
		return err
	}
	fmt.Println("migrations applied")
	return nil
}

// openDatabase picks Postgres when a URL is configured and the local
// SQLite file otherwise.
func openDatabase(cfg config.Config) (*bun.DB, error) {
	if cfg.Database.URL != "" {
		return store.OpenPostgres(cfg.Database.URL)
	}
	return store.OpenSQLite(cfg.SQLitePath())
}
