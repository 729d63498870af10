package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			for _, model := range models {
				if _, err := db.NewCreateTable().
					Model(model).
					IfNotExists().
					Exec(ctx); err != nil {
					return err
				}
			}
			for _, idx := range indexes {
				if _, err := db.NewCreateIndex().
					Model(idx.model).
					Index(idx.name).
					Column(idx.columns...).
					IfNotExists().
					Exec(ctx); err != nil {
					return err
				}
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			for i := len(models) - 1; i >= 0; i-- {
				if _, err := db.NewDropTable().
					Model(models[i]).
					IfExists().
					Exec(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	)
}
