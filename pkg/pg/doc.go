// Package pg connects to PostgreSQL through a pgx pool and applies goose
// migrations from an fs.FS, usually an embedded directory.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	err = pg.Migrate(ctx, pool, postgres.Migrations, postgres.MigrationsDir, cfg, slog.Default())
//
// IsNotFoundError and IsDuplicateKeyError classify pgx errors for stores.
package pg
