// Package pg connects to PostgreSQL with pgx/v5 and applies goose migrations.
// It backs the policy repository when NOTIFY_POLICY_BACKEND=postgres.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	if err := pg.Migrate(ctx, pool, policy.Migrations, "migrations", cfg, log); err != nil {
//	    return err
//	}
//	repo := policy.NewPostgresRepository(pool)
package pg
