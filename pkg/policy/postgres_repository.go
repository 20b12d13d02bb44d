package policy

import (
	"context"
	"embed"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/notifykit/pkg/pg"
)

// Migrations holds the goose migrations for the postgres repository under "migrations".
//
//go:embed migrations/*.sql
var Migrations embed.FS

// pgxQuerier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores documents in the notification_preferences table as jsonb.
type PostgresRepository struct {
	db pgxQuerier
}

// NewPostgresRepository creates a repository over a pgx pool or connection.
func NewPostgresRepository(db pgxQuerier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const (
	loadPreferencesQuery = `SELECT preferences FROM notification_preferences WHERE user_id = $1`
	savePreferencesQuery = `INSERT INTO notification_preferences (user_id, preferences, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (user_id) DO UPDATE SET preferences = EXCLUDED.preferences, updated_at = EXCLUDED.updated_at`
)

func (r *PostgresRepository) Load(ctx context.Context, userID string) ([]byte, error) {
	var data []byte
	if err := r.db.QueryRow(ctx, loadPreferencesQuery, userID).Scan(&data); err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (r *PostgresRepository) Save(ctx context.Context, userID string, data []byte) error {
	_, err := r.db.Exec(ctx, savePreferencesQuery, userID, string(data))
	return err
}
