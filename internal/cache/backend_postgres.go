package cache

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresBackend keeps snapshots as rows of a single key/value table.
type PostgresBackend struct {
	db         *sql.DB
	schemaOnce sync.Once
	schemaErr  error
}

// NewPostgresBackend opens and pings the database behind dsn.
func NewPostgresBackend(ctx context.Context, dsn string) (*PostgresBackend, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresBackend{db: db}, nil
}

// Close releases the connection pool.
func (b *PostgresBackend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *PostgresBackend) ensureSchema(ctx context.Context) error {
	b.schemaOnce.Do(func() {
		_, b.schemaErr = b.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS docsync_snapshots (
  key TEXT PRIMARY KEY,
  data BYTEA NOT NULL,
  updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);`)
	})
	return b.schemaErr
}

// Get returns the stored bytes for key, or ErrNotFound.
func (b *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := b.ensureSchema(ctx); err != nil {
		return nil, err
	}
	var data []byte
	err := b.db.QueryRowContext(ctx, `SELECT data FROM docsync_snapshots WHERE key = $1`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return data, err
}

// Put upserts the row for key in one statement.
func (b *PostgresBackend) Put(ctx context.Context, key string, data []byte) error {
	if err := b.ensureSchema(ctx); err != nil {
		return err
	}
	_, err := b.db.ExecContext(ctx, `
INSERT INTO docsync_snapshots (key, data, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (key)
DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`, key, data)
	return err
}
