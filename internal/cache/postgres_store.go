package cache

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a PostgreSQL implementation of Store.
//
// Schema:
//
//	CREATE TABLE cache_entries (
//	    key        TEXT PRIMARY KEY,
//	    payload    BYTEA NOT NULL,
//	    stored_at  TIMESTAMPTZ NOT NULL,
//	    expires_at TIMESTAMPTZ
//	);
//	CREATE INDEX cache_entries_expires_at_idx ON cache_entries (expires_at)
//	    WHERE expires_at IS NOT NULL;
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL cache store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Get retrieves an entry, or ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, key string) (*Entry, error) {
	query := `
		SELECT key, payload, stored_at, expires_at
		FROM cache_entries
		WHERE key = $1
	`

	var entry Entry
	var expiresAt *time.Time
	err := s.pool.QueryRow(ctx, query, key).Scan(
		&entry.Key,
		&entry.Payload,
		&entry.StoredAt,
		&expiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if expiresAt != nil {
		entry.ExpiresAt = *expiresAt
	}

	return &entry, nil
}

// Put inserts or replaces an entry.
func (s *PostgresStore) Put(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO cache_entries (key, payload, stored_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET
			payload = EXCLUDED.payload,
			stored_at = EXCLUDED.stored_at,
			expires_at = EXCLUDED.expires_at
	`

	var expiresAt *time.Time
	if !entry.ExpiresAt.IsZero() {
		expiresAt = &entry.ExpiresAt
	}

	_, err := s.pool.Exec(ctx, query,
		entry.Key,
		entry.Payload,
		entry.StoredAt,
		expiresAt,
	)
	return err
}

// Delete removes the given keys; missing keys are not an error.
func (s *PostgresStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	query := `DELETE FROM cache_entries WHERE key = ANY($1)`
	_, err := s.pool.Exec(ctx, query, keys)
	return err
}

// ExpiredBefore returns up to limit keys whose expiry precedes cutoff.
func (s *PostgresStore) ExpiredBefore(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	query := `
		SELECT key
		FROM cache_entries
		WHERE expires_at IS NOT NULL AND expires_at < $1
		ORDER BY expires_at
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}

// Ensure PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
