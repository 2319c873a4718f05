package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore keeps documents as JSONB rows keyed by store path.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed document store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Fetch(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var body string
	err := s.pool.QueryRow(ctx,
		`SELECT body::text FROM quiz_documents WHERE path = $1`,
		path,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("%w: query %s: %v", ErrLoadFailure, path, err)
	}
	return []byte(body), nil
}

// Put inserts or replaces a document.
func (s *PostgresStore) Put(ctx context.Context, path string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO quiz_documents (path, body, updated_at)
		 VALUES ($1, $2::jsonb, NOW())
		 ON CONFLICT (path)
		 DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`,
		path,
		string(body),
	)
	if err != nil {
		return fmt.Errorf("put document %s: %w", path, err)
	}
	return nil
}

// Delete removes a document. Deleting a missing document returns ErrNotFound.
func (s *PostgresStore) Delete(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cmd, err := s.pool.Exec(ctx, `DELETE FROM quiz_documents WHERE path = $1`, path)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", path, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return nil
}
