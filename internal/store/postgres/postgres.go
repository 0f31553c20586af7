// Package postgres provides the pgx-backed store.Store implementation.
//
// Expected schema:
//
//	CREATE TABLE users (
//		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//		url TEXT NOT NULL UNIQUE,
//		username TEXT NOT NULL UNIQUE,
//		email TEXT NOT NULL UNIQUE,
//		picture TEXT NOT NULL DEFAULT '',
//		confirmed BOOLEAN NOT NULL DEFAULT FALSE,
//		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//
//	CREATE TABLE tools (
//		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//		link TEXT NOT NULL UNIQUE,
//		name TEXT NOT NULL,
//		category TEXT NOT NULL,
//		logo TEXT NOT NULL
//	);
//
//	CREATE TABLE user_tools (
//		user_id BIGINT NOT NULL REFERENCES users (id),
//		tool_id BIGINT NOT NULL REFERENCES tools (id),
//		PRIMARY KEY (user_id, tool_id)
//	);
//
//	CREATE TABLE audio_reviews (
//		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//		tool_id BIGINT NOT NULL REFERENCES tools (id),
//		user_id BIGINT NOT NULL REFERENCES users (id),
//		audio BYTEA NOT NULL,
//		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//
// The unique constraint on tools.link is the backstop for the unsynchronized
// check-then-create in the ingestion orchestrator: concurrent creates for the
// same new domain collapse into one row, and the loser re-reads by link.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/appsquad/tooldir/internal/store"
)

// uniqueViolation is the Postgres SQLSTATE for unique-constraint errors.
const uniqueViolation = "23505"

// Pool is the subset of pgxpool.Pool the store uses. Narrowing the
// interface lets pgxmock stand in during tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// Store implements store.Store on top of a Postgres pool.
type Store struct {
	pool Pool
}

// New connects a pool using the provided config and verifies it with a ping.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewWithPool constructs a Store from an existing pool (primarily for testing).
func NewWithPool(pool Pool) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// mapError translates pgx errors into the store sentinels.
func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return store.ErrDuplicate
	}
	return err
}
