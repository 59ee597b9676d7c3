// Package postgres persists stats snapshots in a Postgres table through pgx.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yonasstephen/shams-sub000/internal/models"
	"github.com/yonasstephen/shams-sub000/internal/repository"
)

const schema = `
CREATE TABLE IF NOT EXISTS stats_snapshots (
	season     INTEGER PRIMARY KEY,
	updated_at TIMESTAMPTZ NOT NULL,
	payload    JSONB NOT NULL
)`

type Store struct {
	pool *pgxpool.Pool
}

// New connects, verifies the connection and makes sure the table exists.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolCfg.MaxConns = 4
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) LoadSnapshot(ctx context.Context, season int) (*models.StatsSnapshot, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, "SELECT payload FROM stats_snapshots WHERE season = $1", season).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}

	var snapshot models.StatsSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snapshot, nil
}

func (s *Store) SaveSnapshot(ctx context.Context, snapshot *models.StatsSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO stats_snapshots (season, updated_at, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (season) DO UPDATE SET updated_at = EXCLUDED.updated_at, payload = EXCLUDED.payload`,
		snapshot.Season, snapshot.UpdatedAt, payload)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}
