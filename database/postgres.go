package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"discord-analyzer/models"
)

// payload is bytea: jsonb would reorder the keys of every counter.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS analyzer_snapshots (
    id TEXT PRIMARY KEY,
    guild_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    version TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    messages INTEGER NOT NULL DEFAULT 0,
    payload BYTEA NOT NULL,
    seq BIGSERIAL
);
ALTER TABLE analyzer_snapshots ADD COLUMN IF NOT EXISTS seq BIGSERIAL;
CREATE INDEX IF NOT EXISTS analyzer_snapshots_guild ON analyzer_snapshots (guild_id, kind, created_at DESC, seq DESC);`

// PostgresStore keeps snapshots in a postgres table.
type PostgresStore struct {
	// Keep is how many snapshots of each kind a guild keeps; negative keeps all.
	Keep int
	pool *pgxpool.Pool
	now  func() time.Time
}

// OpenPostgres connects to dsn and ensures the snapshot table exists.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create snapshot table: %w", err)
	}
	return &PostgresStore{Keep: DefaultKeep, pool: pool, now: time.Now}, nil
}

func (s *PostgresStore) SaveScan(ctx context.Context, guildID string, scan *models.Scan) (Snapshot, error) {
	snap := newSnapshot(guildID, KindScan, scan.Version, scan.MessageCount(), s.now())
	return snap, s.insert(ctx, snap, scan)
}

func (s *PostgresStore) SaveAnalysis(ctx context.Context, guildID string, a *models.Analysis) (Snapshot, error) {
	snap := newSnapshot(guildID, KindAnalysis, a.Version, messagesIn(a), s.now())
	return snap, s.insert(ctx, snap, a)
}

func (s *PostgresStore) insert(ctx context.Context, snap Snapshot, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", snap.Kind, err)
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
    INSERT INTO analyzer_snapshots (id, guild_id, kind, version, created_at, messages, payload)
    VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			snap.ID, snap.GuildID, string(snap.Kind), snap.Version, snap.CreatedAt, snap.Messages, payload)
		if err != nil {
			return fmt.Errorf("insert %s snapshot: %w", snap.Kind, err)
		}
		if s.Keep < 0 {
			return nil
		}
		_, err = tx.Exec(ctx, `
    DELETE FROM analyzer_snapshots
    WHERE guild_id = $1 AND kind = $2 AND id NOT IN (
        SELECT id FROM analyzer_snapshots
        WHERE guild_id = $1 AND kind = $2
        ORDER BY created_at DESC, seq DESC LIMIT $3)`,
			snap.GuildID, string(snap.Kind), s.Keep)
		if err != nil {
			return fmt.Errorf("prune %s snapshots: %w", snap.Kind, err)
		}
		return nil
	})
}

func (s *PostgresStore) latest(ctx context.Context, guildID string, kind Kind) ([]byte, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `
    SELECT payload FROM analyzer_snapshots
    WHERE guild_id = $1 AND kind = $2
    ORDER BY created_at DESC, seq DESC LIMIT 1`, guildID, string(kind)).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("latest %s of guild %s: %w", kind, guildID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query latest %s: %w", kind, err)
	}
	return payload, nil
}

func (s *PostgresStore) LatestScan(ctx context.Context, guildID string) (*models.Scan, error) {
	payload, err := s.latest(ctx, guildID, KindScan)
	if err != nil {
		return nil, err
	}
	return decodeScan(payload)
}

func (s *PostgresStore) LatestAnalysis(ctx context.Context, guildID string) (*models.Analysis, error) {
	payload, err := s.latest(ctx, guildID, KindAnalysis)
	if err != nil {
		return nil, err
	}
	return decodeAnalysis(payload)
}

func (s *PostgresStore) ListSnapshots(ctx context.Context, guildID string) ([]Snapshot, error) {
	rows, err := s.pool.Query(ctx, `
    SELECT id, guild_id, kind, version, created_at, messages FROM analyzer_snapshots
    WHERE guild_id = $1
    ORDER BY created_at DESC, seq DESC`, guildID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		var kind string
		if err := rows.Scan(&snap.ID, &snap.GuildID, &kind, &snap.Version, &snap.CreatedAt, &snap.Messages); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snap.Kind = Kind(kind)
		snap.CreatedAt = snap.CreatedAt.UTC()
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
