package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import the SQLite3 driver

	"discord-analyzer/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
    id TEXT PRIMARY KEY,
    guild_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    version TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    messages INTEGER NOT NULL DEFAULT 0,
    payload BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_guild ON snapshots (guild_id, kind, created_at);`

// SQLiteStore keeps snapshots in a single sqlite file.
type SQLiteStore struct {
	// Keep is how many snapshots of each kind a guild keeps; negative keeps all.
	Keep int
	db   *sql.DB
	now  func() time.Time
}

// OpenSQLite opens or creates the database at dbPath.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	// Ensure the directory for the database file exists.
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create snapshots table: %w", err)
	}

	log.Println("Successfully connected to the database at", dbPath)
	return &SQLiteStore{Keep: DefaultKeep, db: db, now: time.Now}, nil
}

func (s *SQLiteStore) SaveScan(ctx context.Context, guildID string, scan *models.Scan) (Snapshot, error) {
	snap := newSnapshot(guildID, KindScan, scan.Version, scan.MessageCount(), s.now())
	return snap, s.insert(ctx, snap, scan)
}

func (s *SQLiteStore) SaveAnalysis(ctx context.Context, guildID string, a *models.Analysis) (Snapshot, error) {
	snap := newSnapshot(guildID, KindAnalysis, a.Version, messagesIn(a), s.now())
	return snap, s.insert(ctx, snap, a)
}

func (s *SQLiteStore) insert(ctx context.Context, snap Snapshot, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", snap.Kind, err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
    INSERT INTO snapshots (id, guild_id, kind, version, created_at, messages, payload)
    VALUES (?, ?, ?, ?, ?, ?, ?);`,
		snap.ID, snap.GuildID, snap.Kind, snap.Version, snap.CreatedAt.UnixNano(), snap.Messages, payload)
	if err != nil {
		return fmt.Errorf("failed to save %s snapshot for guild %s: %w", snap.Kind, snap.GuildID, err)
	}
	if s.Keep >= 0 {
		_, err = tx.ExecContext(ctx, `
    DELETE FROM snapshots
    WHERE guild_id = ? AND kind = ? AND rowid NOT IN (
        SELECT rowid FROM snapshots
        WHERE guild_id = ? AND kind = ?
        ORDER BY created_at DESC, rowid DESC LIMIT ?);`,
			snap.GuildID, snap.Kind, snap.GuildID, snap.Kind, s.Keep)
		if err != nil {
			return fmt.Errorf("failed to prune %s snapshots for guild %s: %w", snap.Kind, snap.GuildID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) latest(ctx context.Context, guildID string, kind Kind) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
    SELECT payload FROM snapshots
    WHERE guild_id = ? AND kind = ?
    ORDER BY created_at DESC, rowid DESC LIMIT 1;`, guildID, kind).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("latest %s of guild %s: %w", kind, guildID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest %s: %w", kind, err)
	}
	return payload, nil
}

func (s *SQLiteStore) LatestScan(ctx context.Context, guildID string) (*models.Scan, error) {
	payload, err := s.latest(ctx, guildID, KindScan)
	if err != nil {
		return nil, err
	}
	return decodeScan(payload)
}

func (s *SQLiteStore) LatestAnalysis(ctx context.Context, guildID string) (*models.Analysis, error) {
	payload, err := s.latest(ctx, guildID, KindAnalysis)
	if err != nil {
		return nil, err
	}
	return decodeAnalysis(payload)
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context, guildID string) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
    SELECT id, guild_id, kind, version, created_at, messages FROM snapshots
    WHERE guild_id = ?
    ORDER BY created_at DESC, rowid DESC;`, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		var created int64
		if err := rows.Scan(&snap.ID, &snap.GuildID, &snap.Kind, &snap.Version, &created, &snap.Messages); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		snap.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
