// Package database persists scans and analyses. Every backend stores the
// same versioned JSON documents that ExportScan/ExportAnalysis write, so a
// snapshot reloaded from any of them yields identical queries.
package database

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"discord-analyzer/models"
)

// DefaultKeep is the number of snapshots of each kind kept per guild.
const DefaultKeep = 7

// ErrNotFound is returned when a guild has no snapshot of the requested kind.
var ErrNotFound = errors.New("snapshot not found")

// Kind says what a snapshot holds.
type Kind string

const (
	KindScan     Kind = "scan"
	KindAnalysis Kind = "analysis"
)

// Snapshot describes one stored document.
type Snapshot struct {
	ID        string    `json:"id"`
	GuildID   string    `json:"guild_id"`
	Kind      Kind      `json:"kind"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	// Messages is the message count of a scan, or of the scan an analysis
	// was built from when known.
	Messages int `json:"messages"`
}

// Store keeps the history of scans and analyses per guild.
type Store interface {
	SaveScan(ctx context.Context, guildID string, scan *models.Scan) (Snapshot, error)
	LatestScan(ctx context.Context, guildID string) (*models.Scan, error)
	SaveAnalysis(ctx context.Context, guildID string, a *models.Analysis) (Snapshot, error)
	LatestAnalysis(ctx context.Context, guildID string) (*models.Analysis, error)
	// ListSnapshots returns the snapshots of guildID, newest first.
	ListSnapshots(ctx context.Context, guildID string) ([]Snapshot, error)
	Close() error
}

// Open returns the store selected by cfg.Driver. cfg.Keep overrides
// DefaultKeep when set.
func Open(ctx context.Context, cfg models.StorageConfig) (Store, error) {
	keep := DefaultKeep
	if cfg.Keep != 0 {
		keep = cfg.Keep
	}
	switch cfg.Driver {
	case "", "sqlite", "sqlite3":
		s, err := OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		s.Keep = keep
		return s, nil
	case "postgres", "pgx":
		s, err := OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		s.Keep = keep
		return s, nil
	case "file":
		s, err := OpenFileStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		s.Keep = keep
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// prune splits an oldest-first index into the snapshots to keep and the
// ones of kind beyond the newest keep.
func prune(index []Snapshot, kind Kind, keep int) (kept, dropped []Snapshot) {
	if keep < 0 {
		return index, nil
	}
	seen := 0
	for i := len(index) - 1; i >= 0; i-- {
		if index[i].Kind != kind {
			continue
		}
		if seen++; seen > keep {
			dropped = append(dropped, index[i])
		}
	}
	if len(dropped) == 0 {
		return index, nil
	}
	kept = make([]Snapshot, 0, len(index)-len(dropped))
	for _, snap := range index {
		if snap.Kind != kind || !slices.ContainsFunc(dropped, func(d Snapshot) bool { return d.ID == snap.ID }) {
			kept = append(kept, snap)
		}
	}
	return kept, dropped
}

func newSnapshot(guildID string, kind Kind, version string, messages int, now time.Time) Snapshot {
	return Snapshot{
		ID:        uuid.NewString(),
		GuildID:   guildID,
		Kind:      kind,
		Version:   version,
		CreatedAt: now.UTC(),
		Messages:  messages,
	}
}

func messagesIn(a *models.Analysis) int {
	if a == nil || a.Server == nil {
		return 0
	}
	return a.Server.Messages.Total()
}
