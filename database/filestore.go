package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"discord-analyzer/models"
)

const indexFile = "index.json"

// FileStore keeps every snapshot as a JSON file under root/<guild id>/, with an
// index.json listing them oldest first.
type FileStore struct {
	// Keep is how many snapshots of each kind a guild keeps; negative keeps all.
	Keep  int
	root  string
	mutex sync.Mutex
	now   func() time.Time
}

// OpenFileStore uses root as the snapshot directory, creating it if needed.
func OpenFileStore(root string) (*FileStore, error) {
	if root == "" {
		return nil, errors.New("file store: empty path")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &FileStore{Keep: DefaultKeep, root: root, now: time.Now}, nil
}

func (fs *FileStore) guildDir(guildID string) string {
	return filepath.Join(fs.root, filepath.Base(guildID))
}

// readIndex must be called with the mutex held.
func (fs *FileStore) readIndex(guildID string) ([]Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(fs.guildDir(guildID), indexFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot index: %w", err)
	}
	var index []Snapshot
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot index: %w", err)
	}
	return index, nil
}

func (fs *FileStore) save(snap Snapshot, v any) error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	dir := fs.guildDir(snap.GuildID)
	if err := writeJSON(filepath.Join(dir, snap.ID+".json"), v); err != nil {
		return err
	}
	index, err := fs.readIndex(snap.GuildID)
	if err != nil {
		return err
	}
	index, dropped := prune(append(index, snap), snap.Kind, fs.Keep)
	if err := writeJSON(filepath.Join(dir, indexFile), index); err != nil {
		return err
	}
	// 索引已更新，删除失败只留下孤立文件
	for _, old := range dropped {
		if err := os.Remove(filepath.Join(dir, old.ID+".json")); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("Failed to remove pruned snapshot %s: %v", old.ID, err)
		}
	}
	return nil
}

func (fs *FileStore) latest(guildID string, kind Kind) ([]byte, error) {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	index, err := fs.readIndex(guildID)
	if err != nil {
		return nil, err
	}
	for i := len(index) - 1; i >= 0; i-- {
		if index[i].Kind != kind {
			continue
		}
		data, err := os.ReadFile(filepath.Join(fs.guildDir(guildID), index[i].ID+".json"))
		if err != nil {
			return nil, fmt.Errorf("read %s snapshot: %w", kind, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("latest %s of guild %s: %w", kind, guildID, ErrNotFound)
}

func (fs *FileStore) SaveScan(_ context.Context, guildID string, scan *models.Scan) (Snapshot, error) {
	snap := newSnapshot(guildID, KindScan, scan.Version, scan.MessageCount(), fs.now())
	return snap, fs.save(snap, scan)
}

func (fs *FileStore) SaveAnalysis(_ context.Context, guildID string, a *models.Analysis) (Snapshot, error) {
	snap := newSnapshot(guildID, KindAnalysis, a.Version, messagesIn(a), fs.now())
	return snap, fs.save(snap, a)
}

func (fs *FileStore) LatestScan(_ context.Context, guildID string) (*models.Scan, error) {
	data, err := fs.latest(guildID, KindScan)
	if err != nil {
		return nil, err
	}
	return decodeScan(data)
}

func (fs *FileStore) LatestAnalysis(_ context.Context, guildID string) (*models.Analysis, error) {
	data, err := fs.latest(guildID, KindAnalysis)
	if err != nil {
		return nil, err
	}
	return decodeAnalysis(data)
}

func (fs *FileStore) ListSnapshots(_ context.Context, guildID string) ([]Snapshot, error) {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	index, err := fs.readIndex(guildID)
	if err != nil {
		return nil, err
	}
	out := make([]Snapshot, len(index))
	for i, snap := range index {
		out[len(index)-1-i] = snap
	}
	return out, nil
}

func (fs *FileStore) Close() error { return nil }
