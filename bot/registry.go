package bot

import (
	"sort"
	"sync"

	"discord-analyzer/models"
)

// Registry holds the latest analysis of every guild. Readers get the
// pointer and must not modify it; a new analysis replaces the old one.
type Registry struct {
	mu       sync.RWMutex
	analyses map[string]*models.Analysis
}

func NewRegistry() *Registry {
	return &Registry{analyses: make(map[string]*models.Analysis)}
}

// Analysis returns the current analysis of guildID.
func (r *Registry) Analysis(guildID string) (*models.Analysis, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.analyses[guildID]
	return a, ok
}

// Set publishes a as the current analysis of guildID.
func (r *Registry) Set(guildID string, a *models.Analysis) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyses[guildID] = a
}

// Guilds returns the ids with an analysis, sorted.
func (r *Registry) Guilds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.analyses))
	for id := range r.analyses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
