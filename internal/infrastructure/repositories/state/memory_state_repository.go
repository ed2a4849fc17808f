package state

import (
	"context"
	"sync"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
	"github.com/rios0rios0/npmdiffscan/internal/domain/repositories"
)

// MemoryStateRepository keeps state for the lifetime of the process. It backs
// the ":memory:" state path.
type MemoryStateRepository struct {
	mu      sync.Mutex
	stats   entities.ExtensionStats
	enabled bool
}

// NewMemoryStateRepository creates a repository holding the defaults.
func NewMemoryStateRepository() *MemoryStateRepository {
	return &MemoryStateRepository{enabled: entities.DefaultEnabled}
}

var _ repositories.StateRepository = (*MemoryStateRepository)(nil)

func (r *MemoryStateRepository) Stats(_ context.Context) (entities.ExtensionStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats, nil
}

func (r *MemoryStateRepository) SaveStats(_ context.Context, stats entities.ExtensionStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = stats
	return nil
}

func (r *MemoryStateRepository) Enabled(_ context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled, nil
}

func (r *MemoryStateRepository) SetEnabled(_ context.Context, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
	return nil
}

func (r *MemoryStateRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = entities.ExtensionStats{}
	r.enabled = entities.DefaultEnabled
	return nil
}
