//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"sync"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
	"github.com/rios0rios0/npmdiffscan/internal/domain/repositories"
)

// StubStateRepository implements repositories.StateRepository in memory with
// injectable failures.
type StubStateRepository struct {
	mu sync.Mutex

	// --- state ---
	StoredStats   entities.ExtensionStats
	StoredEnabled *bool

	// --- failures ---
	StatsErr      error
	SaveStatsErr  error
	EnabledErr    error
	SetEnabledErr error
	ClearErr      error

	// spy
	SaveStatsCalls int
	ClearCalls     int
}

var _ repositories.StateRepository = (*StubStateRepository)(nil)

func (s *StubStateRepository) Stats(_ context.Context) (entities.ExtensionStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.StoredStats, s.StatsErr
}

func (s *StubStateRepository) SaveStats(_ context.Context, stats entities.ExtensionStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SaveStatsCalls++
	if s.SaveStatsErr != nil {
		return s.SaveStatsErr
	}
	s.StoredStats = stats
	return nil
}

func (s *StubStateRepository) Enabled(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.EnabledErr != nil {
		return false, s.EnabledErr
	}
	if s.StoredEnabled == nil {
		return entities.DefaultEnabled, nil
	}
	return *s.StoredEnabled, nil
}

func (s *StubStateRepository) SetEnabled(_ context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetEnabledErr != nil {
		return s.SetEnabledErr
	}
	s.StoredEnabled = &enabled
	return nil
}

func (s *StubStateRepository) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ClearCalls++
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.StoredStats = entities.ExtensionStats{}
	s.StoredEnabled = nil
	return nil
}
