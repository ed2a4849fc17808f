//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"sync"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
	"github.com/rios0rios0/npmdiffscan/internal/domain/repositories"
)

// SpyRegistryRepository implements repositories.RegistryRepository as a
// configurable spy. It is safe for concurrent use because page sessions issue
// lookups from several goroutines.
type SpyRegistryRepository struct {
	// --- LatestVersion ---
	Versions map[string]string // name -> latest version
	Errs     map[string]error  // name -> failure
	// Gate, when set, blocks every lookup until it is closed
	Gate chan struct{}

	mu    sync.Mutex
	calls []string
}

var _ repositories.RegistryRepository = (*SpyRegistryRepository)(nil)

func (r *SpyRegistryRepository) LatestVersion(ctx context.Context, packageName string) (string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, packageName)
	r.mu.Unlock()

	if r.Gate != nil {
		select {
		case <-r.Gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if err, ok := r.Errs[packageName]; ok {
		return "", err
	}
	if version, ok := r.Versions[packageName]; ok {
		return version, nil
	}
	return "", entities.ErrRegistryLookup
}

// Calls returns the package names looked up so far, in call order.
func (r *SpyRegistryRepository) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// CallCount returns how many lookups were issued for packageName.
func (r *SpyRegistryRepository) CallCount(packageName string) int {
	count := 0
	for _, name := range r.Calls() {
		if name == packageName {
			count++
		}
	}
	return count
}
