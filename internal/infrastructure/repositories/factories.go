package repositories

import (
	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
	domainRepos "github.com/rios0rios0/npmdiffscan/internal/domain/repositories"
	"github.com/rios0rios0/npmdiffscan/internal/infrastructure/repositories/registry"
	"github.com/rios0rios0/npmdiffscan/internal/infrastructure/repositories/state"
)

// MemoryStatePath selects the in-process state store instead of a file.
const MemoryStatePath = ":memory:"

// StateFactory builds the state repository described by the settings.
type StateFactory func(settings *entities.Settings) domainRepos.StateRepository

// RegistryFactory builds the repository that talks to the npm registry directly.
type RegistryFactory func(settings *entities.Settings) domainRepos.RegistryRepository

// NewStateFactory returns a StateFactory backed by files, or by memory for
// MemoryStatePath. Every call with MemoryStatePath returns the same store, so
// commands of one process share it.
func NewStateFactory() StateFactory {
	memory := state.NewMemoryStateRepository()
	return func(settings *entities.Settings) domainRepos.StateRepository {
		if settings.StatePath == MemoryStatePath {
			return memory
		}
		return state.NewFileStateRepository(settings.StatePath)
	}
}

// NewRegistryFactory returns a RegistryFactory for the configured registry URL.
func NewRegistryFactory() RegistryFactory {
	return func(settings *entities.Settings) domainRepos.RegistryRepository {
		return registry.NewNpmRegistryRepository(settings.RegistryURL)
	}
}
