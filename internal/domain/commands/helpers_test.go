//go:build unit

package commands_test

import (
	"time"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
	"github.com/rios0rios0/npmdiffscan/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/npmdiffscan/internal/infrastructure/repositories"
)

func stateFactory(state repositories.StateRepository) infraRepos.StateFactory {
	return func(*entities.Settings) repositories.StateRepository { return state }
}

func registryFactory(registry repositories.RegistryRepository) infraRepos.RegistryFactory {
	return func(*entities.Settings) repositories.RegistryRepository { return registry }
}

func testSettings() *entities.Settings {
	settings := entities.DefaultSettings()
	settings.StatePath = infraRepos.MemoryStatePath
	settings.Debounce = 5 * time.Millisecond
	return settings
}
