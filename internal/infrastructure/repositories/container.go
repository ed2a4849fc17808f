package repositories

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/npmdiffscan/internal/domain/repositories"
	"github.com/rios0rios0/npmdiffscan/internal/infrastructure/repositories/messaging"
	"github.com/rios0rios0/npmdiffscan/internal/infrastructure/repositories/page"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	if err := container.Provide(NewStateFactory); err != nil {
		return err
	}
	if err := container.Provide(NewRegistryFactory); err != nil {
		return err
	}

	// One page channel per process: scans attach to it, toggles send on it
	if err := container.Provide(messaging.NewPageChannel); err != nil {
		return err
	}

	if err := container.Provide(func() repositories.PageRepository {
		return page.NewSourcePageRepository()
	}); err != nil {
		return err
	}

	return nil
}
