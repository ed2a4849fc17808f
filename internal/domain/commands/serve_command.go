package commands

import (
	"context"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
	infraRepos "github.com/rios0rios0/npmdiffscan/internal/infrastructure/repositories"
	"github.com/rios0rios0/npmdiffscan/internal/infrastructure/repositories/messaging"
	"github.com/rios0rios0/npmdiffscan/internal/infrastructure/server"
)

// Serve is the interface for the serve command.
type Serve interface {
	Execute(ctx context.Context, settings *entities.Settings) error
}

// ServeCommand runs the background context as an HTTP service, for page
// contexts configured with lookup: background.
type ServeCommand struct {
	states     infraRepos.StateFactory
	registries infraRepos.RegistryFactory
}

// NewServeCommand creates a new ServeCommand.
func NewServeCommand(states infraRepos.StateFactory, registries infraRepos.RegistryFactory) *ServeCommand {
	return &ServeCommand{states: states, registries: registries}
}

// Execute serves until ctx is cancelled.
func (it *ServeCommand) Execute(ctx context.Context, settings *entities.Settings) error {
	pages := messaging.NewPageHub()
	background := NewBackgroundCommand(it.states(settings), it.registries(settings), pages)
	return server.New(background, pages).ListenAndServe(ctx, settings.ListenAddress)
}
