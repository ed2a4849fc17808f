package commands

import (
	"context"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
	infraRepos "github.com/rios0rios0/npmdiffscan/internal/infrastructure/repositories"
)

// Status is the interface for the status command.
type Status interface {
	Execute(ctx context.Context, settings *entities.Settings) (*StatusResult, error)
}

// StatusResult is what the summary display shows.
type StatusResult struct {
	Enabled bool
	Stats   entities.ExtensionStats
}

// StatusCommand reads the persisted flag and stats.
type StatusCommand struct {
	states infraRepos.StateFactory
}

// NewStatusCommand creates a new StatusCommand.
func NewStatusCommand(states infraRepos.StateFactory) *StatusCommand {
	return &StatusCommand{states: states}
}

// Execute returns the current persisted state.
func (it *StatusCommand) Execute(ctx context.Context, settings *entities.Settings) (*StatusResult, error) {
	state := it.states(settings)

	enabled, err := state.Enabled(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := state.Stats(ctx)
	if err != nil {
		return nil, err
	}

	return &StatusResult{Enabled: enabled, Stats: stats}, nil
}
