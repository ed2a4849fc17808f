package commands

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
	infraRepos "github.com/rios0rios0/npmdiffscan/internal/infrastructure/repositories"
)

// Clear is the interface for the clear command.
type Clear interface {
	Execute(ctx context.Context, settings *entities.Settings) error
}

// ClearCommand resets all persisted state to its defaults.
type ClearCommand struct {
	states infraRepos.StateFactory
}

// NewClearCommand creates a new ClearCommand.
func NewClearCommand(states infraRepos.StateFactory) *ClearCommand {
	return &ClearCommand{states: states}
}

func (it *ClearCommand) Execute(ctx context.Context, settings *entities.Settings) error {
	if err := it.states(settings).Clear(ctx); err != nil {
		return err
	}
	logger.Debug("Persisted state cleared")
	return nil
}
