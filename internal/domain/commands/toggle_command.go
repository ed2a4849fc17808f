package commands

import (
	"context"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
	infraRepos "github.com/rios0rios0/npmdiffscan/internal/infrastructure/repositories"
	"github.com/rios0rios0/npmdiffscan/internal/infrastructure/repositories/messaging"
)

// Toggle is the interface for the toggle command.
type Toggle interface {
	Execute(ctx context.Context, settings *entities.Settings) (bool, error)
}

// ToggleCommand flips the enabled flag through the background, which stores
// it and tells the attached pages.
type ToggleCommand struct {
	states      infraRepos.StateFactory
	registries  infraRepos.RegistryFactory
	pageChannel *messaging.PageChannel
}

// NewToggleCommand creates a new ToggleCommand.
func NewToggleCommand(
	states infraRepos.StateFactory,
	registries infraRepos.RegistryFactory,
	pageChannel *messaging.PageChannel,
) *ToggleCommand {
	return &ToggleCommand{states: states, registries: registries, pageChannel: pageChannel}
}

// Execute sends the flipped flag to the background and returns its new
// value. When no background answers, the flag is stored locally.
func (it *ToggleCommand) Execute(ctx context.Context, settings *entities.Settings) (bool, error) {
	state := it.states(settings)
	link := connectBackground(settings, state, it.registries, it.pageChannel)
	defer link.close()

	enabled, err := link.enabled(ctx, state)
	if err != nil {
		return false, err
	}
	enabled = !enabled

	resp, err := link.channel.Send(ctx, entities.ToggleExtensionMessage{Enabled: enabled})
	if err != nil {
		if !errors.Is(err, entities.ErrNoReceiver) {
			return false, err
		}
		logger.Infof("Background unreachable, storing the flag locally: %v", err)
		if setErr := state.SetEnabled(ctx, enabled); setErr != nil {
			return false, fmt.Errorf("failed to store enabled flag: %w", setErr)
		}
		return enabled, nil
	}
	if resp.Error != "" {
		return false, fmt.Errorf("failed to store enabled flag: %s", resp.Error)
	}
	return enabled, nil
}
