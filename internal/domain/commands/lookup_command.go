package commands

import (
	"context"
	"fmt"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
	infraRepos "github.com/rios0rios0/npmdiffscan/internal/infrastructure/repositories"
)

// Lookup is the interface for the lookup command.
type Lookup interface {
	Execute(ctx context.Context, settings *entities.Settings, packageName string) (string, error)
}

// LookupCommand asks the background for the latest version of one package.
type LookupCommand struct {
	states     infraRepos.StateFactory
	registries infraRepos.RegistryFactory
}

// NewLookupCommand creates a new LookupCommand.
func NewLookupCommand(states infraRepos.StateFactory, registries infraRepos.RegistryFactory) *LookupCommand {
	return &LookupCommand{states: states, registries: registries}
}

// Execute sends fetchPackageVersion and unwraps the reply.
func (it *LookupCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	packageName string,
) (string, error) {
	if !entities.IsValidPackageName(packageName) {
		return "", fmt.Errorf("%w: %q", entities.ErrInvalidPackageName, packageName)
	}

	link := connectBackground(settings, it.states(settings), it.registries, nil)
	defer link.close()

	resp, err := link.channel.Send(ctx, entities.FetchPackageVersionMessage{PackageName: packageName})
	if err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("%w: %s", entities.ErrRegistryLookup, resp.Error)
	}
	return resp.Version, nil
}
