package registry

import (
	"context"
	"fmt"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
	"github.com/rios0rios0/npmdiffscan/internal/domain/repositories"
)

// ChannelRegistryRepository resolves latest versions by asking the background
// context through a message channel, for page contexts without network access.
type ChannelRegistryRepository struct {
	channel repositories.MessageChannel
}

// NewChannelRegistryRepository creates a repository backed by channel.
func NewChannelRegistryRepository(channel repositories.MessageChannel) *ChannelRegistryRepository {
	return &ChannelRegistryRepository{channel: channel}
}

var _ repositories.RegistryRepository = (*ChannelRegistryRepository)(nil)

// LatestVersion sends a fetchPackageVersion request and unwraps the reply.
func (r *ChannelRegistryRepository) LatestVersion(ctx context.Context, packageName string) (string, error) {
	resp, err := r.channel.Send(ctx, entities.FetchPackageVersionMessage{PackageName: packageName})
	if err != nil {
		return "", fmt.Errorf("%w: %w", entities.ErrRegistryLookup, err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("%w: %s", entities.ErrRegistryLookup, resp.Error)
	}
	if resp.Version == "" {
		return "", fmt.Errorf("%w: response has no version", entities.ErrRegistryLookup)
	}
	return resp.Version, nil
}
