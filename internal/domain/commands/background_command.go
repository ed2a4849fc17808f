package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
	"github.com/rios0rios0/npmdiffscan/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/npmdiffscan/internal/infrastructure/repositories"
	"github.com/rios0rios0/npmdiffscan/internal/infrastructure/repositories/messaging"
	"github.com/rios0rios0/npmdiffscan/internal/infrastructure/repositories/registry"
)

// BackgroundCommand is the background context: it persists scan statistics
// and performs registry lookups on behalf of page contexts. A toggle is
// stored and then forwarded to the pages attached to it. It never returns a
// Go error across the boundary; failures travel in Response.Error.
type BackgroundCommand struct {
	state    repositories.StateRepository
	registry repositories.RegistryRepository
	pages    repositories.MessageChannel
	now      func() time.Time
}

// NewBackgroundCommand creates a background handler that forwards toggles to
// pages.
func NewBackgroundCommand(
	state repositories.StateRepository,
	registry repositories.RegistryRepository,
	pages repositories.MessageChannel,
) *BackgroundCommand {
	return &BackgroundCommand{state: state, registry: registry, pages: pages, now: time.Now}
}

var _ repositories.MessageHandler = (*BackgroundCommand)(nil)

// Handle answers one boundary message.
func (it *BackgroundCommand) Handle(ctx context.Context, msg entities.Message) entities.Response {
	switch m := msg.(type) {
	case entities.UpdateStatsMessage:
		stats := entities.ExtensionStats{
			PackagesScanned:  m.PackagesScanned,
			OutdatedPackages: m.OutdatedPackages,
			LastScan:         it.now(),
		}
		if err := it.state.SaveStats(ctx, stats); err != nil {
			logger.Errorf("Failed to store stats: %v", err)
			return entities.ErrorResponse(err)
		}
		return entities.Response{}

	case entities.FetchPackageVersionMessage:
		version, err := it.registry.LatestVersion(ctx, m.PackageName)
		if err != nil {
			logger.Errorf("Error fetching package version for %s: %v", m.PackageName, err)
			return entities.ErrorResponse(err)
		}
		return entities.Response{Version: version}

	case entities.CheckStatusMessage:
		resp := entities.Response{Alive: true}
		if enabled, err := it.state.Enabled(ctx); err == nil {
			resp.Enabled = &enabled
		} else {
			logger.Warnf("Failed to read enabled flag: %v", err)
		}
		return resp

	case entities.ToggleExtensionMessage:
		if err := it.state.SetEnabled(ctx, m.Enabled); err != nil {
			return entities.ErrorResponse(err)
		}
		it.forwardToPages(ctx, m)
		enabled := m.Enabled
		return entities.Response{Enabled: &enabled}

	default:
		return entities.ErrorResponse(fmt.Errorf("%w: %s", entities.ErrUnknownAction, msg.Action()))
	}
}

func (it *BackgroundCommand) forwardToPages(ctx context.Context, msg entities.ToggleExtensionMessage) {
	_, err := it.pages.Send(ctx, msg)
	switch {
	case err == nil:
		logger.Debugf("Forwarded enabled=%t to the attached pages", msg.Enabled)
	case errors.Is(err, entities.ErrNoReceiver):
		logger.Info("No active page to notify")
	default:
		logger.Warnf("Failed to notify pages: %v", err)
	}
}

// backgroundLink is a connection from a page context to a background.
type backgroundLink struct {
	channel    repositories.MessageChannel
	resolver   repositories.RegistryRepository
	attachPage func(ctx context.Context, page repositories.MessageHandler) func()
	close      func()
}

// enabled asks the background for the flag and falls back to state when the
// background cannot tell.
func (l backgroundLink) enabled(ctx context.Context, state repositories.StateRepository) (bool, error) {
	resp, err := l.channel.Send(ctx, entities.CheckStatusMessage{})
	if err == nil && resp.Enabled != nil {
		return *resp.Enabled, nil
	}
	return state.Enabled(ctx)
}

// connectBackground opens the background the settings point at. In direct
// mode an in-process background is started, the page resolves versions itself
// and attaches to pages. In background mode stats, lookups and toggles go to
// a remote `npmdiffscan serve`, and the page subscribes to it.
func connectBackground(
	settings *entities.Settings,
	state repositories.StateRepository,
	registries infraRepos.RegistryFactory,
	pages *messaging.PageChannel,
) backgroundLink {
	if pages == nil {
		pages = messaging.NewPageChannel()
	}

	if settings.Lookup == entities.LookupBackground {
		channel := messaging.NewHTTPChannel(settings.BackgroundURL)
		return backgroundLink{
			channel:  channel,
			resolver: registry.NewChannelRegistryRepository(channel),
			attachPage: func(ctx context.Context, page repositories.MessageHandler) func() {
				unsubscribe, err := channel.Subscribe(ctx, page)
				if err != nil {
					logger.Infof("Page will not receive background updates: %v", err)
					return func() {}
				}
				return unsubscribe
			},
			close: func() {},
		}
	}

	direct := registries(settings)
	channel := messaging.NewLocalChannel()
	detach := channel.Attach(NewBackgroundCommand(state, direct, pages))
	return backgroundLink{
		channel:  channel,
		resolver: direct,
		attachPage: func(_ context.Context, page repositories.MessageHandler) func() {
			return pages.Attach(page)
		},
		close: detach,
	}
}
