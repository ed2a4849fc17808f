//go:build unit

package commands_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/npmdiffscan/internal/domain/commands"
	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
	"github.com/rios0rios0/npmdiffscan/internal/infrastructure/repositories/messaging"
	"github.com/rios0rios0/npmdiffscan/internal/infrastructure/server"
	"github.com/rios0rios0/npmdiffscan/test/infrastructure/repositorydoubles"
)

func TestStatusCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should return the persisted flag and stats", func(t *testing.T) {
		t.Parallel()

		// given
		disabled := false
		stats := entities.ExtensionStats{PackagesScanned: 9, OutdatedPackages: 4, LastScan: time.Now()}
		state := &repositorydoubles.StubStateRepository{StoredEnabled: &disabled, StoredStats: stats}
		command := commands.NewStatusCommand(stateFactory(state))

		// when
		result, err := command.Execute(context.Background(), testSettings())

		// then
		require.NoError(t, err)
		assert.False(t, result.Enabled)
		assert.Equal(t, stats, result.Stats)
	})

	t.Run("should fail when the state cannot be read", func(t *testing.T) {
		t.Parallel()

		// given
		state := &repositorydoubles.StubStateRepository{StatsErr: errors.New("corrupt")}
		command := commands.NewStatusCommand(stateFactory(state))

		// when
		_, err := command.Execute(context.Background(), testSettings())

		// then
		require.Error(t, err)
	})
}

func TestToggleCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should flip and persist the flag", func(t *testing.T) {
		t.Parallel()

		// given
		state := &repositorydoubles.StubStateRepository{}
		command := commands.NewToggleCommand(
			stateFactory(state), registryFactory(&repositorydoubles.SpyRegistryRepository{}), messaging.NewPageChannel(),
		)

		// when
		first, firstErr := command.Execute(context.Background(), testSettings())
		second, secondErr := command.Execute(context.Background(), testSettings())

		// then
		require.NoError(t, firstErr)
		require.NoError(t, secondErr)
		assert.False(t, first)
		assert.True(t, second)
		require.NotNil(t, state.StoredEnabled)
		assert.True(t, *state.StoredEnabled)
	})

	t.Run("should notify the active page", func(t *testing.T) {
		t.Parallel()

		// given
		page := &repositorydoubles.SpyMessageHandler{}
		pageChannel := messaging.NewPageChannel()
		t.Cleanup(pageChannel.Attach(page))
		command := commands.NewToggleCommand(
			stateFactory(&repositorydoubles.StubStateRepository{}),
			registryFactory(&repositorydoubles.SpyRegistryRepository{}),
			pageChannel,
		)

		// when
		enabled, err := command.Execute(context.Background(), testSettings())

		// then
		require.NoError(t, err)
		assert.False(t, enabled)
		assert.Equal(t, []entities.Message{entities.ToggleExtensionMessage{Enabled: false}}, page.Received())
	})

	t.Run("should fail when the flag cannot be stored", func(t *testing.T) {
		t.Parallel()

		// given
		state := &repositorydoubles.StubStateRepository{SetEnabledErr: errors.New("read-only")}
		command := commands.NewToggleCommand(
			stateFactory(state), registryFactory(&repositorydoubles.SpyRegistryRepository{}), messaging.NewPageChannel(),
		)

		// when
		_, err := command.Execute(context.Background(), testSettings())

		// then
		require.Error(t, err)
	})

	t.Run("should store the flag locally when the background is unreachable", func(t *testing.T) {
		t.Parallel()

		// given
		remote := httptest.NewServer(http.NotFoundHandler())
		remote.Close()
		state := &repositorydoubles.StubStateRepository{}
		settings := testSettings()
		settings.Lookup = entities.LookupBackground
		settings.BackgroundURL = remote.URL
		command := commands.NewToggleCommand(
			stateFactory(state), registryFactory(&repositorydoubles.SpyRegistryRepository{}), messaging.NewPageChannel(),
		)

		// when
		enabled, err := command.Execute(context.Background(), settings)

		// then
		require.NoError(t, err)
		assert.False(t, enabled)
		require.NotNil(t, state.StoredEnabled)
		assert.False(t, *state.StoredEnabled)
	})

	t.Run("should reach a page scan attached to a remote background", func(t *testing.T) {
		t.Parallel()

		// given
		disabled := false
		remoteState := &repositorydoubles.StubStateRepository{StoredEnabled: &disabled}
		remoteRegistry := &repositorydoubles.SpyRegistryRepository{Versions: map[string]string{"lodash": "4.17.21"}}
		hub := messaging.NewPageHub()
		remote := httptest.NewServer(
			server.New(commands.NewBackgroundCommand(remoteState, remoteRegistry, hub), hub).Handler(),
		)
		t.Cleanup(remote.Close)

		settings := testSettings()
		settings.Lookup = entities.LookupBackground
		settings.BackgroundURL = remote.URL
		localState := &repositorydoubles.StubStateRepository{}
		localRegistry := &repositorydoubles.SpyRegistryRepository{}

		lateDiff := make(chan struct{})
		pages := &repositorydoubles.StubPageRepository{
			Pages: map[string]string{
				"pr.html":   "<html><body>" + manifestDiff("package.json", map[string]string{"lodash": "4.17.20"}) + "</body></html>",
				"late.html": manifestDiff("docs/README.md", map[string]string{"lodash": "4.17.20"}),
			},
			Gates: map[string]chan struct{}{"late.html": lateDiff},
		}
		scan := commands.NewScanCommand(
			pages, stateFactory(localState), registryFactory(localRegistry), messaging.NewPageChannel(),
		)
		type scanOutcome struct {
			result *commands.ScanResult
			err    error
		}
		scanned := make(chan scanOutcome, 1)
		var out bytes.Buffer
		go func() {
			result, err := scan.Execute(context.Background(), settings, commands.ScanOptions{
				Source:    "pr.html",
				Fragments: []string{"late.html"},
				Output:    &out,
			})
			scanned <- scanOutcome{result: result, err: err}
		}()
		require.Eventually(t, func() bool { return hub.PageCount() == 1 }, 2*time.Second, 10*time.Millisecond)
		assert.Empty(t, remoteRegistry.Calls())

		toggle := commands.NewToggleCommand(
			stateFactory(localState), registryFactory(localRegistry), messaging.NewPageChannel(),
		)

		// when
		enabled, err := toggle.Execute(context.Background(), settings)

		// then
		require.NoError(t, err)
		assert.True(t, enabled)
		require.Eventually(t, func() bool {
			return remoteRegistry.CallCount("lodash") == 1
		}, 2*time.Second, 10*time.Millisecond)

		close(lateDiff)
		outcome := <-scanned
		require.NoError(t, outcome.err)
		assert.False(t, outcome.result.Skipped)
		assert.Equal(t, 1, outcome.result.PackagesScanned)
		assert.Equal(t, 1, outcome.result.OutdatedPackages)
		assert.Equal(t, 1, strings.Count(out.String(), `class="npm-version-indicator"`))

		stored, err := remoteState.Enabled(context.Background())
		require.NoError(t, err)
		assert.True(t, stored)
		stats, err := remoteState.Stats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, stats.OutdatedPackages)
		assert.Empty(t, localRegistry.Calls())
		assert.Nil(t, localState.StoredEnabled)
		require.Eventually(t, func() bool { return hub.PageCount() == 0 }, 2*time.Second, 10*time.Millisecond)
	})
}

func TestClearCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should clear the state", func(t *testing.T) {
		t.Parallel()

		// given
		disabled := false
		state := &repositorydoubles.StubStateRepository{
			StoredEnabled: &disabled,
			StoredStats:   entities.ExtensionStats{PackagesScanned: 2},
		}
		command := commands.NewClearCommand(stateFactory(state))

		// when
		err := command.Execute(context.Background(), testSettings())

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, state.ClearCalls)
		assert.Nil(t, state.StoredEnabled)
		assert.Equal(t, entities.ExtensionStats{}, state.StoredStats)
	})
}

func TestLookupCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should resolve through the in-process background", func(t *testing.T) {
		t.Parallel()

		// given
		registry := &repositorydoubles.SpyRegistryRepository{Versions: map[string]string{"@types/node": "20.11.5"}}
		command := commands.NewLookupCommand(
			stateFactory(&repositorydoubles.StubStateRepository{}), registryFactory(registry),
		)

		// when
		version, err := command.Execute(context.Background(), testSettings(), "@types/node")

		// then
		require.NoError(t, err)
		assert.Equal(t, "20.11.5", version)
	})

	t.Run("should resolve through a remote background", func(t *testing.T) {
		t.Parallel()

		// given
		remoteRegistry := &repositorydoubles.SpyRegistryRepository{Versions: map[string]string{"lodash": "4.17.21"}}
		hub := messaging.NewPageHub()
		background := commands.NewBackgroundCommand(&repositorydoubles.StubStateRepository{}, remoteRegistry, hub)
		remote := httptest.NewServer(server.New(background, hub).Handler())
		t.Cleanup(remote.Close)

		localRegistry := &repositorydoubles.SpyRegistryRepository{}
		settings := testSettings()
		settings.Lookup = entities.LookupBackground
		settings.BackgroundURL = remote.URL
		command := commands.NewLookupCommand(
			stateFactory(&repositorydoubles.StubStateRepository{}), registryFactory(localRegistry),
		)

		// when
		version, err := command.Execute(context.Background(), settings, "lodash")

		// then
		require.NoError(t, err)
		assert.Equal(t, "4.17.21", version)
		assert.Empty(t, localRegistry.Calls())
		assert.Equal(t, []string{"lodash"}, remoteRegistry.Calls())
	})

	t.Run("should surface the background error", func(t *testing.T) {
		t.Parallel()

		// given
		command := commands.NewLookupCommand(
			stateFactory(&repositorydoubles.StubStateRepository{}),
			registryFactory(&repositorydoubles.SpyRegistryRepository{}),
		)

		// when
		_, err := command.Execute(context.Background(), testSettings(), "no-such-package")

		// then
		require.ErrorIs(t, err, entities.ErrRegistryLookup)
	})

	t.Run("should reject invalid names", func(t *testing.T) {
		t.Parallel()

		// given
		command := commands.NewLookupCommand(
			stateFactory(&repositorydoubles.StubStateRepository{}),
			registryFactory(&repositorydoubles.SpyRegistryRepository{}),
		)

		// when
		_, err := command.Execute(context.Background(), testSettings(), "Not A Package")

		// then
		require.ErrorIs(t, err, entities.ErrInvalidPackageName)
	})
}
