//go:build unit

package scanner_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
	"github.com/rios0rios0/npmdiffscan/internal/scanner"
	"github.com/rios0rios0/npmdiffscan/test/infrastructure/repositorydoubles"
	"github.com/rios0rios0/npmdiffscan/test/scannerdoubles"
)

const testDebounce = 500 * time.Millisecond

func diffLine(name, version string) string {
	return fmt.Sprintf(`<div data-testid="diff-line-content"><span>+    "%s": </span><span>"%s"</span>,</div>`,
		name, version)
}

func diffContainer(file string, lines ...string) string {
	return `<div data-testid="file-diff-view"><div data-testid="file-diff-header">` + file + `</div>` +
		strings.Join(lines, "") + `</div>`
}

func page(containers ...string) string {
	return "<html><body>" + strings.Join(containers, "") + "</body></html>"
}

type sessionFixture struct {
	session  *scanner.Session
	registry *repositorydoubles.SpyRegistryRepository
	clock    *scannerdoubles.ManualClock
}

func startSession(t *testing.T, markup string, registry *repositorydoubles.SpyRegistryRepository, enabled bool) sessionFixture {
	t.Helper()

	doc, err := scanner.ParseDocument(strings.NewReader(markup))
	require.NoError(t, err)

	clock := &scannerdoubles.ManualClock{}
	session := scanner.NewSession(doc, scanner.SessionOptions{
		Resolver: registry,
		Debounce: testDebounce,
		Clock:    clock,
		Enabled:  enabled,
	})
	require.NoError(t, session.Start(context.Background()))
	t.Cleanup(session.Close)

	return sessionFixture{session: session, registry: registry, clock: clock}
}

func (f sessionFixture) wait(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.session.Wait(ctx))
}

func (f sessionFixture) render(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, f.session.Render(&buf))
	return buf.String()
}

func markerCount(rendered string) int {
	return strings.Count(rendered, `class="`+scanner.MarkerClass+`"`)
}

func TestSessionInitialScan(t *testing.T) {
	t.Parallel()

	t.Run("should annotate an outdated dependency", func(t *testing.T) {
		t.Parallel()

		// given
		registry := &repositorydoubles.SpyRegistryRepository{Versions: map[string]string{"lodash": "4.17.21"}}
		markup := page(diffContainer("package.json", diffLine("lodash", "4.17.20")))

		// when
		fixture := startSession(t, markup, registry, true)
		fixture.wait(t)

		// then
		rendered := fixture.render(t)
		assert.Equal(t, 1, markerCount(rendered))
		assert.Contains(t, rendered, "📦 4.17.21")
		assert.Contains(t, rendered, `<span>&#34;4.17.20&#34;<span class="npm-version-indicator"`)

		stats, err := fixture.session.Stats()
		require.NoError(t, err)
		assert.Equal(t, 1, stats.PackagesScanned)
		assert.Equal(t, 1, stats.OutdatedPackages)
	})

	t.Run("should not annotate an up-to-date dependency", func(t *testing.T) {
		t.Parallel()

		// given
		registry := &repositorydoubles.SpyRegistryRepository{Versions: map[string]string{"lodash": "4.17.21"}}
		markup := page(diffContainer("package.json", diffLine("lodash", "4.17.21")))

		// when
		fixture := startSession(t, markup, registry, true)
		fixture.wait(t)

		// then
		assert.Equal(t, 0, markerCount(fixture.render(t)))
		stats, err := fixture.session.Stats()
		require.NoError(t, err)
		assert.Equal(t, 1, stats.PackagesScanned)
		assert.Equal(t, 0, stats.OutdatedPackages)
	})

	t.Run("should not resolve structural keys", func(t *testing.T) {
		t.Parallel()

		// given
		registry := &repositorydoubles.SpyRegistryRepository{}
		markup := page(diffContainer("package.json",
			diffLine("name", "my-app"),
			diffLine("version", "1.0.0"),
		))

		// when
		fixture := startSession(t, markup, registry, true)
		fixture.wait(t)

		// then
		assert.Empty(t, registry.Calls())
	})

	t.Run("should ignore diffs of other files", func(t *testing.T) {
		t.Parallel()

		// given
		registry := &repositorydoubles.SpyRegistryRepository{Versions: map[string]string{"lodash": "4.17.21"}}
		markup := page(diffContainer("src/config.json", diffLine("lodash", "4.17.20")))

		// when
		fixture := startSession(t, markup, registry, true)
		fixture.wait(t)

		// then
		assert.Empty(t, registry.Calls())
		assert.Equal(t, 0, markerCount(fixture.render(t)))
	})

	t.Run("should keep going after a failed lookup", func(t *testing.T) {
		t.Parallel()

		// given
		registry := &repositorydoubles.SpyRegistryRepository{
			Versions: map[string]string{"lodash": "4.17.21"},
			Errs:     map[string]error{"left-pad": errors.New("connection reset")},
		}
		markup := page(diffContainer("package.json",
			diffLine("left-pad", "1.1.0"),
			diffLine("lodash", "4.17.20"),
		))

		// when
		fixture := startSession(t, markup, registry, true)
		fixture.wait(t)

		// then
		assert.Equal(t, 1, markerCount(fixture.render(t)))
		cached, err := fixture.session.CachedVersions()
		require.NoError(t, err)
		assert.Equal(t, 1, cached)

		stats, err := fixture.session.Stats()
		require.NoError(t, err)
		assert.Equal(t, 2, stats.PackagesScanned)
		assert.Equal(t, 1, stats.OutdatedPackages)
		require.Len(t, stats.Entries, 1)
		assert.Equal(t, "lodash", stats.Entries[0].Name)
	})

	t.Run("should annotate every line naming the same package", func(t *testing.T) {
		t.Parallel()

		// given
		registry := &repositorydoubles.SpyRegistryRepository{Versions: map[string]string{"lodash": "4.17.21"}}
		markup := page(
			diffContainer("package.json", diffLine("lodash", "4.17.20")),
			diffContainer("packages/web/package.json", diffLine("lodash", "4.17.19")),
		)

		// when
		fixture := startSession(t, markup, registry, true)
		fixture.wait(t)

		// then
		assert.Equal(t, 2, markerCount(fixture.render(t)))
		assert.LessOrEqual(t, registry.CallCount("lodash"), 2)
	})

	t.Run("should not scan while disabled", func(t *testing.T) {
		t.Parallel()

		// given
		registry := &repositorydoubles.SpyRegistryRepository{Versions: map[string]string{"lodash": "4.17.21"}}
		markup := page(diffContainer("package.json", diffLine("lodash", "4.17.20")))

		// when
		fixture := startSession(t, markup, registry, false)
		fixture.wait(t)

		// then
		assert.Empty(t, registry.Calls())
		assert.Equal(t, 0, markerCount(fixture.render(t)))
	})
}

func TestSessionMutations(t *testing.T) {
	t.Parallel()

	t.Run("should answer a lazily loaded diff from the cache", func(t *testing.T) {
		t.Parallel()

		// given
		registry := &repositorydoubles.SpyRegistryRepository{Versions: map[string]string{"lodash": "4.17.21"}}
		fixture := startSession(t, page(diffContainer("package.json", diffLine("lodash", "4.17.20"))), registry, true)
		fixture.wait(t)

		// when
		fragment := diffContainer("apps/api/package.json", diffLine("lodash", "4.17.15"))
		require.NoError(t, fixture.session.Inject(strings.NewReader(fragment)))
		fixture.clock.Advance(testDebounce)
		fixture.wait(t)

		// then
		assert.Equal(t, 1, registry.CallCount("lodash"))
		assert.Equal(t, 2, markerCount(fixture.render(t)))
	})

	t.Run("should coalesce a burst of insertions into one rescan", func(t *testing.T) {
		t.Parallel()

		// given
		registry := &repositorydoubles.SpyRegistryRepository{Versions: map[string]string{
			"react":     "18.3.1",
			"react-dom": "18.3.1",
		}}
		fixture := startSession(t, page(), registry, true)

		// when
		require.NoError(t, fixture.session.Inject(strings.NewReader(
			diffContainer("package.json", diffLine("react", "^17.0.2")))))
		fixture.clock.Advance(testDebounce / 2)
		require.NoError(t, fixture.session.Inject(strings.NewReader(
			diffContainer("web/package.json", diffLine("react-dom", "^17.0.2")))))

		// then
		assert.Empty(t, registry.Calls())
		assert.Equal(t, 1, fixture.clock.Scheduled())

		fixture.clock.Advance(testDebounce)
		fixture.wait(t)
		assert.ElementsMatch(t, []string{"react", "react-dom"}, registry.Calls())
		assert.Equal(t, 2, markerCount(fixture.render(t)))
	})

	t.Run("should rescan a re-rendered container without new lookups", func(t *testing.T) {
		t.Parallel()

		// given
		registry := &repositorydoubles.SpyRegistryRepository{Versions: map[string]string{"lodash": "4.17.21"}}
		container := diffContainer("package.json", diffLine("lodash", "4.17.20"))
		fixture := startSession(t, page(container), registry, true)
		fixture.wait(t)

		// when
		require.NoError(t, fixture.session.Replace(0, strings.NewReader(container)))
		fixture.clock.Advance(testDebounce)
		fixture.wait(t)

		// then
		assert.Equal(t, 1, registry.CallCount("lodash"))
		assert.Equal(t, 1, markerCount(fixture.render(t)))
		stats, err := fixture.session.Stats()
		require.NoError(t, err)
		assert.Equal(t, 2, stats.PackagesScanned)
	})

	t.Run("should reject replacing a missing container", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := startSession(t, page(), &repositorydoubles.SpyRegistryRepository{}, true)

		// when
		err := fixture.session.Replace(3, strings.NewReader("<div></div>"))

		// then
		require.Error(t, err)
	})
}

func TestSessionHandle(t *testing.T) {
	t.Parallel()

	t.Run("should report alive on checkStatus", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := startSession(t, page(), &repositorydoubles.SpyRegistryRepository{}, true)

		// when
		response := fixture.session.Handle(context.Background(), entities.CheckStatusMessage{})

		// then
		assert.True(t, response.Alive)
		assert.Empty(t, response.Error)
	})

	t.Run("should scan when toggled on", func(t *testing.T) {
		t.Parallel()

		// given
		registry := &repositorydoubles.SpyRegistryRepository{Versions: map[string]string{"lodash": "4.17.21"}}
		markup := page(diffContainer("package.json", diffLine("lodash", "4.17.20")))
		fixture := startSession(t, markup, registry, false)

		// when
		response := fixture.session.Handle(context.Background(), entities.ToggleExtensionMessage{Enabled: true})
		fixture.wait(t)

		// then
		require.NotNil(t, response.Enabled)
		assert.True(t, *response.Enabled)
		assert.Equal(t, 1, registry.CallCount("lodash"))
		assert.Equal(t, 1, markerCount(fixture.render(t)))
	})

	t.Run("should stop scanning new diffs when toggled off", func(t *testing.T) {
		t.Parallel()

		// given
		registry := &repositorydoubles.SpyRegistryRepository{Versions: map[string]string{"lodash": "4.17.21"}}
		fixture := startSession(t, page(), registry, true)

		// when
		fixture.session.Handle(context.Background(), entities.ToggleExtensionMessage{Enabled: false})
		require.NoError(t, fixture.session.Inject(strings.NewReader(
			diffContainer("package.json", diffLine("lodash", "4.17.20")))))
		fixture.clock.Advance(testDebounce)
		fixture.wait(t)

		// then
		assert.Empty(t, registry.Calls())
	})

	t.Run("should reject background-only actions", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := startSession(t, page(), &repositorydoubles.SpyRegistryRepository{}, true)

		// when
		response := fixture.session.Handle(context.Background(), entities.FetchPackageVersionMessage{PackageName: "lodash"})

		// then
		assert.NotEmpty(t, response.Error)
	})
}

func TestSessionClose(t *testing.T) {
	t.Parallel()

	t.Run("should fail calls after close", func(t *testing.T) {
		t.Parallel()

		// given
		fixture := startSession(t, page(), &repositorydoubles.SpyRegistryRepository{}, true)

		// when
		fixture.session.Close()

		// then
		_, err := fixture.session.Stats()
		require.ErrorIs(t, err, entities.ErrSessionClosed)
	})

	t.Run("should stop waiting when a lookup never returns", func(t *testing.T) {
		t.Parallel()

		// given
		registry := &repositorydoubles.SpyRegistryRepository{Gate: make(chan struct{})}
		markup := page(diffContainer("package.json", diffLine("lodash", "4.17.20")))
		fixture := startSession(t, markup, registry, true)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		// when
		err := fixture.session.Wait(ctx)

		// then
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
