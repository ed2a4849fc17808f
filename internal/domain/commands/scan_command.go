package commands

import (
	"context"
	"fmt"
	"io"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
	"github.com/rios0rios0/npmdiffscan/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/npmdiffscan/internal/infrastructure/repositories"
	"github.com/rios0rios0/npmdiffscan/internal/infrastructure/repositories/messaging"
	"github.com/rios0rios0/npmdiffscan/internal/scanner"
)

// Scan is the interface for the scan command.
type Scan interface {
	Execute(ctx context.Context, settings *entities.Settings, opts ScanOptions) (*ScanResult, error)
}

// ScanOptions holds runtime options for a single scan.
type ScanOptions struct {
	Source    string    // Page to scan: file path, http(s) URL or "-"
	Fragments []string  // Diffs loaded after the first render, appended in order
	Output    io.Writer // Receives the annotated page; nil discards it
	Clock     scanner.Clock
}

// ScanResult summarises a completed scan.
type ScanResult struct {
	Entries          []entities.PackageEntry
	PackagesScanned  int
	OutdatedPackages int
	Skipped          bool // the scanner was disabled when the scan settled
}

// ScanCommand runs one page session over a pull-request page.
type ScanCommand struct {
	pages       repositories.PageRepository
	states      infraRepos.StateFactory
	registries  infraRepos.RegistryFactory
	pageChannel *messaging.PageChannel
}

// NewScanCommand creates a new ScanCommand.
func NewScanCommand(
	pages repositories.PageRepository,
	states infraRepos.StateFactory,
	registries infraRepos.RegistryFactory,
	pageChannel *messaging.PageChannel,
) *ScanCommand {
	return &ScanCommand{
		pages:       pages,
		states:      states,
		registries:  registries,
		pageChannel: pageChannel,
	}
}

// Execute loads the page, scans it and every fragment, writes the annotated
// page and reports the counts to the background.
func (it *ScanCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	opts ScanOptions,
) (*ScanResult, error) {
	state := it.states(settings)
	link := connectBackground(settings, state, it.registries, it.pageChannel)
	defer link.close()

	enabled, err := link.enabled(ctx, state)
	if err != nil {
		logger.Warnf("Failed to read enabled flag, assuming %t: %v", entities.DefaultEnabled, err)
		enabled = entities.DefaultEnabled
	}
	if !enabled {
		logger.Info("Scanner is disabled, the page will not be annotated")
	}

	doc, err := it.load(ctx, opts.Source)
	if err != nil {
		return nil, err
	}

	session := scanner.NewSession(doc, scanner.SessionOptions{
		Resolver: link.resolver,
		Debounce: settings.Debounce,
		Clock:    opts.Clock,
		Enabled:  enabled,
	})
	if startErr := session.Start(ctx); startErr != nil {
		return nil, fmt.Errorf("failed to start page session: %w", startErr)
	}
	defer session.Close()

	detach := link.attachPage(ctx, session)
	defer detach()

	for _, fragment := range opts.Fragments {
		if injectErr := it.inject(ctx, session, fragment); injectErr != nil {
			logger.Warnf("Skipping fragment %q: %v", fragment, injectErr)
		}
	}

	if waitErr := session.Wait(ctx); waitErr != nil {
		return nil, fmt.Errorf("scan did not settle: %w", waitErr)
	}

	stats, err := session.Stats()
	if err != nil {
		return nil, err
	}
	// a toggle may have arrived while the scan ran
	if enabled, err = session.Enabled(); err != nil {
		return nil, err
	}

	if opts.Output != nil {
		if renderErr := session.Render(opts.Output); renderErr != nil {
			return nil, fmt.Errorf("failed to write annotated page: %w", renderErr)
		}
	}

	result := &ScanResult{
		Entries:          stats.Entries,
		PackagesScanned:  stats.PackagesScanned,
		OutdatedPackages: stats.OutdatedPackages,
		Skipped:          !enabled,
	}
	if enabled {
		it.reportStats(ctx, link.channel, result)
	}

	logger.Infof(
		"Scan complete: %d packages scanned, %d outdated",
		result.PackagesScanned, result.OutdatedPackages,
	)
	return result, nil
}

func (it *ScanCommand) load(ctx context.Context, source string) (*scanner.Document, error) {
	reader, err := it.pages.Open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return scanner.ParseDocument(reader)
}

func (it *ScanCommand) inject(ctx context.Context, session *scanner.Session, source string) error {
	reader, err := it.pages.Open(ctx, source)
	if err != nil {
		return err
	}
	defer reader.Close()

	return session.Inject(reader)
}

// reportStats sends updateStats; delivery problems are informational only.
func (it *ScanCommand) reportStats(
	ctx context.Context,
	channel repositories.MessageChannel,
	result *ScanResult,
) {
	resp, err := channel.Send(ctx, entities.UpdateStatsMessage{
		PackagesScanned:  result.PackagesScanned,
		OutdatedPackages: result.OutdatedPackages,
	})
	if err != nil {
		logger.Infof("Could not report scan stats: %v", err)
		return
	}
	if resp.Error != "" {
		logger.Infof("Background rejected scan stats: %s", resp.Error)
	}
}
