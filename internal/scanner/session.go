package scanner

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/sync/singleflight"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
	"github.com/rios0rios0/npmdiffscan/internal/domain/repositories"
)

// SessionOptions configures a page Session.
type SessionOptions struct {
	Resolver repositories.RegistryRepository
	Debounce time.Duration
	Clock    Clock
	Enabled  bool
}

// SessionStats are the counts of one session.
type SessionStats struct {
	PackagesScanned  int
	OutdatedPackages int
	Entries          []entities.PackageEntry
}

// Session is the page context: it owns a Document, the version cache and the
// processed set, and mutates them only from its event-loop goroutine.
// Registry lookups run concurrently and apply their results on the loop in
// whatever order they complete.
type Session struct {
	doc       *Document
	cache     *VersionCache
	processed processedSet
	annotator Annotator
	debouncer *Debouncer
	resolver  repositories.RegistryRepository
	flight    singleflight.Group
	enabled   bool

	tasks     chan func()
	done      chan struct{}
	closeOnce sync.Once
	ctx       context.Context
	cancel    context.CancelFunc

	// loop-owned bookkeeping
	pending   int
	waiters   []chan struct{}
	unobserve func()
	stats     SessionStats
}

// NewSession creates a session for doc. Call Start to run it.
func NewSession(doc *Document, opts SessionOptions) *Session {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Debounce <= 0 {
		opts.Debounce = entities.DefaultDebounce
	}

	s := &Session{
		doc:       doc,
		cache:     NewVersionCache(),
		processed: make(processedSet),
		resolver:  opts.Resolver,
		enabled:   opts.Enabled,
		tasks:     make(chan func()),
		done:      make(chan struct{}),
	}
	s.debouncer = NewDebouncer(opts.Clock, opts.Debounce, s.post, func() {
		s.scan()
		s.release()
	})
	return s
}

// Start runs the event loop, performs the initial scan and subscribes to
// document mutations. Lookups are bound to ctx.
func (s *Session) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)
	go s.run()

	return s.do(func() {
		s.scan()
		s.unobserve = s.doc.Observe(s)
	})
}

// Close stops the loop. Lookups still in flight are dropped when they return.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		close(s.done)
	})
}

// OnMutation schedules a debounced rescan when nodes were added. It runs on
// the loop because every document mutation does.
func (s *Session) OnMutation(batch []MutationRecord) {
	if !addsNodes(batch) {
		return
	}
	if s.debouncer.Trigger() {
		s.acquire()
	}
}

// Inject appends an HTML fragment to the page body, the way the host page
// loads diffs lazily.
func (s *Session) Inject(fragment io.Reader) error {
	var injectErr error
	if err := s.do(func() {
		injectErr = s.doc.AppendHTML(s.doc.Body(), fragment)
	}); err != nil {
		return err
	}
	return injectErr
}

// Replace re-renders the diff container at index (in document order) from
// fragment. The replacement is a new node and will be scanned again.
func (s *Session) Replace(index int, fragment io.Reader) error {
	var replaceErr error
	if err := s.do(func() {
		containers := queryAll(s.doc.Root(), byTestID(DiffContainerTestID))
		if index < 0 || index >= len(containers) {
			replaceErr = fmt.Errorf("no diff container at index %d", index)
			return
		}
		replaceErr = s.doc.ReplaceWithHTML(containers[index], fragment)
	}); err != nil {
		return err
	}
	return replaceErr
}

// Handle answers the messages addressed to a page context.
func (s *Session) Handle(_ context.Context, msg entities.Message) entities.Response {
	switch m := msg.(type) {
	case entities.CheckStatusMessage:
		return entities.Response{Alive: true}
	case entities.ToggleExtensionMessage:
		if err := s.do(func() { s.setEnabled(m.Enabled) }); err != nil {
			return entities.ErrorResponse(err)
		}
		enabled := m.Enabled
		return entities.Response{Enabled: &enabled}
	default:
		return entities.ErrorResponse(fmt.Errorf("%w: %s", entities.ErrUnknownAction, msg.Action()))
	}
}

// Wait blocks until no lookup or scheduled rescan is pending.
func (s *Session) Wait(ctx context.Context) error {
	idle := make(chan struct{})
	if err := s.post(func() {
		if s.pending == 0 {
			close(idle)
			return
		}
		s.waiters = append(s.waiters, idle)
	}); err != nil {
		return err
	}

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return entities.ErrSessionClosed
	}
}

// Stats returns a snapshot of the session counts.
func (s *Session) Stats() (SessionStats, error) {
	var snapshot SessionStats
	err := s.do(func() {
		snapshot = s.stats
		snapshot.Entries = append([]entities.PackageEntry(nil), s.stats.Entries...)
	})
	return snapshot, err
}

// Enabled reports whether the session currently scans.
func (s *Session) Enabled() (bool, error) {
	var enabled bool
	err := s.do(func() { enabled = s.enabled })
	return enabled, err
}

// CachedVersions returns how many package names are cached.
func (s *Session) CachedVersions() (int, error) {
	var n int
	err := s.do(func() { n = s.cache.Len() })
	return n, err
}

// Render writes the annotated page.
func (s *Session) Render(w io.Writer) error {
	var renderErr error
	if err := s.do(func() { renderErr = s.doc.Render(w) }); err != nil {
		return err
	}
	return renderErr
}

func (s *Session) run() {
	defer func() {
		if s.unobserve != nil {
			s.unobserve()
		}
		s.debouncer.Stop()
	}()
	for {
		select {
		case task := <-s.tasks:
			task()
		case <-s.done:
			return
		}
	}
}

// post queues task on the loop.
func (s *Session) post(task func()) error {
	select {
	case <-s.done:
		return entities.ErrSessionClosed
	default:
	}
	select {
	case s.tasks <- task:
		return nil
	case <-s.done:
		return entities.ErrSessionClosed
	}
}

// do runs task on the loop and waits for it to finish.
func (s *Session) do(task func()) error {
	finished := make(chan struct{})
	if err := s.post(func() {
		defer close(finished)
		task()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-s.done:
		return entities.ErrSessionClosed
	}
}

func (s *Session) acquire() { s.pending++ }

func (s *Session) release() {
	s.pending--
	if s.pending > 0 {
		return
	}
	for _, w := range s.waiters {
		close(w)
	}
	s.waiters = nil
}

func (s *Session) setEnabled(enabled bool) {
	wasEnabled := s.enabled
	s.enabled = enabled
	logger.Debugf("Page scanner enabled=%t", enabled)
	if enabled && !wasEnabled {
		s.scan()
	}
}

// scan looks for manifest diffs that were not processed yet.
func (s *Session) scan() {
	if !s.enabled {
		return
	}

	for _, container := range queryAll(s.doc.Root(), byTestID(DiffContainerTestID)) {
		if s.processed.has(container) {
			continue
		}
		header := queryFirst(container, byTestID(DiffHeaderTestID))
		if header == nil {
			continue
		}
		fileName := textContent(header)
		if !IsManifestHeader(fileName) {
			continue
		}

		s.processed.add(container)
		logger.Debugf("Scanning manifest diff %q", fileName)
		s.processContainer(container)
	}
}

func (s *Session) processContainer(container *html.Node) {
	for _, line := range queryAll(container, byTestID(DiffLineTestID)) {
		candidate, ok := ExtractCandidate(textContent(line))
		if !ok {
			continue
		}

		s.stats.PackagesScanned++
		s.resolveLatest(candidate.Name, func(latest string) {
			s.applyLatest(line, candidate, latest)
		})
	}
}

// resolveLatest hands the latest version of name to then, on the loop. A
// cached name is answered immediately without any lookup. A miss issues one
// lookup; failures are logged, leave the cache untouched and never call then.
func (s *Session) resolveLatest(name string, then func(latest string)) {
	if latest, ok := s.cache.Get(name); ok {
		then(latest)
		return
	}

	s.acquire()
	go func() {
		value, err, _ := s.flight.Do(name, func() (any, error) {
			return s.resolver.LatestVersion(s.ctx, name)
		})
		_ = s.post(func() {
			defer s.release()
			if err != nil {
				logger.Warnf("Failed to fetch latest version for %s: %v", name, err)
				return
			}
			latest, _ := value.(string)
			s.cache.Put(name, latest)
			then(latest)
		})
	}()
}

func (s *Session) applyLatest(line *html.Node, candidate Candidate, latest string) {
	entry := entities.NewPackageEntry(candidate.Name, candidate.Version, latest)
	s.stats.Entries = append(s.stats.Entries, entry)
	if !entry.IsOutdated {
		return
	}

	s.stats.OutdatedPackages++
	if s.annotator.Annotate(line, entry) {
		logger.Debugf("%s: %s -> %s", entry.Name, entry.CurrentVersion, entry.LatestVersion)
	}
}
