//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rios0rios0/npmdiffscan/internal/domain/repositories"
)

// StubPageRepository serves pages from memory.
type StubPageRepository struct {
	Pages map[string]string // source -> HTML
	// Gates, when set, block opening a source until its channel is closed
	Gates map[string]chan struct{}
}

var _ repositories.PageRepository = (*StubPageRepository)(nil)

func (p *StubPageRepository) Open(ctx context.Context, source string) (io.ReadCloser, error) {
	if gate, ok := p.Gates[source]; ok {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	content, ok := p.Pages[source]
	if !ok {
		return nil, fmt.Errorf("page %q not found", source)
	}
	return io.NopCloser(strings.NewReader(content)), nil
}
