package page

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/npmdiffscan/internal/domain/repositories"
)

// stdinSource reads the page from standard input.
const stdinSource = "-"

// SourcePageRepository opens pages from http(s) URLs, local files or stdin.
type SourcePageRepository struct {
	client *http.Client
	stdin  io.Reader
}

// NewSourcePageRepository creates a repository reading stdin for "-".
func NewSourcePageRepository() *SourcePageRepository {
	return &SourcePageRepository{client: cleanhttp.DefaultPooledClient(), stdin: os.Stdin}
}

var _ repositories.PageRepository = (*SourcePageRepository)(nil)

func (r *SourcePageRepository) Open(ctx context.Context, source string) (io.ReadCloser, error) {
	switch {
	case source == stdinSource:
		return io.NopCloser(r.stdin), nil
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return r.fetch(ctx, source)
	default:
		file, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open page %q: %w", source, err)
		}
		return file, nil
	}
}

func (r *SourcePageRepository) fetch(ctx context.Context, pageURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	logger.Debugf("GET %s", pageURL)
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %q: %w", pageURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch page %q: HTTP %d", pageURL, resp.StatusCode)
	}
	return resp.Body, nil
}
