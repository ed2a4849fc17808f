package repositories

import (
	"context"
	"io"
)

// PageRepository opens the HTML of a pull-request page or of a lazily loaded
// fragment of it.
type PageRepository interface {
	Open(ctx context.Context, source string) (io.ReadCloser, error)
}
