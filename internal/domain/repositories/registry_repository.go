package repositories

import (
	"context"
)

// RegistryRepository abstracts the package registry. LatestVersion issues one
// lookup per call: callers are responsible for any caching.
type RegistryRepository interface {
	LatestVersion(ctx context.Context, packageName string) (string, error)
}
