package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
	"github.com/rios0rios0/npmdiffscan/internal/domain/repositories"
)

// NpmRegistryRepository resolves latest versions from an npm registry.
// Each call is exactly one GET with no retry; the transport default is the
// only timeout.
type NpmRegistryRepository struct {
	client  *http.Client
	baseURL string
}

// latestManifest is the subset of the /latest document we read.
type latestManifest struct {
	Version string `json:"version"`
}

// NewNpmRegistryRepository creates a client for the registry at baseURL.
func NewNpmRegistryRepository(baseURL string) *NpmRegistryRepository {
	return &NpmRegistryRepository{
		client:  cleanhttp.DefaultPooledClient(),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

var _ repositories.RegistryRepository = (*NpmRegistryRepository)(nil)

// LatestVersion fetches {baseURL}/{packageName}/latest and returns its
// "version" field.
func (r *NpmRegistryRepository) LatestVersion(ctx context.Context, packageName string) (string, error) {
	if !entities.IsValidPackageName(packageName) {
		return "", fmt.Errorf("%w: %w: %q", entities.ErrRegistryLookup, entities.ErrInvalidPackageName, packageName)
	}

	reqURL := r.baseURL + "/" + packageName + "/latest"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %w", entities.ErrRegistryLookup, err)
	}
	req.Header.Set("Accept", "application/json")

	logger.Debugf("GET %s", reqURL)
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", entities.ErrRegistryLookup, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: HTTP %d", entities.ErrRegistryLookup, resp.StatusCode)
	}

	var manifest latestManifest
	if decodeErr := json.NewDecoder(resp.Body).Decode(&manifest); decodeErr != nil {
		return "", fmt.Errorf("%w: failed to parse response: %w", entities.ErrRegistryLookup, decodeErr)
	}
	if manifest.Version == "" {
		return "", fmt.Errorf("%w: response has no version", entities.ErrRegistryLookup)
	}

	return manifest.Version, nil
}
