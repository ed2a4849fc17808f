//go:build unit

package page_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/npmdiffscan/internal/infrastructure/repositories/page"
)

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestSourcePageRepositoryOpen(t *testing.T) {
	t.Parallel()

	t.Run("should open a local file", func(t *testing.T) {
		t.Parallel()

		// given
		path := filepath.Join(t.TempDir(), "pr.html")
		require.NoError(t, os.WriteFile(path, []byte("<html></html>"), 0o600))
		repository := page.NewSourcePageRepository()

		// when
		rc, err := repository.Open(context.Background(), path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "<html></html>", readAll(t, rc))
	})

	t.Run("should fetch an http page", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html><body>diff</body></html>"))
		}))
		t.Cleanup(server.Close)
		repository := page.NewSourcePageRepository()

		// when
		rc, err := repository.Open(context.Background(), server.URL+"/pull/1/files")

		// then
		require.NoError(t, err)
		assert.Equal(t, "<html><body>diff</body></html>", readAll(t, rc))
	})

	t.Run("should fail on a non-200 page", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		t.Cleanup(server.Close)
		repository := page.NewSourcePageRepository()

		// when
		_, err := repository.Open(context.Background(), server.URL)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("should fail on a missing file", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := page.NewSourcePageRepository().Open(context.Background(), filepath.Join(t.TempDir(), "nope.html"))

		// then
		require.Error(t, err)
	})
}
