//go:build unit

package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/npmdiffscan/internal/scanner"
)

func TestExtractCandidate(t *testing.T) {
	t.Parallel()

	t.Run("should extract an added dependency line", func(t *testing.T) {
		t.Parallel()

		// given
		line := `+    "lodash": "^4.17.20",`

		// when
		candidate, ok := scanner.ExtractCandidate(line)

		// then
		assert.True(t, ok)
		assert.Equal(t, scanner.Candidate{Name: "lodash", Version: "^4.17.20"}, candidate)
	})

	t.Run("should extract a scoped package without diff marker", func(t *testing.T) {
		t.Parallel()

		// given
		line := `"@types/node": "20.11.5"`

		// when
		candidate, ok := scanner.ExtractCandidate(line)

		// then
		assert.True(t, ok)
		assert.Equal(t, "@types/node", candidate.Name)
		assert.Equal(t, "20.11.5", candidate.Version)
	})

	t.Run("should skip structural manifest keys", func(t *testing.T) {
		t.Parallel()

		for _, line := range []string{
			`"name": "my-app",`,
			`"version": "1.0.0",`,
			`+  "license": "MIT"`,
		} {
			_, ok := scanner.ExtractCandidate(line)
			assert.False(t, ok, line)
		}
	})

	t.Run("should skip invalid package names", func(t *testing.T) {
		t.Parallel()

		// given
		line := `"Build Script": "node build.js"`

		// when
		_, ok := scanner.ExtractCandidate(line)

		// then
		assert.False(t, ok)
	})

	t.Run("should skip lines without a quoted pair", func(t *testing.T) {
		t.Parallel()

		for _, line := range []string{`  "dependencies": {`, `  },`, ``, `+ // comment`} {
			_, ok := scanner.ExtractCandidate(line)
			assert.False(t, ok, line)
		}
	})
}

func TestIsManifestHeader(t *testing.T) {
	t.Parallel()

	t.Run("should match manifests in nested paths", func(t *testing.T) {
		t.Parallel()

		assert.True(t, scanner.IsManifestHeader("package.json"))
		assert.True(t, scanner.IsManifestHeader("frontend/package.json"))
	})

	t.Run("should not match other files", func(t *testing.T) {
		t.Parallel()

		assert.False(t, scanner.IsManifestHeader("README.md"))
		assert.False(t, scanner.IsManifestHeader("src/index.ts"))
	})
}
