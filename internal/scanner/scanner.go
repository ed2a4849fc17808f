package scanner

import (
	"regexp"
	"strings"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
)

// Structural markers of the host diff view.
const (
	DiffContainerTestID = "file-diff-view"
	DiffHeaderTestID    = "file-diff-header"
	DiffLineTestID      = "diff-line-content"
)

// quotedPairPattern matches a `"name": "version"` token, tolerating a leading
// diff marker and whitespace.
var quotedPairPattern = regexp.MustCompile(`[+\s]*"([^"]+)":\s*"([^"]+)"`)

// Candidate is a dependency declaration extracted from one diff line.
type Candidate struct {
	Name    string
	Version string
}

// ExtractCandidate returns the dependency declared on a diff line. Lines
// without a quoted pair, with an invalid package name or with a structural
// manifest key yield ok == false.
func ExtractCandidate(lineText string) (Candidate, bool) {
	match := quotedPairPattern.FindStringSubmatch(lineText)
	if match == nil {
		return Candidate{}, false
	}

	name, version := match[1], match[2]
	if !entities.IsValidPackageName(name) || entities.IsStructuralKey(name) {
		return Candidate{}, false
	}

	return Candidate{Name: name, Version: version}, true
}

// IsManifestHeader reports whether a diff header names a scanned manifest.
func IsManifestHeader(headerText string) bool {
	for _, file := range entities.ManifestFiles {
		if strings.Contains(headerText, file) {
			return true
		}
	}
	return false
}
