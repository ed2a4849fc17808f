package scanner

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
)

const (
	MarkerClass        = "npm-version-indicator"
	LatestVersionClass = "npm-latest-version"
	MarkerLabel        = "Latest version available on npm"
)

// trailingQuotedPattern captures the last quoted token of a line.
var trailingQuotedPattern = regexp.MustCompile(`"([^"]+)"\s*,?\s*$`)

// Annotator attaches version markers to diff lines.
type Annotator struct{}

// Annotate attaches a marker showing entry.LatestVersion to line. It returns
// false, and changes nothing, when the line already carries a marker.
//
// When the line ends with the current version as a quoted token the marker
// goes to the element holding the text node with that version; otherwise it
// is appended to the line itself. Markers are page-owned output and are not
// reported to observers.
func (Annotator) Annotate(line *html.Node, entry entities.PackageEntry) bool {
	if queryFirst(line, byClass(MarkerClass)) != nil {
		return false
	}

	marker := newMarker(entry)
	anchorFor(line, entry.CurrentVersion).AppendChild(marker)
	return true
}

// anchorFor picks the element the marker is appended to.
func anchorFor(line *html.Node, currentVersion string) *html.Node {
	match := trailingQuotedPattern.FindStringSubmatch(textContent(line))
	if match == nil || match[1] != currentVersion {
		return line
	}

	for _, text := range textNodes(line) {
		if strings.Contains(text.Data, currentVersion) && text.Parent != nil {
			return text.Parent
		}
	}
	return line
}

func newMarker(entry entities.PackageEntry) *html.Node {
	marker := &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr: []html.Attribute{
			{Key: "class", Val: MarkerClass},
			{Key: "data-package", Val: entry.Name},
			{Key: "data-update", Val: string(entry.Bump())},
		},
	}
	latest := &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr: []html.Attribute{
			{Key: "class", Val: LatestVersionClass},
			{Key: "title", Val: MarkerLabel},
		},
	}
	latest.AppendChild(&html.Node{Type: html.TextNode, Data: "📦 " + entry.LatestVersion})
	marker.AppendChild(latest)
	return marker
}
