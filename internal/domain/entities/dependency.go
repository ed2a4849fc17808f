package entities

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Bump classifies how far the latest version is from the current one.
type Bump string

const (
	BumpMajor      Bump = "major"
	BumpMinor      Bump = "minor"
	BumpPatch      Bump = "patch"
	BumpPrerelease Bump = "prerelease"
	BumpDowngrade  Bump = "downgrade"
	BumpUnknown    Bump = "unknown"
)

// PackageEntry is a dependency declaration found on a single diff line,
// together with the version the registry reports as latest.
type PackageEntry struct {
	Name           string // Package name, optionally scoped
	CurrentVersion string // Version text as written in the manifest
	LatestVersion  string // Latest version reported by the registry
	IsOutdated     bool   // LatestVersion differs from CurrentVersion
}

// NewPackageEntry builds an entry and derives IsOutdated from a plain string
// comparison. Ranges such as "^4.17.20" are never considered equal to
// "4.17.20".
func NewPackageEntry(name, current, latest string) PackageEntry {
	return PackageEntry{
		Name:           name,
		CurrentVersion: current,
		LatestVersion:  latest,
		IsOutdated:     latest != "" && latest != current,
	}
}

// Bump returns the kind of update between CurrentVersion and LatestVersion.
// It only decorates markers; outdatedness is decided by IsOutdated.
func (e PackageEntry) Bump() Bump {
	current, err := semver.NewVersion(stripRangeOperator(e.CurrentVersion))
	if err != nil {
		return BumpUnknown
	}
	latest, err := semver.NewVersion(e.LatestVersion)
	if err != nil {
		return BumpUnknown
	}

	switch {
	case latest.LessThan(current):
		return BumpDowngrade
	case latest.Major() != current.Major():
		return BumpMajor
	case latest.Minor() != current.Minor():
		return BumpMinor
	case latest.Patch() != current.Patch():
		return BumpPatch
	case latest.Prerelease() != current.Prerelease():
		return BumpPrerelease
	default:
		return BumpUnknown
	}
}

// stripRangeOperator removes npm range prefixes like "^", "~" or ">=".
func stripRangeOperator(version string) string {
	return strings.TrimLeft(strings.TrimSpace(version), "^~<>=v ")
}
