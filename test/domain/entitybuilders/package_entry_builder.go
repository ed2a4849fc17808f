//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
)

// PackageEntryBuilder helps create test package entries with a fluent interface.
type PackageEntryBuilder struct {
	*testkit.BaseBuilder
	name           string
	currentVersion string
	latestVersion  string
}

// NewPackageEntryBuilder creates a new package entry builder with sensible defaults.
func NewPackageEntryBuilder() *PackageEntryBuilder {
	return &PackageEntryBuilder{
		BaseBuilder:    testkit.NewBaseBuilder(),
		name:           "lodash",
		currentVersion: "4.17.20",
		latestVersion:  "4.17.21",
	}
}

// WithName sets the package name.
func (b *PackageEntryBuilder) WithName(name string) *PackageEntryBuilder {
	b.name = name
	return b
}

// WithCurrentVersion sets the version written in the manifest.
func (b *PackageEntryBuilder) WithCurrentVersion(version string) *PackageEntryBuilder {
	b.currentVersion = version
	return b
}

// WithLatestVersion sets the version reported by the registry.
func (b *PackageEntryBuilder) WithLatestVersion(version string) *PackageEntryBuilder {
	b.latestVersion = version
	return b
}

// Build creates the entry (satisfies testkit.Builder interface).
func (b *PackageEntryBuilder) Build() interface{} {
	return b.BuildPackageEntry()
}

// BuildPackageEntry creates the entry with a concrete return type.
func (b *PackageEntryBuilder) BuildPackageEntry() entities.PackageEntry {
	return entities.NewPackageEntry(b.name, b.currentVersion, b.latestVersion)
}

// Reset clears the builder state, allowing it to be reused.
func (b *PackageEntryBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.name = "lodash"
	b.currentVersion = "4.17.20"
	b.latestVersion = "4.17.21"
	return b
}

// Clone creates a deep copy of the PackageEntryBuilder.
func (b *PackageEntryBuilder) Clone() testkit.Builder {
	return &PackageEntryBuilder{
		BaseBuilder:    b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		name:           b.name,
		currentVersion: b.currentVersion,
		latestVersion:  b.latestVersion,
	}
}
