package entities

import (
	"regexp"
	"slices"
)

// ManifestFiles are the file names whose diffs are scanned.
//
//nolint:gochecknoglobals // fixed list
var ManifestFiles = []string{"package.json", "package-lock.json"}

// packageNamePattern is the npm package name grammar: an optional "@scope/"
// segment, then lowercase alphanumerics and "-._~".
var packageNamePattern = regexp.MustCompile(
	`^(@[a-z0-9-~][a-z0-9-._~]*/)?[a-z0-9-~][a-z0-9-._~]*$`,
)

// structuralKeys are manifest keys that match the quoted-pair shape but are
// never dependency entries.
//
//nolint:gochecknoglobals // fixed list
var structuralKeys = []string{
	"name",
	"version",
	"description",
	"main",
	"scripts",
	"keywords",
	"author",
	"license",
	"bugs",
	"homepage",
	"repository",
	"engines",
	"dependencies",
	"devDependencies",
	"peerDependencies",
	"optionalDependencies",
}

// IsValidPackageName reports whether name satisfies the npm name grammar.
func IsValidPackageName(name string) bool {
	return packageNamePattern.MatchString(name)
}

// IsStructuralKey reports whether name is a manifest key rather than a package.
func IsStructuralKey(name string) bool {
	return slices.Contains(structuralKeys, name)
}
