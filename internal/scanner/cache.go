package scanner

import "golang.org/x/net/html"

// VersionCache maps package names to the latest version observed during one
// page session. It never evicts and is owned by a single Session, so it needs
// no locking.
type VersionCache struct {
	versions map[string]string
}

// NewVersionCache creates an empty cache.
func NewVersionCache() *VersionCache {
	return &VersionCache{versions: make(map[string]string)}
}

// Get returns the cached latest version for name.
func (c *VersionCache) Get(name string) (string, bool) {
	v, ok := c.versions[name]
	return v, ok
}

// Put records version as the latest for name.
func (c *VersionCache) Put(name, version string) {
	c.versions[name] = version
}

// Len returns the number of cached names.
func (c *VersionCache) Len() int { return len(c.versions) }

// processedSet holds diff containers already scanned. Membership only grows.
type processedSet map[*html.Node]struct{}

func (p processedSet) has(n *html.Node) bool {
	_, ok := p[n]
	return ok
}

func (p processedSet) add(n *html.Node) { p[n] = struct{}{} }
