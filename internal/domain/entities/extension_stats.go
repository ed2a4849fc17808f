package entities

import "time"

// neverScanned is how a missing last-scan timestamp is displayed.
const neverScanned = "Never"

// ExtensionStats are the aggregate counts reported by the last completed scan.
type ExtensionStats struct {
	PackagesScanned  int       `yaml:"packagesScanned"  json:"packagesScanned"`
	OutdatedPackages int       `yaml:"outdatedPackages" json:"outdatedPackages"`
	LastScan         time.Time `yaml:"lastScan"         json:"lastScan"`
}

// LastScanLabel formats LastScan for display, or "Never" when no scan was
// ever recorded.
func (s ExtensionStats) LastScanLabel() string {
	if s.LastScan.IsZero() {
		return neverScanned
	}
	return s.LastScan.Local().Format(time.DateTime)
}

// DefaultEnabled is the enabled flag before any toggle was persisted.
const DefaultEnabled = true
