// Package dsrecon reconciles dataset metadata harvested from DataCite and
// Crossref into one DOI-keyed collection and computes statistics over it.
package dsrecon

var (
	// Version of dsrecon, set during build.
	Version = "v0.1.0"
	// Build timestamp, set during build.
	Build = "n/a"
)
