// Package license classifies rights statements as open or not.
//
// Classification is a substring heuristic over the statement's URI,
// identifier and label. Labels like "CC BY-NC" match the "cc by" marker,
// so some non-commercial licenses are counted as open.
package license

import (
	"strings"

	"github.com/gnames/dsrecon/pkg/payload"
)

// Class is the license classification of a dataset.
type Class string

const (
	// Open means at least one rights statement is an open license.
	Open Class = "open"
	// NonOpen means rights statements exist but none is open.
	NonOpen Class = "nonopen"
	// None means the dataset has no rights statements.
	None Class = "none"
)

// openMarkers are matched against lower-cased statement text.
var openMarkers = []string{
	"creativecommons.org",
	"cc-by",
	"cc0",
	"cc by",
	"publicdomain",
	"pddl",
	"odbl",
	"opendatacommons.org",
}

// IsOpen reports whether a rights statement names an open license.
func IsOpen(r payload.Rights) bool {
	for _, s := range []string{r.URI, r.Identifier, r.Label} {
		if s == "" {
			continue
		}
		s = strings.ToLower(s)
		for _, m := range openMarkers {
			if strings.Contains(s, m) {
				return true
			}
		}
	}
	return false
}

// Classify returns the class of a dataset from all of its rights
// statements.
func Classify(rights []payload.Rights) Class {
	var seen bool
	for _, r := range rights {
		if r.IsEmpty() {
			continue
		}
		if IsOpen(r) {
			return Open
		}
		seen = true
	}
	if seen {
		return NonOpen
	}
	return None
}
