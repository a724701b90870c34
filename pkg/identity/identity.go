// Package identity resolves person occurrences to stable keys that are
// comparable across catalogs and records.
package identity

import (
	"strings"

	"github.com/gnames/dsrecon/pkg/normalize"
	"golang.org/x/text/unicode/norm"
)

const (
	orcidPrefix = "orcid:"
	namePrefix  = "name:"
)

// Key identifies a person. Keys backed by an ORCID have the "orcid:"
// prefix, all other keys have the "name:" prefix.
//
// Name-based keys of different people with identical names collide.
type Key string

// ResolvePersonKey derives a Key from the person's ORCID, family and given
// names and display name, in that order of preference. It returns false
// when none of them carries usable content.
func ResolvePersonKey(orcid, family, given, display string) (Key, bool) {
	if id, ok := normalize.ORCID(orcid); ok {
		return Key(orcidPrefix + id), true
	}

	fam, giv := fold(family), fold(given)
	if fam != "" || giv != "" {
		name := strings.Trim(fam+","+giv, ",")
		if name != "" {
			return Key(namePrefix + name), true
		}
	}

	if name := fold(display); name != "" {
		return Key(namePrefix + name), true
	}
	return "", false
}

// HasORCID reports whether the key is backed by an ORCID.
func (k Key) HasORCID() bool {
	return strings.HasPrefix(string(k), orcidPrefix)
}

func (k Key) String() string {
	return string(k)
}

// fold trims the name, lower-cases it and brings it to Unicode NFC form,
// so composed and decomposed spellings produce the same key.
func fold(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.ToLower(norm.NFC.String(s))
}
