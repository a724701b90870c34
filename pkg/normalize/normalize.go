// Package normalize reduces persistent identifiers (DOI, ORCID, ROR) to
// canonical strings used as join keys across catalogs.
//
// All functions are total: any input either produces a canonical form or
// is reported as absent through the second return value. Every function
// is idempotent, applying it to its own output returns the same output.
package normalize

import (
	"strings"
	"unicode"
)

// rorHost marks ROR identifiers written as URLs.
const rorHost = "ror.org/"

// RORPrefix is prepended to the suffix of every canonical ROR identifier.
const RORPrefix = "https://ror.org/"

var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi:",
}

// DOI returns the canonical form of a DOI: lower case, without resolver
// prefixes and surrounding whitespace. It returns false if nothing is
// left after stripping.
func DOI(s string) (string, bool) {
	res := strings.ToLower(s)
	for {
		res = strings.TrimSpace(res)
		stripped := false
		for _, p := range doiPrefixes {
			if strings.HasPrefix(res, p) {
				res = res[len(p):]
				stripped = true
				break
			}
		}
		if !stripped {
			break
		}
	}
	if res == "" {
		return "", false
	}
	return res, true
}

// ORCID returns the bare ORCID identifier. URL forms are reduced to their
// last path segment after all whitespace is removed. A URL without an
// identifier path, such as "https://orcid.org/", is absent.
func ORCID(s string) (string, bool) {
	res := strings.Join(strings.Fields(s), "")
	if strings.HasPrefix(strings.ToLower(res), "http") {
		res = strings.TrimRight(res, "/")
		if idx := strings.LastIndex(res, "/"); idx >= 0 {
			res = res[idx+1:]
		}
		if strings.Contains(res, ".") || !strings.ContainsAny(res, "0123456789") {
			return "", false
		}
	}
	if res == "" {
		return "", false
	}
	return res, true
}

// ROR returns the canonical ROR identifier "https://ror.org/<suffix>".
// The suffix is taken after the ROR host when present, otherwise after the
// last slash. The suffix is lower-cased.
func ROR(s string) (string, bool) {
	low := strings.ToLower(strings.TrimSpace(s))
	if low == "" {
		return "", false
	}

	var suffix string
	if idx := strings.Index(low, rorHost); idx >= 0 {
		suffix = low[idx+len(rorHost):]
	} else {
		suffix = strings.TrimRight(low, "/")
		if idx := strings.LastIndex(suffix, "/"); idx >= 0 {
			suffix = suffix[idx+1:]
		}
	}
	suffix = strings.TrimFunc(suffix, func(r rune) bool {
		return r == '/' || unicode.IsSpace(r)
	})
	if suffix == "" {
		return "", false
	}
	return RORPrefix + suffix, true
}

// HasRORMarker reports whether a string mentions the ROR host.
func HasRORMarker(s string) bool {
	return strings.Contains(strings.ToLower(s), "ror.org")
}
