// Package affiliation extracts person-to-institution edges from the
// affiliation claims found on native records.
//
// An edge is recorded only when the claim carries an explicit ROR marker
// accepted by the catalog's rule. Free-text affiliations without a ROR
// marker never produce edges.
package affiliation

import (
	"slices"
	"strings"

	"github.com/gnames/dsrecon/pkg/dataset"
	"github.com/gnames/dsrecon/pkg/identity"
	"github.com/gnames/dsrecon/pkg/normalize"
	"github.com/gnames/dsrecon/pkg/payload"
)

// Edges maps a canonical ROR identifier to the set of person keys
// affiliated with it.
type Edges map[string]map[identity.Key]struct{}

// Add records an edge.
func (e Edges) Add(ror string, key identity.Key) {
	persons, ok := e[ror]
	if !ok {
		persons = make(map[identity.Key]struct{})
		e[ror] = persons
	}
	persons[key] = struct{}{}
}

// Has reports whether at least one person is affiliated with ror.
func (e Edges) Has(ror string) bool {
	return len(e[ror]) > 0
}

// Persons returns sorted person keys affiliated with ror.
func (e Edges) Persons(ror string) []identity.Key {
	res := make([]identity.Key, 0, len(e[ror]))
	for k := range e[ror] {
		res = append(res, k)
	}
	slices.Sort(res)
	return res
}

// Merge adds all edges of other to e.
func (e Edges) Merge(other Edges) {
	for ror, persons := range other {
		for k := range persons {
			e.Add(ror, k)
		}
	}
}

// Rule picks the identifier candidate of an affiliation claim and decides
// whether it may be treated as a ROR identifier.
type Rule func(a payload.Affiliation) (string, bool)

// DataCiteRule accepts a claim tagged with the ROR scheme, or with a
// scheme URI or identifier that mentions the ROR host. A name is used
// as a candidate only when it mentions the ROR host itself.
func DataCiteRule(a payload.Affiliation) (string, bool) {
	if a.Identifier == "" {
		return a.Name, normalize.HasRORMarker(a.Name)
	}
	ok := strings.EqualFold(a.Scheme, "ror") ||
		normalize.HasRORMarker(a.SchemeURI) ||
		normalize.HasRORMarker(a.Identifier)
	return a.Identifier, ok
}

// CrossrefRule accepts a claim whose identifier is typed as ROR or
// mentions the ROR host. Without an identifier the name must mention the
// ROR host.
func CrossrefRule(a payload.Affiliation) (string, bool) {
	if a.Identifier == "" {
		return a.Name, normalize.HasRORMarker(a.Name)
	}
	ok := strings.EqualFold(a.Scheme, "ror") ||
		normalize.HasRORMarker(a.Identifier)
	return a.Identifier, ok
}

// Extract builds edges from people using the given acceptance rule.
// People without a resolvable key are skipped.
func Extract(people []payload.Person, accept Rule) Edges {
	res := make(Edges)
	for _, p := range people {
		key, ok := p.Key()
		if !ok {
			continue
		}
		for _, a := range p.Affiliations {
			cand, ok := accept(a)
			if !ok {
				continue
			}
			if ror, ok := normalize.ROR(cand); ok {
				res.Add(ror, key)
			}
		}
	}
	return res
}

// FromDataCite extracts edges from a DataCite record.
func FromDataCite(dc *payload.DataCite) Edges {
	if dc == nil {
		return make(Edges)
	}
	return Extract(dc.People(), DataCiteRule)
}

// FromCrossref extracts edges from a Crossref record.
func FromCrossref(cr *payload.Crossref) Edges {
	if cr == nil {
		return make(Edges)
	}
	return Extract(cr.People(), CrossrefRule)
}

// Mentions returns accepted ROR identifiers of all people, including
// people without a resolvable key.
func Mentions(people []payload.Person, accept Rule) map[string]struct{} {
	res := make(map[string]struct{})
	for _, p := range people {
		for _, a := range p.Affiliations {
			cand, ok := accept(a)
			if !ok {
				continue
			}
			if ror, ok := normalize.ROR(cand); ok {
				res[ror] = struct{}{}
			}
		}
	}
	return res
}

// Carries reports whether a dataset mentions ror as its queried
// institution or in any accepted affiliation claim of its payloads.
// Undecodable payloads are ignored.
func Carries(ds *dataset.Aggregated, ror string) bool {
	ror, ok := normalize.ROR(ror)
	if !ok {
		return false
	}
	if ds.HasRORID(ror) {
		return true
	}
	if raw, ok := ds.Record(dataset.DataCite); ok {
		if dc, err := payload.DecodeDataCite(raw); err == nil {
			if _, ok := Mentions(dc.People(), DataCiteRule)[ror]; ok {
				return true
			}
		}
	}
	if raw, ok := ds.Record(dataset.Crossref); ok {
		if cr, err := payload.DecodeCrossref(raw); err == nil {
			if _, ok := Mentions(cr.People(), CrossrefRule)[ror]; ok {
				return true
			}
		}
	}
	return false
}
