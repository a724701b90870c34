// Package dataset defines harvested raw records and DOI-keyed aggregated
// datasets.
package dataset

import (
	"bytes"
	"slices"

	"github.com/segmentio/encoding/json"
)

// Source is a metadata catalog.
type Source string

const (
	// DataCite catalog.
	DataCite Source = "datacite"
	// Crossref catalog.
	Crossref Source = "crossref"
)

// Sources lists known catalogs in output order.
var Sources = []Source{DataCite, Crossref}

// ParseSource returns a known Source for its name.
func ParseSource(s string) (Source, bool) {
	switch Source(s) {
	case DataCite, Crossref:
		return Source(s), true
	default:
		return "", false
	}
}

// RawRecord is one harvested line. Source is kept as a plain string so
// unknown catalogs can be counted instead of rejected.
type RawRecord struct {
	Source string          `json:"source"`
	RORID  *string         `json:"ror_id"`
	DOI    *string         `json:"doi"`
	Record json.RawMessage `json:"record"`
}

// Records holds at most one native payload per catalog.
type Records struct {
	DataCite json.RawMessage `json:"datacite"`
	Crossref json.RawMessage `json:"crossref"`
}

// Aggregated is the merged view of all harvested records sharing one
// normalized DOI.
type Aggregated struct {
	DOI     string
	Sources map[Source]struct{}
	RORIDs  map[string]struct{}
	Records Records
}

// New creates an empty Aggregated for a normalized DOI.
func New(doi string) *Aggregated {
	return &Aggregated{
		DOI:     doi,
		Sources: make(map[Source]struct{}),
		RORIDs:  make(map[string]struct{}),
	}
}

// AddSource records that src contributed to the dataset.
func (a *Aggregated) AddSource(src Source) {
	a.Sources[src] = struct{}{}
}

// HasSource reports whether src contributed to the dataset.
func (a *Aggregated) HasSource(src Source) bool {
	_, ok := a.Sources[src]
	return ok
}

// AddRORID records an institution query that returned the dataset.
func (a *Aggregated) AddRORID(ror string) {
	a.RORIDs[ror] = struct{}{}
}

// HasRORID reports whether ror is among the institution queries.
func (a *Aggregated) HasRORID(ror string) bool {
	_, ok := a.RORIDs[ror]
	return ok
}

// SetRecord stores the payload of src. It returns true if a payload for
// src was already present and got replaced.
func (a *Aggregated) SetRecord(src Source, raw json.RawMessage) bool {
	slot := a.slot(src)
	if slot == nil {
		return false
	}
	replaced := Present(*slot)
	*slot = raw
	return replaced
}

// Record returns the payload of src if it is present.
func (a *Aggregated) Record(src Source) (json.RawMessage, bool) {
	slot := a.slot(src)
	if slot == nil || !Present(*slot) {
		return nil, false
	}
	return *slot, true
}

func (a *Aggregated) slot(src Source) *json.RawMessage {
	switch src {
	case DataCite:
		return &a.Records.DataCite
	case Crossref:
		return &a.Records.Crossref
	default:
		return nil
	}
}

// SortedSources returns source names in sorted order.
func (a *Aggregated) SortedSources() []string {
	res := make([]string, 0, len(a.Sources))
	for s := range a.Sources {
		res = append(res, string(s))
	}
	slices.Sort(res)
	return res
}

// SortedRORIDs returns institution identifiers in sorted order.
func (a *Aggregated) SortedRORIDs() []string {
	res := make([]string, 0, len(a.RORIDs))
	for r := range a.RORIDs {
		res = append(res, r)
	}
	slices.Sort(res)
	return res
}

// Valid checks that the dataset has a DOI, at least one source, and that
// every present payload belongs to a listed source.
func (a *Aggregated) Valid() bool {
	if a.DOI == "" || len(a.Sources) == 0 {
		return false
	}
	for _, src := range Sources {
		if _, ok := a.Record(src); ok && !a.HasSource(src) {
			return false
		}
	}
	return true
}

// Present reports whether a payload holds a non-null value.
func Present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

type aggregatedJSON struct {
	DOI     string   `json:"doi"`
	Sources []string `json:"sources"`
	RORIDs  []string `json:"ror_ids"`
	Records Records  `json:"records"`
}

// MarshalJSON writes sources and ROR ids as sorted arrays and missing
// payloads as null.
func (a *Aggregated) MarshalJSON() ([]byte, error) {
	res := aggregatedJSON{
		DOI:     a.DOI,
		Sources: a.SortedSources(),
		RORIDs:  a.SortedRORIDs(),
		Records: Records{
			DataCite: nullable(a.Records.DataCite),
			Crossref: nullable(a.Records.Crossref),
		},
	}
	return json.Marshal(res)
}

// UnmarshalJSON reads a dataset written by MarshalJSON. Unknown source
// names are dropped.
func (a *Aggregated) UnmarshalJSON(b []byte) error {
	var raw aggregatedJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	res := New(raw.DOI)
	for _, s := range raw.Sources {
		if src, ok := ParseSource(s); ok {
			res.AddSource(src)
		}
	}
	for _, r := range raw.RORIDs {
		res.AddRORID(r)
	}
	if Present(raw.Records.DataCite) {
		res.Records.DataCite = raw.Records.DataCite
	}
	if Present(raw.Records.Crossref) {
		res.Records.Crossref = raw.Records.Crossref
	}
	*a = *res
	return nil
}

func nullable(raw json.RawMessage) json.RawMessage {
	if !Present(raw) {
		return json.RawMessage("null")
	}
	return raw
}
