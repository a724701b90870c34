// Package collapse removes version records of repository version families
// when the concept record and the version record confirm each other.
//
// A concept record lists its versions with HasVersion relations. A version
// is dropped only if its own DataCite payload points back to the concept
// with an IsVersionOf relation. Every examined pair produces a Decision.
package collapse

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/gnames/dsrecon/pkg/dataset"
	"github.com/gnames/dsrecon/pkg/normalize"
	"github.com/gnames/dsrecon/pkg/payload"
)

// Status is the reason code of a Decision.
type Status string

const (
	// MissingVersionRecord means the version DOI is not in the dataset set.
	MissingVersionRecord Status = "missing_version_record"
	// NoPayload means the version has no DataCite payload.
	NoPayload Status = "no_payload"
	// DropVersion means the back-link matched and the version was dropped.
	DropVersion Status = "drop_version"
	// InconsistentIsVersionOf means the back-link is missing or points
	// elsewhere.
	InconsistentIsVersionOf Status = "inconsistent_isversionof"
)

// Statuses lists all reason codes.
var Statuses = []Status{
	MissingVersionRecord,
	NoPayload,
	DropVersion,
	InconsistentIsVersionOf,
}

// Note returns a human readable explanation of the status.
func (s Status) Note() string {
	switch s {
	case MissingVersionRecord:
		return "HasVersion points to DOI not present in datasets_dedup"
	case NoPayload:
		return "Version record without datacite payload"
	case DropVersion:
		return "HasVersion + IsVersionOf match; dropping version DOI"
	case InconsistentIsVersionOf:
		return "HasVersion present, but IsVersionOf back-link missing"
	default:
		return ""
	}
}

// Decision records the outcome for one (concept, version) pair.
type Decision struct {
	Status     Status
	ConceptDOI string
	VersionDOI string
}

// Options configure family detection.
type Options struct {
	// DOIPrefix selects version DOIs and concept DOIs of the family.
	DOIPrefix string
	// Keyword is matched against client id and publisher of concepts.
	Keyword string
}

// DefaultOptions select Zenodo version families.
func DefaultOptions() Options {
	return Options{
		DOIPrefix: "10.5281/zenodo",
		Keyword:   "zenodo",
	}
}

// Result of a collapse run.
type Result struct {
	// Datasets kept, in input order.
	Datasets []*dataset.Aggregated
	// Decisions in concept input order, then version order.
	Decisions []Decision
	// Concepts is the number of records listing at least one version.
	Concepts int
	// Input is the number of datasets before collapsing.
	Input int
}

// Summary gives the sizes of a collapse run.
type Summary struct {
	Input    int `json:"input"`
	Concepts int `json:"concepts"`
	Dropped  int `json:"dropped"`
	Output   int `json:"output"`
}

// Summary returns the sizes of the run.
func (r *Result) Summary() Summary {
	return Summary{
		Input:    r.Input,
		Concepts: r.Concepts,
		Dropped:  r.Dropped(),
		Output:   len(r.Datasets),
	}
}

// Dropped returns the number of removed version records.
func (r *Result) Dropped() int {
	return r.Count(DropVersion)
}

// Count returns the number of decisions with the given status.
func (r *Result) Count(s Status) int {
	var res int
	for _, d := range r.Decisions {
		if d.Status == s {
			res++
		}
	}
	return res
}

type collapser struct {
	opts    Options
	index   map[string]*dataset.Aggregated
	decoded map[string]*payload.DataCite
}

// Collapse detects version families among datasets and drops confirmed
// version records.
func Collapse(datasets []*dataset.Aggregated, opts Options) *Result {
	opts.DOIPrefix = strings.ToLower(strings.TrimSpace(opts.DOIPrefix))
	c := collapser{
		opts:    opts,
		index:   make(map[string]*dataset.Aggregated, len(datasets)),
		decoded: make(map[string]*payload.DataCite),
	}
	for _, ds := range datasets {
		c.index[ds.DOI] = ds
	}

	res := &Result{Input: len(datasets)}
	drop := make(map[string]struct{})
	for _, ds := range datasets {
		versions := c.versions(ds)
		if len(versions) == 0 {
			continue
		}
		res.Concepts++
		for _, v := range versions {
			d := c.decide(ds.DOI, v)
			res.Decisions = append(res.Decisions, d)
			c.log(d)
			if d.Status == DropVersion {
				drop[v] = struct{}{}
			}
		}
	}

	res.Datasets = make([]*dataset.Aggregated, 0, len(datasets)-len(drop))
	for _, ds := range datasets {
		if _, ok := drop[ds.DOI]; !ok {
			res.Datasets = append(res.Datasets, ds)
		}
	}
	return res
}

// versions returns normalized, de-duplicated version DOIs listed by a
// family concept record.
func (c *collapser) versions(ds *dataset.Aggregated) []string {
	dc := c.dataCite(ds)
	if dc == nil || !c.inFamily(ds.DOI, dc) {
		return nil
	}
	var res []string
	for _, id := range dc.RelatedDOIs(payload.HasVersion) {
		v, ok := normalize.DOI(id)
		if !ok || v == ds.DOI || !strings.HasPrefix(v, c.opts.DOIPrefix) {
			continue
		}
		if !slices.Contains(res, v) {
			res = append(res, v)
		}
	}
	return res
}

func (c *collapser) inFamily(doi string, dc *payload.DataCite) bool {
	if strings.HasPrefix(doi, c.opts.DOIPrefix) {
		return true
	}
	kw := strings.ToLower(c.opts.Keyword)
	if kw == "" {
		return false
	}
	if client, ok := dc.ClientID(); ok && strings.Contains(strings.ToLower(client), kw) {
		return true
	}
	if pub, ok := dc.Publisher(); ok && strings.Contains(strings.ToLower(pub), kw) {
		return true
	}
	return false
}

func (c *collapser) decide(concept, version string) Decision {
	res := Decision{ConceptDOI: concept, VersionDOI: version}
	ds, ok := c.index[version]
	if !ok {
		res.Status = MissingVersionRecord
		return res
	}
	dc := c.dataCite(ds)
	if dc == nil || len(dc.Relations()) == 0 {
		res.Status = NoPayload
		return res
	}
	for _, id := range dc.RelatedDOIs(payload.IsVersionOf) {
		if doi, ok := normalize.DOI(id); ok && doi == concept {
			res.Status = DropVersion
			return res
		}
	}
	res.Status = InconsistentIsVersionOf
	return res
}

// dataCite decodes the DataCite payload of ds once. It returns nil if the
// payload is missing or is not an object.
func (c *collapser) dataCite(ds *dataset.Aggregated) *payload.DataCite {
	if dc, ok := c.decoded[ds.DOI]; ok {
		return dc
	}
	var dc *payload.DataCite
	if raw, ok := ds.Record(dataset.DataCite); ok {
		var err error
		dc, err = payload.DecodeDataCite(raw)
		if err != nil {
			slog.Debug("Cannot decode DataCite payload",
				"doi", ds.DOI, "error", err)
			dc = nil
		}
	}
	c.decoded[ds.DOI] = dc
	return dc
}

func (c *collapser) log(d Decision) {
	args := []any{
		"status", d.Status,
		"concept_doi", d.ConceptDOI,
		"version_doi", d.VersionDOI,
	}
	switch d.Status {
	case DropVersion:
		slog.Debug("Version record dropped", args...)
	case InconsistentIsVersionOf:
		slog.Warn("Version record without matching back-link", args...)
	default:
		slog.Debug("Version record not collapsed", args...)
	}
}
