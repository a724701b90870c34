// Package merge folds harvested raw records into DOI-keyed datasets.
package merge

import (
	"log/slog"

	"github.com/gnames/dsrecon/pkg/dataset"
	"github.com/gnames/dsrecon/pkg/normalize"
)

// Counters summarize a merge run.
type Counters struct {
	// Raw counts records per known source, including ignored ones.
	Raw map[dataset.Source]int
	// Ignored counts records per known source that had no usable DOI.
	Ignored map[dataset.Source]int
	// UnknownSource counts records with an unrecognized source.
	UnknownSource int
	// Malformed counts input lines that could not be decoded.
	Malformed int
	// Overwrites counts payloads replaced by a later record of the same
	// source and DOI.
	Overwrites int
	// EmptyPayloads counts records with a DOI but a null or missing
	// payload. They tag the source and ROR but never replace a payload.
	EmptyPayloads int
	// UniqueDOIs is the number of merged datasets.
	UniqueDOIs int
	// Overlap is the number of datasets seen in every known source.
	Overlap int
}

// Result of a merge run.
type Result struct {
	// Datasets in order of first appearance of their DOI.
	Datasets []*dataset.Aggregated
	Counters Counters
}

// Merger accumulates raw records. It is not safe for concurrent use.
type Merger struct {
	index    map[string]*dataset.Aggregated
	order    []*dataset.Aggregated
	counters Counters
}

// New creates an empty Merger.
func New() *Merger {
	return &Merger{
		index: make(map[string]*dataset.Aggregated),
		counters: Counters{
			Raw:     make(map[dataset.Source]int),
			Ignored: make(map[dataset.Source]int),
		},
	}
}

// Add merges one raw record. The raw count of a known source is
// incremented before the DOI is checked.
func (m *Merger) Add(rec dataset.RawRecord) {
	src, ok := dataset.ParseSource(rec.Source)
	if !ok {
		m.counters.UnknownSource++
		slog.Debug("Unknown record source", "source", rec.Source)
		return
	}
	m.counters.Raw[src]++

	var doi string
	if rec.DOI != nil {
		doi, ok = normalize.DOI(*rec.DOI)
	}
	if !ok || doi == "" {
		m.counters.Ignored[src]++
		return
	}

	ds, ok := m.index[doi]
	if !ok {
		ds = dataset.New(doi)
		m.index[doi] = ds
		m.order = append(m.order, ds)
	}

	ds.AddSource(src)
	if rec.RORID != nil {
		if ror, ok := normalize.ROR(*rec.RORID); ok {
			ds.AddRORID(ror)
		}
	}
	if !dataset.Present(rec.Record) {
		m.counters.EmptyPayloads++
		slog.Debug("Record without payload", "doi", doi, "source", src)
		return
	}
	if ds.SetRecord(src, rec.Record) {
		m.counters.Overwrites++
		slog.Debug("Payload replaced by a later record",
			"doi", doi, "source", src)
	}
}

// AddMalformed counts an input line that could not be decoded.
func (m *Merger) AddMalformed() {
	m.counters.Malformed++
}

// Result returns merged datasets and final counters.
func (m *Merger) Result() *Result {
	res := &Result{
		Datasets: m.order,
		Counters: m.counters,
	}
	res.Counters.UniqueDOIs = len(m.order)
	for _, ds := range m.order {
		if ds.HasSource(dataset.DataCite) && ds.HasSource(dataset.Crossref) {
			res.Counters.Overlap++
		}
	}
	return res
}

// RawTotal returns the number of raw records of known sources.
func (c Counters) RawTotal() int {
	var res int
	for _, v := range c.Raw {
		res += v
	}
	return res
}
