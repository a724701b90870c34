package ioartifact

import (
	"io"
	"strconv"

	"github.com/gnames/dsrecon/pkg/collapse"
	"github.com/gnames/dsrecon/pkg/dataset"
	"github.com/gnames/dsrecon/pkg/pipeline"
	"github.com/gnames/dsrecon/pkg/stats"
	"github.com/segmentio/encoding/json"
)

// WriteDatasets writes datasets as JSON lines to path.
func WriteDatasets(path string, datasets []*dataset.Aggregated) error {
	return writeFile(path, func(w io.Writer) error {
		return encodeDatasets(w, datasets)
	})
}

// WriteDecisions writes a collapse decision log to path.
func WriteDecisions(path string, decisions []collapse.Decision) error {
	return writeFile(path, func(w io.Writer) error {
		return encodeDecisions(w, decisions)
	})
}

func encodeDatasets(w io.Writer, datasets []*dataset.Aggregated) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, ds := range datasets {
		if err := enc.Encode(ds); err != nil {
			return err
		}
	}
	return nil
}

func encodeDecisions(w io.Writer, decisions []collapse.Decision) error {
	if err := tsv(w, "status", "concept_doi", "version_doi", "note"); err != nil {
		return err
	}
	for _, d := range decisions {
		err := tsv(w, string(d.Status), d.ConceptDOI, d.VersionDOI, d.Status.Note())
		if err != nil {
			return err
		}
	}
	return nil
}

func writeDedup(w io.Writer, o *pipeline.Outcome) error {
	return encodeDatasets(w, o.Merge.Datasets)
}

func writeCollapsed(w io.Writer, o *pipeline.Outcome) error {
	return encodeDatasets(w, o.Collapse.Datasets)
}

func writeVersionsLog(w io.Writer, o *pipeline.Outcome) error {
	return encodeDecisions(w, o.Collapse.Decisions)
}

type summaryStats struct {
	RawCounts        map[string]int    `json:"raw_counts"`
	UniqueDOI        int               `json:"unique_doi"`
	OverlapDOI       int               `json:"overlap_doi"`
	InstitutionCount int               `json:"institution_count"`
	IgnoredCounts    map[string]int    `json:"ignored_counts"`
	MalformedLines   int               `json:"malformed_lines"`
	UnknownSource    int               `json:"unknown_source"`
	Overwrites       int               `json:"overwritten_payloads"`
	Collapse         *collapse.Summary `json:"collapse,omitempty"`
}

func writeSummary(w io.Writer, o *pipeline.Outcome) error {
	c := o.Merge.Counters
	res := summaryStats{
		RawCounts:        make(map[string]int),
		UniqueDOI:        c.UniqueDOIs,
		OverlapDOI:       c.Overlap,
		InstitutionCount: o.InstitutionCount(),
		IgnoredCounts:    make(map[string]int),
		MalformedLines:   c.Malformed,
		UnknownSource:    c.UnknownSource,
		Overwrites:       c.Overwrites,
	}
	for _, src := range dataset.Sources {
		res.RawCounts[string(src)] = c.Raw[src]
		res.IgnoredCounts[string(src)] = c.Ignored[src]
	}
	if o.Collapse != nil {
		s := o.Collapse.Summary()
		res.Collapse = &s
	}
	return writeJSON(w, res)
}

func writeInstitutions(w io.Writer, o *pipeline.Outcome) error {
	err := tsv(w, "ror_id", "name", "dataset_count", "author_count")
	if err != nil {
		return err
	}
	for _, inst := range o.Report.Institutions {
		err = tsv(w,
			inst.RORID,
			inst.Name,
			strconv.Itoa(inst.DatasetCount),
			strconv.Itoa(inst.AuthorCount),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeTimeline(w io.Writer, o *pipeline.Outcome) error {
	if err := tsv(w, "year", "total", "datacite", "crossref"); err != nil {
		return err
	}
	for _, yc := range o.Report.Timeline {
		err := tsv(w,
			strconv.Itoa(yc.Year),
			strconv.Itoa(yc.Total),
			strconv.Itoa(yc.DataCite),
			strconv.Itoa(yc.Crossref),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeORCIDCoverage(w io.Writer, o *pipeline.Outcome) error {
	return writeJSON(w, o.Report.ORCID)
}

// writeORCIDByInstitution lists institutions with at least one
// affiliated author, by author count.
func writeORCIDByInstitution(w io.Writer, o *pipeline.Outcome) error {
	err := tsv(w, "ror_id", "name", "persons_total", "persons_with_orcid",
		"persons_with_orcid_pct")
	if err != nil {
		return err
	}
	insts := stats.ByAuthorCount(o.Report.Institutions)
	for _, inst := range insts {
		if inst.AuthorCount == 0 {
			continue
		}
		err = tsv(w,
			inst.RORID,
			inst.Name,
			strconv.Itoa(inst.AuthorCount),
			strconv.Itoa(inst.AuthorsWithORCID),
			strconv.FormatFloat(inst.ORCIDPct(), 'f', 2, 64),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeLicenseSummary(w io.Writer, o *pipeline.Outcome) error {
	return writeJSON(w, o.Report.License)
}

func writeLicensesDataCite(w io.Writer, o *pipeline.Outcome) error {
	err := tsv(w, "rightsUri", "rightsIdentifier", "rights", "is_open",
		"dataset_count")
	if err != nil {
		return err
	}
	for _, c := range o.Report.LicenseEntries {
		open := "0"
		if c.Key.IsOpen {
			open = "1"
		}
		err = tsv(w, c.Key.URI, c.Key.Identifier, c.Key.Rights, open,
			strconv.Itoa(c.Count))
		if err != nil {
			return err
		}
	}
	return nil
}

func writeFundersDataCite(w io.Writer, o *pipeline.Outcome) error {
	err := tsv(w, "funderIdentifier", "funderIdentifierType", "funderName",
		"dataset_count")
	if err != nil {
		return err
	}
	for _, c := range o.Report.FundersDataCite {
		err = tsv(w, c.Key.Identifier, c.Key.IdentifierType, c.Key.Name,
			strconv.Itoa(c.Count))
		if err != nil {
			return err
		}
	}
	return nil
}

func writeFundersCrossref(w io.Writer, o *pipeline.Outcome) error {
	err := tsv(w, "funderDOI", "funderName", "dataset_count")
	if err != nil {
		return err
	}
	for _, c := range o.Report.FundersCrossref {
		err = tsv(w, c.Key.DOI, c.Key.Name, strconv.Itoa(c.Count))
		if err != nil {
			return err
		}
	}
	return nil
}

func writeReposDataCite(w io.Writer, o *pipeline.Outcome) error {
	err := tsv(w, "client_id", "publisher", "resourceTypeGeneral",
		"dataset_count")
	if err != nil {
		return err
	}
	for _, c := range o.Report.ReposDataCite {
		err = tsv(w, c.Key.ClientID, c.Key.Publisher,
			c.Key.ResourceTypeGeneral, strconv.Itoa(c.Count))
		if err != nil {
			return err
		}
	}
	return nil
}

func writeReposCrossref(w io.Writer, o *pipeline.Outcome) error {
	err := tsv(w, "member", "publisher", "dataset_count")
	if err != nil {
		return err
	}
	for _, c := range o.Report.ReposCrossref {
		err = tsv(w, c.Key.Member, c.Key.Publisher, strconv.Itoa(c.Count))
		if err != nil {
			return err
		}
	}
	return nil
}

func writeFlat(w io.Writer, o *pipeline.Outcome) error {
	if err := row(w, ',', stats.FlatHeader...); err != nil {
		return err
	}
	for _, r := range o.Report.Rows {
		if err := row(w, ',', r.Fields()...); err != nil {
			return err
		}
	}
	return nil
}
