// Package ioartifact writes run results into the output directory.
package ioartifact

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gnames/dsrecon/internal/iofs"
	"github.com/gnames/dsrecon/pkg/config"
	"github.com/gnames/dsrecon/pkg/pipeline"
	"github.com/gnames/gnfmt"
	"golang.org/x/sync/errgroup"
)

// Artifact file names.
const (
	Dedup              = "datasets_dedup.jsonl"
	Collapsed          = "datasets_collapsed.jsonl"
	VersionsLog        = "versions_log.tsv"
	Summary            = "summary_stats.json"
	Institutions       = "institutions.tsv"
	Timeline           = "timeline.tsv"
	ORCIDCoverage      = "orcid_coverage.json"
	ORCIDByInstitution = "orcid_by_institution.tsv"
	LicenseSummary     = "license_dataset_summary.json"
	LicensesDataCite   = "licenses_datacite.tsv"
	FundersDataCite    = "funders_datacite.tsv"
	FundersCrossref    = "funders_crossref.tsv"
	ReposDataCite      = "repos_datacite.tsv"
	ReposCrossref      = "repos_crossref.tsv"
	Flat               = "datasets_flat.csv"
)

// MergeArtifacts are produced by deduplication.
var MergeArtifacts = []string{Dedup, Summary, Institutions}

// CollapseArtifacts are produced by version collapsing.
var CollapseArtifacts = []string{Collapsed, VersionsLog}

// StatsArtifacts are produced by the analysis of datasets.
var StatsArtifacts = []string{
	Institutions,
	Timeline,
	ORCIDCoverage,
	ORCIDByInstitution,
	LicenseSummary,
	LicensesDataCite,
	FundersDataCite,
	FundersCrossref,
	ReposDataCite,
	ReposCrossref,
	Flat,
}

// stage tells which part of an outcome an artifact needs.
type stage int

const (
	stageMerge stage = iota
	stageCollapse
	stageReport
)

type artifact struct {
	needs stage
	write func(w io.Writer, o *pipeline.Outcome) error
}

var artifacts = map[string]artifact{
	Dedup:              {stageMerge, writeDedup},
	Collapsed:          {stageCollapse, writeCollapsed},
	VersionsLog:        {stageCollapse, writeVersionsLog},
	Summary:            {stageMerge, writeSummary},
	Institutions:       {stageReport, writeInstitutions},
	Timeline:           {stageReport, writeTimeline},
	ORCIDCoverage:      {stageReport, writeORCIDCoverage},
	ORCIDByInstitution: {stageReport, writeORCIDByInstitution},
	LicenseSummary:     {stageReport, writeLicenseSummary},
	LicensesDataCite:   {stageReport, writeLicensesDataCite},
	FundersDataCite:    {stageReport, writeFundersDataCite},
	FundersCrossref:    {stageReport, writeFundersCrossref},
	ReposDataCite:      {stageReport, writeReposDataCite},
	ReposCrossref:      {stageReport, writeReposCrossref},
	Flat:               {stageReport, writeFlat},
}

type writer struct {
	dir  string
	jobs int
}

// New creates an ArtifactWriter for the configured output directory.
func New(cfg *config.Config) pipeline.ArtifactWriter {
	jobs := cfg.JobsNumber
	if jobs < 1 {
		jobs = 1
	}
	return &writer{dir: cfg.Output.Dir, jobs: jobs}
}

// Write creates the named artifacts concurrently. Artifacts whose stage
// did not run are skipped.
func (wr *writer) Write(
	ctx context.Context,
	o *pipeline.Outcome,
	names ...string,
) error {
	if err := iofs.EnsureDir(wr.dir); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(wr.jobs)
	for _, name := range names {
		a, ok := artifacts[name]
		if !ok {
			return UnknownArtifactError(name)
		}
		if !ready(a.needs, o) {
			slog.Debug("Skipping artifact, stage did not run", "artifact", name)
			continue
		}
		path := filepath.Join(wr.dir, name)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return writeFile(path, func(w io.Writer) error {
				return a.write(w, o)
			})
		})
	}
	return g.Wait()
}

func ready(s stage, o *pipeline.Outcome) bool {
	switch s {
	case stageMerge:
		return o.Merge != nil
	case stageCollapse:
		return o.Collapse != nil
	default:
		return o.Report != nil
	}
}

// writeFile creates path and passes a buffered writer to fn.
func writeFile(path string, fn func(w io.Writer) error) error {
	f, err := iofs.CreateFile(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err = fn(w); err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return iofs.WriteFileError(path, err)
	}
	slog.Debug("Wrote artifact", "path", path)
	return nil
}

// row writes fields as one delimited line.
func row(w io.Writer, sep rune, fields ...string) error {
	line := strings.TrimRight(gnfmt.ToCSV(fields, sep), "\r\n")
	_, err := io.WriteString(w, line+"\n")
	return err
}

func tsv(w io.Writer, fields ...string) error {
	return row(w, '\t', fields...)
}

func writeJSON(w io.Writer, v any) error {
	enc := gnfmt.GNjson{Pretty: true}
	data, err := enc.Encode(v)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
