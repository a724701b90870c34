// Package iopipeline implements the Reconciler. It reads harvested
// input, merges and collapses datasets, computes statistics and hands
// the outcome to artifact writers, exporters and the publisher.
package iopipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/dsrecon/internal/ioartifact"
	"github.com/gnames/dsrecon/internal/iodb"
	"github.com/gnames/dsrecon/internal/iofs"
	"github.com/gnames/dsrecon/internal/ioharvest"
	"github.com/gnames/dsrecon/internal/iometrics"
	"github.com/gnames/dsrecon/internal/ioror"
	"github.com/gnames/dsrecon/internal/iosqlite"
	"github.com/gnames/dsrecon/internal/iostore"
	"github.com/gnames/dsrecon/pkg/collapse"
	"github.com/gnames/dsrecon/pkg/config"
	"github.com/gnames/dsrecon/pkg/dataset"
	"github.com/gnames/dsrecon/pkg/merge"
	"github.com/gnames/dsrecon/pkg/pipeline"
	"github.com/gnames/dsrecon/pkg/stats"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
)

type reconciler struct {
	cfg       *config.Config
	artifacts pipeline.ArtifactWriter
}

// New creates a Reconciler for the given configuration.
func New(cfg *config.Config) pipeline.Reconciler {
	return &reconciler{cfg: cfg, artifacts: ioartifact.New(cfg)}
}

// Run executes the whole pipeline.
func (r *reconciler) Run(ctx context.Context) (*pipeline.Outcome, error) {
	start := time.Now()
	slog.Info("Starting reconciliation run")

	o, err := r.merge(ctx)
	if err != nil {
		return nil, err
	}

	if r.cfg.Collapse.Enabled {
		o.Collapse = collapse.Collapse(o.Datasets, r.collapseOptions())
		o.Datasets = o.Collapse.Datasets
		collapseInfo(o.Collapse)
	}

	if err = r.analyze(o); err != nil {
		return nil, err
	}

	names := uniq(
		ioartifact.MergeArtifacts,
		r.collapseArtifacts(),
		ioartifact.StatsArtifacts,
	)
	if err = r.artifacts.Write(ctx, o, names...); err != nil {
		return nil, err
	}

	o.Duration = time.Since(start)
	if err = r.finish(ctx, o); err != nil {
		return nil, err
	}
	r.done("Reconciliation", o.Duration)
	return o, nil
}

// Dedup merges harvested input and writes the merge artifacts.
func (r *reconciler) Dedup(ctx context.Context) (*pipeline.Outcome, error) {
	start := time.Now()
	o, err := r.merge(ctx)
	if err != nil {
		return nil, err
	}
	if err = r.analyze(o); err != nil {
		return nil, err
	}
	if err = r.artifacts.Write(ctx, o, ioartifact.MergeArtifacts...); err != nil {
		return nil, err
	}
	o.Duration = time.Since(start)
	r.done("Deduplication", o.Duration)
	return o, nil
}

// Collapse reads a dedup file, drops confirmed version records and
// writes the kept datasets to out.
func (r *reconciler) Collapse(
	ctx context.Context,
	in, out, logPath string,
) (*collapse.Result, error) {
	start := time.Now()
	datasets, _, err := ioharvest.ReadAggregated(ctx, in, r.cfg.Output.ProgressBar)
	if err != nil {
		return nil, err
	}

	res := collapse.Collapse(datasets, r.collapseOptions())
	collapseInfo(res)

	if err = iofs.EnsureDir(filepath.Dir(out)); err != nil {
		return nil, err
	}
	if err = ioartifact.WriteDatasets(out, res.Datasets); err != nil {
		return nil, err
	}
	if logPath != "" {
		if err = ioartifact.WriteDecisions(logPath, res.Decisions); err != nil {
			return nil, err
		}
	}
	r.done("Collapsing", time.Since(start))
	return res, nil
}

// Analyze computes statistics over a dedup file, writes the statistics
// artifacts and runs the enabled exporters.
func (r *reconciler) Analyze(
	ctx context.Context,
	dedupPath string,
) (*pipeline.Outcome, error) {
	start := time.Now()
	datasets, _, err := ioharvest.ReadAggregated(
		ctx, dedupPath, r.cfg.Output.ProgressBar,
	)
	if err != nil {
		return nil, err
	}

	o := &pipeline.Outcome{Datasets: datasets}
	if err = r.analyze(o); err != nil {
		return nil, err
	}
	if err = r.artifacts.Write(ctx, o, ioartifact.StatsArtifacts...); err != nil {
		return nil, err
	}

	o.Duration = time.Since(start)
	if err = r.finish(ctx, o); err != nil {
		return nil, err
	}
	r.done("Analysis", o.Duration)
	return o, nil
}

func (r *reconciler) merge(ctx context.Context) (*pipeline.Outcome, error) {
	if len(r.cfg.InputPaths) == 0 {
		return nil, NoInputError()
	}

	m := merge.New()
	err := ioharvest.ReadRaw(ctx, r.cfg.InputPaths, m, r.cfg.Output.ProgressBar)
	if err != nil {
		return nil, err
	}
	res := m.Result()

	c := res.Counters
	slog.Info("Merged harvested records",
		"raw", humanize.Comma(int64(c.RawTotal())),
		"unique_doi", humanize.Comma(int64(c.UniqueDOIs)),
		"overlap_doi", humanize.Comma(int64(c.Overlap)),
		"malformed", c.Malformed,
		"unknown_source", c.UnknownSource,
		"overwritten", c.Overwrites,
		"empty_payloads", c.EmptyPayloads,
	)
	gn.Info("Merged <em>%s</em> records from DataCite and <em>%s</em> "+
		"from Crossref into <em>%s</em> datasets",
		humanize.Comma(int64(c.Raw[dataset.DataCite])),
		humanize.Comma(int64(c.Raw[dataset.Crossref])),
		humanize.Comma(int64(c.UniqueDOIs)),
	)
	return &pipeline.Outcome{Merge: res, Datasets: res.Datasets}, nil
}

func (r *reconciler) analyze(o *pipeline.Outcome) error {
	names, err := r.institutionNames()
	if err != nil {
		return err
	}

	agg := stats.New(names)
	for _, ds := range o.Datasets {
		agg.Add(ds)
	}
	o.Report = agg.Report()

	slog.Info("Computed statistics",
		"datasets", humanize.Comma(int64(len(o.Datasets))),
		"institutions", o.InstitutionCount(),
		"persons", humanize.Comma(int64(o.Report.ORCID.PersonsTotal)),
	)
	return nil
}

func (r *reconciler) institutionNames() (map[string]string, error) {
	path := r.cfg.ROR.DumpPath
	if path == "" {
		return nil, nil
	}
	return ioror.Load(path, r.cfg.ROR.CountryCode)
}

// finish runs enabled exporters and publishes the output directory.
func (r *reconciler) finish(ctx context.Context, o *pipeline.Outcome) error {
	var exporters []pipeline.Exporter
	if r.cfg.SQLite.Enabled {
		exporters = append(exporters, iosqlite.New(r.cfg.Output.Dir))
	}
	if r.cfg.Database.Enabled {
		exporters = append(exporters, iodb.NewExporter(r.cfg, iodb.NewPgxOperator()))
	}
	// metrics go last so the textfile is not older than other exports
	if r.cfg.Metrics.Enabled {
		exporters = append(exporters, iometrics.New(r.cfg.Output.Dir))
	}

	for _, e := range exporters {
		if err := ctx.Err(); err != nil {
			return CancelledError(err)
		}
		if err := e.Export(ctx, o); err != nil {
			return err
		}
	}

	if !r.cfg.S3.Enabled {
		return nil
	}
	pub, err := iostore.New(ctx, r.cfg.S3)
	if err != nil {
		return err
	}
	return pub.Publish(ctx, r.cfg.Output.Dir)
}

func (r *reconciler) collapseOptions() collapse.Options {
	return collapse.Options{
		DOIPrefix: r.cfg.Collapse.DOIPrefix,
		Keyword:   r.cfg.Collapse.FamilyKeyword,
	}
}

func (r *reconciler) collapseArtifacts() []string {
	if r.cfg.Output.VersionsLog {
		return ioartifact.CollapseArtifacts
	}
	return []string{ioartifact.Collapsed}
}

func (r *reconciler) done(phase string, d time.Duration) {
	dur := gnfmt.TimeString(d.Seconds())
	slog.Info(phase+" complete", "output", r.cfg.Output.Dir, "duration", dur)
	gn.Info("%s complete, elapsed time: <em>%s</em>", phase, dur)
}

func collapseInfo(res *collapse.Result) {
	s := res.Summary()
	slog.Info("Collapsed version records",
		"input", humanize.Comma(int64(s.Input)),
		"concepts", s.Concepts,
		"dropped", s.Dropped,
		"output", humanize.Comma(int64(s.Output)),
	)
	gn.Info("Dropped <em>%s</em> version records of <em>%d</em> concepts",
		humanize.Comma(int64(s.Dropped)), s.Concepts)
}

// uniq joins lists of artifact names keeping the first occurrence.
func uniq(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var res []string
	for _, l := range lists {
		for _, name := range l {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			res = append(res, name)
		}
	}
	return res
}
