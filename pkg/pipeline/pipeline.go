// Package pipeline declares the stages of a reconciliation run and the
// outcome they share. Implementations live in internal packages.
package pipeline

import (
	"context"
	"time"

	"github.com/gnames/dsrecon/pkg/collapse"
	"github.com/gnames/dsrecon/pkg/dataset"
	"github.com/gnames/dsrecon/pkg/merge"
	"github.com/gnames/dsrecon/pkg/stats"
)

// Outcome collects the results of one run. Fields of stages that did not
// run are nil.
type Outcome struct {
	// Merge is the result of deduplication. It is nil when datasets were
	// loaded from an existing dedup file.
	Merge *merge.Result

	// Collapse is the result of version collapsing.
	Collapse *collapse.Result

	// Report holds statistics over Datasets.
	Report *stats.Report

	// Datasets is the final set of datasets, after collapsing if it ran.
	Datasets []*dataset.Aggregated

	// Duration of the run.
	Duration time.Duration
}

// InstitutionCount returns the number of corroborated institutions.
func (o *Outcome) InstitutionCount() int {
	if o.Report == nil {
		return 0
	}
	return len(o.Report.Institutions)
}

// Reconciler runs the pipeline stages.
type Reconciler interface {
	// Run reads harvested input, merges, optionally collapses, computes
	// statistics and writes every artifact and optional export.
	Run(ctx context.Context) (*Outcome, error)

	// Dedup reads harvested input and writes the merge artifacts only.
	Dedup(ctx context.Context) (*Outcome, error)

	// Collapse removes confirmed version records from a dedup file and
	// writes the result to out. When logPath is not empty the decisions
	// are written there.
	Collapse(ctx context.Context, in, out, logPath string) (*collapse.Result, error)

	// Analyze computes statistics over an existing dedup file and writes
	// the statistics artifacts.
	Analyze(ctx context.Context, dedupPath string) (*Outcome, error)
}

// ArtifactWriter writes artifacts of an outcome to the output directory.
type ArtifactWriter interface {
	Write(ctx context.Context, o *Outcome, artifacts ...string) error
}

// Exporter sends an outcome to an external store.
type Exporter interface {
	Export(ctx context.Context, o *Outcome) error
}

// Publisher copies the output directory to remote storage.
type Publisher interface {
	Publish(ctx context.Context, dir string) error
}
