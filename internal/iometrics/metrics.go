// Package iometrics writes run counters in the Prometheus text format, so
// a node exporter textfile collector can pick them up.
package iometrics

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gnames/dsrecon/internal/iofs"
	"github.com/gnames/dsrecon/pkg/collapse"
	"github.com/gnames/dsrecon/pkg/dataset"
	"github.com/gnames/dsrecon/pkg/pipeline"
	"github.com/prometheus/client_golang/prometheus"
)

// File is the metrics file name inside the output directory.
const File = "metrics.prom"

const namespace = "dsrecon"

type exporter struct {
	dir string
	now func() time.Time
}

// New creates an Exporter writing File into dir.
func New(dir string) pipeline.Exporter {
	return &exporter{dir: dir, now: time.Now}
}

func gauge(reg *prometheus.Registry, name, help string) prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	})
	reg.MustRegister(g)
	return g
}

func gaugeVec(
	reg *prometheus.Registry,
	name, help, label string,
) *prometheus.GaugeVec {
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, []string{label})
	reg.MustRegister(g)
	return g
}

// Export fills a fresh registry from the outcome and writes it out.
func (e *exporter) Export(_ context.Context, o *pipeline.Outcome) error {
	reg := prometheus.NewRegistry()

	if o.Merge != nil {
		c := o.Merge.Counters
		raw := gaugeVec(reg, "raw_records",
			"Harvested records per source.", "source")
		ignored := gaugeVec(reg, "ignored_records",
			"Harvested records without a usable DOI.", "source")
		for _, src := range dataset.Sources {
			raw.WithLabelValues(string(src)).Set(float64(c.Raw[src]))
			ignored.WithLabelValues(string(src)).Set(float64(c.Ignored[src]))
		}
		gauge(reg, "malformed_lines", "Input lines that failed to decode.").
			Set(float64(c.Malformed))
		gauge(reg, "unknown_source_records", "Records of unknown sources.").
			Set(float64(c.UnknownSource))
		gauge(reg, "overwritten_payloads",
			"Payloads replaced by a later record of the same source.").
			Set(float64(c.Overwrites))
		gauge(reg, "unique_dois", "Datasets after deduplication.").
			Set(float64(c.UniqueDOIs))
		gauge(reg, "overlap_dois", "Datasets present in every source.").
			Set(float64(c.Overlap))
	}

	if o.Collapse != nil {
		decisions := gaugeVec(reg, "collapse_decisions",
			"Version collapse decisions per status.", "status")
		for _, s := range collapse.Statuses {
			decisions.WithLabelValues(string(s)).Set(float64(o.Collapse.Count(s)))
		}
	}

	if o.Report != nil {
		gauge(reg, "institutions", "Corroborated institutions.").
			Set(float64(o.InstitutionCount()))
		lic := gaugeVec(reg, "license_datasets",
			"Datasets per license class.", "class")
		lic.WithLabelValues("open").Set(float64(o.Report.License.Open))
		lic.WithLabelValues("nonopen").Set(float64(o.Report.License.NonOpen))
		lic.WithLabelValues("none").Set(float64(o.Report.License.None))
		gauge(reg, "persons", "Distinct persons.").
			Set(float64(o.Report.ORCID.PersonsTotal))
		gauge(reg, "persons_with_orcid", "Distinct persons with ORCID.").
			Set(float64(o.Report.ORCID.PersonsWithORCID))
	}

	gauge(reg, "output_datasets", "Datasets in the final set.").
		Set(float64(len(o.Datasets)))
	gauge(reg, "run_duration_seconds", "Duration of the run.").
		Set(o.Duration.Seconds())
	gauge(reg, "last_run_timestamp_seconds", "Unix time the run finished.").
		Set(float64(e.now().Unix()))

	if err := iofs.EnsureDir(e.dir); err != nil {
		return err
	}
	path := filepath.Join(e.dir, File)
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return WriteMetricsError(path, err)
	}
	slog.Info("Wrote metrics", "path", path)
	return nil
}
