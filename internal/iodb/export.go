package iodb

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/dsrecon/internal/ioschema"
	"github.com/gnames/dsrecon/pkg/config"
	"github.com/gnames/dsrecon/pkg/db"
	"github.com/gnames/dsrecon/pkg/pipeline"
	"github.com/gnames/dsrecon/pkg/schema"
	"github.com/gnames/dsrecon/pkg/stats"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnuuid"
	"gorm.io/gorm"
)

type exporter struct {
	cfg *config.Config
	op  db.Operator
}

// NewExporter creates an Exporter that replaces export tables with the
// results of a run. It connects with op when op has no pool yet.
func NewExporter(cfg *config.Config, op db.Operator) pipeline.Exporter {
	return &exporter{cfg: cfg, op: op}
}

// Export migrates the schema, empties export tables and inserts the
// report in batches, all in one transaction.
func (e *exporter) Export(ctx context.Context, o *pipeline.Outcome) error {
	if o.Report == nil {
		return nil
	}
	if e.op.Pool() == nil {
		if err := e.op.Connect(ctx, &e.cfg.Database); err != nil {
			return err
		}
		defer e.op.Close()
	}

	if err := ioschema.NewManager(e.op).Migrate(ctx); err != nil {
		return err
	}
	gormDB, err := ioschema.Open(e.op)
	if err != nil {
		return err
	}

	batch := e.cfg.Database.BatchSize
	datasets, links := datasetRows(o.Report.Rows)
	err = gormDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := "TRUNCATE " + strings.Join(schema.TableNames(), ", ")
		if err := tx.Exec(q).Error; err != nil {
			return TruncateError(err)
		}
		if err := insert(tx, datasets, batch); err != nil {
			return err
		}
		if err := insert(tx, links, batch); err != nil {
			return err
		}
		if err := insert(tx, institutionRows(o.Report.Institutions), batch); err != nil {
			return err
		}
		return insert(tx, timelineRows(o.Report.Timeline), batch)
	})
	if err != nil {
		return err
	}
	if err = e.analyze(ctx); err != nil {
		return err
	}

	slog.Info("Exported results to PostgreSQL",
		"database", e.cfg.Database.Database,
		"datasets", humanize.Comma(int64(len(datasets))),
	)
	return nil
}

// analyze refreshes planner statistics of the rewritten tables. It
// cannot run inside the insert transaction.
func (e *exporter) analyze(ctx context.Context) error {
	start := time.Now()
	q := "ANALYZE " + strings.Join(schema.TableNames(), ", ")
	if _, err := e.op.Pool().Exec(ctx, q); err != nil {
		return AnalyzeError(err)
	}
	slog.Debug("Analyzed export tables",
		"duration", gnfmt.TimeString(time.Since(start).Seconds()))
	return nil
}

type tabler interface {
	TableName() string
}

func insert[T tabler](tx *gorm.DB, rows []T, batch int) error {
	if len(rows) == 0 {
		return nil
	}
	if err := tx.CreateInBatches(rows, batch).Error; err != nil {
		return InsertError(rows[0].TableName(), err)
	}
	return nil
}

func datasetRows(
	rows []stats.FlatRow,
) ([]schema.Dataset, []schema.DatasetInstitution) {
	res := make([]schema.Dataset, 0, len(rows))
	var links []schema.DatasetInstitution
	for _, r := range rows {
		id := gnuuid.New(r.DOI).String()
		res = append(res, schema.Dataset{
			ID:                   id,
			DOI:                  r.DOI,
			Sources:              strings.Join(r.Sources, ";"),
			RORIDs:               strings.Join(r.RORIDs, ";"),
			Year:                 r.Year,
			DataCiteClientID:     r.DataCiteClientID,
			DataCitePublisher:    r.DataCitePublisher,
			DataCiteResourceType: r.DataCiteResourceType,
			DataCiteTitle:        r.DataCiteTitle,
			DataCiteLicenses:     strings.Join(r.DataCiteLicenses, ";"),
			CrossrefMember:       r.CrossrefMember,
			CrossrefPublisher:    r.CrossrefPublisher,
			CrossrefYear:         r.CrossrefYear,
			CrossrefTitle:        r.CrossrefTitle,
			AuthorsTotal:         r.AuthorsTotal,
			AuthorsWithORCID:     r.AuthorsWithORCID,
			LicenseClass:         string(r.LicenseClass),
		})
		for _, ror := range r.RORIDs {
			links = append(links, schema.DatasetInstitution{
				DatasetID: id,
				RORID:     ror,
			})
		}
	}
	return res, links
}

func institutionRows(insts []stats.Institution) []schema.Institution {
	res := make([]schema.Institution, 0, len(insts))
	for _, i := range insts {
		res = append(res, schema.Institution{
			RORID:            i.RORID,
			Name:             i.Name,
			DatasetCount:     i.DatasetCount,
			AuthorCount:      i.AuthorCount,
			AuthorsWithORCID: i.AuthorsWithORCID,
		})
	}
	return res
}

func timelineRows(years []stats.YearCount) []schema.YearCount {
	res := make([]schema.YearCount, 0, len(years))
	for _, y := range years {
		res = append(res, schema.YearCount{
			Year:     y.Year,
			Total:    y.Total,
			DataCite: y.DataCite,
			Crossref: y.Crossref,
		})
	}
	return res
}
