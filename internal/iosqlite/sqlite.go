// Package iosqlite writes results into a SQLite file for read-only
// consumers such as a dashboard.
package iosqlite

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnames/dsrecon/internal/iofs"
	"github.com/gnames/dsrecon/pkg/pipeline"
	"github.com/gnames/dsrecon/pkg/stats"
	"github.com/gnames/gnuuid"
	_ "modernc.org/sqlite"
)

// File is the SQLite file name inside the output directory.
const File = "datasets.sqlite"

var ddl = []string{
	`CREATE TABLE datasets (
	id TEXT PRIMARY KEY,
	doi TEXT NOT NULL UNIQUE,
	sources TEXT,
	ror_ids TEXT,
	year INTEGER,
	datacite_client_id TEXT,
	datacite_publisher TEXT,
	datacite_resource_type_general TEXT,
	datacite_title TEXT,
	datacite_licenses TEXT,
	crossref_member TEXT,
	crossref_publisher TEXT,
	crossref_year INTEGER,
	crossref_title TEXT,
	n_authors_total INTEGER,
	n_authors_with_orcid INTEGER,
	license_class TEXT
)`,
	`CREATE INDEX datasets_year_idx ON datasets (year)`,
	`CREATE TABLE dataset_institutions (
	dataset_id TEXT NOT NULL,
	ror_id TEXT NOT NULL,
	PRIMARY KEY (dataset_id, ror_id)
)`,
	`CREATE INDEX dataset_institutions_ror_idx ON dataset_institutions (ror_id)`,
	`CREATE TABLE institutions (
	ror_id TEXT PRIMARY KEY,
	name TEXT,
	dataset_count INTEGER,
	author_count INTEGER,
	authors_with_orcid INTEGER
)`,
	`CREATE TABLE timeline (
	year INTEGER PRIMARY KEY,
	total INTEGER,
	datacite INTEGER,
	crossref INTEGER
)`,
}

type exporter struct {
	dir string
}

// New creates an Exporter that recreates File in dir on every run.
func New(dir string) pipeline.Exporter {
	return &exporter{dir: dir}
}

// Export writes the statistics report of o. It does nothing when the
// report is missing.
func (e *exporter) Export(ctx context.Context, o *pipeline.Outcome) error {
	if o.Report == nil {
		return nil
	}
	if err := iofs.EnsureDir(e.dir); err != nil {
		return err
	}
	path := filepath.Join(e.dir, File)
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ExportError(path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return ExportError(path, err)
	}
	defer db.Close()

	if err = e.write(ctx, db, o.Report); err != nil {
		return ExportError(path, err)
	}
	slog.Info("Wrote SQLite export",
		"path", path, "datasets", len(o.Report.Rows))
	return nil
}

func (e *exporter) write(ctx context.Context, db *sql.DB, r *stats.Report) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range ddl {
		if _, err = tx.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	if err = insertDatasets(ctx, tx, r.Rows); err != nil {
		return err
	}
	if err = insertInstitutions(ctx, tx, r.Institutions); err != nil {
		return err
	}
	if err = insertTimeline(ctx, tx, r.Timeline); err != nil {
		return err
	}
	return tx.Commit()
}

func insertDatasets(ctx context.Context, tx *sql.Tx, rows []stats.FlatRow) error {
	ds, err := tx.PrepareContext(ctx, `INSERT INTO datasets VALUES
	(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer ds.Close()

	inst, err := tx.PrepareContext(ctx,
		`INSERT INTO dataset_institutions VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer inst.Close()

	for _, r := range rows {
		id := DatasetID(r.DOI)
		_, err = ds.ExecContext(ctx,
			id,
			r.DOI,
			strings.Join(r.Sources, ";"),
			strings.Join(r.RORIDs, ";"),
			nullInt(r.Year),
			r.DataCiteClientID,
			r.DataCitePublisher,
			r.DataCiteResourceType,
			r.DataCiteTitle,
			strings.Join(r.DataCiteLicenses, ";"),
			r.CrossrefMember,
			r.CrossrefPublisher,
			nullInt(r.CrossrefYear),
			r.CrossrefTitle,
			r.AuthorsTotal,
			r.AuthorsWithORCID,
			string(r.LicenseClass),
		)
		if err != nil {
			return err
		}
		for _, ror := range r.RORIDs {
			if _, err = inst.ExecContext(ctx, id, ror); err != nil {
				return err
			}
		}
	}
	return nil
}

func insertInstitutions(
	ctx context.Context,
	tx *sql.Tx,
	insts []stats.Institution,
) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO institutions VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, i := range insts {
		_, err = stmt.ExecContext(ctx,
			i.RORID, i.Name, i.DatasetCount, i.AuthorCount, i.AuthorsWithORCID)
		if err != nil {
			return err
		}
	}
	return nil
}

func insertTimeline(ctx context.Context, tx *sql.Tx, years []stats.YearCount) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO timeline VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, y := range years {
		_, err = stmt.ExecContext(ctx, y.Year, y.Total, y.DataCite, y.Crossref)
		if err != nil {
			return err
		}
	}
	return nil
}

// DatasetID is a stable UUID v5 derived from a canonical DOI.
func DatasetID(doi string) string {
	return gnuuid.New(doi).String()
}

func nullInt(i *int) any {
	if i == nil {
		return nil
	}
	return int64(*i)
}
