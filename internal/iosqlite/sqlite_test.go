package iosqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/gnames/dsrecon/internal/iosqlite"
	"github.com/gnames/dsrecon/pkg/license"
	"github.com/gnames/dsrecon/pkg/pipeline"
	"github.com/gnames/dsrecon/pkg/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func report() *stats.Report {
	year := 2021
	return &stats.Report{
		Rows: []stats.FlatRow{
			{
				DOI:          "10.1/a",
				Sources:      []string{"crossref", "datacite"},
				RORIDs:       []string{"https://ror.org/024d6js02"},
				Year:         &year,
				AuthorsTotal: 2,
				LicenseClass: license.Open,
			},
			{DOI: "10.1/b", Sources: []string{"crossref"}, LicenseClass: license.None},
		},
		Institutions: []stats.Institution{
			{RORID: "https://ror.org/024d6js02", Name: "CU", DatasetCount: 1, AuthorCount: 2},
		},
		Timeline: []stats.YearCount{{Year: 2021, Total: 1, DataCite: 1, Crossref: 1}},
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	exp := iosqlite.New(dir)
	o := &pipeline.Outcome{Report: report()}

	// second export replaces the file
	for range 2 {
		require.NoError(t, exp.Export(context.Background(), o))
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, iosqlite.File))
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM datasets`).Scan(&n))
	assert.Equal(t, 2, n)

	var id string
	var year sql.NullInt64
	err = db.QueryRow(`SELECT id, year FROM datasets WHERE doi = '10.1/b'`).
		Scan(&id, &year)
	require.NoError(t, err)
	assert.Equal(t, iosqlite.DatasetID("10.1/b"), id)
	assert.False(t, year.Valid)

	err = db.QueryRow(`SELECT count(*) FROM dataset_institutions
	WHERE ror_id = 'https://ror.org/024d6js02'`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var name string
	require.NoError(t, db.QueryRow(`SELECT name FROM institutions`).Scan(&name))
	assert.Equal(t, "CU", name)

	require.NoError(t, db.QueryRow(`SELECT total FROM timeline WHERE year = 2021`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestDatasetID(t *testing.T) {
	assert.Equal(t, iosqlite.DatasetID("10.1/a"), iosqlite.DatasetID("10.1/a"))
	assert.NotEqual(t, iosqlite.DatasetID("10.1/a"), iosqlite.DatasetID("10.1/b"))
}

func TestExportWithoutReport(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, iosqlite.New(dir).Export(context.Background(), &pipeline.Outcome{}))
	assert.NoFileExists(t, filepath.Join(dir, iosqlite.File))
}
