package ioartifact_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gnames/dsrecon/internal/ioartifact"
	"github.com/gnames/dsrecon/internal/ioharvest"
	"github.com/gnames/dsrecon/pkg/collapse"
	"github.com/gnames/dsrecon/pkg/config"
	"github.com/gnames/dsrecon/pkg/dataset"
	"github.com/gnames/dsrecon/pkg/errcode"
	"github.com/gnames/dsrecon/pkg/merge"
	"github.com/gnames/dsrecon/pkg/pipeline"
	"github.com/gnames/dsrecon/pkg/stats"
	"github.com/gnames/gn"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rorA = "https://ror.org/024d6js02"

func raw(src, doi, record string) dataset.RawRecord {
	ror := rorA
	return dataset.RawRecord{
		Source: src,
		RORID:  &ror,
		DOI:    &doi,
		Record: json.RawMessage(record),
	}
}

// outcome builds a concept with one confirmed version and a Crossref
// dataset with an affiliated author.
func outcome(t *testing.T) *pipeline.Outcome {
	t.Helper()
	m := merge.New()
	m.Add(raw("datacite", "10.5281/zenodo.100", `{"attributes":{
"doi":"10.5281/zenodo.100","clientId":"cern.zenodo","publisher":"Zenodo",
"publicationYear":2021,
"creators":[{"familyName":"Doe","givenName":"Jane",
 "nameIdentifiers":[{"nameIdentifier":"0000-0002-1825-0097","nameIdentifierScheme":"ORCID"}],
 "affiliation":[{"affiliationIdentifier":"https://ror.org/024d6js02","affiliationIdentifierScheme":"ROR"}]}],
"rightsList":[{"rightsUri":"https://creativecommons.org/licenses/by/4.0/"}],
"relatedIdentifiers":[{"relationType":"HasVersion","relatedIdentifierType":"DOI","relatedIdentifier":"10.5281/zenodo.101"}]}}`))
	m.Add(raw("datacite", "10.5281/zenodo.101", `{"attributes":{
"doi":"10.5281/zenodo.101","clientId":"cern.zenodo","publicationYear":2021,
"relatedIdentifiers":[{"relationType":"IsVersionOf","relatedIdentifierType":"DOI","relatedIdentifier":"10.5281/zenodo.100"}]}}`))
	m.Add(raw("crossref", "10.1/B", `{"DOI":"10.1/b","member":"297",
"issued":{"date-parts":[[2019]]},
"author":[{"family":"Poe","given":"Ann, Jr","affiliation":[{"name":"CU","id":"https://ror.org/024d6js02"}]}],
"funder":[{"DOI":"10.13039/1","name":"NSF"}]}`))
	m.AddMalformed()

	mr := m.Result()
	cr := collapse.Collapse(mr.Datasets, collapse.DefaultOptions())
	agg := stats.New(map[string]string{rorA: "Charles University"})
	for _, ds := range cr.Datasets {
		agg.Add(ds)
	}
	return &pipeline.Outcome{
		Merge:    mr,
		Collapse: cr,
		Report:   agg.Report(),
		Datasets: cr.Datasets,
	}
}

func newWriter(t *testing.T) (pipeline.ArtifactWriter, string) {
	dir := filepath.Join(t.TempDir(), "out")
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptOutputDir(dir),
		config.OptJobsNumber(2),
	})
	return ioartifact.New(cfg), dir
}

func lines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestWriteAll(t *testing.T) {
	o := outcome(t)
	wr, dir := newWriter(t)
	names := append(append([]string{}, ioartifact.MergeArtifacts...),
		ioartifact.CollapseArtifacts...)
	names = append(names, ioartifact.StatsArtifacts...)
	require.NoError(t, wr.Write(context.Background(), o, names...))

	for _, name := range names {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	ls := lines(t, filepath.Join(dir, ioartifact.Dedup))
	assert.Len(t, ls, 3)
	ls = lines(t, filepath.Join(dir, ioartifact.Collapsed))
	assert.Len(t, ls, 2)

	ls = lines(t, filepath.Join(dir, ioartifact.VersionsLog))
	require.Len(t, ls, 2)
	assert.Equal(t, "status\tconcept_doi\tversion_doi\tnote", ls[0])
	assert.True(t, strings.HasPrefix(ls[1],
		"drop_version\t10.5281/zenodo.100\t10.5281/zenodo.101\t"))

	ls = lines(t, filepath.Join(dir, ioartifact.Institutions))
	require.Len(t, ls, 2)
	assert.Equal(t, "ror_id\tname\tdataset_count\tauthor_count", ls[0])
	assert.Equal(t, rorA+"\tCharles University\t2\t2", ls[1])

	ls = lines(t, filepath.Join(dir, ioartifact.ORCIDByInstitution))
	require.Len(t, ls, 2)
	assert.Equal(t, rorA+"\tCharles University\t2\t1\t50.00", ls[1])

	ls = lines(t, filepath.Join(dir, ioartifact.Timeline))
	assert.Equal(t, []string{
		"year\ttotal\tdatacite\tcrossref",
		"2019\t1\t0\t1",
		"2021\t1\t1\t0",
	}, ls)

	ls = lines(t, filepath.Join(dir, ioartifact.LicensesDataCite))
	require.Len(t, ls, 2)
	assert.True(t, strings.Contains(ls[1], "\t1\t1"))

	ls = lines(t, filepath.Join(dir, ioartifact.Flat))
	require.Len(t, ls, 3)
	assert.Equal(t, strings.Join(stats.FlatHeader, ","), ls[0])
}

func TestSummaryStats(t *testing.T) {
	o := outcome(t)
	wr, dir := newWriter(t)
	require.NoError(t, wr.Write(context.Background(), o, ioartifact.Summary))

	data, err := os.ReadFile(filepath.Join(dir, ioartifact.Summary))
	require.NoError(t, err)
	var res struct {
		RawCounts        map[string]int `json:"raw_counts"`
		UniqueDOI        int            `json:"unique_doi"`
		OverlapDOI       int            `json:"overlap_doi"`
		InstitutionCount int            `json:"institution_count"`
		IgnoredCounts    map[string]int `json:"ignored_counts"`
		MalformedLines   int            `json:"malformed_lines"`
		Collapse         struct {
			Dropped int `json:"dropped"`
		} `json:"collapse"`
	}
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, map[string]int{"datacite": 2, "crossref": 1}, res.RawCounts)
	assert.Equal(t, map[string]int{"datacite": 0, "crossref": 0}, res.IgnoredCounts)
	assert.Equal(t, 3, res.UniqueDOI)
	assert.Equal(t, 0, res.OverlapDOI)
	assert.Equal(t, 1, res.InstitutionCount)
	assert.Equal(t, 1, res.MalformedLines)
	assert.Equal(t, 1, res.Collapse.Dropped)
}

func TestJSONArtifacts(t *testing.T) {
	o := outcome(t)
	wr, dir := newWriter(t)
	err := wr.Write(context.Background(), o,
		ioartifact.ORCIDCoverage, ioartifact.LicenseSummary)
	require.NoError(t, err)

	var cov stats.ORCIDCoverage
	data, err := os.ReadFile(filepath.Join(dir, ioartifact.ORCIDCoverage))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &cov))
	assert.Equal(t, 2, cov.DatasetsTotal)
	assert.Equal(t, 1, cov.DatasetsWithORCID)
	assert.Equal(t, 50.0, cov.DatasetsWithORCIDPct)

	var lic stats.LicenseSummary
	data, err = os.ReadFile(filepath.Join(dir, ioartifact.LicenseSummary))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &lic))
	assert.Equal(t, stats.LicenseSummary{Open: 1, None: 1}, lic)
}

func TestDedupRoundTrip(t *testing.T) {
	o := outcome(t)
	path := filepath.Join(t.TempDir(), "dedup.jsonl")
	require.NoError(t, ioartifact.WriteDatasets(path, o.Merge.Datasets))

	res, bad, err := ioharvest.ReadAggregated(context.Background(), path, false)
	require.NoError(t, err)
	assert.Zero(t, bad)
	require.Len(t, res, len(o.Merge.Datasets))
	for i, ds := range res {
		orig := o.Merge.Datasets[i]
		assert.Equal(t, orig.DOI, ds.DOI)
		assert.Equal(t, orig.SortedSources(), ds.SortedSources())
		assert.Equal(t, orig.SortedRORIDs(), ds.SortedRORIDs())
		for _, src := range dataset.Sources {
			_, want := orig.Record(src)
			_, got := ds.Record(src)
			assert.Equal(t, want, got)
		}
	}
}

func TestSkipsMissingStages(t *testing.T) {
	o := outcome(t)
	o.Collapse = nil
	wr, dir := newWriter(t)
	err := wr.Write(context.Background(), o, ioartifact.CollapseArtifacts...)
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, ioartifact.VersionsLog))
}

func TestWriteErrors(t *testing.T) {
	o := outcome(t)
	wr, _ := newWriter(t)
	err := wr.Write(context.Background(), o, "bogus.tsv")
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "missing", "dedup.jsonl")
	err = ioartifact.WriteDatasets(path, o.Merge.Datasets)
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.CreateFileError, gnErr.Code)
}
