package ioharvest_test

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gnames/dsrecon/internal/ioharvest"
	"github.com/gnames/dsrecon/pkg/dataset"
	"github.com/gnames/dsrecon/pkg/errcode"
	"github.com/gnames/dsrecon/pkg/merge"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const harvested = `{"source":"datacite","ror_id":"https://ror.org/024d6js02","doi":"10.1/ABC","record":{"attributes":{"doi":"10.1/ABC"}}}

{"source":"crossref","ror_id":"024d6js02","doi":"https://doi.org/10.1/abc","record":{"DOI":"10.1/abc"}}
not json
{"source":"openaire","doi":"10.1/x","record":{}}
{"source":"crossref","ror_id":null,"doi":null,"record":{}}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if strings.HasSuffix(name, ".gz") {
		f, err := os.Create(path)
		require.NoError(t, err)
		gz := gzip.NewWriter(f)
		_, err = gz.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, gz.Close())
		require.NoError(t, f.Close())
		return path
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadRaw(t *testing.T) {
	for _, name := range []string{"in.jsonl", "in.jsonl.gz"} {
		path := writeFile(t, name, harvested)
		m := merge.New()
		err := ioharvest.ReadRaw(context.Background(), []string{path}, m, false)
		require.NoError(t, err, name)

		res := m.Result()
		assert.Equal(t, 1, res.Counters.Malformed, name)
		assert.Equal(t, 1, res.Counters.UnknownSource, name)
		assert.Equal(t, 1, res.Counters.Raw[dataset.DataCite], name)
		assert.Equal(t, 2, res.Counters.Raw[dataset.Crossref], name)
		assert.Equal(t, 1, res.Counters.Ignored[dataset.Crossref], name)
		require.Len(t, res.Datasets, 1, name)

		ds := res.Datasets[0]
		assert.Equal(t, "10.1/abc", ds.DOI, name)
		assert.Equal(t, []string{"crossref", "datacite"}, ds.SortedSources(), name)
		assert.Equal(t, []string{"https://ror.org/024d6js02"}, ds.SortedRORIDs(), name)
	}
}

func TestReadRawLongLine(t *testing.T) {
	title := strings.Repeat("a", 3<<20)
	line := `{"source":"datacite","doi":"10.1/long","record":{"title":"` + title + `"}}`
	path := writeFile(t, "long.jsonl", line)
	m := merge.New()
	err := ioharvest.ReadRaw(context.Background(), []string{path}, m, false)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Result().Counters.UniqueDOIs)
}

func TestReadRawMissingFile(t *testing.T) {
	m := merge.New()
	path := filepath.Join(t.TempDir(), "missing.jsonl")
	err := ioharvest.ReadRaw(context.Background(), []string{path}, m, false)
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.ReadFileError, gnErr.Code)
}

func TestReadRawCancelled(t *testing.T) {
	path := writeFile(t, "in.jsonl", harvested)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ioharvest.ReadRaw(ctx, []string{path}, merge.New(), false)
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.RunCancelledError, gnErr.Code)
}

const dedup = `{"doi":"10.1/a","sources":["datacite"],"ror_ids":["https://ror.org/024d6js02"],"records":{"datacite":{"attributes":{"doi":"10.1/a"}},"crossref":null}}
{"doi":"10.1/b","sources":["crossref"],"ror_ids":[],"records":{"datacite":null,"crossref":{"DOI":"10.1/b","author":[{"family":"Doe","affiliation":[{"name":"CU","id":"https://ror.org/024d6js02"}]}]}}}
{"doi":"","sources":[],"ror_ids":[],"records":{"datacite":null,"crossref":null}}
{broken
{"doi":"10.1/c","sources":["crossref"],"ror_ids":[],"records":{"datacite":null,"crossref":{"DOI":"10.1/c"}}}
`

func TestReadAggregated(t *testing.T) {
	path := writeFile(t, "dedup.jsonl", dedup)
	res, bad, err := ioharvest.ReadAggregated(context.Background(), path, false)
	require.NoError(t, err)
	assert.Equal(t, 2, bad)
	require.Len(t, res, 3)
	assert.Equal(t, "10.1/a", res[0].DOI)
	assert.Equal(t, "10.1/b", res[1].DOI)
	assert.Equal(t, "10.1/c", res[2].DOI)
	assert.True(t, res[0].HasSource(dataset.DataCite))
}

func TestCheckROR(t *testing.T) {
	path := writeFile(t, "dedup.jsonl", dedup)
	res, err := ioharvest.CheckROR(context.Background(), path, "024d6js02", 1)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 2, res.Hits)
	assert.Equal(t, []string{"10.1/a"}, res.Examples)
}
