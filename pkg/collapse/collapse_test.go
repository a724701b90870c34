package collapse_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gnames/dsrecon/pkg/collapse"
	"github.com/gnames/dsrecon/pkg/dataset"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func relation(typ, doi string) string {
	return fmt.Sprintf(
		`{"relatedIdentifier": %q, "relatedIdentifierType": "DOI", "relationType": %q}`,
		doi, typ,
	)
}

func record(doi string, relations ...string) *dataset.Aggregated {
	ds := dataset.New(doi)
	ds.AddSource(dataset.DataCite)
	payload := fmt.Sprintf(
		`{"attributes": {"doi": %q, "relatedIdentifiers": [%s]}}`,
		doi, strings.Join(relations, ","),
	)
	ds.SetRecord(dataset.DataCite, json.RawMessage(payload))
	return ds
}

func dois(dss []*dataset.Aggregated) []string {
	res := make([]string, len(dss))
	for i, ds := range dss {
		res[i] = ds.DOI
	}
	return res
}

func TestCollapse(t *testing.T) {
	crossrefOnly := dataset.New("10.5281/zenodo.4")
	crossrefOnly.AddSource(dataset.Crossref)
	crossrefOnly.SetRecord(dataset.Crossref, json.RawMessage(`{}`))

	datasets := []*dataset.Aggregated{
		record("10.5281/zenodo.1",
			relation("HasVersion", "10.5281/zenodo.2"),
			relation("HasVersion", "https://doi.org/10.5281/ZENODO.3"),
			relation("HasVersion", "10.5281/zenodo.4"),
			relation("HasVersion", "10.5281/zenodo.5"),
			relation("HasVersion", "10.5281/zenodo.2"),
			relation("HasVersion", "10.1234/other"),
		),
		record("10.5281/zenodo.2", relation("IsVersionOf", "10.5281/zenodo.1")),
		record("10.5281/zenodo.3", relation("IsVersionOf", "10.5281/zenodo.99")),
		crossrefOnly,
		record("10.1234/plain"),
	}

	res := collapse.Collapse(datasets, collapse.DefaultOptions())

	assert.Equal(t, 1, res.Concepts)
	require.Len(t, res.Decisions, 4)
	assert.Equal(t, collapse.Decision{
		Status:     collapse.DropVersion,
		ConceptDOI: "10.5281/zenodo.1",
		VersionDOI: "10.5281/zenodo.2",
	}, res.Decisions[0])
	assert.Equal(t, collapse.InconsistentIsVersionOf, res.Decisions[1].Status)
	assert.Equal(t, "10.5281/zenodo.3", res.Decisions[1].VersionDOI)
	assert.Equal(t, collapse.NoPayload, res.Decisions[2].Status)
	assert.Equal(t, collapse.MissingVersionRecord, res.Decisions[3].Status)

	assert.Equal(t, 1, res.Dropped())
	assert.Equal(t, 1, res.Count(collapse.MissingVersionRecord))
	assert.Equal(t, collapse.Summary{
		Input: 5, Concepts: 1, Dropped: 1, Output: 4,
	}, res.Summary())
	assert.Equal(t,
		[]string{
			"10.5281/zenodo.1", "10.5281/zenodo.3",
			"10.5281/zenodo.4", "10.1234/plain",
		},
		dois(res.Datasets),
	)
}

func TestCollapseVersionWithoutRelations(t *testing.T) {
	noRelations := dataset.New("10.5281/zenodo.101")
	noRelations.AddSource(dataset.DataCite)
	noRelations.SetRecord(dataset.DataCite,
		json.RawMessage(`{"attributes":{"titles":[{"title":"v1"}]}}`))
	emptyObject := dataset.New("10.5281/zenodo.102")
	emptyObject.AddSource(dataset.DataCite)
	emptyObject.SetRecord(dataset.DataCite, json.RawMessage(`{}`))

	datasets := []*dataset.Aggregated{
		record("10.5281/zenodo.100",
			relation("HasVersion", "10.5281/zenodo.101"),
			relation("HasVersion", "10.5281/zenodo.102"),
		),
		noRelations,
		emptyObject,
	}

	res := collapse.Collapse(datasets, collapse.DefaultOptions())
	require.Len(t, res.Decisions, 2)
	for _, d := range res.Decisions {
		assert.Equal(t, collapse.NoPayload, d.Status, d.VersionDOI)
	}
	assert.Equal(t, 0, res.Count(collapse.InconsistentIsVersionOf))
	assert.Len(t, res.Datasets, 3)
}

func TestCollapseFamilyByClient(t *testing.T) {
	concept := dataset.New("10.9999/concept")
	concept.AddSource(dataset.DataCite)
	concept.SetRecord(dataset.DataCite, json.RawMessage(`{
		"attributes": {
			"clientId": "CERN.ZENODO",
			"relatedIdentifiers": [`+relation("HasVersion", "10.5281/zenodo.7")+`]
		}
	}`))
	version := record("10.5281/zenodo.7", relation("IsVersionOf", "10.9999/concept"))

	res := collapse.Collapse(
		[]*dataset.Aggregated{concept, version},
		collapse.DefaultOptions(),
	)
	assert.Equal(t, 1, res.Dropped())
	assert.Equal(t, []string{"10.9999/concept"}, dois(res.Datasets))
}

func TestCollapseOutsideFamily(t *testing.T) {
	concept := record("10.1234/concept", relation("HasVersion", "10.5281/zenodo.8"))
	version := record("10.5281/zenodo.8", relation("IsVersionOf", "10.1234/concept"))

	res := collapse.Collapse(
		[]*dataset.Aggregated{concept, version},
		collapse.DefaultOptions(),
	)
	assert.Empty(t, res.Decisions)
	assert.Equal(t, 0, res.Concepts)
	assert.Len(t, res.Datasets, 2)
}

func TestCollapseSelfReference(t *testing.T) {
	ds := record("10.5281/zenodo.9",
		relation("HasVersion", "10.5281/zenodo.9"),
		relation("IsVersionOf", "10.5281/zenodo.9"),
	)
	res := collapse.Collapse([]*dataset.Aggregated{ds}, collapse.DefaultOptions())
	assert.Empty(t, res.Decisions)
	assert.Len(t, res.Datasets, 1)
}

func TestStatusNote(t *testing.T) {
	assert.Contains(t, collapse.DropVersion.Note(), "dropping version DOI")
	assert.Contains(t, collapse.MissingVersionRecord.Note(), "not present")
	assert.Empty(t, collapse.Status("unknown").Note())
}
