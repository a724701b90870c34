// Package stats computes descriptive statistics over merged datasets in a
// single pass.
package stats

import (
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/gnames/dsrecon/pkg/affiliation"
	"github.com/gnames/dsrecon/pkg/dataset"
	"github.com/gnames/dsrecon/pkg/identity"
	"github.com/gnames/dsrecon/pkg/license"
	"github.com/gnames/dsrecon/pkg/payload"
)

// Aggregator accumulates statistics. It is not safe for concurrent use.
type Aggregator struct {
	names map[string]string

	timeline map[int]*YearCount

	datasets          int
	datasetsWithORCID int
	persons           map[identity.Key]struct{}

	instDatasets map[string]int
	instPersons  affiliation.Edges

	licenses       LicenseSummary
	licenseEntries map[LicenseEntry]int

	fundersDataCite map[DataCiteFunder]int
	fundersCrossref map[CrossrefFunder]int
	reposDataCite   map[DataCiteRepo]int
	reposCrossref   map[CrossrefRepo]int

	rows []FlatRow
}

// New creates an Aggregator. The names map canonical ROR identifiers to
// institution names and may be nil.
func New(names map[string]string) *Aggregator {
	if names == nil {
		names = make(map[string]string)
	}
	return &Aggregator{
		names:           names,
		timeline:        make(map[int]*YearCount),
		persons:         make(map[identity.Key]struct{}),
		instDatasets:    make(map[string]int),
		instPersons:     make(affiliation.Edges),
		licenseEntries:  make(map[LicenseEntry]int),
		fundersDataCite: make(map[DataCiteFunder]int),
		fundersCrossref: make(map[CrossrefFunder]int),
		reposDataCite:   make(map[DataCiteRepo]int),
		reposCrossref:   make(map[CrossrefRepo]int),
	}
}

// Add accounts one dataset and returns its flat row.
func (a *Aggregator) Add(ds *dataset.Aggregated) FlatRow {
	a.datasets++
	dc := decodeDataCite(ds)
	cr := decodeCrossref(ds)

	row := FlatRow{
		DOI:     ds.DOI,
		Sources: ds.SortedSources(),
		RORIDs:  ds.SortedRORIDs(),
	}

	var rights []payload.Rights
	if dc != nil {
		row.DataCiteClientID, _ = dc.ClientID()
		row.DataCitePublisher, _ = dc.Publisher()
		row.DataCiteResourceType, _ = dc.ResourceTypeGeneral()
		row.DataCiteTitle, _ = dc.Title()
		for _, r := range dc.Rights() {
			open := license.IsOpen(r)
			a.licenseEntries[LicenseEntry{
				URI: r.URI, Identifier: r.Identifier, Rights: r.Label, IsOpen: open,
			}]++
			if label := rightsLabel(r); !slices.Contains(row.DataCiteLicenses, label) {
				row.DataCiteLicenses = append(row.DataCiteLicenses, label)
			}
		}
		rights = append(rights, dc.Rights()...)
		a.addDataCiteFunders(dc.Funders())
		a.reposDataCite[DataCiteRepo{
			ClientID:            row.DataCiteClientID,
			Publisher:           row.DataCitePublisher,
			ResourceTypeGeneral: row.DataCiteResourceType,
		}]++
	}

	if cr != nil {
		row.CrossrefMember, _ = cr.Member()
		row.CrossrefPublisher, _ = cr.Publisher()
		row.CrossrefTitle, _ = cr.Title()
		if y, ok := cr.IssuedYear(); ok {
			row.CrossrefYear = &y
		}
		rights = append(rights, cr.Licenses()...)
		a.addCrossrefFunders(cr.Funders())
		a.reposCrossref[CrossrefRepo{
			Member:    row.CrossrefMember,
			Publisher: row.CrossrefPublisher,
		}]++
	}

	if y, ok := datasetYear(dc, cr); ok {
		row.Year = &y
		a.addYear(y, ds)
	}

	row.LicenseClass = license.Classify(rights)
	a.licenses.add(row.LicenseClass)

	all, withORCID := a.addPersons(dc, cr)
	row.AuthorsTotal = all
	row.AuthorsWithORCID = withORCID

	a.addInstitutions(ds, dc, cr)

	a.rows = append(a.rows, row)
	return row
}

func decodeDataCite(ds *dataset.Aggregated) *payload.DataCite {
	raw, ok := ds.Record(dataset.DataCite)
	if !ok {
		return nil
	}
	res, err := payload.DecodeDataCite(raw)
	if err != nil {
		slog.Debug("Cannot decode DataCite payload", "doi", ds.DOI, "error", err)
		return nil
	}
	return res
}

func decodeCrossref(ds *dataset.Aggregated) *payload.Crossref {
	raw, ok := ds.Record(dataset.Crossref)
	if !ok {
		return nil
	}
	res, err := payload.DecodeCrossref(raw)
	if err != nil {
		slog.Debug("Cannot decode Crossref payload", "doi", ds.DOI, "error", err)
		return nil
	}
	return res
}

// datasetYear prefers the DataCite publication year over the Crossref
// issue year.
func datasetYear(dc *payload.DataCite, cr *payload.Crossref) (int, bool) {
	if dc != nil {
		if y, ok := dc.PublicationYear(); ok {
			return y, true
		}
	}
	if cr != nil {
		return cr.IssuedYear()
	}
	return 0, false
}

func (a *Aggregator) addYear(y int, ds *dataset.Aggregated) {
	yc, ok := a.timeline[y]
	if !ok {
		yc = &YearCount{Year: y}
		a.timeline[y] = yc
	}
	yc.Total++
	if ds.HasSource(dataset.DataCite) {
		yc.DataCite++
	}
	if ds.HasSource(dataset.Crossref) {
		yc.Crossref++
	}
}

// addPersons unions person keys of both payloads and returns the number
// of distinct persons and of those backed by an ORCID.
func (a *Aggregator) addPersons(
	dc *payload.DataCite,
	cr *payload.Crossref,
) (int, int) {
	var people []payload.Person
	if dc != nil {
		people = append(people, dc.People()...)
	}
	if cr != nil {
		people = append(people, cr.People()...)
	}

	keys := make(map[identity.Key]struct{})
	var withORCID int
	for _, p := range people {
		k, ok := p.Key()
		if !ok {
			continue
		}
		if _, seen := keys[k]; seen {
			continue
		}
		keys[k] = struct{}{}
		a.persons[k] = struct{}{}
		if k.HasORCID() {
			withORCID++
		}
	}
	if withORCID > 0 {
		a.datasetsWithORCID++
	}
	return len(keys), withORCID
}

// addInstitutions credits an institution when it is among the dataset's
// query ROR ids and at least one person of the dataset claims it.
func (a *Aggregator) addInstitutions(
	ds *dataset.Aggregated,
	dc *payload.DataCite,
	cr *payload.Crossref,
) {
	edges := affiliation.FromDataCite(dc)
	edges.Merge(affiliation.FromCrossref(cr))
	for _, ror := range ds.SortedRORIDs() {
		if !edges.Has(ror) {
			continue
		}
		a.instDatasets[ror]++
		for k := range edges[ror] {
			a.instPersons.Add(ror, k)
		}
	}
}

func (a *Aggregator) addDataCiteFunders(funders []payload.Funder) {
	seen := make(map[DataCiteFunder]struct{})
	for _, f := range funders {
		key := DataCiteFunder{
			Identifier:     f.Identifier,
			IdentifierType: f.IdentifierType,
			Name:           f.Name,
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		a.fundersDataCite[key]++
	}
}

func (a *Aggregator) addCrossrefFunders(funders []payload.Funder) {
	seen := make(map[CrossrefFunder]struct{})
	for _, f := range funders {
		key := CrossrefFunder{DOI: f.Identifier, Name: f.Name}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		a.fundersCrossref[key]++
	}
}

// rightsLabel picks the most specific text of a rights statement.
func rightsLabel(r payload.Rights) string {
	switch {
	case r.URI != "":
		return r.URI
	case r.Identifier != "":
		return r.Identifier
	default:
		return r.Label
	}
}

// FlatRow is the tabular projection of one dataset.
type FlatRow struct {
	DOI                  string
	Sources              []string
	RORIDs               []string
	Year                 *int
	DataCiteClientID     string
	DataCitePublisher    string
	DataCiteResourceType string
	DataCiteTitle        string
	DataCiteLicenses     []string
	CrossrefMember       string
	CrossrefPublisher    string
	CrossrefYear         *int
	CrossrefTitle        string
	AuthorsTotal         int
	AuthorsWithORCID     int
	LicenseClass         license.Class
}

// FlatHeader lists column names of FlatRow.Fields.
var FlatHeader = []string{
	"doi",
	"sources",
	"ror_ids",
	"year",
	"datacite_client_id",
	"datacite_publisher",
	"datacite_resourceTypeGeneral",
	"datacite_title",
	"datacite_licenses",
	"crossref_member",
	"crossref_publisher",
	"crossref_year",
	"crossref_title",
	"n_authors_total",
	"n_authors_with_orcid",
	"license_class",
}

// Fields returns the row as strings in FlatHeader order. List values are
// joined with ";", missing years are empty.
func (r FlatRow) Fields() []string {
	return []string{
		r.DOI,
		strings.Join(r.Sources, ";"),
		strings.Join(r.RORIDs, ";"),
		optInt(r.Year),
		r.DataCiteClientID,
		r.DataCitePublisher,
		r.DataCiteResourceType,
		r.DataCiteTitle,
		strings.Join(r.DataCiteLicenses, ";"),
		r.CrossrefMember,
		r.CrossrefPublisher,
		optInt(r.CrossrefYear),
		r.CrossrefTitle,
		strconv.Itoa(r.AuthorsTotal),
		strconv.Itoa(r.AuthorsWithORCID),
		string(r.LicenseClass),
	}
}

func optInt(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}
