package stats

import (
	"cmp"
	"slices"

	"github.com/gnames/dsrecon/pkg/license"
)

// YearCount is a timeline entry. Total counts all datasets of the year,
// DataCite and Crossref count datasets that list the source.
type YearCount struct {
	Year     int
	Total    int
	DataCite int
	Crossref int
}

// ORCIDCoverage summarizes how many datasets and distinct persons carry
// ORCID identifiers. Percentages are in the 0-100 range.
type ORCIDCoverage struct {
	DatasetsTotal        int     `json:"datasets_total"`
	DatasetsWithORCID    int     `json:"datasets_with_at_least_one_orcid"`
	DatasetsWithORCIDPct float64 `json:"datasets_with_at_least_one_orcid_pct"`
	PersonsTotal         int     `json:"persons_total"`
	PersonsWithORCID     int     `json:"persons_with_orcid"`
	PersonsWithORCIDPct  float64 `json:"persons_with_orcid_pct"`
}

// Institution holds corroborated counts of one ROR institution.
type Institution struct {
	RORID            string
	Name             string
	DatasetCount     int
	AuthorCount      int
	AuthorsWithORCID int
}

// ORCIDPct is the share of the institution's authors with ORCID, 0-100.
func (i Institution) ORCIDPct() float64 {
	return pct(i.AuthorsWithORCID, i.AuthorCount)
}

// LicenseSummary counts datasets per license class.
type LicenseSummary struct {
	Open    int `json:"open"`
	NonOpen int `json:"nonopen"`
	None    int `json:"none"`
}

func (l *LicenseSummary) add(c license.Class) {
	switch c {
	case license.Open:
		l.Open++
	case license.NonOpen:
		l.NonOpen++
	default:
		l.None++
	}
}

// LicenseEntry is a distinct DataCite rights statement.
type LicenseEntry struct {
	URI        string
	Identifier string
	Rights     string
	IsOpen     bool
}

// DataCiteFunder is a distinct DataCite funding reference.
type DataCiteFunder struct {
	Identifier     string
	IdentifierType string
	Name           string
}

// CrossrefFunder is a distinct Crossref funder.
type CrossrefFunder struct {
	DOI  string
	Name string
}

// DataCiteRepo groups datasets by DataCite client.
type DataCiteRepo struct {
	ClientID            string
	Publisher           string
	ResourceTypeGeneral string
}

// CrossrefRepo groups datasets by Crossref member.
type CrossrefRepo struct {
	Member    string
	Publisher string
}

// Count pairs a key with the number of datasets.
type Count[K comparable] struct {
	Key   K
	Count int
}

// Report is the final result of an aggregation.
type Report struct {
	Timeline        []YearCount
	ORCID           ORCIDCoverage
	Institutions    []Institution
	License         LicenseSummary
	LicenseEntries  []Count[LicenseEntry]
	FundersDataCite []Count[DataCiteFunder]
	FundersCrossref []Count[CrossrefFunder]
	ReposDataCite   []Count[DataCiteRepo]
	ReposCrossref   []Count[CrossrefRepo]
	Rows            []FlatRow
}

// Report builds the report from everything added so far.
func (a *Aggregator) Report() *Report {
	res := &Report{
		License: a.licenses,
		Rows:    a.rows,
	}

	for _, yc := range a.timeline {
		res.Timeline = append(res.Timeline, *yc)
	}
	slices.SortFunc(res.Timeline, func(x, y YearCount) int {
		return cmp.Compare(x.Year, y.Year)
	})

	var personsWithORCID int
	for k := range a.persons {
		if k.HasORCID() {
			personsWithORCID++
		}
	}
	res.ORCID = ORCIDCoverage{
		DatasetsTotal:        a.datasets,
		DatasetsWithORCID:    a.datasetsWithORCID,
		DatasetsWithORCIDPct: pct(a.datasetsWithORCID, a.datasets),
		PersonsTotal:         len(a.persons),
		PersonsWithORCID:     personsWithORCID,
		PersonsWithORCIDPct:  pct(personsWithORCID, len(a.persons)),
	}

	res.Institutions = a.institutions()
	res.LicenseEntries = sortedCounts(a.licenseEntries, func(x, y LicenseEntry) int {
		return cmp.Or(
			cmp.Compare(x.URI, y.URI),
			cmp.Compare(x.Identifier, y.Identifier),
			cmp.Compare(x.Rights, y.Rights),
			compareBool(x.IsOpen, y.IsOpen),
		)
	})
	res.FundersDataCite = sortedCounts(a.fundersDataCite, func(x, y DataCiteFunder) int {
		return cmp.Or(
			cmp.Compare(x.Identifier, y.Identifier),
			cmp.Compare(x.IdentifierType, y.IdentifierType),
			cmp.Compare(x.Name, y.Name),
		)
	})
	res.FundersCrossref = sortedCounts(a.fundersCrossref, func(x, y CrossrefFunder) int {
		return cmp.Or(cmp.Compare(x.DOI, y.DOI), cmp.Compare(x.Name, y.Name))
	})
	res.ReposDataCite = sortedCounts(a.reposDataCite, func(x, y DataCiteRepo) int {
		return cmp.Or(
			cmp.Compare(x.ClientID, y.ClientID),
			cmp.Compare(x.Publisher, y.Publisher),
			cmp.Compare(x.ResourceTypeGeneral, y.ResourceTypeGeneral),
		)
	})
	res.ReposCrossref = sortedCounts(a.reposCrossref, func(x, y CrossrefRepo) int {
		return cmp.Or(
			cmp.Compare(x.Member, y.Member),
			cmp.Compare(x.Publisher, y.Publisher),
		)
	})
	return res
}

// institutions are sorted by dataset count descending, then by ROR id.
func (a *Aggregator) institutions() []Institution {
	res := make([]Institution, 0, len(a.instDatasets))
	for ror, n := range a.instDatasets {
		inst := Institution{
			RORID:        ror,
			Name:         a.names[ror],
			DatasetCount: n,
			AuthorCount:  len(a.instPersons[ror]),
		}
		for k := range a.instPersons[ror] {
			if k.HasORCID() {
				inst.AuthorsWithORCID++
			}
		}
		res = append(res, inst)
	}
	slices.SortFunc(res, func(x, y Institution) int {
		return cmp.Or(
			cmp.Compare(y.DatasetCount, x.DatasetCount),
			cmp.Compare(x.RORID, y.RORID),
		)
	})
	return res
}

// sortedCounts orders counts descending, ties broken by key.
func sortedCounts[K comparable](m map[K]int, cmpKey func(x, y K) int) []Count[K] {
	res := make([]Count[K], 0, len(m))
	for k, v := range m {
		res = append(res, Count[K]{Key: k, Count: v})
	}
	slices.SortFunc(res, func(x, y Count[K]) int {
		return cmp.Or(cmp.Compare(y.Count, x.Count), cmpKey(x.Key, y.Key))
	})
	return res
}

func compareBool(x, y bool) int {
	switch {
	case x == y:
		return 0
	case !x:
		return -1
	default:
		return 1
	}
}

func pct(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// ByAuthorCount returns a copy of institutions sorted by author count
// descending, then by ROR id.
func ByAuthorCount(insts []Institution) []Institution {
	res := slices.Clone(insts)
	slices.SortFunc(res, func(x, y Institution) int {
		return cmp.Or(
			cmp.Compare(y.AuthorCount, x.AuthorCount),
			cmp.Compare(x.RORID, y.RORID),
		)
	})
	return res
}
