// Package schema provides database models of exported results.
package schema

// Dataset is one reconciled dataset in its flat form.
type Dataset struct {
	// ID is a UUID v5 derived from the DOI.
	ID string `gorm:"type:uuid;primaryKey"`

	// DOI is the canonical lower-cased DOI.
	DOI string `gorm:"type:varchar(255);not null;uniqueIndex"`

	// Sources is a ";" separated list of catalogs.
	Sources string `gorm:"type:varchar(50)"`

	// RORIDs is a ";" separated list of queried institutions.
	RORIDs string `gorm:"column:ror_ids;type:text"`

	// Year is the publication year, NULL when unknown.
	Year *int `gorm:"type:smallint;index"`

	DataCiteClientID     string `gorm:"column:datacite_client_id;type:varchar(255)"`
	DataCitePublisher    string `gorm:"column:datacite_publisher;type:text"`
	DataCiteResourceType string `gorm:"column:datacite_resource_type_general;type:varchar(100)"`
	DataCiteTitle        string `gorm:"column:datacite_title;type:text"`
	DataCiteLicenses     string `gorm:"column:datacite_licenses;type:text"`
	CrossrefMember       string `gorm:"column:crossref_member;type:varchar(50)"`
	CrossrefPublisher    string `gorm:"column:crossref_publisher;type:text"`
	CrossrefYear         *int   `gorm:"column:crossref_year;type:smallint"`
	CrossrefTitle        string `gorm:"column:crossref_title;type:text"`

	AuthorsTotal     int `gorm:"column:n_authors_total"`
	AuthorsWithORCID int `gorm:"column:n_authors_with_orcid"`

	// LicenseClass is one of open, nonopen, none.
	LicenseClass string `gorm:"type:varchar(10);index"`
}

// TableName overrides the default GORM table name.
func (Dataset) TableName() string {
	return "datasets"
}

// DatasetInstitution links a dataset to a queried institution.
type DatasetInstitution struct {
	DatasetID string `gorm:"type:uuid;primaryKey"`
	RORID     string `gorm:"column:ror_id;type:varchar(255);primaryKey;index"`
}

// TableName overrides the default GORM table name.
func (DatasetInstitution) TableName() string {
	return "dataset_institutions"
}

// Institution holds corroborated counts of one ROR institution.
type Institution struct {
	RORID            string `gorm:"column:ror_id;type:varchar(255);primaryKey"`
	Name             string `gorm:"type:text"`
	DatasetCount     int
	AuthorCount      int
	AuthorsWithORCID int `gorm:"column:authors_with_orcid"`
}

// TableName overrides the default GORM table name.
func (Institution) TableName() string {
	return "institutions"
}

// YearCount is one timeline entry.
type YearCount struct {
	Year     int `gorm:"primaryKey;autoIncrement:false"`
	Total    int
	DataCite int `gorm:"column:datacite"`
	Crossref int
}

// TableName overrides the default GORM table name.
func (YearCount) TableName() string {
	return "timeline"
}
