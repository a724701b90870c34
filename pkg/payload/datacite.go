package payload

import (
	"bytes"
	"strings"

	"github.com/segmentio/encoding/json"
)

// DataCite is a decoded DataCite DOI record. Records may come as full API
// items with "attributes" and "relationships", or as bare attributes.
type DataCite struct {
	doi          string
	title        string
	publisher    string
	clientID     string
	resourceType string
	year         int
	hasYear      bool
	people       []Person
	relations    []Relation
	rights       []Rights
	funders      []Funder
}

type dcPerson struct {
	Name            text                   `json:"name"`
	GivenName       text                   `json:"givenName"`
	FamilyName      text                   `json:"familyName"`
	NameIdentifiers list[dcNameIdentifier] `json:"nameIdentifiers"`
	Affiliation     list[dcAffiliation]    `json:"affiliation"`
}

type dcNameIdentifier struct {
	NameIdentifier       text `json:"nameIdentifier"`
	NameIdentifierScheme text `json:"nameIdentifierScheme"`
}

// dcAffiliation is either a plain string or an object.
type dcAffiliation Affiliation

func (a *dcAffiliation) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if isNull(b) {
		return nil
	}
	if b[0] != '{' {
		var t text
		if err := t.UnmarshalJSON(b); err != nil {
			return err
		}
		*a = dcAffiliation{Name: t.String()}
		return nil
	}

	var obj struct {
		Name      text `json:"name"`
		ID        text `json:"affiliationIdentifier"`
		AltID     text `json:"id"`
		Scheme    text `json:"affiliationIdentifierScheme"`
		SchemeURI text `json:"schemeUri"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	id := obj.ID.String()
	if id == "" {
		id = obj.AltID.String()
	}
	*a = dcAffiliation{
		Name:       obj.Name.String(),
		Identifier: id,
		Scheme:     obj.Scheme.String(),
		SchemeURI:  obj.SchemeURI.String(),
	}
	return nil
}

type dcRelated struct {
	RelatedIdentifier     text `json:"relatedIdentifier"`
	RelatedIdentifierType text `json:"relatedIdentifierType"`
	RelationType          text `json:"relationType"`
}

type dcRights struct {
	Rights           text `json:"rights"`
	RightsURI        text `json:"rightsUri"`
	RightsIdentifier text `json:"rightsIdentifier"`
}

type dcFunding struct {
	FunderName           text `json:"funderName"`
	FunderIdentifier     text `json:"funderIdentifier"`
	FunderIdentifierType text `json:"funderIdentifierType"`
}

type dcTitle struct {
	Title text `json:"title"`
}

// DecodeDataCite decodes a native DataCite record. It returns an error
// only when the record is not a JSON object.
func DecodeDataCite(raw []byte) (*DataCite, error) {
	top, err := decodeFields(raw)
	if err != nil {
		return nil, err
	}
	attrs := top
	var nested fields
	if top.field("attributes", &nested) && nested != nil {
		attrs = nested
	}

	res := DataCite{
		doi:      attrs.text("doi"),
		clientID: clientID(top),
	}
	if res.doi == "" {
		res.doi = top.text("id")
	}
	if res.clientID == "" {
		res.clientID = attrs.text("clientId", "client-id")
	}

	var pub named
	if attrs.field("publisher", &pub) {
		res.publisher = strings.TrimSpace(string(pub))
	}

	var y year
	if attrs.field("publicationYear", &y) {
		res.year, res.hasYear = int(y), true
	}

	var types struct {
		ResourceTypeGeneral text `json:"resourceTypeGeneral"`
	}
	if attrs.field("types", &types) {
		res.resourceType = types.ResourceTypeGeneral.String()
	}

	var titles list[dcTitle]
	if attrs.field("titles", &titles) {
		for _, t := range titles {
			if s := t.Title.String(); s != "" {
				res.title = s
				break
			}
		}
	}

	for _, key := range []string{"creators", "contributors"} {
		var people list[dcPerson]
		if !attrs.field(key, &people) {
			continue
		}
		for _, p := range people {
			res.people = append(res.people, p.person())
		}
	}

	var related list[dcRelated]
	if attrs.field("relatedIdentifiers", &related) {
		for _, r := range related {
			res.relations = append(res.relations, Relation{
				Type:           r.RelationType.String(),
				IdentifierType: r.RelatedIdentifierType.String(),
				Identifier:     r.RelatedIdentifier.String(),
			})
		}
	}

	var rights list[dcRights]
	if attrs.field("rightsList", &rights) {
		for _, r := range rights {
			rr := Rights{
				URI:        r.RightsURI.String(),
				Identifier: r.RightsIdentifier.String(),
				Label:      r.Rights.String(),
			}
			if !rr.IsEmpty() {
				res.rights = append(res.rights, rr)
			}
		}
	}

	var funding list[dcFunding]
	if attrs.field("fundingReferences", &funding) {
		for _, f := range funding {
			fr := Funder{
				Identifier:     f.FunderIdentifier.String(),
				IdentifierType: f.FunderIdentifierType.String(),
				Name:           f.FunderName.String(),
			}
			if !fr.IsEmpty() {
				res.funders = append(res.funders, fr)
			}
		}
	}

	return &res, nil
}

func clientID(top fields) string {
	var rel struct {
		Client struct {
			Data struct {
				ID text `json:"id"`
			} `json:"data"`
		} `json:"client"`
	}
	if top.field("relationships", &rel) {
		return rel.Client.Data.ID.String()
	}
	return ""
}

func (p dcPerson) person() Person {
	res := Person{
		Name:   p.Name.String(),
		Family: p.FamilyName.String(),
		Given:  p.GivenName.String(),
	}
	for _, ni := range p.NameIdentifiers {
		if strings.EqualFold(ni.NameIdentifierScheme.String(), "orcid") {
			res.ORCID = ni.NameIdentifier.String()
			break
		}
	}
	for _, a := range p.Affiliation {
		res.Affiliations = append(res.Affiliations, Affiliation(a))
	}
	return res
}

// DOI of the record as written in the payload.
func (d *DataCite) DOI() (string, bool) {
	return d.doi, d.doi != ""
}

// Title returns the first non-empty title.
func (d *DataCite) Title() (string, bool) {
	return d.title, d.title != ""
}

// Publisher returns the publisher name.
func (d *DataCite) Publisher() (string, bool) {
	return d.publisher, d.publisher != ""
}

// ClientID returns the repository (client) identifier.
func (d *DataCite) ClientID() (string, bool) {
	return d.clientID, d.clientID != ""
}

// ResourceTypeGeneral returns the general resource type, for example
// "Dataset".
func (d *DataCite) ResourceTypeGeneral() (string, bool) {
	return d.resourceType, d.resourceType != ""
}

// PublicationYear returns the publication year when it is an integer or
// a string of digits.
func (d *DataCite) PublicationYear() (int, bool) {
	return d.year, d.hasYear
}

// People returns creators followed by contributors.
func (d *DataCite) People() []Person {
	return d.people
}

// Relations returns related identifiers.
func (d *DataCite) Relations() []Relation {
	return d.relations
}

// Rights returns non-empty rights statements.
func (d *DataCite) Rights() []Rights {
	return d.rights
}

// Funders returns non-empty funding references.
func (d *DataCite) Funders() []Funder {
	return d.funders
}

// RelatedDOIs returns raw identifiers of DOI relations of the given type.
func (d *DataCite) RelatedDOIs(relType string) []string {
	var res []string
	for _, r := range d.relations {
		if r.Is(relType) && r.Identifier != "" {
			res = append(res, r.Identifier)
		}
	}
	return res
}
