package payload

import (
	"bytes"

	"github.com/segmentio/encoding/json"
)

// Crossref is a decoded Crossref work record.
type Crossref struct {
	doi       string
	title     string
	publisher string
	member    string
	year      int
	hasYear   bool
	people    []Person
	licenses  []Rights
	funders   []Funder
}

type crPerson struct {
	Given       text                `json:"given"`
	Family      text                `json:"family"`
	Name        text                `json:"name"`
	ORCID       text                `json:"ORCID"`
	Affiliation list[crAffiliation] `json:"affiliation"`
}

// crAffiliation keeps the name and all identifiers of one affiliation.
// Identifiers come either as a string or as a list of strings or objects
// with "id" and "id-type" fields.
type crAffiliation struct {
	name string
	ids  []crID
}

type crID struct {
	ID     text `json:"id"`
	IDType text `json:"id-type"`
}

func (a *crAffiliation) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if isNull(b) {
		return nil
	}
	if b[0] != '{' {
		var t text
		if err := t.UnmarshalJSON(b); err != nil {
			return err
		}
		*a = crAffiliation{name: t.String()}
		return nil
	}

	var obj struct {
		Name text            `json:"name"`
		ID   json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	res := crAffiliation{name: obj.Name.String()}
	if !isNull(obj.ID) {
		res.ids = decodeIDs(obj.ID)
	}
	*a = res
	return nil
}

func decodeIDs(raw []byte) []crID {
	var items list[json.RawMessage]
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	var res []crID
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if isNull(item) {
			continue
		}
		var id crID
		if item[0] == '{' {
			if json.Unmarshal(item, &id) != nil {
				continue
			}
		} else if id.ID.UnmarshalJSON(item) != nil {
			continue
		}
		if id.ID.String() != "" {
			res = append(res, id)
		}
	}
	return res
}

type crFunder struct {
	DOI  text `json:"DOI"`
	Name text `json:"name"`
}

type crLicense struct {
	URL text `json:"URL"`
}

// DecodeCrossref decodes a native Crossref work. It returns an error only
// when the record is not a JSON object.
func DecodeCrossref(raw []byte) (*Crossref, error) {
	f, err := decodeFields(raw)
	if err != nil {
		return nil, err
	}

	res := Crossref{
		doi:       f.text("DOI"),
		publisher: f.text("publisher"),
		member:    f.text("member"),
	}
	res.year, res.hasYear = issuedYear(f, "issued", "published")

	var titles list[text]
	if f.field("title", &titles) {
		for _, t := range titles {
			if s := t.String(); s != "" {
				res.title = s
				break
			}
		}
	}

	var authors list[crPerson]
	if f.field("author", &authors) {
		for _, a := range authors {
			res.people = append(res.people, a.person())
		}
	}

	var funders list[crFunder]
	if f.field("funder", &funders) {
		for _, fu := range funders {
			fr := Funder{
				Identifier: fu.DOI.String(),
				Name:       fu.Name.String(),
			}
			if !fr.IsEmpty() {
				res.funders = append(res.funders, fr)
			}
		}
	}

	var licenses list[crLicense]
	if f.field("license", &licenses) {
		for _, l := range licenses {
			if u := l.URL.String(); u != "" {
				res.licenses = append(res.licenses, Rights{URI: u})
			}
		}
	}

	return &res, nil
}

// issuedYear takes the first element of the first "date-parts" entry
// found under one of keys.
func issuedYear(f fields, keys ...string) (int, bool) {
	for _, k := range keys {
		var d struct {
			DateParts [][]json.RawMessage `json:"date-parts"`
		}
		if !f.field(k, &d) || len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
			continue
		}
		raw := d.DateParts[0][0]
		if isNull(raw) {
			continue
		}
		var y year
		if json.Unmarshal(raw, &y) == nil {
			return int(y), true
		}
	}
	return 0, false
}

func (p crPerson) person() Person {
	res := Person{
		ORCID:  p.ORCID.String(),
		Family: p.Family.String(),
		Given:  p.Given.String(),
		Name:   p.Name.String(),
	}
	for _, a := range p.Affiliation {
		if len(a.ids) == 0 {
			res.Affiliations = append(res.Affiliations, Affiliation{Name: a.name})
			continue
		}
		for _, id := range a.ids {
			res.Affiliations = append(res.Affiliations, Affiliation{
				Name:       a.name,
				Identifier: id.ID.String(),
				Scheme:     id.IDType.String(),
			})
		}
	}
	return res
}

// DOI of the record as written in the payload.
func (c *Crossref) DOI() (string, bool) {
	return c.doi, c.doi != ""
}

// Title returns the first non-empty title.
func (c *Crossref) Title() (string, bool) {
	return c.title, c.title != ""
}

// Publisher returns the publisher name.
func (c *Crossref) Publisher() (string, bool) {
	return c.publisher, c.publisher != ""
}

// Member returns the Crossref member identifier.
func (c *Crossref) Member() (string, bool) {
	return c.member, c.member != ""
}

// IssuedYear returns the year of the earliest issue date.
func (c *Crossref) IssuedYear() (int, bool) {
	return c.year, c.hasYear
}

// People returns authors.
func (c *Crossref) People() []Person {
	return c.people
}

// Licenses returns license URLs as rights statements.
func (c *Crossref) Licenses() []Rights {
	return c.licenses
}

// Funders returns non-empty funder references.
func (c *Crossref) Funders() []Funder {
	return c.funders
}
