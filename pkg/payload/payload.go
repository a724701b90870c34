// Package payload provides typed access to native catalog records
// harvested from DataCite and Crossref.
//
// Native records are loosely structured. Optional fields may be missing,
// null, or come in more than one shape (a string instead of an object, a
// single object instead of a list). Decoding is best-effort: a field that
// does not match any known shape is treated as absent, and only a record
// that is not a JSON object at all produces an error.
package payload

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/gnames/dsrecon/pkg/identity"
	"github.com/segmentio/encoding/json"
)

// Relation types used for version families.
const (
	HasVersion  = "HasVersion"
	IsVersionOf = "IsVersionOf"
)

// Person is one author or contributor occurrence on a record.
type Person struct {
	// ORCID as written in the record, not normalized.
	ORCID  string
	Family string
	Given  string
	// Name is the display name.
	Name         string
	Affiliations []Affiliation
}

// Key resolves the person to an identity key.
func (p Person) Key() (identity.Key, bool) {
	return identity.ResolvePersonKey(p.ORCID, p.Family, p.Given, p.Name)
}

// Affiliation is one affiliation claim of a person.
type Affiliation struct {
	Name       string
	Identifier string
	// Scheme is the identifier scheme, for example "ROR" or "ISNI".
	Scheme    string
	SchemeURI string
}

// Relation links a record to another identifier.
type Relation struct {
	Type           string
	IdentifierType string
	Identifier     string
}

// Is reports whether the relation is of the given type and points to a
// DOI.
func (r Relation) Is(relType string) bool {
	return r.Type == relType && strings.EqualFold(r.IdentifierType, "DOI")
}

// Rights is a license or rights statement.
type Rights struct {
	URI        string
	Identifier string
	Label      string
}

// IsEmpty is true if the statement carries no text at all.
func (r Rights) IsEmpty() bool {
	return r.URI == "" && r.Identifier == "" && r.Label == ""
}

// Funder is a funding reference.
type Funder struct {
	Identifier     string
	IdentifierType string
	Name           string
}

// IsEmpty is true if the reference has neither identifier nor name.
func (f Funder) IsEmpty() bool {
	return f.Identifier == "" && f.Name == ""
}

// fields is a JSON object with undecoded values.
type fields map[string]json.RawMessage

func decodeFields(raw []byte) (fields, error) {
	var res fields
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, errNotObject
	}
	return res, nil
}

// field decodes the value under key into dst. Missing, null and
// mismatched values are reported as absent.
func (f fields) field(key string, dst any) bool {
	raw, ok := f[key]
	if !ok || isNull(raw) {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// text returns the first non-blank string value among keys.
func (f fields) text(keys ...string) string {
	for _, k := range keys {
		var t text
		if f.field(k, &t) {
			if s := t.String(); s != "" {
				return s
			}
		}
	}
	return ""
}

func isNull(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// text accepts a JSON string or a number.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if isNull(b) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(b), 64); err != nil {
		return err
	}
	*t = text(b)
	return nil
}

func (t text) String() string {
	return strings.TrimSpace(string(t))
}

// year accepts an integer or a string of digits.
type year int

func (y *year) UnmarshalJSON(b []byte) error {
	if isNull(b) {
		return errNoYear
	}
	var t text
	if err := t.UnmarshalJSON(b); err != nil {
		return err
	}
	i, err := strconv.Atoi(t.String())
	if err != nil {
		return err
	}
	*y = year(i)
	return nil
}

// named accepts a string or an object with a "name" field.
type named string

func (n *named) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if isNull(b) {
		return nil
	}
	if b[0] == '{' {
		var obj struct {
			Name text `json:"name"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		*n = named(obj.Name.String())
		return nil
	}
	var t text
	if err := t.UnmarshalJSON(b); err != nil {
		return err
	}
	*n = named(t.String())
	return nil
}

// list accepts a JSON array or a single element. Elements that cannot be
// decoded are skipped.
type list[T any] []T

func (l *list[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if isNull(b) {
		return nil
	}
	if b[0] != '[' {
		var item T
		if err := json.Unmarshal(b, &item); err != nil {
			return err
		}
		*l = list[T]{item}
		return nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return err
	}
	res := make(list[T], 0, len(raws))
	for _, raw := range raws {
		if isNull(raw) {
			continue
		}
		var item T
		if json.Unmarshal(raw, &item) == nil {
			res = append(res, item)
		}
	}
	*l = res
	return nil
}
