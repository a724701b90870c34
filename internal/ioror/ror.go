// Package ioror loads institution names from a ROR data dump.
package ioror

import (
	"compress/gzip"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gnames/dsrecon/pkg/normalize"
	"github.com/segmentio/encoding/json"
)

type rorName struct {
	Value string   `json:"value"`
	Types []string `json:"types"`
}

type rorLocation struct {
	Details struct {
		CountryCode string `json:"country_code"`
	} `json:"geonames_details"`
}

type rorAddress struct {
	CountryCode string `json:"country_code"`
}

// rorOrg covers schema v2 and the parts of v1 that are still needed.
type rorOrg struct {
	ID        string        `json:"id"`
	Names     []rorName     `json:"names"`
	Name      string        `json:"name"`
	Locations []rorLocation `json:"locations"`
	Addresses []rorAddress  `json:"addresses"`
	Country   struct {
		CountryCode string `json:"country_code"`
	} `json:"country"`
}

func (o rorOrg) inCountry(code string) bool {
	if code == "" {
		return true
	}
	for _, l := range o.Locations {
		if strings.EqualFold(l.Details.CountryCode, code) {
			return true
		}
	}
	for _, a := range o.Addresses {
		if strings.EqualFold(a.CountryCode, code) {
			return true
		}
	}
	return strings.EqualFold(o.Country.CountryCode, code)
}

func (o rorOrg) displayName() string {
	for _, n := range o.Names {
		if slices.Contains(n.Types, "ror_display") && n.Value != "" {
			return n.Value
		}
	}
	if len(o.Names) > 0 && o.Names[0].Value != "" {
		return o.Names[0].Value
	}
	if o.Name != "" {
		return o.Name
	}
	return o.ID
}

// Load reads a ROR dump (JSON array, optionally gzipped) and returns
// display names keyed by canonical ROR identifier. With a non-empty
// country only organizations located in that country are loaded.
func Load(path, country string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ReadDumpError(path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, ReadDumpError(path, err)
		}
		defer gz.Close()
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ReadDumpError(path, err)
	}

	var orgs []rorOrg
	if err := json.Unmarshal(data, &orgs); err != nil {
		return nil, DecodeDumpError(path, err)
	}

	res := make(map[string]string)
	for _, o := range orgs {
		if !o.inCountry(country) {
			continue
		}
		id, ok := normalize.ROR(o.ID)
		if !ok {
			continue
		}
		res[id] = o.displayName()
	}

	slog.Info("Loaded ROR names",
		"file", path,
		"country", country,
		"organizations", humanize.Comma(int64(len(res))),
	)
	return res, nil
}
