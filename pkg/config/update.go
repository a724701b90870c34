package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gnames/gn"
)

// Update applies a slice of Option functions to the Config.
// This is the only way to modify a Config after creation.
// Invalid options are rejected with warnings - config remains in valid state.
func (c *Config) Update(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// ToOptions converts the Config to a slice of Option functions.
// Only includes persistent fields appropriate for config.yaml.
// Excludes runtime-only fields (HomeDir, InputPaths).
// Empty strings and non-positive numbers are skipped, booleans are always
// included.
// Used for round-tripping config.yaml ↔ Config conversions.
func (c *Config) ToOptions() []Option {
	var res []Option
	var s string
	var i int

	s = c.Output.Dir
	if s != "" {
		res = append(res, OptOutputDir(s))
	}
	res = append(res,
		OptOutputProgressBar(c.Output.ProgressBar),
		OptOutputVersionsLog(c.Output.VersionsLog),
		OptCollapseEnabled(c.Collapse.Enabled),
	)
	s = c.Collapse.DOIPrefix
	if s != "" {
		res = append(res, OptCollapseDOIPrefix(s))
	}
	s = c.Collapse.FamilyKeyword
	if s != "" {
		res = append(res, OptCollapseFamilyKeyword(s))
	}

	s = c.ROR.DumpPath
	if s != "" {
		res = append(res, OptRORDumpPath(s))
	}
	s = c.ROR.CountryCode
	if s != "" {
		res = append(res, OptRORCountryCode(s))
	}

	res = append(res,
		OptMetricsEnabled(c.Metrics.Enabled),
		OptSQLiteEnabled(c.SQLite.Enabled),
		OptDatabaseEnabled(c.Database.Enabled),
	)

	s = c.Database.Host
	if s != "" {
		res = append(res, OptDatabaseHost(s))
	}
	i = c.Database.Port
	if i > 0 {
		res = append(res, OptDatabasePort(i))
	}
	s = c.Database.User
	if s != "" {
		res = append(res, OptDatabaseUser(s))
	}
	s = c.Database.Password
	if s != "" {
		res = append(res, OptDatabasePassword(s))
	}
	s = c.Database.Database
	if s != "" {
		res = append(res, OptDatabaseDatabase(s))
	}
	s = c.Database.SSLMode
	if s != "" {
		res = append(res, OptDatabaseSSLMode(s))
	}
	i = c.Database.BatchSize
	if i > 0 {
		res = append(res, OptDatabaseBatchSize(i))
	}

	res = append(res, OptS3Enabled(c.S3.Enabled))
	s = c.S3.Endpoint
	if s != "" {
		res = append(res, OptS3Endpoint(s))
	}
	s = c.S3.Region
	if s != "" {
		res = append(res, OptS3Region(s))
	}
	s = c.S3.Bucket
	if s != "" {
		res = append(res, OptS3Bucket(s))
	}
	s = c.S3.Prefix
	if s != "" {
		res = append(res, OptS3Prefix(s))
	}
	s = c.S3.AccessKey
	if s != "" {
		res = append(res, OptS3AccessKey(s))
	}
	s = c.S3.SecretKey
	if s != "" {
		res = append(res, OptS3SecretKey(s))
	}

	s = c.Log.Format
	if s != "" {
		res = append(res, OptLogFormat(s))
	}
	s = c.Log.Level
	if s != "" {
		res = append(res, OptLogLevel(s))
	}
	s = c.Log.Destination
	if s != "" {
		res = append(res, OptLogDestination(s))
	}

	i = c.JobsNumber
	if i > 0 {
		res = append(res, OptJobsNumber(i))
	}
	return res
}

func isValidString(name, s string) bool {
	res := s != ""
	if !res {
		gn.Warn("<em>%s</em> cannot be empty, ignoring", name)
	}
	return res
}

func isValidInt(name string, i int) bool {
	res := i > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive number, ignoring %d", name, i)
	}
	return res
}

func isValidEnum(name, val string) bool {
	s := struct{}{}
	data := map[string]map[string]struct{}{
		"Database.SSLMode": {"disable": s, "require": s,
			"verify-ca": s, "verify-full": s},
		"Log.Level":       {"debug": s, "info": s, "warn": s, "error": s},
		"Log.Format":      {"json": s, "text": s, "tint": s},
		"Log.Destination": {"file": s, "stderr": s, "stdout": s},
	}
	vals := slices.Sorted(maps.Keys(data[name]))
	var lines []string
	for _, v := range vals {
		line := fmt.Sprintf("  * %s", v)
		lines = append(lines, line)
	}
	if _, ok := data[name][val]; ok {
		return true
	}
	gn.Warn(
		"<em>%s</em> does not support '%s' as a value. "+
			"Valid values are: \n%s\nIgnoring...",
		name, val, strings.Join(lines, "\n"),
	)
	return false
}

// Validate checks cross-field constraints that single options cannot
// check. It returns a list of problems, empty when the config is usable.
func (c *Config) Validate() []string {
	var res []string
	if c.S3.Enabled && c.S3.Bucket == "" {
		res = append(res, "s3.bucket is required when s3 is enabled")
	}
	if (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
		res = append(res, "s3.access_key and s3.secret_key must be set together")
	}
	return res
}
