package config

import (
	"strings"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptInputPaths sets harvested JSONL files to read.
// Runtime-only field - not in ToOptions().
func OptInputPaths(ss []string) Option {
	var paths []string
	for _, s := range ss {
		s = strings.TrimSpace(s)
		if s != "" {
			paths = append(paths, s)
		}
	}
	return func(c *Config) {
		if len(paths) == 0 {
			return
		}
		c.InputPaths = paths
	}
}

// OptOutputDir sets the directory for artifacts.
func OptOutputDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Output Dir", s) {
			c.Output.Dir = s
		}
	}
}

// OptOutputProgressBar turns the input progress bar on or off.
func OptOutputProgressBar(b bool) Option {
	return func(c *Config) {
		c.Output.ProgressBar = b
	}
}

// OptOutputVersionsLog turns versions_log.tsv on or off.
func OptOutputVersionsLog(b bool) Option {
	return func(c *Config) {
		c.Output.VersionsLog = b
	}
}

// OptCollapseEnabled turns collapsing of version records on or off.
func OptCollapseEnabled(b bool) Option {
	return func(c *Config) {
		c.Collapse.Enabled = b
	}
}

// OptCollapseDOIPrefix sets the DOI prefix of version families.
// The prefix is lower-cased to match normalized DOIs.
func OptCollapseDOIPrefix(s string) Option {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(c *Config) {
		if isValidString("Collapse DOI Prefix", s) {
			c.Collapse.DOIPrefix = s
		}
	}
}

// OptCollapseFamilyKeyword sets the keyword matched against DataCite client
// id and publisher.
func OptCollapseFamilyKeyword(s string) Option {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(c *Config) {
		if isValidString("Collapse Family Keyword", s) {
			c.Collapse.FamilyKeyword = s
		}
	}
}

// OptRORDumpPath sets the path to a ROR JSON dump.
func OptRORDumpPath(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("ROR Dump Path", s) {
			c.ROR.DumpPath = s
		}
	}
}

// OptRORCountryCode limits ROR names to one ISO country code.
func OptRORCountryCode(s string) Option {
	s = strings.ToUpper(strings.TrimSpace(s))
	return func(c *Config) {
		if isValidString("ROR Country Code", s) {
			c.ROR.CountryCode = s
		}
	}
}

// OptMetricsEnabled turns metrics.prom output on or off.
func OptMetricsEnabled(b bool) Option {
	return func(c *Config) {
		c.Metrics.Enabled = b
	}
}

// OptSQLiteEnabled turns datasets.sqlite output on or off.
func OptSQLiteEnabled(b bool) Option {
	return func(c *Config) {
		c.SQLite.Enabled = b
	}
}

// OptDatabaseEnabled turns PostgreSQL export on or off.
func OptDatabaseEnabled(b bool) Option {
	return func(c *Config) {
		c.Database.Enabled = b
	}
}

// OptDatabaseHost sets the PostgreSQL server hostname or IP address.
func OptDatabaseHost(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Host", s) {
			c.Database.Host = s
		}
	}
}

// OptDatabasePort sets the PostgreSQL server port number.
func OptDatabasePort(i int) Option {
	return func(c *Config) {
		if isValidInt("Database Port", i) {
			c.Database.Port = i
		}
	}
}

// OptDatabaseUser sets the PostgreSQL database username.
func OptDatabaseUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database User", s) {
			c.Database.User = s
		}
	}
}

// OptDatabasePassword sets the PostgreSQL database password.
func OptDatabasePassword(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Password", s) {
			c.Database.Password = s
		}
	}
}

// OptDatabaseDatabase sets the PostgreSQL database name to connect to.
func OptDatabaseDatabase(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Name", s) {
			c.Database.Database = s
		}
	}
}

// OptDatabaseSSLMode sets the SSL connection mode.
// Valid values: "disable", "require", "verify-ca", "verify-full".
func OptDatabaseSSLMode(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Database.SSLMode", s) {
			c.Database.SSLMode = s
		}
	}
}

// OptDatabaseBatchSize sets the number of rows per insert batch.
func OptDatabaseBatchSize(i int) Option {
	return func(c *Config) {
		if isValidInt("Batch Size", i) {
			c.Database.BatchSize = i
		}
	}
}

// OptS3Enabled turns publishing to object storage on or off.
func OptS3Enabled(b bool) Option {
	return func(c *Config) {
		c.S3.Enabled = b
	}
}

// OptS3Endpoint sets a custom S3-compatible endpoint URL.
func OptS3Endpoint(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("S3 Endpoint", s) {
			c.S3.Endpoint = s
		}
	}
}

// OptS3Region sets the bucket region.
func OptS3Region(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("S3 Region", s) {
			c.S3.Region = s
		}
	}
}

// OptS3Bucket sets the bucket name.
func OptS3Bucket(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("S3 Bucket", s) {
			c.S3.Bucket = s
		}
	}
}

// OptS3Prefix sets the key prefix. Leading and trailing slashes are removed.
func OptS3Prefix(s string) Option {
	s = strings.Trim(strings.TrimSpace(s), "/")
	return func(c *Config) {
		if isValidString("S3 Prefix", s) {
			c.S3.Prefix = s
		}
	}
}

// OptS3AccessKey sets the static access key.
func OptS3AccessKey(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("S3 Access Key", s) {
			c.S3.AccessKey = s
		}
	}
}

// OptS3SecretKey sets the static secret key.
func OptS3SecretKey(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("S3 Secret Key", s) {
			c.S3.SecretKey = s
		}
	}
}

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text", "tint".
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs are written.
// Valid values: "file", "stderr", "stdout".
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptJobsNumber sets the number of concurrent artifact writers.
// Default is runtime.NumCPU().
func OptJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidInt("Jobs Number", i) {
			c.JobsNumber = i
		}
	}
}

// OptHomeDir sets the home directory for config, cache, and log locations.
// Set once at startup from os.UserHomeDir().
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}
