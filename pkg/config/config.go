// Package config provides configuration management for dsrecon.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Output: dir, progress_bar, versions_log
//   - Collapse: enabled, doi_prefix, family_keyword
//   - ROR: dump_path, country_code
//   - Metrics, SQLite: enabled
//   - Database: enabled, host, port, user, password, database, ssl_mode,
//     batch_size
//   - S3: enabled, endpoint, region, bucket, prefix, access_key, secret_key
//   - Log: level, format, destination
//   - General: jobs_number
//
// Runtime-only fields (CLI flags only):
//   - InputPaths (per-command)
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use DSRECON_ prefix with underscores for nesting:
//
//	DSRECON_OUTPUT_DIR=out
//	DSRECON_COLLAPSE_ENABLED=true
//	DSRECON_DATABASE_HOST=localhost
//	DSRECON_LOG_LEVEL=info
//
// Variables can also be placed into a .env file in the working directory.
package config

import (
	"runtime"
)

// Config represents the complete dsrecon configuration.
type Config struct {
	// InputPaths are harvested JSONL files (optionally gzipped).
	InputPaths []string `mapstructure:"-" yaml:"-"`

	// Output controls where and how artifacts are written.
	Output OutputConfig `mapstructure:"output" yaml:"output"`

	// Collapse contains version-family settings.
	Collapse CollapseConfig `mapstructure:"collapse" yaml:"collapse"`

	// ROR points to a ROR data dump used for institution names.
	ROR RORConfig `mapstructure:"ror" yaml:"ror"`

	// Metrics enables the Prometheus textfile with run counters.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// SQLite enables the datasets.sqlite artifact.
	SQLite SQLiteConfig `mapstructure:"sqlite" yaml:"sqlite"`

	// Database contains PostgreSQL export settings.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// S3 contains settings for publishing artifacts to object storage.
	S3 S3Config `mapstructure:"s3" yaml:"s3"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber limits how many artifacts are written concurrently.
	// Default value is set according to the number of available threads.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string `mapstructure:"-" yaml:"-"`
}

// OutputConfig controls artifacts.
type OutputConfig struct {
	// Dir is the directory for all artifacts.
	Dir string `mapstructure:"dir" yaml:"dir"`

	// ProgressBar shows a progress bar on STDERR while reading input.
	ProgressBar bool `mapstructure:"progress_bar" yaml:"progress_bar"`

	// VersionsLog writes versions_log.tsv when collapsing.
	VersionsLog bool `mapstructure:"versions_log" yaml:"versions_log"`
}

// CollapseConfig contains version-family detection settings.
type CollapseConfig struct {
	// Enabled turns on collapsing of version records during 'run'.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// DOIPrefix selects DOIs belonging to a version family.
	DOIPrefix string `mapstructure:"doi_prefix" yaml:"doi_prefix"`

	// FamilyKeyword is matched against DataCite client id and publisher.
	FamilyKeyword string `mapstructure:"family_keyword" yaml:"family_keyword"`
}

// RORConfig points to the ROR data dump.
type RORConfig struct {
	// DumpPath is a ROR JSON dump. Empty means institution names are
	// not resolved.
	DumpPath string `mapstructure:"dump_path" yaml:"dump_path"`

	// CountryCode limits loaded names to one country, for example "CZ".
	CountryCode string `mapstructure:"country_code" yaml:"country_code"`
}

// MetricsConfig controls metrics.prom output.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// SQLiteConfig controls datasets.sqlite output.
type SQLiteConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Enabled turns on export of results to PostgreSQL.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// BatchSize is the number of rows sent per insert statement.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`
}

// S3Config contains object storage settings.
type S3Config struct {
	// Enabled turns on upload of the output directory.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is a custom S3-compatible endpoint. Empty means AWS.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	Region string `mapstructure:"region" yaml:"region"`
	Bucket string `mapstructure:"bucket" yaml:"bucket"`

	// Prefix is prepended to object keys.
	Prefix string `mapstructure:"prefix" yaml:"prefix"`

	// AccessKey and SecretKey are static credentials. When empty the
	// default AWS credential chain is used.
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json', 'text' or 'tint' (user-facing and colored).
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Output: OutputConfig{
			Dir:         "output",
			ProgressBar: true,
			VersionsLog: true,
		},
		Collapse: CollapseConfig{
			DOIPrefix:     "10.5281/zenodo",
			FamilyKeyword: "zenodo",
		},
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      5432,
			User:      "postgres",
			Password:  "postgres",
			Database:  "dsrecon",
			SSLMode:   "disable",
			BatchSize: 5_000,
		},
		S3: S3Config{
			Region: "us-east-1",
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now file is rewritten every time the log starts
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(), // Default to number of CPU threads
	}

	return res
}
