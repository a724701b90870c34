package config_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gnames/dsrecon/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	tempHome := t.TempDir()

	tests := []struct {
		msg string
		fn  func(string) string
		res string
	}{
		{
			msg: "config dir",
			fn:  config.ConfigDir,
			res: filepath.Join(tempHome, ".config", "dsrecon"),
		},
		{
			msg: "cache dir",
			fn:  config.CacheDir,
			res: filepath.Join(tempHome, ".cache", "dsrecon"),
		},
		{
			msg: "log dir",
			fn:  config.LogDir,
			res: filepath.Join(tempHome, ".local", "share", "dsrecon", "logs"),
		},
		{
			msg: "config file",
			fn:  config.ConfigFilePath,
			res: filepath.Join(tempHome, ".config", "dsrecon", "config.yaml"),
		},
	}

	for _, v := range tests {
		res := v.fn(tempHome)
		assert.Equal(t, v.res, res, v.msg)
	}
}

func TestNew(t *testing.T) {
	cfg := config.New()

	t.Run("creates valid default config", func(t *testing.T) {
		require.NotNil(t, cfg)

		assert.Equal(t, "output", cfg.Output.Dir)
		assert.True(t, cfg.Output.ProgressBar)
		assert.True(t, cfg.Output.VersionsLog)

		assert.False(t, cfg.Collapse.Enabled)
		assert.Equal(t, "10.5281/zenodo", cfg.Collapse.DOIPrefix)
		assert.Equal(t, "zenodo", cfg.Collapse.FamilyKeyword)

		assert.Empty(t, cfg.ROR.DumpPath)
		assert.False(t, cfg.Metrics.Enabled)
		assert.False(t, cfg.SQLite.Enabled)

		// Database defaults
		assert.False(t, cfg.Database.Enabled)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "postgres", cfg.Database.Password)
		assert.Equal(t, "dsrecon", cfg.Database.Database)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 5_000, cfg.Database.BatchSize)

		assert.False(t, cfg.S3.Enabled)
		assert.Equal(t, "us-east-1", cfg.S3.Region)

		// Log defaults
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "file", cfg.Log.Destination)

		// JobsNumber defaults to CPU count
		assert.Equal(t, runtime.NumCPU(), cfg.JobsNumber)
		assert.Empty(t, cfg.InputPaths)
		assert.Empty(t, cfg.Validate())
	})
}

func TestOptionDatabaseHost(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "sets valid host",
			input:    "db.example.com",
			expected: "db.example.com",
		},
		{
			name:     "trims whitespace",
			input:    "  db.example.com  ",
			expected: "db.example.com",
		},
		{
			name:     "ignores empty string",
			input:    "",
			expected: "localhost", // Should keep default
		},
		{
			name:     "ignores whitespace-only",
			input:    "   ",
			expected: "localhost", // Should keep default
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			opt := config.OptDatabaseHost(tt.input)
			cfg.Update([]config.Option{opt})
			assert.Equal(t, tt.expected, cfg.Database.Host)
		})
	}
}

func TestOptionDatabaseSSLMode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"valid", "require", "require"},
		{"upper case", " VERIFY-FULL ", "verify-full"},
		{"invalid", "maybe", "disable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptDatabaseSSLMode(tt.input)})
			assert.Equal(t, tt.expected, cfg.Database.SSLMode)
		})
	}
}

func TestOptionLog(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptLogLevel("DEBUG"),
		config.OptLogFormat("tint"),
		config.OptLogDestination("stderr"),
	})
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "tint", cfg.Log.Format)
	assert.Equal(t, "stderr", cfg.Log.Destination)

	cfg.Update([]config.Option{
		config.OptLogLevel("verbose"),
		config.OptLogFormat("xml"),
		config.OptLogDestination("stdin"),
	})
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "tint", cfg.Log.Format)
	assert.Equal(t, "stderr", cfg.Log.Destination)
}

func TestOptionInts(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptDatabaseBatchSize(100),
		config.OptJobsNumber(3),
		config.OptDatabasePort(6543),
	})
	assert.Equal(t, 100, cfg.Database.BatchSize)
	assert.Equal(t, 3, cfg.JobsNumber)
	assert.Equal(t, 6543, cfg.Database.Port)

	cfg.Update([]config.Option{
		config.OptDatabaseBatchSize(0),
		config.OptJobsNumber(-1),
	})
	assert.Equal(t, 100, cfg.Database.BatchSize)
	assert.Equal(t, 3, cfg.JobsNumber)
}

func TestOptionCollapse(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptCollapseEnabled(true),
		config.OptCollapseDOIPrefix(" 10.5281/ZENODO "),
		config.OptCollapseFamilyKeyword("Zenodo"),
	})
	assert.True(t, cfg.Collapse.Enabled)
	assert.Equal(t, "10.5281/zenodo", cfg.Collapse.DOIPrefix)
	assert.Equal(t, "zenodo", cfg.Collapse.FamilyKeyword)

	cfg.Update([]config.Option{config.OptCollapseDOIPrefix("")})
	assert.Equal(t, "10.5281/zenodo", cfg.Collapse.DOIPrefix)
}

func TestOptionInputPaths(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{config.OptInputPaths([]string{" a.jsonl", "", "b.jsonl.gz"})})
	assert.Equal(t, []string{"a.jsonl", "b.jsonl.gz"}, cfg.InputPaths)

	cfg.Update([]config.Option{config.OptInputPaths(nil)})
	assert.Equal(t, []string{"a.jsonl", "b.jsonl.gz"}, cfg.InputPaths)
}

func TestOptionRORAndS3(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptRORDumpPath("ror.json"),
		config.OptRORCountryCode("cz"),
		config.OptS3Enabled(true),
		config.OptS3Bucket("datasets"),
		config.OptS3Prefix("/reports/cz/"),
	})
	assert.Equal(t, "ror.json", cfg.ROR.DumpPath)
	assert.Equal(t, "CZ", cfg.ROR.CountryCode)
	assert.Equal(t, "reports/cz", cfg.S3.Prefix)
	assert.Empty(t, cfg.Validate())

	cfg.Update([]config.Option{config.OptS3AccessKey("key")})
	assert.Len(t, cfg.Validate(), 1)
}

func TestValidateS3Bucket(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{config.OptS3Enabled(true)})
	assert.Len(t, cfg.Validate(), 1)
}

func TestToOptionsRoundTrip(t *testing.T) {
	src := config.New()
	src.Update([]config.Option{
		config.OptOutputDir("/tmp/out"),
		config.OptOutputProgressBar(false),
		config.OptCollapseEnabled(true),
		config.OptRORDumpPath("ror.json"),
		config.OptMetricsEnabled(true),
		config.OptSQLiteEnabled(true),
		config.OptDatabaseEnabled(true),
		config.OptDatabaseHost("db"),
		config.OptS3Bucket("bucket"),
		config.OptLogLevel("warn"),
		config.OptJobsNumber(2),
		config.OptInputPaths([]string{"a.jsonl"}),
		config.OptHomeDir("/home/user"),
	})

	dst := config.New()
	dst.Update(src.ToOptions())

	assert.Equal(t, src.Output, dst.Output)
	assert.Equal(t, src.Collapse, dst.Collapse)
	assert.Equal(t, src.ROR, dst.ROR)
	assert.Equal(t, src.Metrics, dst.Metrics)
	assert.Equal(t, src.SQLite, dst.SQLite)
	assert.Equal(t, src.Database, dst.Database)
	assert.Equal(t, src.S3, dst.S3)
	assert.Equal(t, src.Log, dst.Log)
	assert.Equal(t, src.JobsNumber, dst.JobsNumber)

	// runtime-only fields are not carried over
	assert.Empty(t, dst.InputPaths)
	assert.Empty(t, dst.HomeDir)
}
