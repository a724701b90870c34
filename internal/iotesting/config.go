// Package iotesting provides shared helpers for integration tests.
package iotesting

import (
	"os"
	"strconv"
	"testing"

	"github.com/gnames/dsrecon/pkg/config"
)

// TestDatabaseName is the database used by all integration tests, so
// they never touch a production database.
const TestDatabaseName = "dsrecon_test"

// EnvEnable must be set to run tests against PostgreSQL.
const EnvEnable = "DSRECON_TEST_PG"

// DatabaseConfig returns connection settings for integration tests. The
// test is skipped in short mode or when EnvEnable is not set. Settings
// come from DSRECON_DATABASE_* variables on top of defaults.
func DatabaseConfig(t *testing.T) *config.DatabaseConfig {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if os.Getenv(EnvEnable) == "" {
		t.Skipf("Skipping integration test, %s is not set", EnvEnable)
	}

	cfg := config.New()
	var opts []config.Option
	if s := os.Getenv("DSRECON_DATABASE_HOST"); s != "" {
		opts = append(opts, config.OptDatabaseHost(s))
	}
	if s := os.Getenv("DSRECON_DATABASE_PORT"); s != "" {
		if port, err := strconv.Atoi(s); err == nil {
			opts = append(opts, config.OptDatabasePort(port))
		}
	}
	if s := os.Getenv("DSRECON_DATABASE_USER"); s != "" {
		opts = append(opts, config.OptDatabaseUser(s))
	}
	if s := os.Getenv("DSRECON_DATABASE_PASSWORD"); s != "" {
		opts = append(opts, config.OptDatabasePassword(s))
	}
	opts = append(opts, config.OptDatabaseDatabase(TestDatabaseName))
	cfg.Update(opts)
	return &cfg.Database
}
