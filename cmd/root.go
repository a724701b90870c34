/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/gnames/dsrecon/internal/iofs"
	"github.com/gnames/dsrecon/internal/iologger"
	app "github.com/gnames/dsrecon/pkg"
	"github.com/gnames/dsrecon/pkg/config"
	"github.com/gnames/dsrecon/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var cfg *config.Config

// envKeys are configuration keys that can be set with DSRECON_*
// environment variables. They match the fields of config.ToOptions().
var envKeys = []string{
	"output.dir",
	"output.progress_bar",
	"output.versions_log",
	"collapse.enabled",
	"collapse.doi_prefix",
	"collapse.family_keyword",
	"ror.dump_path",
	"ror.country_code",
	"metrics.enabled",
	"sqlite.enabled",
	"database.enabled",
	"database.host",
	"database.port",
	"database.user",
	"database.password",
	"database.database",
	"database.ssl_mode",
	"database.batch_size",
	"s3.enabled",
	"s3.endpoint",
	"s3.region",
	"s3.bucket",
	"s3.prefix",
	"s3.access_key",
	"s3.secret_key",
	"log.level",
	"log.format",
	"log.destination",
	"jobs_number",
}

// getRootCmd returns the root command with all subcommands attached.
func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Version: fmt.Sprintf("version: %s\nbuild:   %s", app.Version, app.Build),
		Use:     "dsrecon",
		Short:   "Reconcile DataCite and Crossref dataset metadata",
		Long: `dsrecon merges dataset metadata harvested from DataCite and Crossref
into one collection keyed by DOI and computes statistics about
institutions, ORCID coverage, licenses, funders and repositories.

Commands:
  - run: merge, collapse versions, analyze and export in one pass
  - dedup: merge harvested records only
  - collapse: drop version records from a dedup file
  - analyze: compute statistics over a dedup file
  - check: count records that carry a ROR identifier
  - config: show the effective configuration

Configuration precedence (highest to lowest):
  1. CLI flags
  2. Environment variables (DSRECON_*, also read from .env)
  3. Config file (~/.config/dsrecon/config.yaml)
  4. Built-in defaults

Nested fields use underscores (database.host is DSRECON_DATABASE_HOST).`,
		PersistentPreRunE: bootstrap,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Remove the automatic "dsrecon version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.Flags().BoolP("version", "V", false, "version for dsrecon")

	rootCmd.AddCommand(
		getRunCmd(),
		getDedupCmd(),
		getCollapseCmd(),
		getAnalyzeCmd(),
		getCheckCmd(),
		getConfigCmd(),
	)
	return rootCmd
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func bootstrap(cmd *cobra.Command, args []string) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Logging with hardcoded defaults until the config is read.
	defaultLog := config.New().Log
	if err = iologger.Init(config.LogDir(homeDir), defaultLog, false); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		gn.Warn("Cannot read <em>.env</em> file: %s", err)
	}

	var cfgViper *config.Config
	if cfgViper, err = initConfig(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	cfg.Update(cfgViper.ToOptions())
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	if err = iologger.Init(config.LogDir(homeDir), cfg.Log, true); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded",
		"config_file", config.ConfigFilePath(homeDir))
	return nil
}

// initConfig reads config.yaml over built-in defaults and applies
// DSRECON_* environment variables.
func initConfig(home string) (*config.Config, error) {
	cfgPath := config.ConfigFilePath(home)
	v := viper.New()
	v.SetConfigType("yaml")

	// Defaults make every key known to viper, so a key missing from
	// config.yaml keeps its default instead of a zero value.
	defaults, err := yaml.Marshal(config.New())
	if err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}
	if err = v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	initEnvVars(v)

	v.SetConfigFile(cfgPath)
	if err = v.MergeInConfig(); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}
	return &res, nil
}

func initEnvVars(v *viper.Viper) {
	v.SetEnvPrefix("DSRECON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}
	v.AutomaticEnv()
}

// applyFlags updates the config with flags given on the command line and
// checks the result.
func applyFlags(cmd *cobra.Command) error {
	cfg.Update(flagOptions(cmd))
	if problems := cfg.Validate(); len(problems) > 0 {
		return invalidConfigError(problems)
	}
	return nil
}

func invalidConfigError(problems []string) error {
	return &gn.Error{
		Code: errcode.ConfigInvalidError,
		Msg:  "Invalid configuration:\n  %s",
		Vars: []any{strings.Join(problems, "\n  ")},
		Err:  fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; ")),
	}
}
