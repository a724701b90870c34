package cmd

import (
	"github.com/gnames/dsrecon/pkg/config"
	"github.com/spf13/cobra"
)

type funcFlag func(cmd *cobra.Command)

func addFlags(cmd *cobra.Command, flags ...funcFlag) {
	for _, f := range flags {
		f(cmd)
	}
}

func inputFlag(cmd *cobra.Command) {
	cmd.Flags().StringSliceP(
		"input", "i", nil,
		"harvested JSONL file (.gz allowed), can be repeated",
	)
}

func outputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "output directory for artifacts")
}

func rorFlags(cmd *cobra.Command) {
	cmd.Flags().String("ror-dump", "", "ROR JSON dump for institution names")
	cmd.Flags().String("ror-country", "", "load ROR names of one country only")
}

func collapseFlags(cmd *cobra.Command) {
	cmd.Flags().String("doi-prefix", "", "DOI prefix of version families")
	cmd.Flags().String("family-keyword", "", "client id or publisher keyword of version families")
}

func exportFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("metrics", false, "write metrics.prom to the output directory")
	cmd.Flags().Bool("sqlite", false, "write datasets.sqlite to the output directory")
	cmd.Flags().Bool("database", false, "export results to PostgreSQL")
	cmd.Flags().Bool("s3", false, "upload the output directory to S3")
}

func jobsFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("jobs", "j", 0, "number of artifacts written concurrently")
	cmd.Flags().BoolP("quiet", "q", false, "do not show progress bar")
}

// flagOptions converts flags set on the command line to config options.
// Flags that were not set leave the config untouched.
func flagOptions(cmd *cobra.Command) []config.Option {
	var res []config.Option
	fs := cmd.Flags()

	str := func(name string, opt func(string) config.Option) {
		if fs.Changed(name) {
			s, _ := fs.GetString(name)
			res = append(res, opt(s))
		}
	}
	boolean := func(name string, opt func(bool) config.Option) {
		if fs.Changed(name) {
			b, _ := fs.GetBool(name)
			res = append(res, opt(b))
		}
	}

	if fs.Changed("input") {
		ss, _ := fs.GetStringSlice("input")
		res = append(res, config.OptInputPaths(ss))
	}
	str("output", config.OptOutputDir)
	str("ror-dump", config.OptRORDumpPath)
	str("ror-country", config.OptRORCountryCode)
	str("doi-prefix", config.OptCollapseDOIPrefix)
	str("family-keyword", config.OptCollapseFamilyKeyword)
	boolean("collapse", config.OptCollapseEnabled)
	boolean("metrics", config.OptMetricsEnabled)
	boolean("sqlite", config.OptSQLiteEnabled)
	boolean("database", config.OptDatabaseEnabled)
	boolean("s3", config.OptS3Enabled)

	if fs.Changed("quiet") {
		b, _ := fs.GetBool("quiet")
		res = append(res, config.OptOutputProgressBar(!b))
	}
	if fs.Changed("jobs") {
		i, _ := fs.GetInt("jobs")
		res = append(res, config.OptJobsNumber(i))
	}
	return res
}
