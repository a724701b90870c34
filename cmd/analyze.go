package cmd

import (
	"errors"

	"github.com/dustin/go-humanize"
	"github.com/gnames/dsrecon/internal/iopipeline"
	"github.com/gnames/dsrecon/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getAnalyzeCmd returns the analyze command.
func getAnalyzeCmd() *cobra.Command {
	var dedup string

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute statistics over a dedup file",
		Long: `Compute statistics over a dedup or collapsed JSONL file.

Writes institutions.tsv, timeline.tsv, orcid_coverage.json,
orcid_by_institution.tsv, license_dataset_summary.json,
licenses_datacite.tsv, funders and repositories tables and
datasets_flat.csv to the output directory. Enabled exports run
afterwards.

Example:
  dsrecon analyze -d out/datasets_collapsed.jsonl -o out \
    --ror-dump ror.json --ror-country CZ`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runAnalyze(cmd, dedup)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	analyzeCmd.Flags().StringVarP(&dedup, "dedup", "d", "",
		"dedup JSONL file")
	addFlags(analyzeCmd, outputFlag, rorFlags, exportFlags, jobsFlags)
	return analyzeCmd
}

func runAnalyze(cmd *cobra.Command, dedup string) error {
	if dedup == "" {
		return &gn.Error{
			Code: errcode.ConfigNoInputError,
			Msg:  "Use <em>--dedup</em> to give a dedup JSONL file",
			Err:  errors.New("no dedup file"),
		}
	}
	if err := applyFlags(cmd); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	o, err := iopipeline.New(cfg).Analyze(ctx, dedup)
	if err != nil {
		return err
	}
	gn.Info("Analyzed <em>%s</em> datasets, <em>%d</em> institutions",
		humanize.Comma(int64(len(o.Datasets))), o.InstitutionCount())
	return nil
}
