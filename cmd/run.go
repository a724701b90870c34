package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/gnames/dsrecon/internal/iopipeline"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getRunCmd returns the run command.
func getRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Merge, collapse and analyze harvested dataset records",
		Long: `Run the whole reconciliation pipeline.

This command:
  1. Reads harvested JSONL files (DataCite and Crossref records)
  2. Merges records into datasets keyed by normalized DOI
  3. Optionally drops version records of version families (--collapse)
  4. Computes statistics and writes all artifacts to the output directory
  5. Optionally writes metrics.prom and datasets.sqlite, exports to
     PostgreSQL and uploads the output directory to S3

Examples:
  dsrecon run -i datacite.jsonl -i crossref.jsonl.gz -o out
  dsrecon run -i harvest.jsonl --collapse --ror-dump ror.json --sqlite`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runRun(cmd)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	addFlags(runCmd, inputFlag, outputFlag, rorFlags, collapseFlags,
		exportFlags, jobsFlags)
	runCmd.Flags().BoolP("collapse", "c", false,
		"drop version records of version families")
	return runCmd
}

func runRun(cmd *cobra.Command) error {
	if err := applyFlags(cmd); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	o, err := iopipeline.New(cfg).Run(ctx)
	if err != nil {
		return err
	}

	gn.Info("<em>%s</em> datasets, <em>%d</em> institutions, artifacts in <em>%s</em>",
		humanize.Comma(int64(len(o.Datasets))),
		o.InstitutionCount(),
		cfg.Output.Dir,
	)
	return nil
}

// signalContext is cancelled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
