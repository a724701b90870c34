package cmd

import (
	"github.com/dustin/go-humanize"
	"github.com/gnames/dsrecon/internal/iopipeline"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getDedupCmd returns the dedup command.
func getDedupCmd() *cobra.Command {
	dedupCmd := &cobra.Command{
		Use:   "dedup",
		Short: "Merge harvested records into datasets keyed by DOI",
		Long: `Merge harvested DataCite and Crossref records by normalized DOI.

Writes datasets_dedup.jsonl, summary_stats.json and institutions.tsv
to the output directory. The dedup file is the input of 'collapse'
and 'analyze'.

Example:
  dsrecon dedup -i datacite.jsonl -i crossref.jsonl -o out`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runDedup(cmd)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
	addFlags(dedupCmd, inputFlag, outputFlag, rorFlags, jobsFlags)
	return dedupCmd
}

func runDedup(cmd *cobra.Command) error {
	if err := applyFlags(cmd); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	o, err := iopipeline.New(cfg).Dedup(ctx)
	if err != nil {
		return err
	}
	gn.Info("<em>%s</em> unique DOIs, <em>%s</em> in both sources",
		humanize.Comma(int64(o.Merge.Counters.UniqueDOIs)),
		humanize.Comma(int64(o.Merge.Counters.Overlap)),
	)
	return nil
}
