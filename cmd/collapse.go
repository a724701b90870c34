package cmd

import (
	"errors"

	"github.com/gnames/dsrecon/internal/iopipeline"
	"github.com/gnames/dsrecon/pkg/config"
	"github.com/gnames/dsrecon/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getCollapseCmd returns the collapse command.
func getCollapseCmd() *cobra.Command {
	var input, output, logPath string

	collapseCmd := &cobra.Command{
		Use:   "collapse",
		Short: "Drop version records from a dedup file",
		Long: `Detect version families in a dedup file and drop version records.

A record is dropped only when its concept lists it with HasVersion and
the version points back with IsVersionOf. Every decision can be written
to a TSV log.

Example:
  dsrecon collapse -i out/datasets_dedup.jsonl -o collapsed.jsonl \
    --log versions_log.tsv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runCollapse(cmd, input, output, logPath)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	collapseCmd.Flags().StringVarP(&input, "input", "i", "",
		"dedup JSONL file")
	collapseCmd.Flags().StringVarP(&output, "output", "o", "",
		"output JSONL file")
	collapseCmd.Flags().StringVarP(&logPath, "log", "l", "",
		"TSV file for collapse decisions")
	addFlags(collapseCmd, collapseFlags)
	collapseCmd.Flags().BoolP("quiet", "q", false, "do not show progress bar")
	return collapseCmd
}

func runCollapse(cmd *cobra.Command, input, output, logPath string) error {
	if input == "" || output == "" {
		return &gn.Error{
			Code: errcode.ConfigNoInputError,
			Msg:  "Both <em>--input</em> and <em>--output</em> are required",
			Err:  errors.New("collapse needs input and output"),
		}
	}

	// input and output are files here, so only collapse settings are
	// taken from flags
	fs := cmd.Flags()
	for name, opt := range map[string]func(string) config.Option{
		"doi-prefix":     config.OptCollapseDOIPrefix,
		"family-keyword": config.OptCollapseFamilyKeyword,
	} {
		if fs.Changed(name) {
			s, _ := fs.GetString(name)
			cfg.Update([]config.Option{opt(s)})
		}
	}
	if fs.Changed("quiet") {
		b, _ := fs.GetBool("quiet")
		cfg.Update([]config.Option{config.OptOutputProgressBar(!b)})
	}

	ctx, stop := signalContext()
	defer stop()

	res, err := iopipeline.New(cfg).Collapse(ctx, input, output, logPath)
	if err != nil {
		return err
	}
	s := res.Summary()
	gn.Info("Kept <em>%d</em> of <em>%d</em> datasets in <em>%s</em>",
		s.Output, s.Input, output)
	return nil
}
