package cmd

import (
	"errors"
	"fmt"

	"github.com/gnames/dsrecon/internal/ioharvest"
	"github.com/gnames/dsrecon/pkg/errcode"
	"github.com/gnames/dsrecon/pkg/normalize"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getCheckCmd returns the check command.
func getCheckCmd() *cobra.Command {
	var (
		ror      string
		inputs   []string
		examples int
	)

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Count dedup records that carry a ROR identifier",
		Long: `Count datasets of dedup files that carry a ROR identifier, either
as the queried institution or in an affiliation of an author.

Example:
  dsrecon check --ror 024d6js02 -i out/datasets_dedup.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runCheck(cmd, ror, inputs, examples)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	checkCmd.Flags().StringVarP(&ror, "ror", "r", "",
		"ROR identifier, with or without https://ror.org/")
	checkCmd.Flags().StringSliceVarP(&inputs, "input", "i", nil,
		"dedup JSONL file, can be repeated")
	checkCmd.Flags().IntVarP(&examples, "examples", "e", 5,
		"number of example DOIs to show")
	return checkCmd
}

func runCheck(
	cmd *cobra.Command,
	ror string,
	inputs []string,
	examples int,
) error {
	id, ok := normalize.ROR(ror)
	if !ok {
		return invalidConfigError([]string{
			fmt.Sprintf("cannot parse ROR identifier %q", ror),
		})
	}
	if len(inputs) == 0 {
		return &gn.Error{
			Code: errcode.ConfigNoInputError,
			Msg:  "Use <em>--input</em> to give dedup JSONL files",
			Err:  errors.New("no input files"),
		}
	}

	ctx, stop := signalContext()
	defer stop()

	out := cmd.OutOrStdout()
	for _, path := range inputs {
		res, err := ioharvest.CheckROR(ctx, path, id, examples)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %d of %d records carry %s\n",
			res.Path, res.Hits, res.Total, id)
		for _, doi := range res.Examples {
			fmt.Fprintf(out, "  %s\n", doi)
		}
	}
	return nil
}
