package main

import (
	"fmt"

	zqe "github.com/brimdata/zjit/errors"
	"github.com/spf13/cobra"
)

func newExplainCommand(opts *rootOptions) *cobra.Command {
	var tree bool
	cmd := &cobra.Command{
		Use:   "explain <demo>",
		Short: "print the plan and generated code for a demo chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := lookupDemo(args[0])
			if err != nil {
				return err
			}
			e, err := opts.engine(cmd, nil)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			x, err := e.Compiler().Explain(d.build(e.Catalog()))
			if zqe.IsUnsupported(err) {
				fmt.Fprintf(out, "interpreted: %s\n", err)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "original:   %s\n", x.Original)
			fmt.Fprintf(out, "simplified: %s\n", x.Simplified)
			fmt.Fprintf(out, "plan:       %s\n", x.Plan)
			if tree {
				fmt.Fprintf(out, "\n%s", x.Tree)
			}
			fmt.Fprintf(out, "\n%s", x.Source)
			return nil
		},
	}
	cmd.Flags().BoolVar(&tree, "tree", false, "also print the plan tree")
	return cmd
}
