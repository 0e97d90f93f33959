package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <file.xlsx>",
		Short: "Check that a workbook can be imported",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, rep, err := readPlan(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "records: %d\nchanges: %d\nimplementation entries: %d\n",
				rep.Records, rep.Changes, rep.Implementation)
			if orphans := plan.Orphans(); len(orphans) > 0 {
				fmt.Fprintf(out, "changes without a record: %d\n", len(orphans))
			}
			for _, w := range rep.Warnings {
				fmt.Fprintln(out, "warning:", w)
			}
			if strict && len(rep.Warnings) > 0 {
				return fmt.Errorf("%d warnings", len(rep.Warnings))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when any row produced a warning")
	return cmd
}
