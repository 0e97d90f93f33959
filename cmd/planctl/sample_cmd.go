package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/costplan/backend/internal/model"
	"github.com/costplan/backend/internal/workbook"
)

func newSampleCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write the demonstration plan to a workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			at := now().UTC()
			if output == "" {
				output = workbook.FileName(at)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := workbook.Write(model.SamplePlan(at), f); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default cost_analysis_<timestamp>.xlsx)")
	return cmd
}
