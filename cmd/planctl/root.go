package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/costplan/backend/internal/logging"
	"github.com/costplan/backend/internal/model"
	"github.com/costplan/backend/internal/workbook"
)

// now is replaced in tests.
var now = time.Now

func newRootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           "planctl",
		Short:         "Inspect and generate cost plan workbooks",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), logLevel, "text"))
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "WARN", "Log level (DEBUG, INFO, WARN, ERROR)")
	cmd.AddCommand(newSampleCmd(), newReportCmd(), newValidateCmd())
	return cmd
}

// readPlan decodes the workbook at path.
func readPlan(path string) (*model.Plan, workbook.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, workbook.Report{}, err
	}
	defer f.Close()

	plan, rep, err := workbook.Decode(f)
	if err != nil {
		return nil, rep, fmt.Errorf("read %s: %w", path, err)
	}
	return plan, rep, nil
}
