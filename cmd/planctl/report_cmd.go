package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/costplan/backend/internal/model"
	"github.com/costplan/backend/internal/projection"
	"github.com/costplan/backend/internal/repository"
	"github.com/costplan/backend/internal/service"
)

const cliWorkspace = "planctl"

func newReportCmd() *cobra.Command {
	var (
		business string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "report <file.xlsx>",
		Short: "Print projected costs and implementation totals of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, rep, err := readPlan(args[0])
			if err != nil {
				return err
			}
			for _, w := range rep.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
			}

			d, err := dashboard(cmd.Context(), plan, business)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(d)
			}
			return printDashboard(cmd.OutOrStdout(), d)
		},
	}

	cmd.Flags().StringVar(&business, "business", "", "Business key (default all businesses)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the dashboard as JSON")
	return cmd
}

// dashboard runs plan through the same service the API uses.
func dashboard(ctx context.Context, plan *model.Plan, business string) (*service.Dashboard, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	repo := repository.NewMemPlanRepository()
	defer repo.Close()
	if err := repo.Replace(ctx, cliWorkspace, plan); err != nil {
		return nil, err
	}
	return service.NewProjectionService(repo).Dashboard(ctx, cliWorkspace, business)
}

func printDashboard(out io.Writer, d *service.Dashboard) error {
	title := "All businesses"
	if d.Business != "" {
		title = d.DisplayName
	}
	fmt.Fprintf(out, "%s\n\n", title)
	fmt.Fprintf(out, "Current annual cost:  %s\n", projection.FormatMoney(d.Summary.Current))
	fmt.Fprintf(out, "Year %d annual cost:   %s\n", model.Horizon, projection.FormatMoney(d.Summary.Future))
	fmt.Fprintf(out, "Annual savings:       %s (%s%%)\n\n", projection.FormatMoney(d.Summary.Savings), d.Summary.SavingsPct.StringFixed(1))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Year\tProjected\tAnnual savings\tCumulative\t")
	for _, p := range d.Timeline {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n", p.Year, projection.FormatMoney(p.Projected),
			projection.FormatMoney(p.Annual), projection.FormatMoney(p.Cumulative))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Record\tYear 0\tYear 5\t5-year savings")
	for _, r := range d.Records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Label, projection.FormatMoney(r.Series[0]),
			projection.FormatMoney(r.Series[len(r.Series)-1]), projection.FormatMoney(r.Savings))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, s := range d.Implementation {
		if len(s.ByType) == 0 {
			continue
		}
		fmt.Fprintf(out, "\nImplementation costs, %s\n", s.Business)
		tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Type\tY1\tY2\tY3\tY4\tY5\tTotal")
		for _, t := range s.Types() {
			v := s.ByType[t]
			fmt.Fprintf(tw, "%s", t)
			for _, x := range v {
				fmt.Fprintf(tw, "\t%s", projection.FormatMoney(x))
			}
			fmt.Fprintf(tw, "\t%s\n", projection.FormatMoney(s.TypeTotal(t)))
		}
		fmt.Fprintf(tw, "Total\t\t\t\t\t\t%s\n", projection.FormatMoney(s.GrandTotal()))
		if err := tw.Flush(); err != nil {
			return err
		}
		for _, w := range s.Warnings {
			fmt.Fprintln(out, "warning:", w)
		}
	}
	return nil
}
