package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sheetsync/internal/gsheets"
	"sheetsync/internal/outfmt"
	"sheetsync/internal/report"
	"sheetsync/internal/ui"
)

func newReportCmd(flags *rootFlags) *cobra.Command {
	var days []string
	var projects []string
	var overtimeOnly bool
	var output string

	cmd := &cobra.Command{
		Use:   "report <sheet>",
		Short: "Aggregate a month tab into per-day, per-project hour totals",
		Long: "Sum the spent hours of a month tab per day and project. Rows without hours\n" +
			"count as full days: they receive the configured working hours minus everything\n" +
			"else booked on that day. With --output the table is written to a .csv or .xlsx file.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u := ui.FromContext(ctx)
			tab := args[0]

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			sheetsSvc, err := newSheetsService(ctx, cfg)
			if err != nil {
				return err
			}
			sheet := gsheets.New(sheetsSvc, cfg.DocumentID)

			header, err := sheet.ReadHeader(ctx, tab)
			if err != nil {
				return err
			}
			rows, err := sheet.ReadRows(ctx, tab)
			if err != nil {
				return err
			}

			rep, err := report.Build(header, rows, report.Options{
				WorkingHours: cfg.WorkingHours,
				OvertimeFrom: cfg.OvertimeFrom,
				Location:     loc,
			}, report.Filter{
				Days:         days,
				Projects:     projects,
				OvertimeOnly: overtimeOnly,
			})
			if err != nil {
				return err
			}
			for _, line := range rep.WarnLines {
				u.Warnf("line %d needs review", line)
			}

			if output != "" {
				if err := report.WriteFile(output, rep); err != nil {
					return err
				}
				u.Successf("Report written to %s", output)
				return nil
			}

			if outfmt.IsJSON(ctx) {
				return outfmt.WriteJSON(os.Stdout, rep)
			}

			tw := tabwriter.NewWriter(u.Out(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tPROJECT\tHOURS")
			for _, row := range rep.Rows {
				fmt.Fprintf(tw, "%s\t%s\t%.2f\n", row.Date, row.Project, row.Hours)
			}
			fmt.Fprintf(tw, "\tTotal\t%.2f\n", rep.Total)
			return tw.Flush()
		},
	}

	cmd.Flags().StringArrayVar(&days, "day", nil, "Only this day, YYYY-MM-DD (repeatable)")
	cmd.Flags().StringArrayVar(&projects, "project", nil, "Only this project (repeatable)")
	cmd.Flags().BoolVar(&overtimeOnly, "overtime", false, "Only days with overtime hours")
	cmd.Flags().StringVar(&output, "output", "", "Write the report to a .csv or .xlsx file instead of stdout")
	return cmd
}
