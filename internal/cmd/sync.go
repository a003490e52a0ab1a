package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"sheetsync/internal/engine"
	"sheetsync/internal/gcal"
	"sheetsync/internal/gsheets"
	"sheetsync/internal/outfmt"
	"sheetsync/internal/ui"
)

func newSyncCmd(flags *rootFlags) *cobra.Command {
	var days []string
	var projects []string
	var actions []string

	cmd := &cobra.Command{
		Use:   "sync <sheet>",
		Short: "Create calendar events from a month tab's pending rows",
		Long: "Walk the month tab top to bottom, create a calendar event for every pending row,\n" +
			"and write the event id back so a rerun never creates duplicates.\n" +
			"Rows marked D have their event deleted and revert to pending.",
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

			filter, err := engine.Filter{}.WithDays(days)
			if err != nil {
				return newUsageError(err)
			}
			filter = filter.WithProjects(projects).WithActions(actions)

			sheetsSvc, err := newSheetsService(ctx, cfg)
			if err != nil {
				return err
			}
			calendarSvc, err := newCalendarService(ctx, cfg)
			if err != nil {
				return err
			}

			sheet := gsheets.New(sheetsSvc, cfg.DocumentID)
			registry, err := sheet.ReadRegistry(ctx, cfg.ConfigSheet)
			if err != nil {
				return err
			}

			eng := engine.New(engine.Options{
				Sheet:        sheet,
				Calendar:     gcal.New(calendarSvc),
				Registry:     gsheets.RegistryMap(registry),
				DefaultStart: cfg.StartTime,
				Location:     loc,
			})

			res, err := eng.Sync(ctx, tab, filter)
			if err != nil {
				return err
			}

			if outfmt.IsJSON(ctx) {
				return outfmt.WriteJSON(os.Stdout, res)
			}
			u.Successf("Done: %d created, %d deleted, %d skipped", res.Created, res.Deleted, res.Skipped)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&days, "day", nil, "Only rows on this day, YYYY-MM-DD (repeatable)")
	cmd.Flags().StringArrayVar(&projects, "project", nil, "Only rows of this project (repeatable)")
	cmd.Flags().StringArrayVar(&actions, "action", nil, "Only rows carrying this marker; \"empty\" selects pending rows (repeatable)")
	return cmd
}
