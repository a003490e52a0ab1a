package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"sheetsync/internal/config"
	"sheetsync/internal/download"
	"sheetsync/internal/gcal"
	"sheetsync/internal/gsheets"
	"sheetsync/internal/outfmt"
	"sheetsync/internal/ui"
)

func newReadCmd(flags *rootFlags) *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "read <sheet>",
		Short: "Append a day's calendar events to a month tab",
		Long: "Pull the user's events for one day from every registered calendar and the\n" +
			"user's own, and append them as timesheet rows. Events already on the sheet\n" +
			"are skipped.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u := ui.FromContext(ctx)
			tab := args[0]

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if cfg.UserEmail == "" {
				return &config.MissingConfigError{Key: "user_email"}
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			date, err := time.ParseInLocation("2006-01-02", day, loc)
			if err != nil {
				return newUsageError(err)
			}

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
			sources := make([]download.Source, 0, len(registry))
			for _, entry := range registry {
				sources = append(sources, download.Source{
					CalendarID: entry.CalendarID,
					Project:    entry.Alias,
					Linked:     entry.Linked,
				})
			}

			d := download.New(download.Options{
				Sheet:     sheet,
				Calendar:  gcal.New(calendarSvc),
				UserEmail: cfg.UserEmail,
				Timezone:  cfg.Timezone,
				Location:  loc,
			})
			res, err := d.Run(ctx, tab, date, sources)
			if err != nil {
				return err
			}

			if outfmt.IsJSON(ctx) {
				return outfmt.WriteJSON(os.Stdout, res)
			}
			u.Successf("Done: %d added, %d skipped", res.Added, res.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&day, "day", "", "Day to download, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("day")
	return cmd
}
