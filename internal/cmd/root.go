// Package cmd wires the sheetsync subcommands: sync, report, read, auth and
// config.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"sheetsync/internal/config"
	"sheetsync/internal/errfmt"
	"sheetsync/internal/outfmt"
	"sheetsync/internal/ui"
)

type rootFlags struct {
	Color      string
	ConfigFile string
	JSON       bool
	Verbose    bool
}

func Execute(args []string) error {
	flags := rootFlags{Color: envOr("SHEETSYNC_COLOR", "auto")}

	// Avoid dangerous prefix-matching for commands.
	cobra.EnablePrefixMatching = false

	if hasExactArg(args, "--version") {
		fmt.Fprintln(os.Stdout, VersionString())
		return nil
	}

	root := &cobra.Command{
		Use:           "sheetsync",
		Short:         "Sync a Google Sheets timesheet with Google Calendar",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Example: strings.TrimSpace(`
  # One-time setup
  sheetsync config init
  sheetsync auth login --service calendar
  sheetsync auth login --service sheets

  # Create calendar events from the March tab
  sheetsync sync March
  sheetsync sync March --day 2023-03-15 --project acme

  # Hour totals, with full-day and overtime accounting
  sheetsync report March
  sheetsync report March --overtime --output march.xlsx

  # Pull a day's calendar events back into the sheet
  sheetsync read March --day 2023-03-15

  # Parseable output
  sheetsync --json sync March | jq .
	`),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logLevel := slog.LevelWarn
			if flags.Verbose {
				logLevel = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			})))

			cmd.SetContext(outfmt.WithMode(cmd.Context(), outfmt.Mode{JSON: flags.JSON}))

			u, err := ui.New(ui.Options{
				Stdout: os.Stdout,
				Stderr: os.Stderr,
				Color: func() string {
					if flags.JSON {
						return "never"
					}
					return flags.Color
				}(),
			})
			if err != nil {
				return err
			}
			cmd.SetContext(ui.WithUI(cmd.Context(), u))
			return nil
		},
	}

	root.SetArgs(args)
	root.PersistentFlags().StringVar(&flags.Color, "color", flags.Color, "Color output: auto|always|never")
	root.PersistentFlags().StringVar(&flags.ConfigFile, "config", "", "Config file (default ~/.sheetsync/sheetsync.ini)")
	root.PersistentFlags().BoolVar(&flags.JSON, "json", false, "Output JSON to stdout (best for scripting)")
	root.PersistentFlags().BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")

	root.AddCommand(newSyncCmd(&flags))
	root.AddCommand(newReportCmd(&flags))
	root.AddCommand(newReadCmd(&flags))
	root.AddCommand(newAuthCmd(&flags))
	root.AddCommand(newConfigCmd(&flags))
	root.AddCommand(newVersionCmd())

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		// pflag already includes helpful context ("unknown flag", ...).
		return newUsageError(err)
	})

	err := root.Execute()
	if err == nil {
		return nil
	}
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}

	if ExitCode(err) == 1 && isUsageError(err) {
		err = &ExitError{Code: 2, Err: err}
	}

	if ctx := root.Context(); ctx != nil {
		ui.FromContext(ctx).Errorf("%s", errfmt.Format(err))
		return err
	}
	_, _ = fmt.Fprintln(os.Stderr, errfmt.Format(err))
	return err
}

func loadConfig(flags *rootFlags) (*config.Config, error) {
	return config.Load(flags.ConfigFile)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func hasExactArg(args []string, target string) bool {
	for _, a := range args {
		if a == target {
			return true
		}
	}
	return false
}

// newUsageError wraps errors in a way main() can map to exit code 2.
func newUsageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pflag.ErrHelp) {
		return err
	}
	return &ExitError{Code: 2, Err: err}
}

func isUsageError(err error) bool {
	var uiErr *ui.ParseError
	if errors.As(err, &uiErr) {
		return true
	}
	msg := strings.TrimSpace(err.Error())
	switch {
	case strings.HasPrefix(msg, "accepts "),
		strings.HasPrefix(msg, "requires "),
		strings.HasPrefix(msg, "unknown command"),
		strings.HasPrefix(msg, "invalid argument"),
		strings.HasPrefix(msg, "unknown flag"),
		strings.HasPrefix(msg, "unknown shorthand flag"),
		strings.HasPrefix(msg, "bad day "):
		return true
	default:
		return false
	}
}
