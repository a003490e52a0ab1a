package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"sheetsync/internal/auth"
	"sheetsync/internal/config"
	"sheetsync/internal/outfmt"
	"sheetsync/internal/ui"
)

func newAuthCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Google OAuth tokens",
	}
	cmd.AddCommand(newAuthLoginCmd(flags))
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthStatusCmd())
	return cmd
}

func newAuthLoginCmd(flags *rootFlags) *cobra.Command {
	var services []string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize calendar and sheets access",
		Long: "Run the browser authorization flow for the given services and store the\n" +
			"refresh tokens in the system keyring. Client credentials are read from\n" +
			"credentials.json next to the config file, or from the credentials_file key.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			u := ui.FromContext(ctx)

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			dir, err := config.Dir()
			if err != nil {
				return err
			}
			creds, err := auth.LoadCredentials(cfg.CredentialsFile, dir)
			if err != nil {
				return err
			}
			store, err := openSecrets()
			if err != nil {
				return err
			}

			flow := &auth.Flow{Store: store, In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
			for _, service := range services {
				if _, err := auth.Scopes(service); err != nil {
					return newUsageError(err)
				}
				if err := flow.Login(ctx, creds, service); err != nil {
					return err
				}
				u.Successf("Stored token for %s", service)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&services, "services", []string{auth.ServiceCalendar, auth.ServiceSheets}, "Services to authorize: calendar,sheets")
	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	var services []string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove stored tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u := ui.FromContext(cmd.Context())
			store, err := openSecrets()
			if err != nil {
				return err
			}
			flow := &auth.Flow{Store: store}
			for _, service := range services {
				if err := flow.Logout(service); err != nil {
					return err
				}
				u.Printf("Removed token for %s", service)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&services, "services", []string{auth.ServiceCalendar, auth.ServiceSheets}, "Services to log out: calendar,sheets")
	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List services with stored tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			u := ui.FromContext(ctx)
			store, err := openSecrets()
			if err != nil {
				return err
			}
			flow := &auth.Flow{Store: store}
			services, err := flow.List()
			if err != nil {
				return err
			}

			if outfmt.IsJSON(ctx) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{"services": services})
			}
			if len(services) == 0 {
				u.Printf("No stored tokens. Run: sheetsync auth login")
				return nil
			}
			for _, service := range services {
				u.Printf("%s: token stored", service)
			}
			return nil
		},
	}
}
