package cmd

import (
	"context"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"sheetsync/internal/auth"
	"sheetsync/internal/config"
	"sheetsync/internal/secrets"
)

// Service constructors are package variables so command tests can point them
// at an httptest server.
var (
	newSheetsService   = buildSheetsService
	newCalendarService = buildCalendarService
	openSecrets        = openDefaultSecrets
)

func openDefaultSecrets() (secrets.Store, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return secrets.OpenDefault(dir)
}

func tokenSourceFor(ctx context.Context, cfg *config.Config, service string) (option.ClientOption, error) {
	store, err := openSecrets()
	if err != nil {
		return nil, err
	}
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	creds, err := auth.LoadCredentials(cfg.CredentialsFile, dir)
	if err != nil {
		return nil, err
	}
	ts, err := auth.TokenSource(ctx, store, creds, service)
	if err != nil {
		return nil, err
	}
	return option.WithTokenSource(ts), nil
}

func buildSheetsService(ctx context.Context, cfg *config.Config) (*sheets.Service, error) {
	opt, err := tokenSourceFor(ctx, cfg, auth.ServiceSheets)
	if err != nil {
		return nil, err
	}
	return sheets.NewService(ctx, opt)
}

func buildCalendarService(ctx context.Context, cfg *config.Config) (*calendar.Service, error) {
	opt, err := tokenSourceFor(ctx, cfg, auth.ServiceCalendar)
	if err != nil {
		return nil, err
	}
	return calendar.NewService(ctx, opt)
}
