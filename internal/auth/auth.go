// Package auth obtains and refreshes Google OAuth2 credentials for the
// Calendar and Sheets services, persisting refresh tokens in the secrets
// store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/99designs/keyring"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	sheets "google.golang.org/api/sheets/v4"

	"sheetsync/internal/secrets"
)

// Service names accepted by Login, Logout, and TokenSource.
const (
	ServiceCalendar = "calendar"
	ServiceSheets   = "sheets"
)

// Scopes returns the OAuth scopes requested for a service.
func Scopes(service string) ([]string, error) {
	switch strings.ToLower(strings.TrimSpace(service)) {
	case ServiceCalendar:
		return []string{calendar.CalendarScope}, nil
	case ServiceSheets:
		return []string{sheets.SpreadsheetsScope}, nil
	default:
		return nil, fmt.Errorf("unknown service %q (want %s or %s)", service, ServiceCalendar, ServiceSheets)
	}
}

// AuthRequiredError reports that no stored token exists for a service.
type AuthRequiredError struct {
	Service string
}

func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf("no stored token for %s; run \"sheetsync auth login --service %s\"", e.Service, e.Service)
}

// LoadCredentials reads the OAuth client credentials JSON. An empty path
// falls back to credentials.json next to the config file.
func LoadCredentials(path, configDir string) ([]byte, error) {
	if path == "" {
		path = filepath.Join(configDir, "credentials.json")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	return data, nil
}

func oauthConfig(credentialsJSON []byte, service string) (*oauth2.Config, error) {
	scopes, err := Scopes(service)
	if err != nil {
		return nil, err
	}
	cfg, err := google.ConfigFromJSON(credentialsJSON, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return cfg, nil
}

// TokenSource builds a self-refreshing token source for a service from the
// stored refresh token. It returns AuthRequiredError when no token is stored.
func TokenSource(ctx context.Context, store secrets.Store, credentialsJSON []byte, service string) (oauth2.TokenSource, error) {
	cfg, err := oauthConfig(credentialsJSON, service)
	if err != nil {
		return nil, err
	}
	tok, err := store.GetToken(service)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return nil, &AuthRequiredError{Service: strings.ToLower(strings.TrimSpace(service))}
		}
		return nil, err
	}
	seed := &oauth2.Token{
		RefreshToken: tok.RefreshToken,
		// Force a refresh on first use so a revoked token fails fast.
		Expiry: time.Now().Add(-time.Minute),
	}
	return cfg.TokenSource(ctx, seed), nil
}

// Flow drives the interactive authorization-code grant. The caller shows
// the URL from Start to the user and passes the pasted code to Finish.
type Flow struct {
	Store secrets.Store

	// In and Out carry the interactive prompt. Out receives the
	// authorization URL, In supplies the pasted code.
	In  io.Reader
	Out io.Writer

	// exchange is swapped in tests to avoid hitting Google's token endpoint.
	exchange func(ctx context.Context, cfg *oauth2.Config, code string) (*oauth2.Token, error)
}

func defaultExchange(ctx context.Context, cfg *oauth2.Config, code string) (*oauth2.Token, error) {
	return cfg.Exchange(ctx, code)
}

// Login walks the user through browser authorization for a service and
// stores the resulting refresh token.
func (f *Flow) Login(ctx context.Context, credentialsJSON []byte, service string) error {
	cfg, err := oauthConfig(credentialsJSON, service)
	if err != nil {
		return err
	}
	scopes := cfg.Scopes

	authURL := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Fprintf(f.Out, "Open the following link in your browser, authorize access, then paste the code here:\n\n%s\n\nCode: ", authURL)

	var code string
	if _, err := fmt.Fscan(f.In, &code); err != nil {
		return fmt.Errorf("read authorization code: %w", err)
	}

	exchange := f.exchange
	if exchange == nil {
		exchange = defaultExchange
	}
	tok, err := exchange(ctx, cfg, strings.TrimSpace(code))
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}
	if tok.RefreshToken == "" {
		return fmt.Errorf("no refresh token granted; revoke prior access and retry")
	}
	return f.Store.SetToken(service, secrets.Token{
		RefreshToken: tok.RefreshToken,
		Scopes:       scopes,
	})
}

// Logout removes the stored token for a service. Removing a token that does
// not exist is not an error.
func (f *Flow) Logout(service string) error {
	err := f.Store.DeleteToken(service)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	return err
}

// List returns the services with stored tokens, sorted.
func (f *Flow) List() ([]string, error) {
	services, err := f.Store.Services()
	if err != nil {
		return nil, err
	}
	sort.Strings(services)
	return services, nil
}
