// Package errfmt turns internal errors into actionable one-line messages
// for the CLI.
package errfmt

import (
	"errors"
	"fmt"
	"os"

	"github.com/99designs/keyring"
	ggoogleapi "google.golang.org/api/googleapi"

	"sheetsync/internal/auth"
	"sheetsync/internal/config"
	"sheetsync/internal/timesheet"
)

func Format(err error) string {
	if err == nil {
		return ""
	}

	var authErr *auth.AuthRequiredError
	if errors.As(err, &authErr) {
		return fmt.Sprintf("No stored token for %s. Run: sheetsync auth login --service %s", authErr.Service, authErr.Service)
	}

	var cfgErr *config.MissingConfigError
	if errors.As(err, &cfgErr) {
		return fmt.Sprintf("Missing config value %q. Run: sheetsync config init", cfgErr.Key)
	}

	var colErr *timesheet.MissingColumnError
	if errors.As(err, &colErr) {
		return fmt.Sprintf("Sheet is missing the %q column. Check the month tab's header row.", colErr.Name)
	}

	var rateErr *timesheet.RateLimitedError
	if errors.As(err, &rateErr) {
		return "Google API quota exhausted (429). Wait a minute and rerun; already committed rows are skipped."
	}

	var remoteErr *timesheet.RemoteError
	if errors.As(err, &remoteErr) {
		return fmt.Sprintf("Google API error (%d): %v", remoteErr.Code, remoteErr.Err)
	}

	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "Secret not found in keyring. Run: sheetsync auth login"
	}

	if errors.Is(err, os.ErrNotExist) {
		return err.Error()
	}

	var gerr *ggoogleapi.Error
	if errors.As(err, &gerr) {
		reason := ""
		if len(gerr.Errors) > 0 && gerr.Errors[0].Reason != "" {
			reason = gerr.Errors[0].Reason
		}
		if reason != "" {
			return fmt.Sprintf("Google API error (%d %s): %s", gerr.Code, reason, gerr.Message)
		}
		return fmt.Sprintf("Google API error (%d): %s", gerr.Code, gerr.Message)
	}

	return err.Error()
}
