package timesheet

import "fmt"

// MissingColumnError reports a header column the current operation requires
// but the sheet does not have. It is a configuration problem with the sheet,
// raised lazily on first access.
type MissingColumnError struct {
	Name string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("sheet has no %q column", e.Name)
}

// RateLimitedError marks a "too many requests" response from a remote
// adapter. The sync engine recovers from it exactly once per operation.
type RateLimitedError struct {
	Err error
}

func (e *RateLimitedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rate limited: %v", e.Err)
	}
	return "rate limited"
}

func (e *RateLimitedError) Unwrap() error { return e.Err }

// RemoteError is any other non-2xx adapter response. It aborts the run;
// rows committed before it stay committed.
type RemoteError struct {
	Code int
	Err  error
}

func (e *RemoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remote error (%d): %v", e.Code, e.Err)
	}
	return fmt.Sprintf("remote error (%d)", e.Code)
}

func (e *RemoteError) Unwrap() error { return e.Err }
