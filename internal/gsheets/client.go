// Package gsheets is the Google Sheets adapter: it reads timesheet tabs and
// the calendar registry, and writes idempotency markers back.
package gsheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/sheets/v4"

	"sheetsync/internal/engine"
	"sheetsync/internal/timesheet"
)

const (
	headerRange = "A1:ZZ1"
	dataRange   = "A2:ZZ"
)

type Client struct {
	svc        *sheets.Service
	documentID string
}

func New(svc *sheets.Service, documentID string) *Client {
	return &Client{svc: svc, documentID: documentID}
}

// ReadHeader returns the first row of a tab.
func (c *Client) ReadHeader(ctx context.Context, tab string) ([]string, error) {
	resp, err := c.svc.Spreadsheets.Values.
		Get(c.documentID, fmt.Sprintf("%s!%s", tab, headerRange)).
		Context(ctx).Do()
	if err != nil {
		return nil, wrapErr(err)
	}
	if len(resp.Values) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", tab)
	}
	header := make([]string, len(resp.Values[0]))
	for i, v := range resp.Values[0] {
		header[i] = fmt.Sprintf("%v", v)
	}
	return header, nil
}

// ReadRows returns all data rows of a tab, starting below the header.
// UNFORMATTED_VALUE rendering keeps date cells as serial numbers.
func (c *Client) ReadRows(ctx context.Context, tab string) ([]timesheet.Row, error) {
	resp, err := c.svc.Spreadsheets.Values.
		Get(c.documentID, fmt.Sprintf("%s!%s", tab, dataRange)).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return nil, wrapErr(err)
	}
	rows := make([]timesheet.Row, len(resp.Values))
	for i, raw := range resp.Values {
		rows[i] = timesheet.RowOf(raw)
	}
	return rows, nil
}

// WriteCells applies all updates in one batch request; the batch is the unit
// the engine retries on rate limit.
func (c *Client) WriteCells(ctx context.Context, updates []engine.CellUpdate) error {
	data := make([]*sheets.ValueRange, len(updates))
	for i, u := range updates {
		data[i] = &sheets.ValueRange{
			Range:  u.Range,
			Values: [][]any{{u.Value}},
		}
	}
	_, err := c.svc.Spreadsheets.Values.
		BatchUpdate(c.documentID, &sheets.BatchUpdateValuesRequest{
			ValueInputOption: "USER_ENTERED",
			Data:             data,
		}).
		Context(ctx).Do()
	return wrapErr(err)
}

func (c *Client) ClearCells(ctx context.Context, ranges []string) error {
	_, err := c.svc.Spreadsheets.Values.
		BatchClear(c.documentID, &sheets.BatchClearValuesRequest{Ranges: ranges}).
		Context(ctx).Do()
	return wrapErr(err)
}

// AppendRow appends one row below the existing data of a tab.
func (c *Client) AppendRow(ctx context.Context, tab string, values []any) error {
	_, err := c.svc.Spreadsheets.Values.
		Append(c.documentID, fmt.Sprintf("%s!A:A", tab), &sheets.ValueRange{
			Values: [][]any{values},
		}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	return wrapErr(err)
}

// RegistryEntry is one row of the calendar registry sheet: a calendar id, the
// project alias users write in the Project column, and an optional flag
// marking calendars only linked for download (their events carry no stored
// event id).
type RegistryEntry struct {
	CalendarID string
	Alias      string
	Linked     bool
}

// ReadRegistry loads the project-alias → calendar mapping from the registry
// tab (columns: id, alias, optional linked flag). Loaded once per run and
// treated as immutable afterwards.
func (c *Client) ReadRegistry(ctx context.Context, tab string) ([]RegistryEntry, error) {
	resp, err := c.svc.Spreadsheets.Values.
		Get(c.documentID, fmt.Sprintf("%s!A2:C", tab)).
		Context(ctx).Do()
	if err != nil {
		return nil, wrapErr(err)
	}
	entries := make([]RegistryEntry, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := timesheet.RowOf(raw)
		id := strings.TrimSpace(row.Cell(0).Text())
		alias := strings.TrimSpace(row.Cell(1).Text())
		if id == "" || alias == "" {
			continue
		}
		entries = append(entries, RegistryEntry{
			CalendarID: id,
			Alias:      alias,
			Linked:     !row.Cell(2).IsEmpty(),
		})
	}
	return entries, nil
}

// RegistryMap flattens registry entries into the alias → id map the engine
// wants.
func RegistryMap(entries []RegistryEntry) map[string]string {
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		m[e.Alias] = e.CalendarID
	}
	return m
}

// wrapErr translates googleapi errors into the domain taxonomy: 429 becomes a
// retryable rate-limit signal, everything else a fatal remote error.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusTooManyRequests {
			return &timesheet.RateLimitedError{Err: err}
		}
		return &timesheet.RemoteError{Code: gerr.Code, Err: err}
	}
	return err
}
