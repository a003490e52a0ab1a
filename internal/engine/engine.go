// Package engine drives timesheet rows through the per-row action state
// machine: create pending events, delete requested ones, write back
// idempotency markers, collect warnings.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sheetsync/internal/timesheet"
	"sheetsync/internal/ui"
)

// Calendar is the calendar adapter contract the engine consumes.
type Calendar interface {
	CreateEvent(ctx context.Context, calendarID string, req EventRequest) (EventResult, error)
	// DeleteEvent treats an already-deleted event as success.
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

type EventRequest struct {
	Summary string
	Details string
	Start   time.Time
	End     time.Time
	AllDay  bool
}

type EventResult struct {
	ID   string
	Link string
}

// Sheet is the sheet adapter contract the engine consumes.
type Sheet interface {
	ReadHeader(ctx context.Context, tab string) ([]string, error)
	ReadRows(ctx context.Context, tab string) ([]timesheet.Row, error)
	// WriteCells applies all updates as one batch; the batch is the retry unit.
	WriteCells(ctx context.Context, updates []CellUpdate) error
	ClearCells(ctx context.Context, ranges []string) error
	AppendRow(ctx context.Context, tab string, values []any) error
}

type CellUpdate struct {
	Range string // A1 range, e.g. "March!G12"
	Value any
}

// Options configures one engine instance. Adapters are injected; the engine
// holds no process-wide state.
type Options struct {
	Sheet        Sheet
	Calendar     Calendar
	Registry     map[string]string // project alias -> calendar id
	DefaultStart string            // "HH:MM"
	Location     *time.Location
	Cooldown     time.Duration        // rate-limit pause, defaults to a minute
	Sleep        func(time.Duration)  // injectable for tests
}

type Engine struct {
	sheet        Sheet
	calendar     Calendar
	registry     map[string]string
	defaultStart string
	loc          *time.Location
	cooldown     time.Duration
	sleep        func(time.Duration)
}

func New(opts Options) *Engine {
	e := &Engine{
		sheet:        opts.Sheet,
		calendar:     opts.Calendar,
		registry:     opts.Registry,
		defaultStart: opts.DefaultStart,
		loc:          opts.Location,
		cooldown:     opts.Cooldown,
		sleep:        opts.Sleep,
	}
	if e.loc == nil {
		e.loc = time.Local
	}
	if e.defaultStart == "" {
		e.defaultStart = "09:00"
	}
	if e.cooldown == 0 {
		e.cooldown = time.Minute
	}
	if e.sleep == nil {
		e.sleep = time.Sleep
	}
	return e
}

// Result summarizes one sync run. WarnLines holds the 1-based sheet line
// numbers of skipped rows that need review.
type Result struct {
	Created   int   `json:"created"`
	Deleted   int   `json:"deleted"`
	Skipped   int   `json:"skipped"`
	WarnLines []int `json:"warnings,omitempty"`
}

// Sync processes every data row of tab in stored order. Filters short-circuit
// rows without warnings; the action state machine decides the remote action
// for the rest. Rows are never reordered: slot allocation for a row depends on
// the row before it.
func (e *Engine) Sync(ctx context.Context, tab string, filter Filter) (Result, error) {
	u := ui.FromContext(ctx)
	var res Result

	header, err := e.sheet.ReadHeader(ctx, tab)
	if err != nil {
		return res, fmt.Errorf("read header of %q: %w", tab, err)
	}
	idx := timesheet.NewHeaderIndex(header)
	rows, err := e.sheet.ReadRows(ctx, tab)
	if err != nil {
		return res, fmt.Errorf("read rows of %q: %w", tab, err)
	}

	var cursor timesheet.Cursor
	for i, row := range rows {
		line := i + 2 // data starts on sheet line 2, below the header

		entry, err := timesheet.ParseEntry(idx, row, line)
		if err != nil {
			return res, err
		}

		switch entry.Action.Kind {
		case timesheet.ActionSuppressed, timesheet.ActionCommitted:
			res.Skipped++
			continue
		}

		if !entry.HasDate {
			slog.Debug("row has no date, skipping", "line", line)
			res.Skipped++
			continue
		}
		cursor.Observe(entry.SerialDate)
		date := timesheet.DateFromSerial(entry.SerialDate, e.loc)

		if !filter.allowsDay(date) || !filter.allowsProject(entry.Project) || !filter.allowsAction(entry.Action) {
			res.Skipped++
			continue
		}

		calendarID, ok := e.registry[entry.Project]
		if !ok {
			u.Warnf("no calendar id for project %q at line %d", entry.Project, line)
			res.WarnLines = append(res.WarnLines, line)
			continue
		}

		switch entry.Action.Kind {
		case timesheet.ActionDeleteRequested:
			if err := e.deleteRow(ctx, tab, idx, entry, calendarID); err != nil {
				return res, err
			}
			u.Printf("Deleted event %q", entry.Summary)
			res.Deleted++

		case timesheet.ActionUnknown:
			u.Warnf("unknown action %q at line %d, ignoring", entry.Action.Raw, line)
			res.WarnLines = append(res.WarnLines, line)

		case timesheet.ActionPending:
			slot, err := cursor.Allocate(entry, e.defaultStart, e.loc)
			if err != nil {
				u.Warnf("line %d: %v", line, err)
				res.WarnLines = append(res.WarnLines, line)
				continue
			}
			if err := e.createRow(ctx, tab, idx, entry, calendarID, slot, u); err != nil {
				return res, err
			}
			res.Created++
		}
	}

	if n := len(res.WarnLines); n > 0 {
		u.Warnf("%d line(s) produced warnings, please review them", n)
	}
	return res, nil
}

// createRow creates the remote event, then commits the idempotency marker.
// The two writes are not atomic as a pair: an interruption in between leaves
// the row pending and the next run re-creates the event.
func (e *Engine) createRow(ctx context.Context, tab string, idx timesheet.HeaderIndex, entry timesheet.Entry, calendarID string, slot timesheet.Slot, u *ui.UI) error {
	req := EventRequest{
		Summary: entry.Summary,
		Details: entry.Details,
		Start:   slot.Start,
		End:     slot.End,
		AllDay:  slot.AllDay,
	}
	var created EventResult
	err := e.withRateLimitRetry(ctx, func() error {
		var err error
		created, err = e.calendar.CreateEvent(ctx, calendarID, req)
		return err
	})
	if err != nil {
		return fmt.Errorf("create event for line %d: %w", entry.Line, err)
	}
	if dur, ok := entry.Duration(); ok {
		u.Printf("Created event %q (%gh)", entry.Summary, dur)
	} else {
		u.Printf("Created event %q (full day)", entry.Summary)
	}

	updates, err := commitUpdates(tab, idx, entry.Line, created)
	if err != nil {
		return err
	}
	err = e.withRateLimitRetry(ctx, func() error {
		return e.sheet.WriteCells(ctx, updates)
	})
	if err != nil {
		return fmt.Errorf("commit line %d: %w", entry.Line, err)
	}
	return nil
}

// commitUpdates builds the idempotency commit: once these cells are written
// the row will never be re-created.
func commitUpdates(tab string, idx timesheet.HeaderIndex, line int, created EventResult) ([]CellUpdate, error) {
	actionCol, err := idx.Letters(timesheet.ColAction)
	if err != nil {
		return nil, err
	}
	idCol, err := idx.Letters(timesheet.ColEventID)
	if err != nil {
		return nil, err
	}
	linkCol, err := idx.Letters(timesheet.ColLink)
	if err != nil {
		return nil, err
	}
	return []CellUpdate{
		{Range: fmt.Sprintf("%s!%s%d", tab, actionCol, line), Value: timesheet.MarkerIgnore},
		{Range: fmt.Sprintf("%s!%s%d", tab, idCol, line), Value: created.ID},
		{Range: fmt.Sprintf("%s!%s%d", tab, linkCol, line), Value: fmt.Sprintf("=HYPERLINK(%q;%q)", created.Link, "open")},
	}, nil
}

// deleteRow deletes the linked event and clears the event cells, reverting the
// row to its pending shape on the sheet.
func (e *Engine) deleteRow(ctx context.Context, tab string, idx timesheet.HeaderIndex, entry timesheet.Entry, calendarID string) error {
	err := e.withRateLimitRetry(ctx, func() error {
		return e.calendar.DeleteEvent(ctx, calendarID, entry.EventID)
	})
	if err != nil {
		return fmt.Errorf("delete event for line %d: %w", entry.Line, err)
	}

	var ranges []string
	for _, name := range []string{timesheet.ColEventID, timesheet.ColLink, timesheet.ColAction} {
		letters, err := idx.Letters(name)
		if err != nil {
			return err
		}
		ranges = append(ranges, fmt.Sprintf("%s!%s%d", tab, letters, entry.Line))
	}
	err = e.withRateLimitRetry(ctx, func() error {
		return e.sheet.ClearCells(ctx, ranges)
	})
	if err != nil {
		return fmt.Errorf("clear cells for line %d: %w", entry.Line, err)
	}
	return nil
}

// withRateLimitRetry runs op, and on a rate-limit signal pauses once for the
// cooldown and retries. A second failure of any kind propagates.
func (e *Engine) withRateLimitRetry(ctx context.Context, op func() error) error {
	err := op()
	var rl *timesheet.RateLimitedError
	if !errors.As(err, &rl) {
		return err
	}
	u := ui.FromContext(ctx)
	u.Warnf("too many requests, pausing for %s before retrying", e.cooldown)
	e.sleep(e.cooldown)
	return op()
}
