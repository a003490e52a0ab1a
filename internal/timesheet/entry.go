package timesheet

import "strings"

// Entry is one logical work-time record derived from a sheet row. Entries are
// transient: they are rebuilt from the sheet on every run, the sheet itself is
// the durable source of truth.
type Entry struct {
	Line       int // 1-based sheet line number, for messages and cell ranges
	SerialDate int // days since the sheet origin
	HasDate    bool
	Project    string
	Summary    string
	Details    string
	StartTime  string // explicit "HH:MM" start, or ""
	Spent      CellValue
	Action     Action
	EventID    string
	Link       string
}

// ParseEntry decodes a data row. It fails only on missing required columns;
// malformed values surface later as row-level warnings.
func ParseEntry(idx HeaderIndex, row Row, line int) (Entry, error) {
	dateCol, err := idx.Col(ColDate)
	if err != nil {
		return Entry{}, err
	}
	projectCol, err := idx.Col(ColProject)
	if err != nil {
		return Entry{}, err
	}
	activityCol, err := idx.Col(ColActivity)
	if err != nil {
		return Entry{}, err
	}
	spentCol, err := idx.Col(ColSpent)
	if err != nil {
		return Entry{}, err
	}
	actionCol, err := idx.Col(ColAction)
	if err != nil {
		return Entry{}, err
	}

	e := Entry{
		Line:    line,
		Project: strings.TrimSpace(row.Cell(projectCol).Text()),
		Summary: row.Cell(activityCol).Text(),
		Spent:   row.Cell(spentCol),
		Action:  ParseAction(row.Cell(actionCol)),
	}
	if serial, ok := row.Cell(dateCol).Number(); ok {
		e.SerialDate = int(serial)
		e.HasDate = true
	}

	// Optional columns: absence is fine for read-only flows.
	if col, err := idx.Col(ColStartTime); err == nil {
		e.StartTime = strings.TrimSpace(row.Cell(col).Text())
	}
	if col, err := idx.Col(ColDetails); err == nil {
		e.Details = row.Cell(col).Text()
	}
	if col, err := idx.Col(ColEventID); err == nil {
		e.EventID = strings.TrimSpace(row.Cell(col).Text())
	}
	if col, err := idx.Col(ColLink); err == nil {
		e.Link = row.Cell(col).Text()
	}
	return e, nil
}

// Duration returns the logged hours when the Spent cell holds a number.
func (e Entry) Duration() (float64, bool) {
	return e.Spent.Number()
}

// IsFullDay reports whether the entry stands for "the rest of the working
// day": the Spent cell parses as empty. Text in Spent is neither a duration
// nor a full-day marker.
func (e Entry) IsFullDay() bool {
	return e.Spent.IsEmpty()
}
