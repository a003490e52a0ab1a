// Package report aggregates timesheet rows into per-day per-project totals,
// with full-day expansion and overtime accounting. It is read-only: report
// runs never write to the sheet or the calendar.
package report

import (
	"fmt"
	"sort"
	"time"

	"sheetsync/internal/timesheet"
)

// Options configures one report run.
type Options struct {
	WorkingHours float64 // nominal hours per day, for full-day expansion
	OvertimeFrom string  // "HH:MM"; empty disables overtime accounting
	Location     *time.Location
}

type key struct {
	date    string // "2006-01-02"
	project string
}

// DailyStats is the per (date, project) aggregate.
type DailyStats struct {
	Total    float64
	Overtime float64
	FullDay  bool
}

// Row is one output line of the report.
type Row struct {
	Date    string  `json:"date"`
	Project string  `json:"project"`
	Hours   float64 `json:"hours"`
}

// Report is the aggregated result of one run.
type Report struct {
	Rows      []Row   `json:"rows"`
	Total     float64 `json:"total"`
	WarnLines []int   `json:"warnings,omitempty"`
}

// Filter narrows the report output. Zero value keeps everything.
type Filter struct {
	Days         []string // "YYYY-MM-DD"
	Projects     []string
	OvertimeOnly bool
}

// Build accumulates all rows, then applies the full-day adjustment per date
// and renders the filtered result. Rows marked ignore-permanently are
// excluded entirely.
func Build(header []string, rows []timesheet.Row, opts Options, filter Filter) (*Report, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	idx := timesheet.NewHeaderIndex(header)
	stats := make(map[key]*DailyStats)
	fullDayProject := make(map[string]string) // date -> project carrying the full-day entry
	var warns []int

	for i, row := range rows {
		line := i + 2
		entry, err := timesheet.ParseEntry(idx, row, line)
		if err != nil {
			return nil, err
		}
		if entry.Action.Kind == timesheet.ActionSuppressed {
			continue
		}
		if !entry.HasDate {
			continue
		}
		date := timesheet.DateFromSerial(entry.SerialDate, loc).Format("2006-01-02")
		k := key{date: date, project: entry.Project}
		st := stats[k]
		if st == nil {
			st = &DailyStats{}
			stats[k] = st
		}

		if hours, ok := entry.Duration(); ok {
			st.Total += hours
			if opts.OvertimeFrom != "" && entry.StartTime != "" {
				late, err := timesheet.ClockAtOrAfter(entry.StartTime, opts.OvertimeFrom)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				if late {
					st.Overtime += hours
				}
			}
			continue
		}
		if entry.IsFullDay() {
			if _, dup := fullDayProject[date]; dup {
				warns = append(warns, line)
				continue
			}
			fullDayProject[date] = entry.Project
			st.FullDay = true
		}
		// Text in the Spent cell: neither hours nor a full-day marker.
	}

	// Full-day adjustment: the marker means "the rest of the nominal working
	// day", so its value is the complement of the day's explicitly logged
	// hours. Overtime hours are logged hours and are added back so they are
	// not double-subtracted.
	for date, project := range fullDayProject {
		var logged, overtime float64
		for k, st := range stats {
			if k.date == date {
				logged += st.Total
				overtime += st.Overtime
			}
		}
		stats[key{date: date, project: project}].Total += opts.WorkingHours - logged + overtime
	}

	return render(stats, filter, warns), nil
}

func render(stats map[key]*DailyStats, filter Filter, warns []int) *Report {
	days := toSet(filter.Days)
	projects := toSet(filter.Projects)

	rep := &Report{WarnLines: warns}
	keys := make([]key, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].date != keys[j].date {
			return keys[i].date < keys[j].date
		}
		return keys[i].project < keys[j].project
	})

	for _, k := range keys {
		if days != nil {
			if _, ok := days[k.date]; !ok {
				continue
			}
		}
		if projects != nil {
			if _, ok := projects[k.project]; !ok {
				continue
			}
		}
		st := stats[k]
		hours := st.Total
		if filter.OvertimeOnly {
			if st.Overtime == 0 {
				continue
			}
			hours = st.Overtime
		}
		rep.Rows = append(rep.Rows, Row{Date: k.date, Project: k.project, Hours: hours})
		rep.Total += hours
	}
	return rep
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
