// Package download pulls a day's calendar events into the timesheet: it
// lists every registered calendar plus the user's own, keeps the events the
// user actually attends, and appends them as rows the sync run would have
// produced.
package download

import (
	"context"
	"fmt"
	"sort"
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"sheetsync/internal/timesheet"
	"sheetsync/internal/ui"
)

// OwnCalendarAlias marks the user's primary calendar in appended rows. It is
// never a registered project, so sync leaves those rows alone.
const OwnCalendarAlias = "???"

// Calendar lists a day's events from one calendar.
type Calendar interface {
	EventsOn(ctx context.Context, calendarID string, day time.Time, tz string) ([]*calendar.Event, error)
}

// Sheet is the subset of the sheet adapter download needs.
type Sheet interface {
	ReadHeader(ctx context.Context, tab string) ([]string, error)
	ReadRows(ctx context.Context, tab string) ([]timesheet.Row, error)
	AppendRow(ctx context.Context, tab string, values []any) error
}

// Source is one calendar to pull from. Linked sources share events with a
// registered calendar, so their rows carry no event id and no marker.
type Source struct {
	CalendarID string
	Project    string
	Linked     bool
}

type Options struct {
	Sheet     Sheet
	Calendar  Calendar
	UserEmail string
	Timezone  string // IANA name passed to the events query, may be empty
	Location  *time.Location
}

type Downloader struct {
	sheet     Sheet
	calendar  Calendar
	userEmail string
	tz        string
	loc       *time.Location
}

func New(opts Options) *Downloader {
	d := &Downloader{
		sheet:     opts.Sheet,
		calendar:  opts.Calendar,
		userEmail: opts.UserEmail,
		tz:        opts.Timezone,
		loc:       opts.Location,
	}
	if d.loc == nil {
		d.loc = time.Local
	}
	return d
}

// Result summarizes one download run.
type Result struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

type sourcedEvent struct {
	event  *calendar.Event
	source Source
}

// Run appends day's events to tab. The user's own calendar is always queried
// in addition to sources; events seen on several calendars count once, for
// the first calendar that returned them.
func (d *Downloader) Run(ctx context.Context, tab string, day time.Time, sources []Source) (Result, error) {
	u := ui.FromContext(ctx)
	var res Result

	if d.userEmail == "" {
		return res, fmt.Errorf("user email is not configured")
	}
	sources = d.withOwnCalendar(sources)

	var all []sourcedEvent
	seen := make(map[string]bool)
	for _, src := range sources {
		events, err := d.calendar.EventsOn(ctx, src.CalendarID, day, d.tz)
		if err != nil {
			return res, fmt.Errorf("list events of %q: %w", src.CalendarID, err)
		}
		for _, ev := range events {
			if !d.isMine(ev) || seen[ev.Id] {
				continue
			}
			seen[ev.Id] = true
			all = append(all, sourcedEvent{event: ev, source: src})
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return startKey(all[i].event) < startKey(all[j].event)
	})

	header, err := d.sheet.ReadHeader(ctx, tab)
	if err != nil {
		return res, fmt.Errorf("read header of %q: %w", tab, err)
	}
	idx := timesheet.NewHeaderIndex(header)
	knownIDs, knownLinks, err := d.existingMarkers(ctx, tab, idx)
	if err != nil {
		return res, err
	}

	for _, se := range all {
		ev, src := se.event, se.source
		eventID := ev.Id
		if src.Linked {
			eventID = ""
		}
		if eventID != "" && knownIDs[eventID] {
			u.Warnf("event %q already present in the sheet, skipping", summaryOf(ev))
			res.Skipped++
			continue
		}
		if ev.HtmlLink != "" && knownLinks[ev.HtmlLink] {
			u.Warnf("a link to event %q already present in the sheet, skipping", summaryOf(ev))
			res.Skipped++
			continue
		}

		values, err := rowValues(idx, ev, src, eventID, d.loc)
		if err != nil {
			return res, err
		}
		if err := d.sheet.AppendRow(ctx, tab, values); err != nil {
			return res, fmt.Errorf("append event %q: %w", summaryOf(ev), err)
		}
		u.Printf("Added event %q (%s)", summaryOf(ev), src.Project)
		res.Added++
	}

	if res.Added == 0 {
		u.Printf("No new events for %s", day.Format("2006-01-02"))
	}
	return res, nil
}

func (d *Downloader) withOwnCalendar(sources []Source) []Source {
	for _, src := range sources {
		if src.CalendarID == d.userEmail {
			return sources
		}
	}
	return append(sources, Source{CalendarID: d.userEmail, Project: OwnCalendarAlias})
}

// isMine keeps events the user created without inviting anyone, and events
// the user accepted or has not answered yet. Declined invitations drop out.
func (d *Downloader) isMine(ev *calendar.Event) bool {
	if ev.Creator != nil && ev.Creator.Email == d.userEmail && len(ev.Attendees) == 0 {
		return true
	}
	for _, att := range ev.Attendees {
		if att.Email != d.userEmail {
			continue
		}
		if att.ResponseStatus == "accepted" || att.ResponseStatus == "needsAction" {
			return true
		}
	}
	return false
}

// existingMarkers collects the event ids and links already on the sheet.
func (d *Downloader) existingMarkers(ctx context.Context, tab string, idx timesheet.HeaderIndex) (ids, links map[string]bool, err error) {
	rows, err := d.sheet.ReadRows(ctx, tab)
	if err != nil {
		return nil, nil, fmt.Errorf("read rows of %q: %w", tab, err)
	}
	ids = make(map[string]bool)
	links = make(map[string]bool)
	idCol, idOK := idx[timesheet.ColEventID]
	linkCol, linkOK := idx[timesheet.ColLink]
	for _, row := range rows {
		if idOK {
			if s := row.Cell(idCol).Text(); s != "" {
				ids[s] = true
			}
		}
		if linkOK {
			if s := row.Cell(linkCol).Text(); s != "" {
				links[s] = true
			}
		}
	}
	return ids, links, nil
}

// rowValues lays the event out along the sheet's own column order. Timed
// events carry a start time and the spent hours; all-day events leave both
// blank, which is exactly the full-day shape sync and report understand.
func rowValues(idx timesheet.HeaderIndex, ev *calendar.Event, src Source, eventID string, loc *time.Location) ([]any, error) {
	start, end, allDay, err := eventSpan(ev, loc)
	if err != nil {
		return nil, fmt.Errorf("event %q: %w", summaryOf(ev), err)
	}

	set := func(values []any, name string, v any) []any {
		i, ok := idx[name]
		if !ok {
			return values
		}
		for len(values) <= i {
			values = append(values, "")
		}
		values[i] = v
		return values
	}

	var values []any
	values = set(values, timesheet.ColDate, start.Format("2006-01-02"))
	values = set(values, timesheet.ColProject, src.Project)
	values = set(values, timesheet.ColActivity, summaryOf(ev))
	values = set(values, timesheet.ColDetails, ev.Description)
	if !allDay {
		values = set(values, timesheet.ColStartTime, start.Format("15:04"))
		values = set(values, timesheet.ColSpent, end.Sub(start).Hours())
	}
	values = set(values, timesheet.ColEventID, eventID)
	values = set(values, timesheet.ColLink, ev.HtmlLink)

	// Rows from registered stand-alone calendars get the committed marker
	// so a later sync never re-creates their events. Linked calendars and
	// the user's own calendar stay unmarked.
	action := ""
	if !src.Linked && src.Project != OwnCalendarAlias {
		action = timesheet.MarkerIgnore
	}
	values = set(values, timesheet.ColAction, action)

	// Required columns must exist even when their value is blank.
	for _, name := range []string{timesheet.ColDate, timesheet.ColProject, timesheet.ColActivity, timesheet.ColAction} {
		if _, ok := idx[name]; !ok {
			return nil, &timesheet.MissingColumnError{Name: name}
		}
	}
	return values, nil
}

func eventSpan(ev *calendar.Event, loc *time.Location) (start, end time.Time, allDay bool, err error) {
	if ev.Start == nil || ev.End == nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("event has no start or end")
	}
	if ev.Start.Date != "" {
		start, err = time.ParseInLocation("2006-01-02", ev.Start.Date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, false, err
		}
		end, err = time.ParseInLocation("2006-01-02", ev.End.Date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, false, err
		}
		return start, end, true, nil
	}
	start, err = time.Parse(time.RFC3339, ev.Start.DateTime)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	end, err = time.Parse(time.RFC3339, ev.End.DateTime)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	return start.In(loc), end.In(loc), false, nil
}

func startKey(ev *calendar.Event) string {
	if ev.Start == nil {
		return ""
	}
	if ev.Start.DateTime != "" {
		return ev.Start.DateTime
	}
	return ev.Start.Date
}

func summaryOf(ev *calendar.Event) string {
	if ev.Summary == "" {
		return "No summary"
	}
	return ev.Summary
}
