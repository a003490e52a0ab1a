// Package gcal is the Google Calendar adapter.
package gcal

import (
	"context"
	"errors"
	"net/http"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"sheetsync/internal/engine"
	"sheetsync/internal/timesheet"
)

type Client struct {
	svc *calendar.Service
}

func New(svc *calendar.Service) *Client {
	return &Client{svc: svc}
}

// CreateEvent inserts a timed or all-day event. Timed events use the slot's
// concrete instants; all-day events span the calendar day (end date is
// exclusive, matching the slot's day+1).
func (c *Client) CreateEvent(ctx context.Context, calendarID string, req engine.EventRequest) (engine.EventResult, error) {
	event := &calendar.Event{
		Summary:     req.Summary,
		Description: req.Details,
	}
	if req.AllDay {
		event.Start = &calendar.EventDateTime{Date: req.Start.Format("2006-01-02")}
		event.End = &calendar.EventDateTime{Date: req.End.Format("2006-01-02")}
	} else {
		event.Start = &calendar.EventDateTime{DateTime: req.Start.Format(time.RFC3339)}
		event.End = &calendar.EventDateTime{DateTime: req.End.Format(time.RFC3339)}
	}

	created, err := c.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return engine.EventResult{}, wrapErr(err)
	}
	return engine.EventResult{ID: created.Id, Link: created.HtmlLink}, nil
}

// DeleteEvent removes an event. A not-found response counts as success: the
// event is already gone and the row can be cleared.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	err := c.svc.Events.Delete(calendarID, eventID).Context(ctx).Do()
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone) {
		return nil
	}
	return wrapErr(err)
}

// EventsOn lists a calendar's events within one calendar day, expanded to
// single events and ordered by start time.
func (c *Client) EventsOn(ctx context.Context, calendarID string, day time.Time, tz string) ([]*calendar.Event, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Second)

	call := c.svc.Events.List(calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")
	if tz != "" {
		call = call.TimeZone(tz)
	}
	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, wrapErr(err)
	}
	return resp.Items, nil
}

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
