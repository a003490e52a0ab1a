package engine

import (
	"fmt"
	"strings"
	"time"

	"sheetsync/internal/timesheet"
)

// ActionFilterPending is the sentinel action-filter value selecting only rows
// whose marker is still empty. When present it wins over any other allowed
// marker.
const ActionFilterPending = "empty"

// Filter narrows which rows a run touches. Zero value allows everything.
type Filter struct {
	days     map[string]struct{} // "2006-01-02"
	projects map[string]struct{}
	actions  map[string]struct{}
}

// WithDays restricts the run to the given dates, "YYYY-MM-DD".
func (f Filter) WithDays(days []string) (Filter, error) {
	if len(days) == 0 {
		return f, nil
	}
	f.days = make(map[string]struct{}, len(days))
	for _, d := range days {
		t, err := time.Parse("2006-01-02", strings.TrimSpace(d))
		if err != nil {
			return f, fmt.Errorf("bad day %q (expected YYYY-MM-DD): %w", d, err)
		}
		f.days[t.Format("2006-01-02")] = struct{}{}
	}
	return f, nil
}

// WithProjects restricts the run to the given project aliases.
func (f Filter) WithProjects(projects []string) Filter {
	if len(projects) == 0 {
		return f
	}
	f.projects = make(map[string]struct{}, len(projects))
	for _, p := range projects {
		f.projects[strings.TrimSpace(p)] = struct{}{}
	}
	return f
}

// WithActions restricts the run to rows carrying one of the given markers,
// or to pending rows only when the set contains ActionFilterPending.
func (f Filter) WithActions(actions []string) Filter {
	if len(actions) == 0 {
		return f
	}
	f.actions = make(map[string]struct{}, len(actions))
	for _, a := range actions {
		f.actions[strings.TrimSpace(a)] = struct{}{}
	}
	return f
}

func (f Filter) allowsDay(date time.Time) bool {
	if f.days == nil {
		return true
	}
	_, ok := f.days[date.Format("2006-01-02")]
	return ok
}

func (f Filter) allowsProject(project string) bool {
	if f.projects == nil {
		return true
	}
	_, ok := f.projects[project]
	return ok
}

func (f Filter) allowsAction(a timesheet.Action) bool {
	if f.actions == nil {
		return true
	}
	if _, pendingOnly := f.actions[ActionFilterPending]; pendingOnly {
		return a.Raw == ""
	}
	_, ok := f.actions[a.Raw]
	return ok
}
