package report

import (
	"testing"
	"time"

	"sheetsync/internal/timesheet"
)

var testHeader = []string{"Date", "Start time", "Project", "Activity", "Details", "Spent", "Event id", "Link", "Action"}

// serial 45000 = 2023-03-15
const day1 = 45000.0

func buildRows(raw [][]any) []timesheet.Row {
	rows := make([]timesheet.Row, len(raw))
	for i, r := range raw {
		rows[i] = timesheet.RowOf(r)
	}
	return rows
}

func testOpts() Options {
	return Options{WorkingHours: 8, Location: time.UTC}
}

func TestBuildTotalsPerDayAndProject(t *testing.T) {
	rows := buildRows([][]any{
		{day1, "", "acme", "a", "", 2.0, "", "", "I"},
		{day1, "", "acme", "b", "", 1.5, "", "", ""},
		{day1, "", "side", "c", "", 1.0, "", "", ""},
		{day1 + 1, "", "acme", "d", "", 3.0, "", "", ""},
	})
	rep, err := Build(testHeader, rows, testOpts(), Filter{})
	if err != nil {
		t.Fatal(err)
	}
	want := []Row{
		{Date: "2023-03-15", Project: "acme", Hours: 3.5},
		{Date: "2023-03-15", Project: "side", Hours: 1},
		{Date: "2023-03-16", Project: "acme", Hours: 3},
	}
	if len(rep.Rows) != len(want) {
		t.Fatalf("rows = %+v", rep.Rows)
	}
	for i, w := range want {
		if rep.Rows[i] != w {
			t.Fatalf("row %d = %+v, want %+v", i, rep.Rows[i], w)
		}
	}
	if rep.Total != 7.5 {
		t.Fatalf("total = %v", rep.Total)
	}
}

func TestBuildFullDayAdjustment(t *testing.T) {
	// 3h logged on X, full day on Y: Y resolves to 8 - 3 + 0 = 5.
	rows := buildRows([][]any{
		{day1, "", "x", "logged", "", 3.0, "", "", ""},
		{day1, "", "y", "rest of day", "", "", "", "", ""},
	})
	rep, err := Build(testHeader, rows, testOpts(), Filter{})
	if err != nil {
		t.Fatal(err)
	}
	byProject := map[string]float64{}
	for _, r := range rep.Rows {
		byProject[r.Project] = r.Hours
	}
	if byProject["y"] != 5 {
		t.Fatalf("full-day project hours = %v, want 5", byProject["y"])
	}
	if byProject["x"] != 3 {
		t.Fatalf("logged project hours = %v", byProject["x"])
	}
}

func TestBuildFullDayAdjustmentAddsOvertimeBack(t *testing.T) {
	opts := testOpts()
	opts.OvertimeFrom = "18:00"
	// 3h regular + 2h overtime on X; full day on Y resolves to 8 - 5 + 2 = 5.
	rows := buildRows([][]any{
		{day1, "10:00", "x", "regular", "", 3.0, "", "", ""},
		{day1, "18:30", "x", "late", "", 2.0, "", "", ""},
		{day1, "", "y", "rest", "", "", "", "", ""},
	})
	rep, err := Build(testHeader, rows, opts, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range rep.Rows {
		if r.Project == "y" && r.Hours != 5 {
			t.Fatalf("full-day hours = %v, want 5", r.Hours)
		}
	}
}

func TestBuildOvertimeSplit(t *testing.T) {
	opts := testOpts()
	opts.OvertimeFrom = "18:00"
	rows := buildRows([][]any{
		{day1, "17:30", "acme", "before threshold", "", 2.0, "", "", ""},
		{day1 + 1, "18:30", "acme", "after threshold", "", 2.0, "", "", ""},
	})

	rep, err := Build(testHeader, rows, opts, Filter{OvertimeOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	// 17:30 start: total counts the 2h but overtime is zero, so the row is
	// dropped in overtime-only mode. 18:30 start: the full 2h is overtime.
	if len(rep.Rows) != 1 {
		t.Fatalf("rows = %+v", rep.Rows)
	}
	if rep.Rows[0].Date != "2023-03-16" || rep.Rows[0].Hours != 2 {
		t.Fatalf("overtime row = %+v", rep.Rows[0])
	}

	full, err := Build(testHeader, rows, opts, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if full.Total != 4 {
		t.Fatalf("total hours = %v, want 4", full.Total)
	}
}

func TestBuildDuplicateFullDayWarns(t *testing.T) {
	rows := buildRows([][]any{
		{day1, "", "x", "full 1", "", "", "", "", ""},
		{day1, "", "y", "full 2", "", "", "", "", ""},
	})
	rep, err := Build(testHeader, rows, testOpts(), Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.WarnLines) != 1 || rep.WarnLines[0] != 3 {
		t.Fatalf("warn lines = %v", rep.WarnLines)
	}
	// Only the first full-day entry gets the adjustment.
	for _, r := range rep.Rows {
		if r.Project == "x" && r.Hours != 8 {
			t.Fatalf("first full-day hours = %v, want 8", r.Hours)
		}
	}
}

func TestBuildSkipsSuppressedRows(t *testing.T) {
	rows := buildRows([][]any{
		{day1, "", "acme", "kept", "", 2.0, "", "", ""},
		{day1, "", "acme", "suppressed", "", 4.0, "", "", "P"},
	})
	rep, err := Build(testHeader, rows, testOpts(), Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Total != 2 {
		t.Fatalf("total = %v, suppressed row must not count", rep.Total)
	}
}

func TestBuildFilters(t *testing.T) {
	rows := buildRows([][]any{
		{day1, "", "acme", "a", "", 2.0, "", "", ""},
		{day1, "", "side", "b", "", 1.0, "", "", ""},
		{day1 + 1, "", "acme", "c", "", 3.0, "", "", ""},
	})
	rep, err := Build(testHeader, rows, testOpts(), Filter{
		Days:     []string{"2023-03-15"},
		Projects: []string{"acme"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Rows) != 1 || rep.Rows[0].Hours != 2 {
		t.Fatalf("rows = %+v", rep.Rows)
	}
}

func TestBuildTextSpentContributesNothing(t *testing.T) {
	rows := buildRows([][]any{
		{day1, "", "acme", "note", "", "sick leave", "", "", ""},
		{day1, "", "acme", "work", "", 2.0, "", "", ""},
	})
	rep, err := Build(testHeader, rows, testOpts(), Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Total != 2 {
		t.Fatalf("total = %v", rep.Total)
	}
	// The text row is not a full-day marker either.
	for _, r := range rep.Rows {
		if r.Hours > 2 {
			t.Fatalf("unexpected full-day expansion: %+v", r)
		}
	}
}
