package cmd

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func reportSheetsHandler(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "March!A1:ZZ1"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"values": [][]any{{"Date", "Start time", "Project", "Activity", "Details", "Spent", "Action", "Event id", "Link"}},
			})
		case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "March!A2:ZZ"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"values": [][]any{
					{45000.0, "", "acme", "Coding", "", 3.0, "I", "ev-1", ""},
					{45000.0, "", "side", "Review", "", 2.0, "I", "ev-2", ""},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}
}

func TestExecuteReportJSON(t *testing.T) {
	swapSheetsService(t, reportSheetsHandler(t))

	cfgPath := writeTestConfig(t, "")
	out := captureStdout(t, func() {
		if err := Execute([]string{"--json", "--config", cfgPath, "report", "March"}); err != nil {
			t.Fatalf("Execute: %v", err)
		}
	})

	var rep struct {
		Rows []struct {
			Date    string  `json:"date"`
			Project string  `json:"project"`
			Hours   float64 `json:"hours"`
		} `json:"rows"`
		Total float64 `json:"total"`
	}
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("json parse: %v\nout=%q", err, out)
	}
	if len(rep.Rows) != 2 || rep.Total != 5 {
		t.Fatalf("report = %+v", rep)
	}
	if rep.Rows[0].Date != "2023-03-15" {
		t.Fatalf("date = %q", rep.Rows[0].Date)
	}
}

func TestExecuteReportTable(t *testing.T) {
	swapSheetsService(t, reportSheetsHandler(t))

	cfgPath := writeTestConfig(t, "")
	out := captureStdout(t, func() {
		if err := Execute([]string{"--config", cfgPath, "report", "March"}); err != nil {
			t.Fatalf("Execute: %v", err)
		}
	})
	if !strings.Contains(out, "acme") || !strings.Contains(out, "5.00") {
		t.Fatalf("out = %q", out)
	}
}
