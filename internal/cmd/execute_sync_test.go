package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"sheetsync/internal/config"
)

func swapSheetsService(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := sheets.NewService(context.Background(),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	orig := newSheetsService
	t.Cleanup(func() { newSheetsService = orig })
	newSheetsService = func(context.Context, *config.Config) (*sheets.Service, error) { return svc, nil }
}

func swapCalendarService(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := calendar.NewService(context.Background(),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	orig := newCalendarService
	t.Cleanup(func() { newCalendarService = orig })
	newCalendarService = func(context.Context, *config.Config) (*calendar.Service, error) { return svc, nil }
}

func TestExecuteSyncCreatesAndCommits(t *testing.T) {
	var batchBody struct {
		Data []struct {
			Range  string  `json:"range"`
			Values [][]any `json:"values"`
		} `json:"data"`
	}

	swapSheetsService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "config!A2:C"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"values": [][]any{{"cal-acme", "acme"}},
			})
		case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "March!A1:ZZ1"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"values": [][]any{{"Date", "Start time", "Project", "Activity", "Details", "Spent", "Action", "Event id", "Link"}},
			})
		case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "March!A2:ZZ"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"values": [][]any{
					{45000.0, "", "acme", "Coding", "", 2.0, "", "", ""},
				},
			})
		case r.Method == http.MethodPost && strings.Contains(r.URL.Path, "values:batchUpdate"):
			if err := json.NewDecoder(r.Body).Decode(&batchBody); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{})
		default:
			http.NotFound(w, r)
		}
	})

	var createdEvent *calendar.Event
	swapCalendarService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && strings.Contains(r.URL.Path, "calendars/cal-acme/events") {
			var evt calendar.Event
			if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			createdEvent = &evt
			evt.Id = "ev-1"
			evt.HtmlLink = "https://calendar.example/ev-1"
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(evt)
			return
		}
		http.NotFound(w, r)
	})

	cfgPath := writeTestConfig(t, "")
	out := captureStdout(t, func() {
		_ = captureStderr(t, func() {
			if err := Execute([]string{"--json", "--config", cfgPath, "sync", "March"}); err != nil {
				t.Fatalf("Execute: %v", err)
			}
		})
	})

	if createdEvent == nil {
		t.Fatal("no event created")
	}
	if createdEvent.Summary != "Coding" {
		t.Fatalf("summary = %q", createdEvent.Summary)
	}
	if createdEvent.Start == nil || !strings.HasPrefix(createdEvent.Start.DateTime, "2023-03-15T09:00") {
		t.Fatalf("start = %+v", createdEvent.Start)
	}

	if len(batchBody.Data) != 3 {
		t.Fatalf("commit wrote %d ranges", len(batchBody.Data))
	}
	if batchBody.Data[0].Range != "March!G2" || batchBody.Data[0].Values[0][0] != "I" {
		t.Fatalf("first commit cell = %+v", batchBody.Data[0])
	}

	var res struct {
		Created int `json:"created"`
		Deleted int `json:"deleted"`
		Skipped int `json:"skipped"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("json parse: %v\nout=%q", err, out)
	}
	if res.Created != 1 || res.Deleted != 0 || res.Skipped != 0 {
		t.Fatalf("result = %+v", res)
	}
}

func TestExecuteSyncBadDayIsUsageError(t *testing.T) {
	cfgPath := writeTestConfig(t, "")
	_ = captureStderr(t, func() {
		err := Execute([]string{"--config", cfgPath, "sync", "March", "--day", "yesterday"})
		if err == nil {
			t.Fatal("expected error")
		}
		if ExitCode(err) != 2 {
			t.Fatalf("exit code = %d, want 2", ExitCode(err))
		}
	})
}
