package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harrisonrobin/arrange/pkg/auth"
	"github.com/harrisonrobin/arrange/pkg/model"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, tokens auth.TokenSupplier, h http.HandlerFunc) (*CalendarClient, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if got := r.Header.Get("Authorization"); got != "Bearer t0k" {
			t.Errorf("Expected bearer token, got %q", got)
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), tokens,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client, &hits
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestListEntriesFollowsPages(t *testing.T) {
	client, hits := newTestClient(t, auth.StaticSupplier("t0k"), func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || !strings.HasSuffix(r.URL.Path, "/calendars/cal/events") {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("singleEvents") != "true" {
			t.Error("Expected singleEvents=true")
		}
		if r.URL.Query().Get("pageToken") == "" {
			writeJSON(t, w, calendar.Events{
				Items: []*calendar.Event{{
					Id:      "e1",
					Summary: "First",
					Start:   &calendar.EventDateTime{DateTime: "2025-01-01T10:00:00Z"},
					End:     &calendar.EventDateTime{DateTime: "2025-01-01T11:00:00Z"},
					ExtendedProperties: &calendar.EventExtendedProperties{
						Private: map[string]string{categoriesProperty: `["home","errands"]`},
					},
				}},
				NextPageToken: "p2",
			})
			return
		}
		writeJSON(t, w, calendar.Events{Items: []*calendar.Event{
			{Id: "e2", Summary: "Second", Start: &calendar.EventDateTime{Date: "2025-01-02"}, End: &calendar.EventDateTime{Date: "2025-01-03"}},
			{Id: "e3", Summary: "Gone", Status: "cancelled"},
		}})
	})

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	entries, err := client.ListEntries(context.Background(), "cal", start, start.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if atomic.LoadInt32(hits) != 2 {
		t.Errorf("Expected 2 page requests, got %d", *hits)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "e1" || len(entries[0].Categories) != 2 || entries[0].Categories[1] != "errands" {
		t.Errorf("unexpected first entry %+v", entries[0])
	}
	if entries[1].Start == nil || !entries[1].Start.Equal(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected all-day start %v", entries[1].Start)
	}
	if entries[1].Categories == nil {
		t.Error("Expected empty categories, got nil")
	}
}

func TestPatchEntrySendsOnlySetFields(t *testing.T) {
	client, _ := newTestClient(t, auth.StaticSupplier("t0k"), func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("Expected PATCH, got %s", r.Method)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode patch: %v", err)
			return
		}
		for _, k := range []string{"start", "end", "extendedProperties", "summary"} {
			if _, ok := body[k]; ok {
				t.Errorf("unexpected %q in patch", k)
			}
		}
		if body["description"] != "payload" || body["colorId"] != "11" {
			t.Errorf("unexpected patch body %v", body)
		}
		writeJSON(t, w, calendar.Event{Id: "e1", Summary: "Kept", Description: "payload", ColorId: "11"})
	})

	got, err := client.PatchEntry(context.Background(), "cal", "e1", model.EntryPatch{
		Body:    model.Some("payload"),
		ColorID: model.Some("11"),
	})
	if err != nil {
		t.Fatalf("PatchEntry failed: %v", err)
	}
	if got.Subject != "Kept" || got.Body != "payload" {
		t.Errorf("unexpected entry %+v", got)
	}
}

func TestCreateEntryStoresCategories(t *testing.T) {
	client, _ := newTestClient(t, auth.StaticSupplier("t0k"), func(w http.ResponseWriter, r *http.Request) {
		var ev calendar.Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			t.Errorf("decode insert: %v", err)
			return
		}
		if ev.ExtendedProperties == nil || ev.ExtendedProperties.Private[categoriesProperty] != `["work"]` {
			t.Errorf("categories not stored: %+v", ev.ExtendedProperties)
		}
		if ev.Start == nil || ev.Start.DateTime != "2025-03-01T09:00:00Z" {
			t.Errorf("unexpected start %+v", ev.Start)
		}
		ev.Id = "new1"
		writeJSON(t, w, ev)
	})

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	got, err := client.CreateEntry(context.Background(), "cal", model.Entry{
		Subject: "Write", Categories: []string{"work"}, Start: &start, End: &end, Body: "b",
	})
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	if got.ID != "new1" || got.Categories[0] != "work" {
		t.Errorf("unexpected entry %+v", got)
	}
}

func TestNotFoundAndDelete(t *testing.T) {
	client, _ := newTestClient(t, auth.StaticSupplier("t0k"), func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"code":404,"message":"Not Found"}}`))
		}
	})

	_, err := client.GetEntry(context.Background(), "cal", "missing")
	if !IsNotFound(err) {
		t.Errorf("Expected not found, got %v", err)
	}
	if errors.Is(err, auth.ErrToken) {
		t.Error("remote failure must not look like a token failure")
	}
	if err := client.DeleteEntry(context.Background(), "cal", "e1"); err != nil {
		t.Errorf("DeleteEntry failed: %v", err)
	}
}

func TestTokenFailureSendsNothing(t *testing.T) {
	client, hits := newTestClient(t, auth.StaticSupplier(""), func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := client.GetEntry(context.Background(), "cal", "e1")
	if !errors.Is(err, auth.ErrToken) {
		t.Errorf("Expected ErrToken, got %v", err)
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Errorf("Expected no requests, got %d", *hits)
	}
}

func TestResolveCalendar(t *testing.T) {
	client, _ := newTestClient(t, auth.StaticSupplier("t0k"), func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, calendar.CalendarList{Items: []*calendar.CalendarListEntry{
			{Id: "primary", Summary: "me@example.test"},
			{Id: "tasks-id", Summary: "Tasks"},
		}})
	})
	id, err := client.ResolveCalendar(context.Background(), "Tasks")
	if err != nil || id != "tasks-id" {
		t.Errorf("Expected tasks-id, got %q, %v", id, err)
	}
	if _, err := client.ResolveCalendar(context.Background(), "Nope"); err == nil {
		t.Error("Expected error for unknown calendar")
	}
}
