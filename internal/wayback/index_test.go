package wayback

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/yudduy/ira/internal/config"
	"github.com/yudduy/ira/internal/models"
	"github.com/yudduy/ira/internal/retry"
)

func TestFindSnapshot_Success(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, sampleCDXRows))
	defer srv.Close()

	client := newTestIndex(t, testConfig(srv.URL), newFakeClock())

	got, err := client.FindSnapshot(context.Background(), "acme.com", "pre_ira")
	if err != nil {
		t.Fatalf("FindSnapshot failed: %v", err)
	}

	want := models.Snapshot{
		Timestamp:  "20220315000001",
		URL:        "https://acme.com/about",
		ArchiveURL: "https://web.archive.org/web/20220315000001/https://acme.com/about",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestFindSnapshot_QueryParameters(t *testing.T) {
	var gotQuery, gotUA string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")

		jsonHandler(t, sampleCDXRows)(w, r)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	client := newTestIndex(t, cfg, newFakeClock())

	if _, err := client.FindSnapshot(context.Background(), "acme.com", "post_ira"); err != nil {
		t.Fatalf("FindSnapshot failed: %v", err)
	}

	want := "filter=statuscode%3A200&from=20230101&limit=10&output=json&sort=closest&to=20231231&url=acme.com%2F%2A"
	if gotQuery != want {
		t.Errorf("Expected query %q, got %q", want, gotQuery)
	}

	if gotUA != cfg.Archive.UserAgent {
		t.Errorf("Expected user agent %q, got %q", cfg.Archive.UserAgent, gotUA)
	}
}

func TestFindSnapshot_PriorityOrder(t *testing.T) {
	rows := [][]string{
		cdxHeader,
		{"com,acme)/about", "20220315000002", "https://acme.com/about/", "text/html", "200", "A", "1"},
		{"com,acme)/", "20220315000001", "https://acme.com/", "text/html", "200", "B", "1"},
	}

	tests := []struct {
		name      string
		selection string
		targets   []string
		wantURL   string
	}{
		{name: "homepage first", selection: config.SelectionPriority, targets: []string{"/", "/about"}, wantURL: "https://acme.com/"},
		{name: "about first", selection: config.SelectionPriority, targets: []string{"/about", "/"}, wantURL: "https://acme.com/about/"},
		{name: "response order", selection: config.SelectionResponseOrder, targets: []string{"/", "/about"}, wantURL: "https://acme.com/about/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(jsonHandler(t, rows))
			defer srv.Close()

			cfg := testConfig(srv.URL)
			cfg.Archive.Selection = tt.selection
			cfg.Archive.TargetPages = tt.targets

			got, err := newTestIndex(t, cfg, newFakeClock()).FindSnapshot(context.Background(), "acme.com", "pre_ira")
			if err != nil {
				t.Fatalf("FindSnapshot failed: %v", err)
			}

			if got.URL != tt.wantURL {
				t.Errorf("Expected %s, got %s", tt.wantURL, got.URL)
			}
		})
	}
}

func TestFindSnapshot_NoRelevantPages(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		jsonHandler(t, [][]string{
			cdxHeader,
			{"com,acme)/irrelevant", "20220315000000", "https://acme.com/irrelevant", "text/html", "200", "A", "1"},
		})(w, r)
	}))
	defer srv.Close()

	_, err := newTestIndex(t, testConfig(srv.URL), newFakeClock()).FindSnapshot(context.Background(), "acme.com", "pre_ira")

	if !errors.Is(err, ErrNoRelevantPage) {
		t.Fatalf("Expected ErrNoRelevantPage, got %v", err)
	}

	if err.Error() != "no relevant page snapshots found" {
		t.Errorf("Unexpected message: %q", err.Error())
	}

	if hits.Load() != 1 {
		t.Errorf("Expected a single attempt, got %d", hits.Load())
	}
}

func TestFindSnapshot_EmptyResponsesRetried(t *testing.T) {
	bodies := []string{`[["urlkey","timestamp","original"]]`, ``}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			var hits atomic.Int32

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				hits.Add(1)
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			clock := newFakeClock()

			_, err := newTestIndex(t, testConfig(srv.URL), clock).FindSnapshot(context.Background(), "nonexistent.com", "pre_ira")

			if !errors.Is(err, retry.ErrMaxRetriesExceeded) {
				t.Fatalf("Expected ErrMaxRetriesExceeded, got %v", err)
			}

			if hits.Load() != 3 {
				t.Errorf("Expected 3 attempts, got %d", hits.Load())
			}

			// Pacing only: empty answers do not trigger backoff.
			want := []time.Duration{2 * time.Second, 2 * time.Second, 2 * time.Second}
			if diff := cmp.Diff(want, clock.Slept()); diff != "" {
				t.Errorf("Sleep mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFindSnapshot_PersistentTransportFailure(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	clock := newFakeClock()

	_, err := newTestIndex(t, testConfig(srv.URL), clock).FindSnapshot(context.Background(), "acme.com", "pre_ira")

	if !errors.Is(err, retry.ErrMaxRetriesExceeded) {
		t.Errorf("Expected ErrMaxRetriesExceeded, got %v", err)
	}

	if !errors.Is(err, ErrUnexpectedStatusCode) {
		t.Errorf("Expected the transport error to be preserved, got %v", err)
	}

	if hits.Load() != 3 {
		t.Errorf("Expected exactly 3 attempts, got %d", hits.Load())
	}

	// pacing, backoff 2^0, pacing, backoff 2^1, pacing
	want := []time.Duration{2 * time.Second, 1 * time.Second, 2 * time.Second, 2 * time.Second, 2 * time.Second}
	if diff := cmp.Diff(want, clock.Slept()); diff != "" {
		t.Errorf("Sleep mismatch (-want +got):\n%s", diff)
	}
}

func TestFindSnapshot_RecoversAfterTransientFailure(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "slow down", http.StatusTooManyRequests)

			return
		}

		jsonHandler(t, sampleCDXRows)(w, r)
	}))
	defer srv.Close()

	got, err := newTestIndex(t, testConfig(srv.URL), newFakeClock()).FindSnapshot(context.Background(), "acme.com", "pre_ira")
	if err != nil {
		t.Fatalf("FindSnapshot failed: %v", err)
	}

	if got.Timestamp != "20220315000001" {
		t.Errorf("Expected timestamp 20220315000001, got %s", got.Timestamp)
	}
}

func TestFindSnapshot_PacingBetweenLookups(t *testing.T) {
	clock := newFakeClock()

	var (
		mu       sync.Mutex
		hitTimes []time.Time
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hitTimes = append(hitTimes, clock.Now())
		mu.Unlock()

		jsonHandler(t, sampleCDXRows)(w, r)
	}))
	defer srv.Close()

	start := clock.Now()
	client := newTestIndex(t, testConfig(srv.URL), clock)

	for _, window := range []string{"pre_ira", "post_ira"} {
		if _, err := client.FindSnapshot(context.Background(), "acme.com", window); err != nil {
			t.Fatalf("FindSnapshot(%s) failed: %v", window, err)
		}
	}

	mu.Lock()
	defer mu.Unlock()

	if len(hitTimes) != 2 {
		t.Fatalf("Expected 2 index queries, got %d", len(hitTimes))
	}

	if got := hitTimes[0].Sub(start); got < 2*time.Second {
		t.Errorf("Expected the first query to be paced, waited %v", got)
	}

	if got := hitTimes[1].Sub(hitTimes[0]); got < 2*time.Second {
		t.Errorf("Expected queries at least 2s apart, got %v", got)
	}
}

func TestFindSnapshot_UnknownWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("index must not be queried for an unknown window")
	}))
	defer srv.Close()

	_, err := newTestIndex(t, testConfig(srv.URL), newFakeClock()).FindSnapshot(context.Background(), "acme.com", "invalid_window")

	if !errors.Is(err, config.ErrUnknownWindow) {
		t.Errorf("Expected ErrUnknownWindow, got %v", err)
	}
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    []indexRow
		wantErr bool
	}{
		{name: "empty body", body: "  ", want: nil},
		{name: "header only", body: `[["urlkey","timestamp","original"]]`, want: nil},
		{name: "empty array", body: `[]`, want: nil},
		{
			name: "reordered columns",
			body: `[["original","timestamp"],["https://a.com/","20220101000000"]]`,
			want: []indexRow{{Timestamp: "20220101000000", Original: "https://a.com/"}},
		},
		{
			name: "short rows skipped",
			body: `[["urlkey","timestamp","original"],["x"],["k","20220101000000","https://a.com/about"]]`,
			want: []indexRow{{Timestamp: "20220101000000", Original: "https://a.com/about"}},
		},
		{name: "not json", body: `<html>`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIndex([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseIndex error = %v, wantErr %v", err, tt.wantErr)
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Rows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
