package wayback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/yudduy/ira/internal/config"
)

var cdxHeader = []string{"urlkey", "timestamp", "original", "mimetype", "statuscode", "digest", "length"}

// sampleCDXRows mirrors a typical index answer for acme.com in the before window.
var sampleCDXRows = [][]string{
	cdxHeader,
	{"com,acme)/random", "20220315000000", "https://acme.com/random", "text/html", "200", "ABC123", "50000"},
	{"com,acme)/about", "20220315000001", "https://acme.com/about", "text/html", "200", "DEF456", "30000"},
	{"com,acme)/products", "20220315000002", "https://acme.com/products", "text/html", "200", "GHI789", "40000"},
}

const sampleHTML = `
<html>
<head><title>Test Company</title></head>
<body>
	<nav>Navigation</nav>
	<header>Header Content</header>
	<main>
		<h1>Welcome to Our Company</h1>
		<p>We are a leading provider of sustainable solutions.</p>
		<p>Our mission is to create a better future through innovation.</p>
	</main>
	<footer>Footer Content</footer>
	<script>console.log('test');</script>
	<style>body { color: black; }</style>
</body>
</html>`

// fakeClock advances only when slept on, so retry and pacing tests never block.
type fakeClock struct {
	now   time.Time
	slept []time.Duration
	mu    sync.Mutex
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
	c.slept = append(c.slept, d)

	return nil
}

func (c *fakeClock) Slept() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]time.Duration(nil), c.slept...)
}

func testConfig(cdxURL string) *config.Config {
	cfg := config.Default()
	cfg.Archive.CDXEndpoint = cdxURL

	return cfg
}

func newTestIndex(t *testing.T, cfg *config.Config, clock *fakeClock) *IndexClient {
	t.Helper()

	session := NewSession(cfg.Archive.UserAgent, 5*time.Second, cfg.Content.MaxBodyKb)

	client, err := NewIndexClient(cfg, session, nil, WithClock(clock.Now, clock.Sleep))
	if err != nil {
		t.Fatalf("NewIndexClient failed: %v", err)
	}

	return client
}

func jsonHandler(t *testing.T, rows [][]string) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(rows); err != nil {
			t.Errorf("Failed to encode rows: %v", err)
		}
	}
}

func htmlServer(t *testing.T, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}
