package wayback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yudduy/ira/internal/config"
	"github.com/yudduy/ira/internal/logger"
	"github.com/yudduy/ira/internal/models"
	"github.com/yudduy/ira/internal/retry"
)

// Index lookup errors.
var (
	ErrNoRelevantPage = errors.New("no relevant page snapshots found")
	ErrNoData         = errors.New("no snapshot data in index response")
	ErrMalformedIndex = errors.New("malformed index response")
)

// IndexClient finds one representative snapshot per domain and window.
type IndexClient struct {
	session   *Session
	logger    *logger.Logger
	windows   map[string]models.Window
	policy    retry.Policy
	endpoint  string
	webBase   string
	selection string
	targets   []string
	limit     int
}

// IndexOption customizes an IndexClient.
type IndexOption func(*indexOptions)

type indexOptions struct {
	now   func() time.Time
	sleep retry.Sleeper
}

// WithClock injects the clock and sleeper used for pacing and backoff.
func WithClock(now func() time.Time, sleep retry.Sleeper) IndexOption {
	return func(o *indexOptions) {
		o.now = now
		o.sleep = sleep
	}
}

// NewIndexClient creates an index client from configuration.
func NewIndexClient(cfg *config.Config, session *Session, log *logger.Logger, opts ...IndexOption) (*IndexClient, error) {
	windows, err := cfg.Windows()
	if err != nil {
		return nil, fmt.Errorf("invalid windows: %w", err)
	}

	o := &indexOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if log == nil {
		log = logger.Discard()
	}

	rp := cfg.RetryPolicy()
	pacer := retry.NewPacer(rp.Pacing, o.now, o.sleep)

	byID := make(map[string]models.Window, len(windows))
	for _, w := range windows {
		byID[w.ID] = w
	}

	return &IndexClient{
		session: session,
		logger:  log.With("component", "index"),
		windows: byID,
		policy: retry.Policy{
			MaxAttempts: rp.MaxAttempts,
			Before:      pacer.Wait,
			Backoff:     rp.GetRetryDelay,
			Sleep:       o.sleep,
		},
		endpoint:  cfg.Archive.CDXEndpoint,
		webBase:   strings.TrimRight(cfg.Archive.WebBase, "/"),
		selection: cfg.Archive.Selection,
		targets:   cfg.Archive.TargetPages,
		limit:     cfg.Archive.Limit,
	}, nil
}

// FindSnapshot returns the selected snapshot for domain within the window, or the failure reason.
func (c *IndexClient) FindSnapshot(ctx context.Context, domain, windowID string) (models.Snapshot, error) {
	window, ok := c.windows[windowID]
	if !ok {
		return models.Snapshot{}, fmt.Errorf("%w: %s", config.ErrUnknownWindow, windowID)
	}

	query := c.queryURL(domain, window)

	return retry.Do(ctx, c.policy, func(ctx context.Context, attempt int) (models.Snapshot, error) {
		c.logger.Debug("Querying index", "domain", domain, "window", windowID, "attempt", attempt+1)

		body, err := c.session.Get(ctx, query)
		if err != nil {
			c.logger.Warn("Index query failed", "domain", domain, "attempt", attempt+1, "error", err)

			return models.Snapshot{}, err
		}

		rows, err := parseIndex(body)
		if err != nil {
			c.logger.Warn("Index response unreadable", "domain", domain, "attempt", attempt+1, "error", err)

			return models.Snapshot{}, err
		}

		if len(rows) == 0 {
			return models.Snapshot{}, retry.Again(ErrNoData)
		}

		row, found := selectRow(rows, c.targets, c.selection)
		if !found {
			return models.Snapshot{}, retry.Permanent(ErrNoRelevantPage)
		}

		return models.Snapshot{
			Timestamp:  row.Timestamp,
			URL:        row.Original,
			ArchiveURL: c.archiveURL(row),
		}, nil
	})
}

func (c *IndexClient) queryURL(domain string, w models.Window) string {
	params := url.Values{}
	params.Set("url", domain+"/*")
	params.Set("output", "json")
	params.Set("from", w.Start.Format(config.DateLayout))
	params.Set("to", w.End.Format(config.DateLayout))
	params.Set("limit", strconv.Itoa(c.limit))
	params.Set("sort", "closest")
	params.Set("filter", "statuscode:200")

	return c.endpoint + "?" + params.Encode()
}

func (c *IndexClient) archiveURL(r indexRow) string {
	return fmt.Sprintf("%s/%s/%s", c.webBase, r.Timestamp, r.Original)
}

// parseIndex decodes a JSON array-of-arrays response. The first row is the header;
// an empty body or a header-only response yields no rows.
func parseIndex(body []byte) ([]indexRow, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}

	var table [][]string
	if err := json.Unmarshal(body, &table); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedIndex, err)
	}

	if len(table) <= 1 {
		return nil, nil
	}

	tsCol, origCol := 1, 2

	for i, name := range table[0] {
		switch name {
		case "timestamp":
			tsCol = i
		case "original":
			origCol = i
		}
	}

	rows := make([]indexRow, 0, len(table)-1)

	for _, rec := range table[1:] {
		if len(rec) <= tsCol || len(rec) <= origCol {
			continue
		}

		rows = append(rows, indexRow{Timestamp: rec[tsCol], Original: rec[origCol]})
	}

	return rows, nil
}
