// Package wayback queries the historical-snapshot index and extracts readable text from captures.
package wayback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yudduy/ira/pkg/utils"
)

// ErrUnexpectedStatusCode indicates an HTTP response outside the 2xx range.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

// Session is the single outbound HTTP session shared by every subject. Its headers are
// fixed at construction and it holds no per-request state.
type Session struct {
	client  *http.Client
	headers http.Header
	maxBody int64
}

// NewSession creates a session with an identifying user agent, a per-call timeout and a body cap.
func NewSession(userAgent string, timeout time.Duration, maxBodyKb int) *Session {
	if maxBodyKb <= 0 {
		maxBodyKb = 8192
	}

	return &Session{
		client: &http.Client{
			Timeout: timeout,
		},
		headers: utils.BuildHeaders(userAgent, nil),
		maxBody: int64(maxBodyKb) * 1024,
	}
}

// Get fetches rawURL and returns the (size-capped) body. A non-2xx status is an error.
func (s *Session) Get(ctx context.Context, rawURL string) (body []byte, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range s.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d for %s", ErrUnexpectedStatusCode, resp.StatusCode, rawURL)
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, s.maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}
