package pipeline

import (
	"context"
	"sync"

	"github.com/yudduy/ira/internal/characterizer"
	"github.com/yudduy/ira/internal/models"
)

type lookup struct {
	err      error
	snapshot models.Snapshot
}

type fakeFinder struct {
	results map[string]lookup
	calls   []string
	mu      sync.Mutex
}

func (f *fakeFinder) FindSnapshot(_ context.Context, domain, windowID string) (models.Snapshot, error) {
	f.mu.Lock()
	f.calls = append(f.calls, domain+"/"+windowID)
	f.mu.Unlock()

	res, ok := f.results[windowID]
	if !ok {
		return models.Snapshot{}, context.DeadlineExceeded
	}

	return res.snapshot, res.err
}

type extraction struct {
	err     error
	content models.Content
}

type fakeExtractor struct {
	results map[string]extraction
	calls   []string
	mu      sync.Mutex
}

func (f *fakeExtractor) Extract(_ context.Context, archiveURL string) (models.Content, error) {
	f.mu.Lock()
	f.calls = append(f.calls, archiveURL)
	f.mu.Unlock()

	res := f.results[archiveURL]

	return res.content, res.err
}

type fakeAnalyzer struct {
	err   error
	raw   string
	calls int
	mu    sync.Mutex
}

func (f *fakeAnalyzer) Characterize(_ context.Context, _, _ string) (characterizer.Analysis, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.err != nil {
		return characterizer.Analysis{}, f.err
	}

	return characterizer.Analysis{Raw: f.raw}, nil
}

const (
	preURL  = "https://web.archive.org/web/20220315000001/https://acme.com/about"
	postURL = "https://web.archive.org/web/20230310000009/https://acme.com/about"
)

var acme = models.Subject{Name: "Acme Corp", Website: "https://www.acme.com", Domain: "acme.com"}

func happyFinder() *fakeFinder {
	return &fakeFinder{results: map[string]lookup{
		"pre_ira":  {snapshot: models.Snapshot{Timestamp: "20220315000001", URL: "https://acme.com/about", ArchiveURL: preURL}},
		"post_ira": {snapshot: models.Snapshot{Timestamp: "20230310000009", URL: "https://acme.com/about", ArchiveURL: postURL}},
	}}
}

func happyExtractor() *fakeExtractor {
	return &fakeExtractor{results: map[string]extraction{
		preURL:  {content: models.Content{Text: "before", WordCount: 100}},
		postURL: {content: models.Content{Text: "after", WordCount: 120}},
	}}
}
