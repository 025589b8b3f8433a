// Package pipeline runs the per-subject change analysis across a batch of subjects.
package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yudduy/ira/internal/characterizer"
	"github.com/yudduy/ira/internal/config"
	"github.com/yudduy/ira/internal/logger"
	"github.com/yudduy/ira/internal/models"
)

// SnapshotFinder looks up one snapshot for a domain within a window.
type SnapshotFinder interface {
	FindSnapshot(ctx context.Context, domain, windowID string) (models.Snapshot, error)
}

// ContentExtractor fetches an archived capture and returns its text.
type ContentExtractor interface {
	Extract(ctx context.Context, archiveURL string) (models.Content, error)
}

// Analyzer compares the before and after texts.
type Analyzer interface {
	Characterize(ctx context.Context, pre, post string) (characterizer.Analysis, error)
}

// Runner drives subjects through lookup, extraction and characterization.
type Runner struct {
	finder        SnapshotFinder
	extractor     ContentExtractor
	analyzer      Analyzer
	logger        *logger.Logger
	preWindow     string
	postWindow    string
	maxConcurrent int
}

// NewRunner creates a runner. The first configured window is the before window.
func NewRunner(cfg *config.Config, finder SnapshotFinder, extractor ContentExtractor, analyzer Analyzer, log *logger.Logger) (*Runner, error) {
	windows, err := cfg.Windows()
	if err != nil {
		return nil, fmt.Errorf("invalid windows: %w", err)
	}

	if log == nil {
		log = logger.Discard()
	}

	maxConcurrent := cfg.Runner.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	return &Runner{
		finder:        finder,
		extractor:     extractor,
		analyzer:      analyzer,
		logger:        log,
		preWindow:     windows[0].ID,
		postWindow:    windows[1].ID,
		maxConcurrent: maxConcurrent,
	}, nil
}

// Run processes every subject with at most maxConcurrent in flight and returns one
// record per subject, in input order. Per-subject failures never abort the batch.
func (r *Runner) Run(ctx context.Context, subjects []models.Subject) []models.ChangeRecord {
	records := make([]models.ChangeRecord, len(subjects))

	var done atomic.Int32

	start := time.Now()

	r.logger.Info("Starting analysis", "subjects", len(subjects), "max_concurrent", r.maxConcurrent)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxConcurrent)

	for i, subject := range subjects {
		g.Go(func() error {
			records[i] = r.Process(gCtx, subject)

			r.logger.Info("Subject finished",
				"domain", subject.Domain,
				"status", records[i].Status(),
				"progress", fmt.Sprintf("%d/%d", done.Add(1), len(subjects)))

			return nil
		})
	}

	_ = g.Wait()

	r.logger.Info("Analysis complete", "subjects", len(subjects), "duration", time.Since(start))

	return records
}

// Process runs one subject strictly in order: before lookup, after lookup, before
// extraction, after extraction, characterization. It stops at the first failing stage.
func (r *Runner) Process(ctx context.Context, subject models.Subject) models.ChangeRecord {
	log := r.logger.With("domain", subject.Domain)
	record := models.ChangeRecord{Subject: subject}

	pre, preErr := r.finder.FindSnapshot(ctx, subject.Domain, r.preWindow)
	post, postErr := r.finder.FindSnapshot(ctx, subject.Domain, r.postWindow)

	if preErr != nil || postErr != nil {
		log.Warn("Snapshot lookup failed", "pre_error", errText(preErr), "post_error", errText(postErr))

		record.Outcome = models.InsufficientSnapshots{
			PreError:  errText(preErr),
			PostError: errText(postErr),
		}

		return record
	}

	snapshots := models.SnapshotURLs{Pre: pre.ArchiveURL, Post: post.ArchiveURL}

	preContent, preErr := r.extractor.Extract(ctx, pre.ArchiveURL)
	postContent, postErr := r.extractor.Extract(ctx, post.ArchiveURL)

	if preErr != nil || postErr != nil {
		log.Warn("Content extraction failed", "pre_error", errText(preErr), "post_error", errText(postErr))

		record.Outcome = models.ContentExtractionFailed{
			Snapshots: snapshots,
			PreError:  errText(preErr),
			PostError: errText(postErr),
		}

		return record
	}

	counts := models.WordCounts{Pre: preContent.WordCount, Post: postContent.WordCount}

	analysis, err := r.analyzer.Characterize(ctx, preContent.Text, postContent.Text)
	if err != nil {
		record.Outcome = models.AnalysisError{
			Snapshots:  snapshots,
			WordCounts: counts,
			Message:    err.Error(),
		}

		return record
	}

	log.Debug("Subject analyzed", "change_level", analysis.ChangeLevel())

	record.Outcome = models.Completed{
		Snapshots:  snapshots,
		WordCounts: counts,
		Analysis:   analysis.Fields(),
	}

	return record
}

func errText(err error) string {
	if err == nil {
		return models.NotApplicable
	}

	return err.Error()
}
