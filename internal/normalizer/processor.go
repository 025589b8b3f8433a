// Package normalizer turns company export files into analysis subjects.
package normalizer

import (
	"fmt"
	"io"
	"os"

	"github.com/yudduy/ira/internal/logger"
	"github.com/yudduy/ira/internal/models"
)

// DefaultSampleSeed keeps sampled batches reproducible between runs.
const DefaultSampleSeed = 42

// Processor handles reading, validation, and transformation of export files.
type Processor struct {
	validator   *Validator
	transformer *Transformer
	logger      *logger.Logger
	sampleSize  int
	seed        uint64
}

// NewProcessor creates a new processor instance. A sampleSize of 0 keeps every subject.
func NewProcessor(log *logger.Logger, sampleSize int) *Processor {
	if log == nil {
		log = logger.Discard()
	}

	return &Processor{
		validator:   NewValidator(),
		transformer: NewTransformer(),
		logger:      log.With("component", "normalizer"),
		sampleSize:  sampleSize,
		seed:        DefaultSampleSeed,
	}
}

// ProcessFile opens path and processes it.
func (p *Processor) ProcessFile(path string) (subjects []models.Subject, err error) {
	f, err := os.Open(path)
	if err != nil {
		p.logger.Error("Input file could not be opened", "path", path, "error", err)

		return nil, fmt.Errorf("failed to open input: %w", err)
	}

	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close input: %w", closeErr)
		}
	}()

	return p.Process(f)
}

// Process reads an export, validates its columns, and returns cleaned subjects.
func (p *Processor) Process(r io.Reader) ([]models.Subject, error) {
	// 1. Read the table below the detected header
	table, err := ReadTable(r)
	if err != nil {
		return nil, fmt.Errorf("read failed: %w", err)
	}

	if !table.HeaderDetected {
		p.logger.Warn("Could not auto-detect header row, using default row", "row", DefaultHeaderRow+1)
	}

	p.logger.Info("Found header", "line", table.HeaderLine+1)

	// 2. Validate the input data
	if err := p.validator.Validate(table); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// 3. Transform the data
	subjects := p.transformer.Transform(table)

	if p.sampleSize > 0 && len(subjects) > p.sampleSize {
		subjects = Sample(subjects, p.sampleSize, p.seed)
		p.logger.Info("Using a random sample", "size", p.sampleSize)
	}

	p.logger.Info("Loaded subjects for analysis", "count", len(subjects))

	return subjects, nil
}
