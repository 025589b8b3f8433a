// Package characterizer compares two text excerpts through a chat completion service
// and flattens the structured change analysis for tabular export.
package characterizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/yudduy/ira/internal/config"
	"github.com/yudduy/ira/internal/logger"
	"github.com/yudduy/ira/internal/models"
)

// Characterization errors.
var (
	ErrEmptyResponse = errors.New("empty completion response")
	ErrInvalidJSON   = errors.New("completion is not a JSON object")
)

// Completer abstracts the text-understanding service so it can be replaced or mocked.
type Completer interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// Analysis is a parsed change analysis as returned by the service.
type Analysis struct {
	Raw string
}

// Fields flattens the analysis into prefixed columns.
func (a Analysis) Fields() models.Fields {
	return Flatten(a.Raw)
}

// ChangeLevel returns overall_assessment.change_level, or "" when absent.
func (a Analysis) ChangeLevel() string {
	return gjson.Get(a.Raw, "overall_assessment.change_level").String()
}

// Characterizer performs one completion per subject. It never retries.
type Characterizer struct {
	completer Completer
	logger    *logger.Logger
	limit     int
}

// New creates a characterizer that cuts each excerpt to the configured prompt budget.
func New(cfg *config.Config, completer Completer, log *logger.Logger) *Characterizer {
	if log == nil {
		log = logger.Discard()
	}

	return &Characterizer{
		completer: completer,
		logger:    log.With("component", "characterizer"),
		limit:     cfg.LLM.PromptContentLimit,
	}
}

// Characterize compares the before and after texts.
func (c *Characterizer) Characterize(ctx context.Context, pre, post string) (Analysis, error) {
	reply, err := c.completer.Complete(ctx, BuildPrompt(pre, post, c.limit))
	if err != nil {
		c.logger.Error("Analysis failed", "error", err)

		return Analysis{}, fmt.Errorf("completion failed: %w", err)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		c.logger.Error("Analysis failed", "error", ErrEmptyResponse)

		return Analysis{}, ErrEmptyResponse
	}

	if !gjson.Valid(reply) || !gjson.Parse(reply).IsObject() {
		c.logger.Error("Analysis failed", "error", ErrInvalidJSON)

		return Analysis{}, ErrInvalidJSON
	}

	return Analysis{Raw: reply}, nil
}
