package wayback

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/yudduy/ira/internal/config"
	"github.com/yudduy/ira/internal/logger"
	"github.com/yudduy/ira/internal/models"
	"github.com/yudduy/ira/pkg/utils"
)

// noiseSelector matches page chrome that never carries messaging text.
const noiseSelector = "script, style, noscript, nav, header, footer"

// Extractor fetches archived captures and reduces them to normalized text.
type Extractor struct {
	session    *Session
	logger     *logger.Logger
	uiMarker   string
	truncation int
}

// NewExtractor creates an extractor from configuration.
func NewExtractor(cfg *config.Config, session *Session, log *logger.Logger) *Extractor {
	if log == nil {
		log = logger.Discard()
	}

	return &Extractor{
		session:    session,
		logger:     log.With("component", "extractor"),
		uiMarker:   cfg.Archive.UIMarker,
		truncation: cfg.Content.TruncationLimit,
	}
}

// Extract fetches archiveURL and returns its truncated text with the word count of that text.
// An empty page is a success with empty text.
func (e *Extractor) Extract(ctx context.Context, archiveURL string) (models.Content, error) {
	body, err := e.session.Get(ctx, archiveURL)
	if err != nil {
		e.logger.Warn("Content fetch failed", "url", archiveURL, "error", err)

		return models.Content{}, err
	}

	text, err := ExtractText(bytes.NewReader(body), e.uiMarker)
	if err != nil {
		e.logger.Warn("Content parse failed", "url", archiveURL, "error", err)

		return models.Content{}, err
	}

	truncated := utils.TruncateRunes(text, e.truncation)

	return models.Content{
		Text:      truncated,
		WordCount: utils.WordCount(truncated),
	}, nil
}

// ExtractText parses markup, drops noise regions and elements whose id contains uiMarker,
// and returns the remaining visible text joined by single spaces.
func ExtractText(r io.Reader, uiMarker string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse markup: %w", err)
	}

	doc.Find(noiseSelector).Remove()

	if uiMarker != "" {
		doc.Find(fmt.Sprintf("[id*=%q]", uiMarker)).Remove()
	}

	var parts []string

	for _, n := range doc.Nodes {
		parts = collectText(n, parts)
	}

	return utils.NormalizeWhitespace(strings.Join(parts, " ")), nil
}

func collectText(n *html.Node, parts []string) []string {
	if n.Type == html.TextNode {
		if s := strings.TrimSpace(n.Data); s != "" {
			parts = append(parts, s)
		}

		return parts
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		parts = collectText(c, parts)
	}

	return parts
}
