package normalizer

import (
	"net/url"
	"strings"

	"github.com/yudduy/ira/internal/models"
)

// rejectedHosts are placeholder values seen in exports instead of real websites.
var rejectedHosts = map[string]bool{
	"invalid-url": true,
	"not-a-url":   true,
}

// Transformer handles data format transformations.
type Transformer struct{}

// NewTransformer creates a new transformer instance.
func NewTransformer() *Transformer {
	return &Transformer{}
}

// Transform converts table rows into subjects, dropping rows without a name, a website,
// or a usable domain.
func (t *Transformer) Transform(table *Table) []models.Subject {
	nameCol := table.Column(ColumnCompanies)
	siteCol := table.Column(ColumnWebsite)

	subjects := make([]models.Subject, 0, len(table.Rows))

	for _, row := range table.Rows {
		name := table.Cell(row, nameCol)
		website := table.Cell(row, siteCol)

		if name == "" || website == "" {
			continue
		}

		domain, ok := CleanDomain(website)
		if !ok {
			continue
		}

		subjects = append(subjects, models.Subject{Name: name, Website: website, Domain: domain})
	}

	return subjects
}

// CleanDomain reduces a website value to its lowercase host without a "www." prefix.
// It reports false when no usable host remains.
func CleanDomain(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	host := strings.ToLower(u.Host)
	if host == "" || rejectedHosts[host] {
		return "", false
	}

	return strings.TrimPrefix(host, "www."), true
}
