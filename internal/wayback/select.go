package wayback

import (
	"net/url"
	"strings"

	"github.com/yudduy/ira/internal/config"
)

// indexRow is one data row of an index response.
type indexRow struct {
	Timestamp string
	Original  string
}

// normalizePath lowercases p and strips trailing slashes; the root path stays "/".
func normalizePath(p string) string {
	p = strings.TrimRight(strings.ToLower(p), "/")
	if p == "" {
		return "/"
	}

	return p
}

func rowPath(r indexRow) (string, bool) {
	u, err := url.Parse(r.Original)
	if err != nil {
		return "", false
	}

	return normalizePath(u.Path), true
}

// selectRow picks the snapshot row for the configured targets.
//
// Under SelectionPriority the target list order decides: the first target present in
// any row wins, taking the earliest such row. Under SelectionResponseOrder the first
// row matching any target wins.
func selectRow(rows []indexRow, targets []string, policy string) (indexRow, bool) {
	paths := make([]string, len(rows))
	valid := make([]bool, len(rows))

	for i, r := range rows {
		paths[i], valid[i] = rowPath(r)
	}

	normalized := make([]string, len(targets))
	for i, t := range targets {
		normalized[i] = normalizePath(t)
	}

	if policy == config.SelectionResponseOrder {
		for i, r := range rows {
			if !valid[i] {
				continue
			}

			for _, t := range normalized {
				if paths[i] == t {
					return r, true
				}
			}
		}

		return indexRow{}, false
	}

	for _, t := range normalized {
		for i, r := range rows {
			if valid[i] && paths[i] == t {
				return r, true
			}
		}
	}

	return indexRow{}, false
}
