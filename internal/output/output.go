// Package output serializes change records as CSV or JSON Lines.
package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/sjson"

	"github.com/yudduy/ira/internal/models"
)

// Supported formats.
const (
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"
)

// ErrUnknownFormat is returned for a format other than csv or jsonl.
var ErrUnknownFormat = errors.New("unknown output format")

// Columns returns the header for records: the base columns any record uses, in their
// fixed order, then every other key in first-appearance order.
func Columns(records []models.ChangeRecord) []string {
	used := make(map[string]bool)

	var extra []string

	base := make(map[string]bool, len(models.BaseColumns))
	for _, c := range models.BaseColumns {
		base[c] = true
	}

	for _, rec := range records {
		for _, f := range rec.Fields() {
			if used[f.Key] {
				continue
			}

			used[f.Key] = true

			if !base[f.Key] {
				extra = append(extra, f.Key)
			}
		}
	}

	cols := make([]string, 0, len(used))

	for _, c := range models.BaseColumns {
		if used[c] {
			cols = append(cols, c)
		}
	}

	return append(cols, extra...)
}

// Write serializes records to w in format.
func Write(w io.Writer, format string, records []models.ChangeRecord) error {
	switch strings.ToLower(format) {
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatJSONL:
		return WriteJSONL(w, records)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFile creates path and writes records to it.
func WriteFile(path, format string, records []models.ChangeRecord) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}

	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close output: %w", closeErr)
		}
	}()

	return Write(f, format, records)
}

// WriteCSV writes a header row and one row per record. Absent and nil values are empty cells.
func WriteCSV(w io.Writer, records []models.ChangeRecord) error {
	cols := Columns(records)
	cw := csv.NewWriter(w)

	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, rec := range records {
		values := rec.Fields().Map()
		row := make([]string, len(cols))

		for i, c := range cols {
			row[i] = formatCell(values[c])
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// WriteJSONL writes one JSON object per record with keys in record order.
func WriteJSONL(w io.Writer, records []models.ChangeRecord) error {
	for _, rec := range records {
		line := []byte("{}")

		for _, f := range rec.Fields() {
			var err error

			line, err = sjson.SetBytes(line, escapeKey(f.Key), f.Value)
			if err != nil {
				return fmt.Errorf("failed to encode %s: %w", f.Key, err)
			}
		}

		line = append(line, '\n')

		if _, err := w.Write(line); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	return nil
}

var keyEscaper = strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`, "#", `\#`, "@", `\@`)

// escapeKey makes a flat key safe to use as an sjson path.
func escapeKey(key string) string {
	return keyEscaper.Replace(key)
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = formatCell(item)
		}

		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(val)
	}
}
