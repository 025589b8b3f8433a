package normalizer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultHeaderRow is the 0-based header line used when detection fails.
const DefaultHeaderRow = 6

// ErrHeaderOutOfRange is returned when the header line lies beyond the end of the input.
var ErrHeaderOutOfRange = errors.New("header row beyond end of input")

// Table is the parsed data section of an export.
type Table struct {
	Header         []string
	Rows           [][]string
	HeaderLine     int
	HeaderDetected bool
}

// Column returns the index of name in the header, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}

	return -1
}

// Cell returns row[col] trimmed, or "" when the row is short.
func (t *Table) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[col])
}

// FindHeaderLine returns the first line that names both Companies and Website, or
// contains Company ID.
func FindHeaderLine(lines []string) (int, bool) {
	for i, line := range lines {
		if strings.Contains(line, "Companies") && strings.Contains(line, "Website") {
			return i, true
		}

		if strings.Contains(line, "Company ID") {
			return i, true
		}
	}

	return DefaultHeaderRow, false
}

// ReadTable skips the preamble above the header and parses the rest as CSV.
func ReadTable(r io.Reader) (*Table, error) {
	var lines []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	headerLine, detected := FindHeaderLine(lines)
	if headerLine >= len(lines) {
		return nil, fmt.Errorf("%w: line %d of %d", ErrHeaderOutOfRange, headerLine+1, len(lines))
	}

	cr := csv.NewReader(strings.NewReader(strings.Join(lines[headerLine:], "\n")))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty header", ErrHeaderOutOfRange)
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	return &Table{
		Header:         header,
		Rows:           records[1:],
		HeaderLine:     headerLine,
		HeaderDetected: detected,
	}, nil
}
