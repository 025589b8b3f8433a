package normalizer

import (
	"errors"
	"fmt"
	"strings"
)

// Required export columns.
const (
	ColumnCompanies = "Companies"
	ColumnWebsite   = "Website"
)

// Validation errors.
var (
	ErrNilTable       = errors.New("no table to validate")
	ErrMissingColumns = errors.New("csv must contain the columns Companies and Website")
)

// Validator handles data validation.
type Validator struct {
	required []string
}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{required: []string{ColumnCompanies, ColumnWebsite}}
}

// Validate checks that every required column is present.
func (v *Validator) Validate(table *Table) error {
	if table == nil {
		return ErrNilTable
	}

	var missing []string

	for _, col := range v.required {
		if table.Column(col) < 0 {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return nil
}
