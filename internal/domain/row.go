package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Column names of the cleaned dataset.
const (
	ColTreeID       = "Tree ID"
	ColLegalStatus  = "Legal Status"
	ColSpecies      = "Species"
	ColAddress      = "Address"
	ColSiteInfo     = "Site Info"
	ColPlantDate    = "Plant Date"
	ColDBH          = "DBH"
	ColLatitude     = "Latitude"
	ColLongitude    = "Longitude"
	ColNeighborhood = "Analysis Neighborhoods"
)

// RequiredColumns must be present in the header of a cleaned dataset.
var RequiredColumns = []string{ColLatitude, ColLongitude, ColSpecies}

var (
	// ErrMissingColumn is returned when a table lacks a column a stage depends on.
	ErrMissingColumn = errors.New("missing required column")
	// ErrEmptyInput is returned when an input has no header row.
	ErrEmptyInput = errors.New("empty input")
)

// nullTokens are cell values treated as missing, matching the defaults of the
// tooling the dataset is usually exported with.
var nullTokens = map[string]bool{
	"": true, "#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true,
	"-1.#QNAN": true, "-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true,
	"<NA>": true, "N/A": true, "NA": true, "NULL": true, "NaN": true, "None": true,
	"n/a": true, "nan": true, "null": true,
}

// IsNull reports whether a raw cell value represents a missing value.
func IsNull(s string) bool {
	return nullTokens[strings.TrimSpace(s)]
}

// Row is one record keyed by header name.
type Row map[string]string

// Get returns the trimmed value of a column, or "" when the column is absent.
func (r Row) Get(col string) string {
	return strings.TrimSpace(r[col])
}

// Nullable returns nil for missing values and a pointer to the trimmed value otherwise.
func (r Row) Nullable(col string) *string {
	v := r.Get(col)
	if IsNull(v) {
		return nil
	}
	return &v
}

// Table is an in-memory dataset: a header and its rows.
type Table struct {
	Header []string
	Rows   []Row
}

// HasColumn reports whether the header contains col.
func (t *Table) HasColumn(col string) bool {
	for _, h := range t.Header {
		if h == col {
			return true
		}
	}
	return false
}

// Require checks that every named column is present.
func (t *Table) Require(cols ...string) error {
	for _, c := range cols {
		if !t.HasColumn(c) {
			return fmt.Errorf("%w: %q", ErrMissingColumn, c)
		}
	}
	return nil
}
