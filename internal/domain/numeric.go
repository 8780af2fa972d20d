package domain

import (
	"math"
	"strconv"
	"strings"
)

// coordinatePlaces is the precision kept for latitude and longitude (~0.1 m).
const coordinatePlaces = 6

// CleanNumeric parses a numeric cell. Missing, unparseable and non-finite
// values yield nil rather than zero.
func CleanNumeric(s string) *float64 {
	s = strings.TrimSpace(s)
	if IsNull(s) {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// parseCoordinate returns a coordinate rounded to 6 decimal places and false
// when the value cannot be used.
func parseCoordinate(s string) (float64, bool) {
	v := CleanNumeric(s)
	if v == nil {
		return 0, false
	}
	return roundTo(*v, coordinatePlaces), true
}

// roundTo rounds the stored binary value, so 37.0000005 (stored just below
// the midpoint) becomes 37.
func roundTo(v float64, places int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// parseID parses an integer identifier that may have been exported as a float ("123.0").
func parseID(s string) *int64 {
	s = strings.TrimSpace(s)
	if IsNull(s) {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &n
	}
	v := CleanNumeric(s)
	if v == nil {
		return nil
	}
	n := int64(*v)
	return &n
}

// formatDecimal renders a float the way lookup keys and cleaned cells are written:
// integral values keep one decimal place ("5" -> "5.0").
func formatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
