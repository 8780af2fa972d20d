// Package domain models the municipal street-tree dataset and the pure
// transformations that turn it into map-ready features.
//
// # Data Source
//
// Rows originate from the city's Street Tree List CSV export. The clean stage
// renames the legacy "q"-prefixed columns, drops planning-only columns and
// applies a table of known data-entry fixes before anything else reads it.
//
// # Dataset Conventions
//
// Species format:
//
//	Raw export:   "<scientific> :: <common>"   e.g. "Quercus agrifolia :: Coast Live Oak"
//	Normalized:   "<Common> (<scientific>)"    e.g. "Coast Live Oak (Quercus agrifolia)"
//
// A species string is parsed exactly once into a [Species] value whose Form
// records which of the two shapes it arrived in. Strings containing "(" are
// always treated as normalized and are never re-split on "::".
//
// Genus:
//
//	First whitespace-delimited token of the scientific name. A single-token or
//	empty scientific name has no genus ("").
//
// Coordinates:
//
//	WGS-84 decimal degrees. Blank, NaN, infinite or unparseable values make the
//	row unusable and it is skipped. Valid values are rounded to 6 decimal places.
//
// DBH:
//
//	Diameter at breast height in inches. Blank or unparseable values are null;
//	parsed values are clamped to a minimum of 1.
//
// Neighborhood codes:
//
//	"Analysis Neighborhoods" holds the 1-based rank of the neighborhood name in
//	the sorted list of names. Lookup keys are the code formatted as a float
//	("5" -> "5.0"). Codes without an entry resolve to "Unknown".
//
// # Colors
//
// Every genus gets a hue proportional to its rank in the sorted genus list at
// 40% saturation and 60% lightness. See [AssignColors].
package domain
