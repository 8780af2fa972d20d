// Command validate performs end-to-end integrity checks between a cleaned
// street tree CSV and the artifacts generated from it: the GeoJSON
// FeatureCollection and, optionally, the flat trees lookup. It re-runs the
// normalization on every row and verifies counts, geometry, colors,
// neighborhood names and lookup parity.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -csv data/mock/street_trees_sample.csv \
//	  -geojson data/trees.geojson \
//	  -genera data/mock/genus_list_sample.json \
//	  -neighborhoods data/neighborhood_mapping.json \
//	  -lookup data/trees-lookup.json
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/couchcryptid/street-tree-map/internal/adapter/csvfile"
	"github.com/couchcryptid/street-tree-map/internal/adapter/geojsonfile"
	"github.com/couchcryptid/street-tree-map/internal/adapter/jsonfile"
	"github.com/couchcryptid/street-tree-map/internal/domain"
	"github.com/google/go-cmp/cmp"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// inputs holds every loaded artifact.
type inputs struct {
	table    *domain.Table
	features []domain.TreeFeature
	genera   []string
	lookup   domain.NeighborhoodLookup
	props    []domain.TreeProperties // nil when no lookup file was given
}

func main() {
	csvPath := flag.String("csv", "", "path to the cleaned street tree CSV")
	geoPath := flag.String("geojson", "", "path to the generated FeatureCollection")
	generaPath := flag.String("genera", "", "path to the genus list JSON used for colors")
	nhoodPath := flag.String("neighborhoods", "", "path to the neighborhood lookup JSON")
	lookupPath := flag.String("lookup", "", "optional path to the flat trees lookup JSON")
	flag.Parse()

	if *csvPath == "" || *geoPath == "" || *generaPath == "" || *nhoodPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	in, err := load(*csvPath, *geoPath, *generaPath, *nhoodPath, *lookupPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
	if code := run(in); code != 0 {
		os.Exit(code)
	}
}

func load(csvPath, geoPath, generaPath, nhoodPath, lookupPath string) (inputs, error) {
	var in inputs
	var err error

	in.table, err = csvfile.NewReader(csvPath).ReadTable(context.Background())
	if err != nil {
		return in, fmt.Errorf("load CSV: %w", err)
	}
	in.features, err = geojsonfile.ReadFile(geoPath)
	if err != nil {
		return in, fmt.Errorf("load GeoJSON: %w", err)
	}
	if err := jsonfile.Read(generaPath, &in.genera); err != nil {
		return in, fmt.Errorf("load genus list: %w", err)
	}
	if err := jsonfile.Read(nhoodPath, &in.lookup); err != nil {
		return in, fmt.Errorf("load neighborhoods: %w", err)
	}
	if lookupPath != "" {
		if err := jsonfile.Read(lookupPath, &in.props); err != nil {
			return in, fmt.Errorf("load trees lookup: %w", err)
		}
	}
	return in, nil
}

func run(in inputs) int {
	fmt.Println("=== Street Tree Data Integrity Validation ===")
	fmt.Println()

	colors := domain.AssignColors(in.genera)
	phases := []*phase{
		validateFeatureParity(in, colors),
		validateGeometry(in.features),
		validateColors(in.features, colors),
		validateProperties(in.features, in.lookup),
	}
	if in.props != nil {
		phases = append(phases, validateLookupParity(in.features, in.props))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d CSV rows, %d features, %d genera, %d neighborhoods\n",
		len(in.table.Rows), len(in.features), len(colors), len(in.lookup))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Feature Parity ──
// Re-normalizes every CSV row and compares with the decoded features, in order.

func validateFeatureParity(in inputs, colors domain.ColorMap) *phase {
	p := &phase{name: "Phase 1: Feature Parity (GeoJSON vs CSV)"}

	if err := in.table.Require(domain.RequiredColumns...); err != nil {
		p.errorf("CSV: %v", err)
		return p
	}

	var expected []domain.TreeFeature
	skipped := map[domain.SkipReason]int{}
	for _, row := range in.table.Rows {
		f, skip := domain.NormalizeRow(row, colors, in.lookup)
		if skip != domain.SkipNone {
			skipped[skip]++
			continue
		}
		expected = append(expected, f)
	}
	for _, reason := range domain.SkipReasons {
		fmt.Printf("  Note: %d row(s) skipped for %s\n", skipped[reason], reason)
	}

	if len(expected) != len(in.features) {
		p.errorf("feature count: expected %d, got %d", len(expected), len(in.features))
	}
	for i := range min(len(expected), len(in.features)) {
		if diff := cmp.Diff(expected[i].Properties, in.features[i].Properties); diff != "" {
			p.errorf("feature %d (id %s): properties differ (-want +got):\n%s", i, idOf(expected[i]), diff)
		}
	}
	return p
}

// ── Phase 2: Geometry ──

func validateGeometry(features []domain.TreeFeature) *phase {
	p := &phase{name: "Phase 2: Geometry (finite point coordinates)"}
	for i, f := range features {
		if !isFinite(f.Lat) || !isFinite(f.Lon) {
			p.errorf("feature %d (id %s): non-finite coordinates [%g, %g]", i, idOf(f), f.Lon, f.Lat)
			continue
		}
		if f.Lat < -90 || f.Lat > 90 || f.Lon < -180 || f.Lon > 180 {
			p.errorf("feature %d (id %s): coordinates out of range [%g, %g]", i, idOf(f), f.Lon, f.Lat)
		}
		if f.Properties.Latitude != f.Lat || f.Properties.Longitude != f.Lon {
			p.errorf("feature %d (id %s): geometry [%g, %g] disagrees with properties [%g, %g]",
				i, idOf(f), f.Lon, f.Lat, f.Properties.Longitude, f.Properties.Latitude)
		}
	}
	return p
}

// ── Phase 3: Colors ──

func validateColors(features []domain.TreeFeature, colors domain.ColorMap) *phase {
	p := &phase{name: "Phase 3: Colors (genus list)"}
	for i, f := range features {
		want := colors.Lookup(f.Genus)
		if f.Properties.Color != want {
			p.errorf("feature %d (id %s): genus %q has color %s, expected %s", i, idOf(f), f.Genus, f.Properties.Color, want)
		}
	}
	return p
}

// ── Phase 4: Properties ──

func validateProperties(features []domain.TreeFeature, lookup domain.NeighborhoodLookup) *phase {
	p := &phase{name: "Phase 4: Properties (species, DBH, neighborhood)"}
	for i, f := range features {
		props := f.Properties
		if props.Species == domain.PlaceholderSpecies {
			p.errorf("feature %d (id %s): placeholder species present", i, idOf(f))
		}
		if props.DBH != nil && (*props.DBH < 1 || !isFinite(*props.DBH)) {
			p.errorf("feature %d (id %s): dbh %g below minimum", i, idOf(f), *props.DBH)
		}
		if want := lookup.Resolve(props.Neighborhood); props.NeighborhoodName != want {
			p.errorf("feature %d (id %s): neighborhood_name %q, expected %q", i, idOf(f), props.NeighborhoodName, want)
		}
	}
	return p
}

// ── Phase 5: Lookup Parity ──

func validateLookupParity(features []domain.TreeFeature, props []domain.TreeProperties) *phase {
	p := &phase{name: "Phase 5: Lookup Parity (lookup vs GeoJSON)"}
	if len(props) != len(features) {
		p.errorf("lookup count: expected %d, got %d", len(features), len(props))
	}
	for i := range min(len(props), len(features)) {
		if diff := cmp.Diff(features[i].Properties, props[i]); diff != "" {
			p.errorf("entry %d (id %s): differs from feature (-want +got):\n%s", i, idOf(features[i]), diff)
		}
	}
	return p
}

// ── Helpers ──

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func idOf(f domain.TreeFeature) string {
	if f.Properties.ID == nil {
		return "<nil>"
	}
	return domain.FormatID(*f.Properties.ID)
}
