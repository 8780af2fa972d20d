// Command genmock samples a raw Street Tree List export into the mock
// fixtures used by the test suites. It runs the sample through the actual
// clean and geojson stages so the expected artifacts match real pipeline
// behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -raw data/Street_Tree_List.csv \
//	  -neighborhoods data/Analysis_Neighborhoods.csv \
//	  -every 5000 \
//	  -out-dir data/mock
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"time"

	"github.com/couchcryptid/street-tree-map/internal/adapter/csvfile"
	"github.com/couchcryptid/street-tree-map/internal/adapter/geojsonfile"
	"github.com/couchcryptid/street-tree-map/internal/adapter/jsonfile"
	"github.com/couchcryptid/street-tree-map/internal/domain"
	"github.com/couchcryptid/street-tree-map/internal/observability"
	"github.com/couchcryptid/street-tree-map/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

// Output file names inside -out-dir.
const (
	rawSampleFile      = "street_tree_list_raw_sample.csv"
	cleanSampleFile    = "street_trees_sample.csv"
	genusListFile      = "genus_list_sample.json"
	neighborhoodsFile  = "neighborhood_mapping_sample.json"
	expectedGeoJSON    = "trees_expected.geojson"
	expectedReportFile = "geojson_report_expected.json"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	rawPath := flag.String("raw", "", "raw Street Tree List CSV")
	nhoodPath := flag.String("neighborhoods", "", "Analysis Neighborhoods CSV")
	every := flag.Int("every", 1000, "keep every n-th data row")
	outDir := flag.String("out-dir", "data/mock", "output directory for fixtures")
	flag.Parse()

	if *rawPath == "" || *nhoodPath == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -raw, -neighborhoods")
	}
	if *every < 1 {
		return fmt.Errorf("-every must be at least 1, got %d", *every)
	}

	// Set a fixed clock for reproducible report timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	ctx := context.Background()
	out := func(name string) string { return filepath.Join(*outDir, name) }

	raw, err := csvfile.NewReader(*rawPath).ReadTable(ctx)
	if err != nil {
		return err
	}
	sample := sampleRows(raw, *every)
	log.Printf("sampled %d of %d raw rows", len(sample.Rows), len(raw.Rows))
	if err := csvfile.NewWriter(out(rawSampleFile)).WriteTable(ctx, sample); err != nil {
		return fmt.Errorf("writing raw sample: %w", err)
	}

	cleaned, stats := domain.CleanTable(sample, domain.DefaultCleanRules())
	log.Printf("cleaned: %d written, %d dropped empty, %d dropped placeholder",
		stats.RowsWritten, stats.DroppedEmpty, stats.DroppedPlaceholder)
	if err := csvfile.NewWriter(out(cleanSampleFile)).WriteTable(ctx, cleaned); err != nil {
		return fmt.Errorf("writing cleaned sample: %w", err)
	}

	idx := domain.CollectGenera(cleaned.Rows)
	if idx.Genera == nil {
		idx.Genera = []string{}
	}
	if err := jsonfile.Write(out(genusListFile), idx.Genera); err != nil {
		return fmt.Errorf("writing genus list: %w", err)
	}

	nhoods, err := csvfile.NewReader(*nhoodPath).ReadTable(ctx)
	if err != nil {
		return err
	}
	names, err := csvfile.Column(nhoods, "nhood")
	if err != nil {
		return fmt.Errorf("%s: %w", *nhoodPath, err)
	}
	lookup := domain.BuildNeighborhoodLookup(names)
	if err := jsonfile.Write(out(neighborhoodsFile), lookup); err != nil {
		return fmt.Errorf("writing neighborhoods: %w", err)
	}

	metrics, _ := observability.NewMetricsWithRegistry()
	sink := &capturingSink{next: geojsonfile.NewWriter(out(expectedGeoJSON), true)}
	p := pipeline.New(
		pipeline.TableSource{Table: cleaned},
		pipeline.NewTransformer(domain.AssignColors(idx.Genera), lookup, 1000, metrics),
		sink,
		observability.NewLogger("warn", "text"),
		metrics,
	)
	res, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("generating expected GeoJSON: %w", err)
	}

	rep := res.Report("geojson")
	rep.Genera = len(idx.Genera)
	if err := jsonfile.Write(out(expectedReportFile), rep); err != nil {
		return fmt.Errorf("writing expected report: %w", err)
	}
	log.Printf("wrote fixtures to %s", *outDir)

	printStats(rep, sink.features, idx)
	return nil
}

// sampleRows keeps the header and every n-th data row, starting with the first.
func sampleRows(t *domain.Table, n int) *domain.Table {
	out := &domain.Table{Header: t.Header}
	for i := 0; i < len(t.Rows); i += n {
		out.Rows = append(out.Rows, t.Rows[i])
	}
	return out
}

// capturingSink remembers the features it forwards so stats can be printed.
type capturingSink struct {
	next     pipeline.FeatureSink
	features []domain.TreeFeature
}

func (s *capturingSink) WriteFeatures(ctx context.Context, features []domain.TreeFeature) error {
	s.features = features
	return s.next.WriteFeatures(ctx, features)
}

type nameCount struct {
	name  string
	count int
}

func sortedCounts(m map[string]int) []nameCount {
	out := make([]nameCount, 0, len(m))
	for k, v := range m {
		out = append(out, nameCount{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}

func printStats(rep domain.RunReport, features []domain.TreeFeature, idx domain.GenusIndex) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Rows read: %d\n", rep.RowsRead)
	fmt.Printf("Features: %d\n", rep.RowsWritten)
	for _, reason := range domain.SkipReasons {
		fmt.Printf("Skipped %s: %d\n", reason, rep.Skipped[string(reason)])
	}
	fmt.Printf("Genera: %d (ungrouped rows: %d)\n", len(idx.Genera), idx.Ungrouped)

	byGenus := map[string]int{}
	byNeighborhood := map[string]int{}
	var withDBH, withDate int
	for _, f := range features {
		byGenus[f.Genus]++
		byNeighborhood[f.Properties.NeighborhoodName]++
		if f.Properties.DBH != nil {
			withDBH++
		}
		if f.Properties.PlantDate != nil {
			withDate++
		}
	}
	fmt.Printf("With DBH: %d, with plant date: %d\n", withDBH, withDate)

	fmt.Printf("\nBy genus:")
	for _, c := range sortedCounts(byGenus) {
		name := c.name
		if name == "" {
			name = "<none>"
		}
		fmt.Printf(" %s=%d", name, c.count)
	}
	fmt.Println()

	fmt.Printf("By neighborhood:")
	for _, c := range sortedCounts(byNeighborhood) {
		fmt.Printf(" %s=%d", c.name, c.count)
	}
	fmt.Println()

	if len(features) > 0 {
		f := features[0]
		fmt.Printf("\nFirst feature:\n")
		if f.Properties.ID != nil {
			fmt.Printf("  ID: %s\n", domain.FormatID(*f.Properties.ID))
		}
		fmt.Printf("  Lat: %g, Lon: %g\n", f.Lat, f.Lon)
		fmt.Printf("  Species: %s (genus %q, color %s)\n", f.Properties.Species, f.Genus, f.Properties.Color)
		fmt.Printf("  Neighborhood: %s\n", f.Properties.NeighborhoodName)
	}
}
