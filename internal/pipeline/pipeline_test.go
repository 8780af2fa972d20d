package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/street-tree-map/internal/domain"
	"github.com/couchcryptid/street-tree-map/internal/observability"
	"github.com/couchcryptid/street-tree-map/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockSource struct {
	table *domain.Table
	err   error
}

func (m *mockSource) ReadTable(_ context.Context) (*domain.Table, error) {
	return m.table, m.err
}

type mockSink struct {
	features []domain.TreeFeature
	tables   []*domain.Table
	calls    int
	err      error
}

func (m *mockSink) WriteFeatures(_ context.Context, features []domain.TreeFeature) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.features = features
	return nil
}

func (m *mockSink) WriteTable(_ context.Context, t *domain.Table) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.tables = append(m.tables, t)
	return nil
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testHeader = []string{
	domain.ColTreeID, domain.ColSpecies, domain.ColAddress, domain.ColDBH,
	domain.ColLatitude, domain.ColLongitude, domain.ColNeighborhood,
}

func testTable() *domain.Table {
	return &domain.Table{
		Header: testHeader,
		Rows: []domain.Row{
			{domain.ColTreeID: "1", domain.ColSpecies: "Quercus agrifolia :: coast live oak", domain.ColLatitude: "37.7", domain.ColLongitude: "-122.4", domain.ColNeighborhood: "2"},
			{domain.ColTreeID: "2", domain.ColSpecies: "Red Maple (Acer rubrum)", domain.ColLatitude: "", domain.ColLongitude: "-122.4"},
			{domain.ColTreeID: "3", domain.ColSpecies: domain.PlaceholderSpecies, domain.ColLatitude: "37.7", domain.ColLongitude: "-122.4"},
			{domain.ColTreeID: "4", domain.ColSpecies: "Red Maple (Acer rubrum)", domain.ColLatitude: "37.71", domain.ColLongitude: "-122.41", domain.ColDBH: "0.2"},
			{domain.ColTreeID: "5", domain.ColSpecies: "Palm", domain.ColLatitude: "NaN", domain.ColLongitude: "-122.4"},
		},
	}
}

func newTransformer(metrics *observability.Metrics) *pipeline.TreeTransformer {
	colors := domain.AssignColors([]string{"Quercus", "Acer"})
	lookup := domain.BuildNeighborhoodLookup([]string{"Bernal Heights", "Mission"})
	return pipeline.NewTransformer(colors, lookup, 16, metrics)
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	metrics := newTestMetrics()
	sink := &mockSink{}
	p := pipeline.New(&mockSource{table: testTable()}, newTransformer(metrics), sink, discardLogger(), metrics)

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, res.RowsRead)
	assert.Equal(t, 2, res.FeaturesWritten)
	assert.Equal(t, map[domain.SkipReason]int{
		domain.SkipInvalidCoordinates: 2,
		domain.SkipPlaceholderSpecies: 1,
	}, res.Skipped)
	assert.Equal(t, res.RowsRead, res.FeaturesWritten+res.SkippedTotal())

	require.Len(t, sink.features, 2)
	oak := sink.features[0]
	assert.Equal(t, "Coast Live Oak (Quercus agrifolia)", oak.Properties.Species)
	assert.Equal(t, "#70c1c1", oak.Properties.Color)
	assert.Equal(t, "Mission", oak.Properties.NeighborhoodName)

	maple := sink.features[1]
	assert.Equal(t, "#c17070", maple.Properties.Color)
	require.NotNil(t, maple.Properties.DBH)
	assert.InDelta(t, 1.0, *maple.Properties.DBH, 0)
	assert.Equal(t, domain.UnknownNeighborhood, maple.Properties.NeighborhoodName)

	assert.InDelta(t, 5.0, testutil.ToFloat64(metrics.RowsRead.WithLabelValues("geojson")), 0)
	assert.InDelta(t, 2.0, testutil.ToFloat64(metrics.FeaturesEmitted), 0)
	assert.InDelta(t, 2.0, testutil.ToFloat64(metrics.RowsSkipped.WithLabelValues("invalid_coordinates")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.RowsSkipped.WithLabelValues("placeholder_species")), 0)
}

func TestPipeline_Run_Deterministic(t *testing.T) {
	run := func() []domain.TreeFeature {
		metrics := newTestMetrics()
		sink := &mockSink{}
		_, err := pipeline.New(&mockSource{table: testTable()}, newTransformer(metrics), sink, discardLogger(), metrics).
			Run(context.Background())
		require.NoError(t, err)
		return sink.features
	}
	assert.Equal(t, run(), run())
}

func TestPipeline_Run_SourceError(t *testing.T) {
	metrics := newTestMetrics()
	sink := &mockSink{}
	p := pipeline.New(&mockSource{err: errors.New("disk gone")}, newTransformer(metrics), sink, discardLogger(), metrics)

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read rows")
	assert.Zero(t, sink.calls)
}

func TestPipeline_Run_MissingColumn(t *testing.T) {
	metrics := newTestMetrics()
	tbl := &domain.Table{Header: []string{domain.ColLatitude, domain.ColLongitude}}
	p := pipeline.New(&mockSource{table: tbl}, newTransformer(metrics), &mockSink{}, discardLogger(), metrics)

	_, err := p.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrMissingColumn)
}

func TestPipeline_Run_EmptyTable(t *testing.T) {
	metrics := newTestMetrics()
	sink := &mockSink{}
	tbl := &domain.Table{Header: testHeader}
	p := pipeline.New(&mockSource{table: tbl}, newTransformer(metrics), sink, discardLogger(), metrics)

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.FeaturesWritten)
	assert.Equal(t, 1, sink.calls, "an empty collection is still written")
	assert.Empty(t, sink.features)
}

func TestPipeline_Run_SinkError(t *testing.T) {
	metrics := newTestMetrics()
	p := pipeline.New(&mockSource{table: testTable()}, newTransformer(metrics), &mockSink{err: errors.New("disk full")}, discardLogger(), metrics)

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write features")
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	metrics := newTestMetrics()
	sink := &mockSink{}
	p := pipeline.New(&mockSource{table: testTable()}, newTransformer(metrics), sink, discardLogger(), metrics)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, sink.calls)
}

func TestResult_Report(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2025, time.March, 29, 8, 0, 0, 0, time.UTC))
	domain.SetClock(fakeClock)
	t.Cleanup(func() {
		domain.SetClock(nil)
	})

	res := pipeline.Result{
		RowsRead:        10,
		FeaturesWritten: 7,
		Skipped:         map[domain.SkipReason]int{domain.SkipInvalidCoordinates: 3},
	}
	rep := res.Report("geojson")

	assert.Equal(t, "geojson", rep.Stage)
	assert.Equal(t, fakeClock.Now(), rep.GeneratedAt)
	assert.Equal(t, 10, rep.RowsRead)
	assert.Equal(t, 7, rep.RowsWritten)
	assert.Equal(t, map[string]int{"invalid_coordinates": 3}, rep.Skipped)
}

func TestTreeTransformer_SpeciesCache(t *testing.T) {
	metrics := newTestMetrics()
	tfm := newTransformer(metrics)
	row := domain.Row{domain.ColSpecies: "Red Maple (Acer rubrum)", domain.ColLatitude: "37.7", domain.ColLongitude: "-122.4"}

	for range 3 {
		f, skip := tfm.Transform(context.Background(), row)
		require.Equal(t, domain.SkipNone, skip)
		assert.Equal(t, "Acer", f.Genus)
	}

	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.SpeciesCache.WithLabelValues("miss")), 0)
	assert.InDelta(t, 2.0, testutil.ToFloat64(metrics.SpeciesCache.WithLabelValues("hit")), 0)
}

func TestTreeTransformer_NoCacheMatchesDomain(t *testing.T) {
	colors := domain.AssignColors([]string{"Acer"})
	lookup := domain.NeighborhoodLookup{}
	tfm := pipeline.NewTransformer(colors, lookup, 0, newTestMetrics())

	for _, row := range testTable().Rows {
		gotF, gotSkip := tfm.Transform(context.Background(), row)
		wantF, wantSkip := domain.NormalizeRow(row, colors, lookup)
		assert.Equal(t, wantSkip, gotSkip)
		assert.Equal(t, wantF, gotF)
	}
}

func TestCleaner_Run(t *testing.T) {
	metrics := newTestMetrics()
	sink := &mockSink{}
	raw := &domain.Table{
		Header: []string{"TreeID", "qSpecies", "DBH", "SiteOrder"},
		Rows: []domain.Row{
			{"TreeID": "1", "qSpecies": "Quercus agrifolia :: Coast Live Oak", "DBH": "4", "SiteOrder": "1"},
			{"TreeID": "2", "qSpecies": "Potential Site :: Potential Site"},
			{},
		},
	}

	stats, err := pipeline.NewCleaner(&mockSource{table: raw}, sink, domain.DefaultCleanRules(), discardLogger(), metrics).
		Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.RowsRead)
	assert.Equal(t, 1, stats.RowsWritten)
	require.Len(t, sink.tables, 1)
	assert.Equal(t, []string{domain.ColTreeID, domain.ColSpecies, domain.ColDBH}, sink.tables[0].Header)
	assert.Equal(t, "Coast Live Oak (Quercus agrifolia)", sink.tables[0].Rows[0][domain.ColSpecies])

	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.RowsDropped.WithLabelValues("empty")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.RowsDropped.WithLabelValues("placeholder")), 0)

	rep := pipeline.CleanReport(stats)
	assert.Equal(t, "clean", rep.Stage)
	assert.Equal(t, 2, rep.SkippedTotal())
}

func TestCleaner_Run_NoSpeciesColumn(t *testing.T) {
	raw := &domain.Table{Header: []string{"TreeID"}, Rows: []domain.Row{{"TreeID": "1"}}}
	_, err := pipeline.NewCleaner(&mockSource{table: raw}, &mockSink{}, domain.DefaultCleanRules(), discardLogger(), newTestMetrics()).
		Run(context.Background())
	require.ErrorIs(t, err, domain.ErrMissingColumn)
}
