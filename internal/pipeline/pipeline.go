package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/street-tree-map/internal/domain"
	"github.com/couchcryptid/street-tree-map/internal/observability"
)

// stageGeoJSON labels metrics of the feature conversion stage.
const stageGeoJSON = "geojson"

// ctxCheckInterval is how many rows are processed between cancellation checks.
const ctxCheckInterval = 4096

// RowSource reads a whole dataset.
type RowSource interface {
	ReadTable(ctx context.Context) (*domain.Table, error)
}

// Transformer converts one row into a feature, or reports why it was skipped.
type Transformer interface {
	Transform(ctx context.Context, row domain.Row) (domain.TreeFeature, domain.SkipReason)
}

// FeatureSink writes the features of one run.
type FeatureSink interface {
	WriteFeatures(ctx context.Context, features []domain.TreeFeature) error
}

// TableSource serves a table that has already been read. It lets a command
// inspect the rows (to derive genera, say) before the pipeline runs.
type TableSource struct {
	Table *domain.Table
}

// ReadTable returns the wrapped table.
func (s TableSource) ReadTable(_ context.Context) (*domain.Table, error) {
	return s.Table, nil
}

// Result summarizes a completed run.
type Result struct {
	RowsRead        int
	FeaturesWritten int
	Skipped         map[domain.SkipReason]int
	Duration        time.Duration
}

// SkippedTotal sums all skip counts.
func (r Result) SkippedTotal() int {
	n := 0
	for _, c := range r.Skipped {
		n += c
	}
	return n
}

// Report converts the result into a run report for stage.
func (r Result) Report(stage string) domain.RunReport {
	rep := domain.NewRunReport(stage)
	rep.RowsRead = r.RowsRead
	rep.RowsWritten = r.FeaturesWritten
	for reason, n := range r.Skipped {
		rep.Skipped[string(reason)] = n
	}
	return rep
}

// Pipeline runs the read-normalize-write pass that turns a cleaned dataset
// into tree features.
type Pipeline struct {
	source      RowSource
	transformer Transformer
	sink        FeatureSink
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// New creates a Pipeline with the given stages and observability.
func New(src RowSource, t Transformer, sink FeatureSink, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:      src,
		transformer: t,
		sink:        sink,
		logger:      logger,
		metrics:     metrics,
	}
}

// Run executes one pass. Skipped rows are counted, never returned as errors;
// an error means the run produced no output.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	start := time.Now()

	table, err := p.source.ReadTable(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("read rows: %w", err)
	}
	if err := table.Require(domain.RequiredColumns...); err != nil {
		return Result{}, err
	}

	res := Result{
		RowsRead: len(table.Rows),
		Skipped:  make(map[domain.SkipReason]int, len(domain.SkipReasons)),
	}
	p.metrics.RowsRead.WithLabelValues(stageGeoJSON).Add(float64(res.RowsRead))
	if res.RowsRead == 0 {
		p.logger.Warn("input has no data rows")
	}

	features := make([]domain.TreeFeature, 0, len(table.Rows))
	for i, row := range table.Rows {
		if i%ctxCheckInterval == 0 && ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		f, skip := p.transformer.Transform(ctx, row)
		if skip != domain.SkipNone {
			res.Skipped[skip]++
			p.metrics.RowsSkipped.WithLabelValues(string(skip)).Inc()
			continue
		}
		features = append(features, f)
	}

	if err := p.sink.WriteFeatures(ctx, features); err != nil {
		return Result{}, fmt.Errorf("write features: %w", err)
	}

	res.FeaturesWritten = len(features)
	res.Duration = time.Since(start)
	p.metrics.FeaturesEmitted.Add(float64(res.FeaturesWritten))
	p.metrics.StageDuration.WithLabelValues(stageGeoJSON).Observe(res.Duration.Seconds())

	args := []any{"converted", res.FeaturesWritten, "rows", res.RowsRead, "duration", res.Duration}
	for _, reason := range domain.SkipReasons {
		args = append(args, "skipped_"+string(reason), res.Skipped[reason])
	}
	p.logger.Info("geojson conversion complete", args...)

	return res, nil
}
