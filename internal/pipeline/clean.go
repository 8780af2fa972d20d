package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/street-tree-map/internal/domain"
	"github.com/couchcryptid/street-tree-map/internal/observability"
)

const stageClean = "clean"

// TableSink writes a whole table.
type TableSink interface {
	WriteTable(ctx context.Context, t *domain.Table) error
}

// Cleaner runs the clean stage: raw export in, cleaned dataset out.
type Cleaner struct {
	source  RowSource
	sink    TableSink
	rules   domain.CleanRules
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewCleaner creates a Cleaner applying rules.
func NewCleaner(src RowSource, sink TableSink, rules domain.CleanRules, logger *slog.Logger, metrics *observability.Metrics) *Cleaner {
	return &Cleaner{source: src, sink: sink, rules: rules, logger: logger, metrics: metrics}
}

// Run reads, cleans and writes the dataset once.
func (c *Cleaner) Run(ctx context.Context) (domain.CleanStats, error) {
	start := time.Now()

	in, err := c.source.ReadTable(ctx)
	if err != nil {
		return domain.CleanStats{}, fmt.Errorf("read rows: %w", err)
	}

	out, stats := domain.CleanTable(in, c.rules)
	if err := out.Require(domain.ColSpecies); err != nil {
		return stats, err
	}

	if err := c.sink.WriteTable(ctx, out); err != nil {
		return stats, fmt.Errorf("write cleaned rows: %w", err)
	}

	c.metrics.RowsRead.WithLabelValues(stageClean).Add(float64(stats.RowsRead))
	c.metrics.RowsDropped.WithLabelValues("empty").Add(float64(stats.DroppedEmpty))
	c.metrics.RowsDropped.WithLabelValues("placeholder").Add(float64(stats.DroppedPlaceholder))
	c.metrics.StageDuration.WithLabelValues(stageClean).Observe(time.Since(start).Seconds())

	c.logger.Info("clean complete",
		"rows_read", stats.RowsRead,
		"rows_written", stats.RowsWritten,
		"dropped_empty", stats.DroppedEmpty,
		"dropped_placeholder", stats.DroppedPlaceholder,
		"species_corrected", stats.SpeciesCorrected,
		"dbh_defaulted", stats.DBHDefaulted,
		"dbh_clamped", stats.DBHClamped,
		"dbh_overridden", stats.DBHOverridden,
		"invalid_dates", stats.InvalidDates,
	)
	return stats, nil
}

// CleanReport converts clean statistics into a run report.
func CleanReport(stats domain.CleanStats) domain.RunReport {
	rep := domain.NewRunReport(stageClean)
	rep.RowsRead = stats.RowsRead
	rep.RowsWritten = stats.RowsWritten
	rep.Skipped["empty"] = stats.DroppedEmpty
	rep.Skipped["placeholder"] = stats.DroppedPlaceholder
	return rep
}
