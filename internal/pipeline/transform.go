package pipeline

import (
	"context"

	"github.com/couchcryptid/street-tree-map/internal/domain"
	"github.com/couchcryptid/street-tree-map/internal/observability"
)

// TreeTransformer implements Transformer over a fixed color map and
// neighborhood lookup. Parsed species are memoized since a city dataset
// repeats a few hundred species across hundreds of thousands of rows.
type TreeTransformer struct {
	colors  domain.ColorMap
	lookup  domain.NeighborhoodLookup
	species *lruCache[string, domain.Species]
	metrics *observability.Metrics
}

// NewTransformer creates a TreeTransformer. cacheSize bounds the species memo;
// zero or less disables it.
func NewTransformer(colors domain.ColorMap, lookup domain.NeighborhoodLookup, cacheSize int, metrics *observability.Metrics) *TreeTransformer {
	t := &TreeTransformer{
		colors:  colors,
		lookup:  lookup,
		metrics: metrics,
	}
	if cacheSize > 0 {
		t.species = newLRUCache[string, domain.Species](cacheSize)
	}
	return t
}

func (t *TreeTransformer) Transform(_ context.Context, row domain.Row) (domain.TreeFeature, domain.SkipReason) {
	rec := domain.Record{Row: row, Species: t.parseSpecies(domain.SpeciesText(row))}
	return domain.NormalizeRecord(rec, t.colors, t.lookup)
}

func (t *TreeTransformer) parseSpecies(text string) domain.Species {
	if t.species == nil {
		return domain.ParseSpecies(text)
	}
	if sp, ok := t.species.get(text); ok {
		t.metrics.SpeciesCache.WithLabelValues("hit").Inc()
		return sp
	}
	t.metrics.SpeciesCache.WithLabelValues("miss").Inc()
	sp := domain.ParseSpecies(text)
	t.species.put(text, sp)
	return sp
}
