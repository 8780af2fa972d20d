// Package geojsonfile writes and reads tree FeatureCollections.
package geojsonfile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/couchcryptid/street-tree-map/internal/adapter/atomicfile"
	"github.com/couchcryptid/street-tree-map/internal/domain"
	gojson "github.com/goccy/go-json"
	"github.com/paulmach/orb/geojson"
)

// ContentType is the media type of a GeoJSON document.
const ContentType = "application/geo+json"

// Encode builds the FeatureCollection for features, in order. Compact output
// has no insignificant whitespace; pretty output is indented by two spaces.
func Encode(features []domain.TreeFeature, pretty bool) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		fc.Append(f.GeoJSON())
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal feature collection: %w", err)
	}
	if !pretty {
		return data, nil
	}
	var buf bytes.Buffer
	if err := gojson.Indent(&buf, data, "", "  "); err != nil {
		return nil, fmt.Errorf("indent feature collection: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a FeatureCollection of tree points.
func Decode(data []byte) ([]domain.TreeFeature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}
	out := make([]domain.TreeFeature, 0, len(fc.Features))
	for i, gf := range fc.Features {
		f, err := domain.FeatureFromGeoJSON(gf)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// Writer writes features to a GeoJSON file. It implements pipeline.FeatureSink.
type Writer struct {
	path   string
	pretty bool
}

// NewWriter creates a Writer for path.
func NewWriter(path string, pretty bool) *Writer {
	return &Writer{path: path, pretty: pretty}
}

// WriteFeatures encodes the features and replaces the file atomically.
func (w *Writer) WriteFeatures(_ context.Context, features []domain.TreeFeature) error {
	data, err := Encode(features, w.pretty)
	if err != nil {
		return err
	}
	return atomicfile.Write(w.path, func(out io.Writer) error {
		_, err := out.Write(data)
		return err
	})
}

// ReadFile loads every feature of a GeoJSON file.
func ReadFile(path string) ([]domain.TreeFeature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}
	return Decode(data)
}

// Readiness reports ready once the GeoJSON artifact exists and parses as a
// FeatureCollection. The result is cached until the file changes.
type Readiness struct {
	path string

	mu      sync.Mutex
	modTime time.Time
	size    int64
	err     error
}

// NewReadiness creates a readiness check for the artifact at path.
func NewReadiness(path string) *Readiness {
	return &Readiness{path: path}
}

// CheckReadiness returns nil when the artifact is present and valid.
func (r *Readiness) CheckReadiness(_ context.Context) error {
	info, err := os.Stat(r.path)
	if err != nil {
		return fmt.Errorf("geojson artifact: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if info.ModTime().Equal(r.modTime) && info.Size() == r.size {
		return r.err
	}

	r.modTime, r.size = info.ModTime(), info.Size()
	r.err = nil
	data, err := os.ReadFile(r.path)
	if err != nil {
		r.err = fmt.Errorf("geojson artifact: %w", err)
		return r.err
	}
	if _, err := geojson.UnmarshalFeatureCollection(data); err != nil {
		r.err = fmt.Errorf("geojson artifact is not a feature collection: %w", err)
	}
	return r.err
}
