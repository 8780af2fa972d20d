// Package jsonfile reads and writes the JSON side artifacts: the neighborhood
// lookup, genus lists, the flat trees lookup and run reports.
package jsonfile

import (
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/street-tree-map/internal/adapter/atomicfile"
	gojson "github.com/goccy/go-json"
)

const indent = "  "

// Write encodes v as JSON indented by two spaces and replaces path atomically.
func Write(path string, v any) error {
	data, err := gojson.MarshalIndent(v, "", indent)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	return atomicfile.Write(path, func(w io.Writer) error {
		if _, err := w.Write(data); err != nil {
			return err
		}
		_, err := w.Write([]byte("\n"))
		return err
	})
}

// Read decodes the JSON file at path into v.
func Read(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := gojson.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
