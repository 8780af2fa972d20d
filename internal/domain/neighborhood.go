package domain

import (
	"bytes"
	"sort"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
)

// UnknownNeighborhood is the name given to codes without a lookup entry.
const UnknownNeighborhood = "Unknown"

// NeighborhoodLookup maps a decimal-formatted code ("1.0") to a neighborhood name.
type NeighborhoodLookup map[string]string

// BuildNeighborhoodLookup ranks the distinct, non-empty names in sorted order
// and keys each one by rank+1 formatted as a float.
func BuildNeighborhoodLookup(names []string) NeighborhoodLookup {
	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if IsNull(n) {
			continue
		}
		cleaned = append(cleaned, n)
	}
	sorted := distinctSorted(cleaned)

	lookup := make(NeighborhoodLookup, len(sorted))
	for i, n := range sorted {
		lookup[formatDecimal(float64(i+1))] = n
	}
	return lookup
}

// NeighborhoodKey formats a raw code cell as a lookup key. It returns nil for
// missing or non-numeric codes.
func NeighborhoodKey(code string) *string {
	v := CleanNumeric(code)
	if v == nil {
		return nil
	}
	k := formatDecimal(*v)
	return &k
}

// Resolve returns the name for a lookup key, or UnknownNeighborhood.
func (l NeighborhoodLookup) Resolve(key *string) string {
	if key == nil {
		return UnknownNeighborhood
	}
	if name, ok := l[*key]; ok {
		return name
	}
	return UnknownNeighborhood
}

// Keys returns the lookup keys in numeric order.
func (l NeighborhoodLookup) Keys() []string {
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.ParseFloat(keys[i], 64)
		b, errB := strconv.ParseFloat(keys[j], 64)
		if errA != nil || errB != nil {
			return keys[i] < keys[j]
		}
		return a < b
	})
	return keys
}

// MarshalJSON writes entries in numeric key order so "10.0" follows "9.0".
func (l NeighborhoodLookup) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range l.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := gojson.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := gojson.Marshal(l[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
