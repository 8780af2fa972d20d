package domain

import (
	"fmt"
	"math"
	"sort"
)

// DefaultColor is used for features whose genus has no assigned color.
const DefaultColor = "#000000"

const (
	genusSaturation = 40
	genusLightness  = 60
)

// ColorMap assigns a display color to each genus. It is built once per run
// and only read afterwards.
type ColorMap map[string]string

// Lookup returns the color for genus, or DefaultColor when the genus is empty
// or unknown.
func (m ColorMap) Lookup(genus string) string {
	if genus == "" {
		return DefaultColor
	}
	if c, ok := m[genus]; ok {
		return c
	}
	return DefaultColor
}

// AssignColors spreads the distinct categories evenly around the hue wheel in
// sorted order. The result depends only on the set of categories, never on
// their input order. An empty input yields an empty map.
func AssignColors(categories []string) ColorMap {
	sorted := distinctSorted(categories)
	total := len(sorted)
	colors := make(ColorMap, total)
	if total == 0 {
		return colors
	}
	for i, c := range sorted {
		hue := 360 * i / total
		colors[c] = HSLToHex(hue, genusSaturation, genusLightness)
	}
	return colors
}

// SortedGenera returns the categories of the map in rank order.
func (m ColorMap) SortedGenera() []string {
	out := make([]string, 0, len(m))
	for g := range m {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// HSLToHex converts hue (degrees), saturation and lightness (percent) to a
// "#rrggbb" string. Channels are scaled to 0-255 and truncated.
func HSLToHex(h, s, l int) string {
	r, g, b := hlsToRGB(float64(h)/360, float64(l)/100, float64(s)/100)
	return fmt.Sprintf("#%02x%02x%02x", int(r*255), int(g*255), int(b*255))
}

const (
	oneThird = 1.0 / 3.0
	oneSixth = 1.0 / 6.0
	twoThird = 2.0 / 3.0
)

// hlsToRGB is the classic two-value HLS conversion; all values are in [0, 1].
func hlsToRGB(h, l, s float64) (float64, float64, float64) {
	if s == 0 {
		return l, l, l
	}
	var m2 float64
	if l <= 0.5 {
		m2 = l * (1 + s)
	} else {
		m2 = l + s - float64(l*s)
	}
	m1 := 2*l - m2
	return hueChannel(m1, m2, h+oneThird), hueChannel(m1, m2, h), hueChannel(m1, m2, h-oneThird)
}

func hueChannel(m1, m2, hue float64) float64 {
	hue = math.Mod(hue, 1)
	if hue < 0 {
		hue++
	}
	switch {
	case hue < oneSixth:
		return m1 + float64((m2-m1)*hue*6)
	case hue < 0.5:
		return m2
	case hue < twoThird:
		return m1 + float64((m2-m1)*(twoThird-hue)*6)
	default:
		return m1
	}
}

func distinctSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
