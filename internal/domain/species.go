package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// PlaceholderSpecies marks planting sites without a tree. Such rows never
// become features.
const PlaceholderSpecies = "Potential Site (Potential Site)"

// rawSeparator splits the export format "<scientific> :: <common>".
const rawSeparator = " :: "

// SpeciesForm records the shape a species string arrived in.
type SpeciesForm int

const (
	// SpeciesUnstructured is free text with neither a separator nor parentheses.
	SpeciesUnstructured SpeciesForm = iota
	// SpeciesRaw is the export format "<scientific> :: <common>".
	SpeciesRaw
	// SpeciesNormalized is "<common> (<scientific>)".
	SpeciesNormalized
)

func (f SpeciesForm) String() string {
	switch f {
	case SpeciesRaw:
		return "raw"
	case SpeciesNormalized:
		return "normalized"
	default:
		return "unstructured"
	}
}

// Species is a parsed species string. For SpeciesUnstructured the whole text
// is kept in Common and Scientific is empty.
type Species struct {
	Form       SpeciesForm
	Common     string
	Scientific string
}

// ParseSpecies parses a species string once, in whichever form it arrives.
// Text containing "(" is normalized form and is never re-split on "::".
func ParseSpecies(s string) Species {
	s = strings.TrimSpace(norm.NFC.String(s))

	if common, rest, ok := strings.Cut(s, "("); ok {
		rest = strings.TrimSpace(rest)
		rest = strings.TrimSpace(strings.TrimSuffix(rest, ")"))
		return Species{
			Form:       SpeciesNormalized,
			Common:     strings.TrimSpace(common),
			Scientific: rest,
		}
	}

	if parts := strings.Split(s, rawSeparator); len(parts) == 2 {
		return Species{
			Form:       SpeciesRaw,
			Common:     strings.TrimSpace(parts[1]),
			Scientific: strings.TrimSpace(parts[0]),
		}
	}

	return Species{Form: SpeciesUnstructured, Common: s}
}

// ParseRawSpecies parses a value straight from the export. It always splits
// on " :: ", even when the common name carries parentheses.
func ParseRawSpecies(s string) Species {
	s = strings.TrimSpace(norm.NFC.String(s))
	if parts := strings.Split(s, rawSeparator); len(parts) == 2 {
		return Species{
			Form:       SpeciesRaw,
			Common:     strings.TrimSpace(parts[1]),
			Scientific: strings.TrimSpace(parts[0]),
		}
	}
	return Species{Form: SpeciesUnstructured, Common: s}
}

// Genus returns the first word of the scientific name, or "" when the
// scientific name is a single token or empty.
func (sp Species) Genus() string {
	if !strings.ContainsFunc(sp.Scientific, unicode.IsSpace) {
		return ""
	}
	return strings.Fields(sp.Scientific)[0]
}

// Converted returns the "<common> (<scientific>)" form without re-casing.
// Unstructured values are returned unchanged.
func (sp Species) Converted() string {
	if sp.Form == SpeciesUnstructured {
		return sp.Common
	}
	return sp.Common + " (" + sp.Scientific + ")"
}

// String renders the display form: common name title-cased word by word,
// scientific name verbatim in parentheses.
func (sp Species) String() string {
	if sp.Form == SpeciesUnstructured {
		return titleWords(sp.Common)
	}
	return titleWords(sp.Common) + " (" + sp.Scientific + ")"
}

// IsPlaceholder reports whether the species marks an empty planting site.
// The match is case sensitive.
func (sp Species) IsPlaceholder() bool {
	return sp.Converted() == PlaceholderSpecies
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// capitalize upper-cases the first rune of a token and lower-cases the rest.
// Hyphenated and apostrophed tokens are treated as one word ("o'neil" -> "O'neil").
func capitalize(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return w
	}
	return string(unicode.ToTitle(r)) + cases.Lower(language.Und).String(w[size:])
}
