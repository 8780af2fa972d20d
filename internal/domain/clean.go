package domain

import (
	"strconv"
	"strings"
	"time"
)

// ColumnRename renames one column of the raw export.
type ColumnRename struct {
	From string
	To   string
}

// CleanRules drive the clean stage. DefaultCleanRules mirrors the fixes
// applied to the published dataset.
type CleanRules struct {
	Renames            []ColumnRename
	DropColumns        []string
	SpeciesCorrections map[string]string
	DBHDefault         float64
	DBHMinimum         float64
	DBHOverrides       map[int64]float64
	PlaceholderSpecies string
}

// DefaultCleanRules returns the built-in cleaning rules.
func DefaultCleanRules() CleanRules {
	return CleanRules{
		Renames: []ColumnRename{
			{From: "TreeID", To: ColTreeID},
			{From: "qLegalStatus", To: ColLegalStatus},
			{From: "qSpecies", To: ColSpecies},
			{From: "qAddress", To: ColAddress},
			{From: "qSiteInfo", To: ColSiteInfo},
			{From: "PlantDate", To: ColPlantDate},
		},
		DropColumns: []string{
			"SiteOrder", "PlantType", "qCaretaker", "qCareAssistant",
			"PlotSize", "PermitNotes", "XCoord", "YCoord",
		},
		SpeciesCorrections: map[string]string{
			"patanus racemosa ::":             "Platanus racemosa :: California Sycamore",
			":: Brisbane Box":                 "Lophostemon confertus :: Brisbane Box",
			"Chitalpa tashkentensis ::":       "x Chitalpa tashkentensis :: x Chitalpa",
			"Olea Majestic Beauty ::":         "Olea Majestic Beauty :: Majestic Beauty Olive Tree",
			"Privet ::":                       "Ligustrum lucidum :: Glossy Privet",
			"Ficus Spp. ::":                   "Ficus Spp. :: Ficus Spp.",
			"Ficus laurel ::":                 "Ficus microcarpa nitida 'Green Gem' :: Indian Laurel Fig Tree 'Green Gem'",
			"Corymbia calophylla ::":          "Corymbia calophylla :: Marri",
			"Solanum rantonnetti ::":          "Lycianthes rantonnetii :: Blue Potato Bush",
			"Tristania conferta ::":           "Lophostemon confertus :: Brisbane Box",
			"Metrosideros excelsa 'Aurea' ::": "Metrosideros excelsa 'Aurea' :: New Zealand Xmas Tree 'Aurea'",
			"Chamaecyparis species ::":        "Chamaecyparis species :: False Cypress species",
			"Tree(s) ::":                      "Unknown :: Unknown",
			"::":                              "Unknown :: Unknown",
			":: To Be Determine":              "Unknown :: Unknown",
			":: Tree":                         "Unknown :: Unknown",
			"Brachychiton discolor ::":        "Brachychiton discolor :: Lacebark Tree",
			"Metrosideros spp ::":             "Metrosideros excelsa :: New Zealand Xmas Tree",
		},
		DBHDefault: 10,
		DBHMinimum: 1,
		DBHOverrides: map[int64]float64{
			56697:  30,
			141190: 15,
			133419: 15,
			120977: 15,
		},
		PlaceholderSpecies: "Potential Site :: Potential Site",
	}
}

// CleanStats counts what the clean stage did.
type CleanStats struct {
	RowsRead           int
	RowsWritten        int
	DroppedEmpty       int
	DroppedPlaceholder int
	SpeciesCorrected   int
	DBHDefaulted       int
	DBHClamped         int
	DBHOverridden      int
	InvalidDates       int
}

// plantDateLayouts are the timestamp shapes seen in exports, most common first.
var plantDateLayouts = []string{
	"01/02/2006 03:04:05 PM",
	"01/02/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
}

// plantDateFormat is how cleaned plant dates are written.
const plantDateFormat = "2006-01-02 15:04:05"

// CleanTable applies the rules to a raw export and returns the cleaned table.
func CleanTable(in *Table, rules CleanRules) (*Table, CleanStats) {
	renames := make(map[string]string, len(rules.Renames))
	for _, r := range rules.Renames {
		renames[r.From] = r.To
	}
	drops := make(map[string]bool, len(rules.DropColumns))
	for _, c := range rules.DropColumns {
		drops[c] = true
	}

	type column struct{ from, to string }
	var cols []column
	header := make([]string, 0, len(in.Header))
	for _, h := range in.Header {
		if drops[h] {
			continue
		}
		to := h
		if r, ok := renames[h]; ok {
			to = r
		}
		cols = append(cols, column{from: h, to: to})
		header = append(header, to)
	}

	out := &Table{Header: header, Rows: make([]Row, 0, len(in.Rows))}
	stats := CleanStats{RowsRead: len(in.Rows)}
	hasSpecies := out.HasColumn(ColSpecies)
	hasDBH := out.HasColumn(ColDBH)
	hasPlantDate := out.HasColumn(ColPlantDate)

	for _, raw := range in.Rows {
		row := make(Row, len(cols))
		empty := true
		for _, c := range cols {
			v := strings.TrimSpace(raw[c.from])
			if v != "" {
				empty = false
			}
			row[c.to] = v
		}
		if empty {
			stats.DroppedEmpty++
			continue
		}

		if hasSpecies {
			species := row[ColSpecies]
			if fixed, ok := rules.SpeciesCorrections[species]; ok {
				species = fixed
				stats.SpeciesCorrected++
			}
			if rules.PlaceholderSpecies != "" && species == rules.PlaceholderSpecies {
				stats.DroppedPlaceholder++
				continue
			}
			if !IsNull(species) {
				species = ParseRawSpecies(species).Converted()
			}
			row[ColSpecies] = species
		}

		if hasDBH {
			row[ColDBH] = cleanDBH(row, rules, &stats)
		}

		if hasPlantDate {
			row[ColPlantDate] = cleanPlantDate(row[ColPlantDate], &stats)
		}

		out.Rows = append(out.Rows, row)
	}

	stats.RowsWritten = len(out.Rows)
	return out, stats
}

func cleanDBH(row Row, rules CleanRules, stats *CleanStats) string {
	dbh := rules.DBHDefault
	if v := CleanNumeric(row[ColDBH]); v != nil {
		dbh = *v
	} else {
		stats.DBHDefaulted++
	}
	if id := parseID(row[ColTreeID]); id != nil {
		if v, ok := rules.DBHOverrides[*id]; ok {
			dbh = v
			stats.DBHOverridden++
		}
	}
	if dbh < rules.DBHMinimum {
		dbh = rules.DBHMinimum
		stats.DBHClamped++
	}
	return formatDecimal(dbh)
}

func cleanPlantDate(s string, stats *CleanStats) string {
	s = strings.TrimSpace(s)
	if IsNull(s) {
		return ""
	}
	for _, layout := range plantDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(plantDateFormat)
		}
	}
	stats.InvalidDates++
	return ""
}

// FormatID renders a tree identifier.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
