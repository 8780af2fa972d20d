package domain

import "sort"

// GenusIndex summarizes the genera present in a dataset.
type GenusIndex struct {
	// Genera holds the distinct non-empty genera in sorted order.
	Genera []string
	// Species maps each genus to its distinct display species, sorted.
	Species map[string][]string
	// Ungrouped counts rows whose species yields no genus.
	Ungrouped int
}

// CollectGenera scans the rows that would become features and indexes their
// genera. Rows with unusable coordinates and placeholder sites are ignored.
func CollectGenera(rows []Row) GenusIndex {
	bySpecies := make(map[string]map[string]struct{})
	idx := GenusIndex{Species: make(map[string][]string)}

	for _, row := range rows {
		if _, ok := parseCoordinate(row.Get(ColLatitude)); !ok {
			continue
		}
		if _, ok := parseCoordinate(row.Get(ColLongitude)); !ok {
			continue
		}
		sp := Ingest(row).Species
		if sp.IsPlaceholder() {
			continue
		}
		genus := sp.Genus()
		if genus == "" {
			idx.Ungrouped++
			continue
		}
		set, ok := bySpecies[genus]
		if !ok {
			set = make(map[string]struct{})
			bySpecies[genus] = set
		}
		set[sp.String()] = struct{}{}
	}

	for genus, set := range bySpecies {
		idx.Genera = append(idx.Genera, genus)
		names := make([]string, 0, len(set))
		for n := range set {
			names = append(names, n)
		}
		sort.Strings(names)
		idx.Species[genus] = names
	}
	sort.Strings(idx.Genera)
	return idx
}
