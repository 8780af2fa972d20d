package domain

import (
	"fmt"
	"math"

	gojson "github.com/goccy/go-json"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// minDBH is the smallest diameter reported for a tree, in inches.
const minDBH = 1.0

// SkipReason explains why a row produced no feature. The zero value means the
// row was kept.
type SkipReason string

const (
	SkipNone               SkipReason = ""
	SkipInvalidCoordinates SkipReason = "invalid_coordinates"
	SkipPlaceholderSpecies SkipReason = "placeholder_species"
)

// SkipReasons lists every reason a row can be skipped, in check order.
var SkipReasons = []SkipReason{SkipInvalidCoordinates, SkipPlaceholderSpecies}

// TreeProperties is the flat property bag of a tree feature. Field order is
// the order properties appear in the lookup export.
type TreeProperties struct {
	ID               *int64   `json:"id"`
	Species          string   `json:"species"`
	Address          string   `json:"address"`
	DBH              *float64 `json:"dbh"`
	PlantDate        *string  `json:"plantDate"`
	SiteInfo         *string  `json:"siteInfo"`
	LegalStatus      *string  `json:"legalStatus"`
	Neighborhood     *string  `json:"neighborhood"`
	Color            string   `json:"color"`
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	NeighborhoodName string   `json:"neighborhood_name"`
}

// TreeFeature is one tree as a point with its properties.
type TreeFeature struct {
	Lon        float64
	Lat        float64
	Genus      string
	Properties TreeProperties
}

// Record is a row whose species string has been parsed at ingestion.
type Record struct {
	Row     Row
	Species Species
}

// Ingest parses the species of a row.
func Ingest(row Row) Record {
	return Record{Row: row, Species: ParseSpecies(SpeciesText(row))}
}

// SpeciesText returns the species cell of a row, or "" when it is missing.
func SpeciesText(row Row) string {
	s := row.Get(ColSpecies)
	if IsNull(s) {
		return ""
	}
	return s
}

// NormalizeRow turns one row into a feature, or reports why it was skipped.
func NormalizeRow(row Row, colors ColorMap, lookup NeighborhoodLookup) (TreeFeature, SkipReason) {
	return NormalizeRecord(Ingest(row), colors, lookup)
}

// NormalizeRecord turns an ingested row into a feature, or reports why it was
// skipped. It never fails: unusable values become nulls or skip reasons.
func NormalizeRecord(rec Record, colors ColorMap, lookup NeighborhoodLookup) (TreeFeature, SkipReason) {
	lat, okLat := parseCoordinate(rec.Row.Get(ColLatitude))
	lon, okLon := parseCoordinate(rec.Row.Get(ColLongitude))
	if !okLat || !okLon {
		return TreeFeature{}, SkipInvalidCoordinates
	}

	dbh := CleanNumeric(rec.Row.Get(ColDBH))
	if dbh != nil && *dbh < minDBH {
		v := minDBH
		dbh = &v
	}

	if rec.Species.IsPlaceholder() {
		return TreeFeature{}, SkipPlaceholderSpecies
	}
	species := rec.Species.String()
	genus := rec.Species.Genus()

	key := NeighborhoodKey(rec.Row.Get(ColNeighborhood))

	address := rec.Row.Get(ColAddress)
	if IsNull(address) {
		address = ""
	}

	return TreeFeature{
		Lon:   lon,
		Lat:   lat,
		Genus: genus,
		Properties: TreeProperties{
			ID:               parseID(rec.Row.Get(ColTreeID)),
			Species:          species,
			Address:          address,
			DBH:              dbh,
			PlantDate:        rec.Row.Nullable(ColPlantDate),
			SiteInfo:         rec.Row.Nullable(ColSiteInfo),
			LegalStatus:      rec.Row.Nullable(ColLegalStatus),
			Neighborhood:     key,
			Color:            colors.Lookup(genus),
			Latitude:         lat,
			Longitude:        lon,
			NeighborhoodName: lookup.Resolve(key),
		},
	}, SkipNone
}

// GeoJSON converts the feature to a GeoJSON point feature.
func (f TreeFeature) GeoJSON() *geojson.Feature {
	gf := geojson.NewFeature(orb.Point{f.Lon, f.Lat})
	p := f.Properties
	gf.Properties = geojson.Properties{
		"id":                nullable(p.ID),
		"species":           p.Species,
		"address":           p.Address,
		"dbh":               nullable(p.DBH),
		"plantDate":         nullable(p.PlantDate),
		"siteInfo":          nullable(p.SiteInfo),
		"legalStatus":       nullable(p.LegalStatus),
		"neighborhood":      nullable(p.Neighborhood),
		"color":             p.Color,
		"latitude":          p.Latitude,
		"longitude":         p.Longitude,
		"neighborhood_name": p.NeighborhoodName,
	}
	return gf
}

func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

// FeatureFromGeoJSON reads a tree feature back from its GeoJSON form.
func FeatureFromGeoJSON(gf *geojson.Feature) (TreeFeature, error) {
	pt, ok := gf.Geometry.(orb.Point)
	if !ok {
		return TreeFeature{}, fmt.Errorf("feature geometry is %T, want point", gf.Geometry)
	}
	if math.IsNaN(pt.Lon()) || math.IsNaN(pt.Lat()) {
		return TreeFeature{}, fmt.Errorf("feature has NaN coordinates")
	}

	raw, err := gojson.Marshal(gf.Properties)
	if err != nil {
		return TreeFeature{}, fmt.Errorf("encode properties: %w", err)
	}
	var props TreeProperties
	if err := gojson.Unmarshal(raw, &props); err != nil {
		return TreeFeature{}, fmt.Errorf("decode properties: %w", err)
	}

	return TreeFeature{
		Lon:        pt.Lon(),
		Lat:        pt.Lat(),
		Genus:      ParseSpecies(props.Species).Genus(),
		Properties: props,
	}, nil
}
