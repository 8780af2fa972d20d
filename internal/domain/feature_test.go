package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLookup() NeighborhoodLookup {
	return BuildNeighborhoodLookup([]string{"Bayview Hunters Point", "Bernal Heights", "Castro/Upper Market"})
}

func testColors() ColorMap {
	return AssignColors([]string{"Acer", "Pinus", "Quercus"})
}

func validRow() Row {
	return Row{
		ColTreeID:       "12345",
		ColLegalStatus:  "DPW Maintained",
		ColSpecies:      testRawOak,
		ColAddress:      "100 Market St",
		ColSiteInfo:     "Sidewalk: Curb side : Cutout",
		ColPlantDate:    "2012-03-15 00:00:00",
		ColDBH:          "12.5",
		ColLatitude:     "37.77492961",
		ColLongitude:    "-122.4194155123",
		ColNeighborhood: "3",
	}
}

func ptr[T any](v T) *T { return &v }

func TestNormalizeRow(t *testing.T) {
	f, skip := NormalizeRow(validRow(), testColors(), testLookup())
	require.Equal(t, SkipNone, skip)

	want := TreeFeature{
		Lon:   -122.419416,
		Lat:   37.77493,
		Genus: "Quercus",
		Properties: TreeProperties{
			ID:               ptr(int64(12345)),
			Species:          testCoastLiveOak,
			Address:          "100 Market St",
			DBH:              ptr(12.5),
			PlantDate:        ptr("2012-03-15 00:00:00"),
			SiteInfo:         ptr("Sidewalk: Curb side : Cutout"),
			LegalStatus:      ptr("DPW Maintained"),
			Neighborhood:     ptr("3.0"),
			Color:            "#7070c1",
			Latitude:         37.77493,
			Longitude:        -122.419416,
			NeighborhoodName: "Castro/Upper Market",
		},
	}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Errorf("NormalizeRow mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeRow_InvalidCoordinates(t *testing.T) {
	tests := []struct {
		name string
		lat  string
		lon  string
	}{
		{"missing latitude", "", "-122.41"},
		{"missing longitude", "37.77", ""},
		{"NaN latitude", "NaN", "-122.41"},
		{"null token", "null", "-122.41"},
		{"unparseable", "north", "-122.41"},
		{"infinite", "inf", "-122.41"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validRow()
			row[ColLatitude] = tt.lat
			row[ColLongitude] = tt.lon
			_, skip := NormalizeRow(row, testColors(), testLookup())
			assert.Equal(t, SkipInvalidCoordinates, skip)
		})
	}

	t.Run("absent column", func(t *testing.T) {
		row := validRow()
		delete(row, ColLatitude)
		_, skip := NormalizeRow(row, testColors(), testLookup())
		assert.Equal(t, SkipInvalidCoordinates, skip)
	})
}

func TestNormalizeRow_Placeholder(t *testing.T) {
	for _, species := range []string{PlaceholderSpecies, "Potential Site :: Potential Site"} {
		row := validRow()
		row[ColSpecies] = species
		_, skip := NormalizeRow(row, testColors(), testLookup())
		assert.Equal(t, SkipPlaceholderSpecies, skip, species)
	}
}

func TestNormalizeRow_PlaceholderIsCaseSensitive(t *testing.T) {
	row := validRow()
	row[ColSpecies] = "potential site (Potential Site)"
	f, skip := NormalizeRow(row, testColors(), testLookup())
	require.Equal(t, SkipNone, skip)
	assert.Equal(t, PlaceholderSpecies, f.Properties.Species)
}

func TestNormalizeRow_CoordinateRounding(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"37.7749295", 37.774929},
		{"-122.4194155", -122.419415},
		{"37.0000005", 37.0},
		{"37.7935124", 37.793512},
		{"37.77492961", 37.77493},
		{"-122.3959876", -122.395988},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			row := validRow()
			row[ColLatitude] = tt.in
			f, skip := NormalizeRow(row, testColors(), testLookup())
			require.Equal(t, SkipNone, skip)
			assert.InDelta(t, tt.want, f.Lat, 0)
			assert.InDelta(t, tt.want, f.Properties.Latitude, 0)
		})
	}
}

func TestNormalizeRow_Species(t *testing.T) {
	t.Run("already normalized is re-cased only", func(t *testing.T) {
		row := validRow()
		row[ColSpecies] = "coast live oak (Quercus agrifolia)"
		f, skip := NormalizeRow(row, testColors(), testLookup())
		require.Equal(t, SkipNone, skip)
		assert.Equal(t, testCoastLiveOak, f.Properties.Species)
		assert.Equal(t, "Quercus", f.Genus)
	})

	t.Run("unknown genus is black", func(t *testing.T) {
		row := validRow()
		row[ColSpecies] = "Elm (Ulmus parvifolia)"
		f, _ := NormalizeRow(row, testColors(), testLookup())
		assert.Equal(t, DefaultColor, f.Properties.Color)
	})

	t.Run("missing species", func(t *testing.T) {
		row := validRow()
		row[ColSpecies] = ""
		f, skip := NormalizeRow(row, testColors(), testLookup())
		require.Equal(t, SkipNone, skip)
		assert.Empty(t, f.Properties.Species)
		assert.Empty(t, f.Genus)
		assert.Equal(t, DefaultColor, f.Properties.Color)
	})
}

func TestNormalizeRow_DBH(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *float64
	}{
		{"empty", "", nil},
		{"null token", "nan", nil},
		{"unparseable", "big", nil},
		{"decimal", "12.5", ptr(12.5)},
		{"clamped to minimum", "0.4", ptr(1.0)},
		{"zero clamped", "0", ptr(1.0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validRow()
			row[ColDBH] = tt.in
			f, skip := NormalizeRow(row, testColors(), testLookup())
			require.Equal(t, SkipNone, skip)
			assert.Equal(t, tt.want, f.Properties.DBH)
		})
	}

	t.Run("absent column", func(t *testing.T) {
		row := validRow()
		delete(row, ColDBH)
		f, _ := NormalizeRow(row, testColors(), testLookup())
		assert.Nil(t, f.Properties.DBH)
	})
}

func TestNormalizeRow_Neighborhood(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		wantKey  *string
		wantName string
	}{
		{"integral code", "3", ptr("3.0"), "Castro/Upper Market"},
		{"float code", "1.0", ptr("1.0"), "Bayview Hunters Point"},
		{"no entry", "42", ptr("42.0"), UnknownNeighborhood},
		{"blank", "", nil, UnknownNeighborhood},
		{"not a number", "Mission", nil, UnknownNeighborhood},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validRow()
			row[ColNeighborhood] = tt.code
			f, _ := NormalizeRow(row, testColors(), testLookup())
			assert.Equal(t, tt.wantKey, f.Properties.Neighborhood)
			assert.Equal(t, tt.wantName, f.Properties.NeighborhoodName)
		})
	}
}

func TestNormalizeRow_NullableFields(t *testing.T) {
	row := validRow()
	row[ColTreeID] = ""
	row[ColAddress] = ""
	row[ColPlantDate] = ""
	row[ColSiteInfo] = "NaN"
	delete(row, ColLegalStatus)

	f, skip := NormalizeRow(row, testColors(), testLookup())
	require.Equal(t, SkipNone, skip)
	assert.Nil(t, f.Properties.ID)
	assert.Equal(t, "", f.Properties.Address)
	assert.Nil(t, f.Properties.PlantDate)
	assert.Nil(t, f.Properties.SiteInfo)
	assert.Nil(t, f.Properties.LegalStatus)
}

func TestNormalizeRow_FloatID(t *testing.T) {
	row := validRow()
	row[ColTreeID] = "98765.0"
	f, _ := NormalizeRow(row, testColors(), testLookup())
	assert.Equal(t, ptr(int64(98765)), f.Properties.ID)
}

func TestNormalizeRow_Deterministic(t *testing.T) {
	rows := []Row{validRow(), validRow()}
	rows[1][ColSpecies] = "Monterey Pine (Pinus radiata)"
	rows[1][ColTreeID] = "2"

	encode := func() []byte {
		colors := testColors()
		lookup := testLookup()
		fc := geojson.NewFeatureCollection()
		for _, r := range rows {
			f, skip := NormalizeRow(r, colors, lookup)
			require.Equal(t, SkipNone, skip)
			fc.Append(f.GeoJSON())
		}
		data, err := fc.MarshalJSON()
		require.NoError(t, err)
		return data
	}

	assert.Equal(t, encode(), encode())
}

func TestTreeFeatureGeoJSON(t *testing.T) {
	f, _ := NormalizeRow(validRow(), testColors(), testLookup())
	gf := f.GeoJSON()

	assert.Equal(t, orb.Point{-122.419416, 37.77493}, gf.Geometry)
	assert.Equal(t, "Quercus agrifolia", ParseSpecies(gf.Properties.MustString("species")).Scientific)
	assert.Equal(t, "#7070c1", gf.Properties["color"])

	data, err := gf.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"coordinates":[-122.419416,37.77493]`)
	assert.Contains(t, string(data), `"neighborhood_name":"Castro/Upper Market"`)

	t.Run("null properties", func(t *testing.T) {
		row := validRow()
		row[ColDBH] = ""
		f, _ := NormalizeRow(row, testColors(), testLookup())
		data, err := f.GeoJSON().MarshalJSON()
		require.NoError(t, err)
		assert.Contains(t, string(data), `"dbh":null`)
	})
}

func TestFeatureFromGeoJSON(t *testing.T) {
	f, _ := NormalizeRow(validRow(), testColors(), testLookup())

	data, err := f.GeoJSON().MarshalJSON()
	require.NoError(t, err)
	gf, err := geojson.UnmarshalFeature(data)
	require.NoError(t, err)

	back, err := FeatureFromGeoJSON(gf)
	require.NoError(t, err)
	if diff := cmp.Diff(f, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	t.Run("non-point geometry", func(t *testing.T) {
		_, err := FeatureFromGeoJSON(geojson.NewFeature(orb.LineString{{0, 0}, {1, 1}}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "want point")
	})
}
