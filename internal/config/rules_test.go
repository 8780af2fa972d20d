package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/street-tree-map/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRules(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadRules_EmptyPath(t *testing.T) {
	rules, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCleanRules(), rules)
}

func TestLoadRules_Overrides(t *testing.T) {
	path := writeRules(t, `
drop_columns: [SiteOrder]
species_corrections:
  - from: "Privet ::"
    to: "Ligustrum japonicum :: Japanese Privet"
dbh_default: 6
dbh_overrides:
  - tree_id: 42
    dbh: 18.5
`)

	rules, err := LoadRules(path)
	require.NoError(t, err)

	defaults := domain.DefaultCleanRules()
	assert.Equal(t, defaults.Renames, rules.Renames)
	assert.Equal(t, []string{"SiteOrder"}, rules.DropColumns)
	assert.Equal(t, map[string]string{"Privet ::": "Ligustrum japonicum :: Japanese Privet"}, rules.SpeciesCorrections)
	assert.InDelta(t, 6.0, rules.DBHDefault, 0)
	assert.InDelta(t, 1.0, rules.DBHMinimum, 0)
	assert.Equal(t, map[int64]float64{42: 18.5}, rules.DBHOverrides)
	assert.Equal(t, defaults.PlaceholderSpecies, rules.PlaceholderSpecies)
}

func TestLoadRules_Renames(t *testing.T) {
	path := writeRules(t, `
renames:
  - from: qSpecies
    to: Species
`)
	rules, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, []domain.ColumnRename{{From: "qSpecies", To: domain.ColSpecies}}, rules.Renames)
}

func TestLoadRules_MissingFile(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read rules")
}

func TestLoadRules_NegativeMinimum(t *testing.T) {
	_, err := LoadRules(writeRules(t, "dbh_minimum: -1\n"))
	assert.ErrorContains(t, err, "dbh_minimum")
}
