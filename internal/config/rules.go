package config

import (
	"fmt"

	"github.com/couchcryptid/street-tree-map/internal/domain"
	"github.com/spf13/viper"
)

// rulesFile is the YAML shape of a cleaning rules file. Species corrections
// and DBH overrides are lists because viper lower-cases map keys.
type rulesFile struct {
	Renames []struct {
		From string `mapstructure:"from"`
		To   string `mapstructure:"to"`
	} `mapstructure:"renames"`
	DropColumns        []string `mapstructure:"drop_columns"`
	SpeciesCorrections []struct {
		From string `mapstructure:"from"`
		To   string `mapstructure:"to"`
	} `mapstructure:"species_corrections"`
	DBHDefault   float64 `mapstructure:"dbh_default"`
	DBHMinimum   float64 `mapstructure:"dbh_minimum"`
	DBHOverrides []struct {
		TreeID int64   `mapstructure:"tree_id"`
		DBH    float64 `mapstructure:"dbh"`
	} `mapstructure:"dbh_overrides"`
	PlaceholderSpecies string `mapstructure:"placeholder_species"`
}

// LoadRules returns the built-in cleaning rules, replaced section by section
// by whatever the YAML file at path defines. An empty path yields the defaults.
func LoadRules(path string) (domain.CleanRules, error) {
	rules := domain.DefaultCleanRules()
	if path == "" {
		return rules, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("dbh_default", rules.DBHDefault)
	v.SetDefault("dbh_minimum", rules.DBHMinimum)
	v.SetDefault("placeholder_species", rules.PlaceholderSpecies)
	if err := v.ReadInConfig(); err != nil {
		return domain.CleanRules{}, fmt.Errorf("read rules %s: %w", path, err)
	}

	var f rulesFile
	if err := v.Unmarshal(&f); err != nil {
		return domain.CleanRules{}, fmt.Errorf("unmarshal rules: %w", err)
	}

	if v.IsSet("renames") {
		rules.Renames = make([]domain.ColumnRename, 0, len(f.Renames))
		for _, r := range f.Renames {
			rules.Renames = append(rules.Renames, domain.ColumnRename{From: r.From, To: r.To})
		}
	}
	if v.IsSet("drop_columns") {
		rules.DropColumns = f.DropColumns
	}
	if v.IsSet("species_corrections") {
		rules.SpeciesCorrections = make(map[string]string, len(f.SpeciesCorrections))
		for _, c := range f.SpeciesCorrections {
			rules.SpeciesCorrections[c.From] = c.To
		}
	}
	if v.IsSet("dbh_overrides") {
		rules.DBHOverrides = make(map[int64]float64, len(f.DBHOverrides))
		for _, o := range f.DBHOverrides {
			rules.DBHOverrides[o.TreeID] = o.DBH
		}
	}
	rules.DBHDefault = f.DBHDefault
	rules.DBHMinimum = f.DBHMinimum
	rules.PlaceholderSpecies = f.PlaceholderSpecies

	if rules.DBHMinimum < 0 {
		return domain.CleanRules{}, fmt.Errorf("rules: dbh_minimum must not be negative")
	}
	return rules, nil
}
