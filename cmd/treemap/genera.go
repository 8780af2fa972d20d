package main

import (
	"fmt"

	"github.com/couchcryptid/street-tree-map/internal/adapter/csvfile"
	"github.com/couchcryptid/street-tree-map/internal/adapter/jsonfile"
	"github.com/couchcryptid/street-tree-map/internal/config"
	"github.com/couchcryptid/street-tree-map/internal/domain"
	"github.com/spf13/cobra"
)

func newGeneraCmd(a *app) *cobra.Command {
	var input, output, speciesOutput string

	cmd := &cobra.Command{
		Use:   "genera",
		Short: "List the genera and their species found in the cleaned CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := a.path(input, config.CleanTreesFile)
			table, err := csvfile.NewReader(in).ReadTable(cmd.Context())
			if err != nil {
				return err
			}
			if err := table.Require(domain.RequiredColumns...); err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}

			idx := domain.CollectGenera(table.Rows)
			genera := idx.Genera
			if genera == nil {
				genera = []string{}
			}

			out := a.path(output, config.GenusListFile)
			if err := jsonfile.Write(out, genera); err != nil {
				return fmt.Errorf("write genus list: %w", err)
			}
			speciesOut := a.path(speciesOutput, config.GenusSpeciesFile)
			if err := jsonfile.Write(speciesOut, idx.Species); err != nil {
				return fmt.Errorf("write genus species: %w", err)
			}

			a.metrics.Genera.Set(float64(len(genera)))
			a.logger.Info("genus list written",
				"path", out,
				"genera", len(genera),
				"ungrouped", idx.Ungrouped,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "cleaned CSV (default <data-dir>/"+config.CleanTreesFile+")")
	cmd.Flags().StringVar(&output, "output", "", "genus list JSON (default <data-dir>/"+config.GenusListFile+")")
	cmd.Flags().StringVar(&speciesOutput, "species-output", "", "genus to species JSON (default <data-dir>/"+config.GenusSpeciesFile+")")
	return cmd
}
