package main

import (
	"fmt"

	"github.com/couchcryptid/street-tree-map/internal/adapter/csvfile"
	"github.com/couchcryptid/street-tree-map/internal/adapter/jsonfile"
	"github.com/couchcryptid/street-tree-map/internal/config"
	"github.com/couchcryptid/street-tree-map/internal/domain"
	"github.com/spf13/cobra"
)

// nhoodColumn is the name column of the Analysis Neighborhoods export.
const nhoodColumn = "nhood"

func newNeighborhoodsCmd(a *app) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "neighborhoods",
		Short: "Build the neighborhood code lookup from the Analysis Neighborhoods CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := a.path(input, config.NeighborhoodsCSVFile)
			out := a.path(output, config.NeighborhoodsFile)

			table, err := csvfile.NewReader(in).ReadTable(cmd.Context())
			if err != nil {
				return err
			}
			names, err := csvfile.Column(table, nhoodColumn)
			if err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}

			lookup := domain.BuildNeighborhoodLookup(names)
			if err := jsonfile.Write(out, lookup); err != nil {
				return fmt.Errorf("write neighborhoods: %w", err)
			}
			a.logger.Info("neighborhood lookup written", "path", out, "neighborhoods", len(lookup))
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "neighborhoods CSV (default <data-dir>/"+config.NeighborhoodsCSVFile+")")
	cmd.Flags().StringVar(&output, "output", "", "lookup JSON (default <data-dir>/"+config.NeighborhoodsFile+")")
	return cmd
}
