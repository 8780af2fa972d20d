package main

import (
	"fmt"

	"github.com/couchcryptid/street-tree-map/internal/adapter/geojsonfile"
	"github.com/couchcryptid/street-tree-map/internal/adapter/jsonfile"
	"github.com/couchcryptid/street-tree-map/internal/config"
	"github.com/couchcryptid/street-tree-map/internal/domain"
	"github.com/spf13/cobra"
)

func newLookupCmd(a *app) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Flatten the FeatureCollection properties into the search lookup",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			in := a.path(input, config.GeoJSONFile)
			features, err := geojsonfile.ReadFile(in)
			if err != nil {
				return err
			}

			props := make([]domain.TreeProperties, len(features))
			for i, f := range features {
				props[i] = f.Properties
			}

			out := a.path(output, config.LookupFile)
			if err := jsonfile.Write(out, props); err != nil {
				return fmt.Errorf("write lookup: %w", err)
			}
			a.logger.Info("tree lookup written", "path", out, "trees", len(props))
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "FeatureCollection (default <data-dir>/"+config.GeoJSONFile+")")
	cmd.Flags().StringVar(&output, "output", "", "lookup JSON (default <data-dir>/"+config.LookupFile+")")
	return cmd
}
