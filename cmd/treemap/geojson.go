package main

import (
	"fmt"

	"github.com/couchcryptid/street-tree-map/internal/adapter/csvfile"
	"github.com/couchcryptid/street-tree-map/internal/adapter/geojsonfile"
	"github.com/couchcryptid/street-tree-map/internal/adapter/jsonfile"
	"github.com/couchcryptid/street-tree-map/internal/config"
	"github.com/couchcryptid/street-tree-map/internal/domain"
	"github.com/couchcryptid/street-tree-map/internal/pipeline"
	"github.com/spf13/cobra"
)

type geojsonOptions struct {
	input         string
	genera        string
	deriveGenera  bool
	neighborhoods string
	output        string
	pretty        bool
	report        string
}

func newGeoJSONCmd(a *app) *cobra.Command {
	var opts geojsonOptions

	cmd := &cobra.Command{
		Use:   "geojson",
		Short: "Convert the cleaned CSV into a GeoJSON FeatureCollection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := a.path(opts.input, config.CleanTreesFile)
			table, err := csvfile.NewReader(in).ReadTable(cmd.Context())
			if err != nil {
				return err
			}

			genera, err := a.loadGenera(opts, table)
			if err != nil {
				return err
			}
			colors := domain.AssignColors(genera)

			lookup := domain.NeighborhoodLookup{}
			if err := jsonfile.Read(a.path(opts.neighborhoods, config.NeighborhoodsFile), &lookup); err != nil {
				return fmt.Errorf("load neighborhoods: %w", err)
			}

			out := a.path(opts.output, config.GeoJSONFile)
			pretty := a.cfg.GeoJSONPretty || opts.pretty
			p := pipeline.New(
				pipeline.TableSource{Table: table},
				pipeline.NewTransformer(colors, lookup, a.cfg.SpeciesCacheSize, a.metrics),
				geojsonfile.NewWriter(out, pretty),
				a.logger,
				a.metrics,
			)
			res, err := p.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("convert %s: %w", in, err)
			}
			a.metrics.Genera.Set(float64(len(genera)))

			rep := res.Report("geojson")
			rep.Input, rep.Output = in, out
			rep.Genera = len(genera)
			return a.writeReport(opts.report, rep)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.input, "input", "", "cleaned CSV (default <data-dir>/"+config.CleanTreesFile+")")
	f.StringVar(&opts.genera, "genera", "", "genus list JSON (default <data-dir>/"+config.GenusListFile+")")
	f.BoolVar(&opts.deriveGenera, "derive-genera", false, "derive the genus list from the input instead of reading it")
	f.StringVar(&opts.neighborhoods, "neighborhoods", "", "neighborhood lookup JSON (default <data-dir>/"+config.NeighborhoodsFile+")")
	f.StringVar(&opts.output, "output", "", "FeatureCollection (default <data-dir>/"+config.GeoJSONFile+")")
	f.BoolVar(&opts.pretty, "pretty", false, "indent the output (also GEOJSON_PRETTY)")
	f.StringVar(&opts.report, "report", "", "write a JSON run report to this path")
	cmd.MarkFlagsMutuallyExclusive("genera", "derive-genera")
	return cmd
}

// loadGenera returns the category set colors are assigned from.
func (a *app) loadGenera(opts geojsonOptions, table *domain.Table) ([]string, error) {
	if opts.deriveGenera {
		genera := domain.CollectGenera(table.Rows).Genera
		a.logger.Debug("derived genus list", "genera", len(genera))
		return genera, nil
	}
	var genera []string
	if err := jsonfile.Read(a.path(opts.genera, config.GenusListFile), &genera); err != nil {
		return nil, fmt.Errorf("load genus list: %w", err)
	}
	return genera, nil
}
