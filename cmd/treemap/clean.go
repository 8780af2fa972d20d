package main

import (
	"fmt"

	"github.com/couchcryptid/street-tree-map/internal/adapter/csvfile"
	"github.com/couchcryptid/street-tree-map/internal/config"
	"github.com/couchcryptid/street-tree-map/internal/pipeline"
	"github.com/spf13/cobra"
)

func newCleanCmd(a *app) *cobra.Command {
	var input, output, report string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean the raw street tree list into the cleaned CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rules, err := config.LoadRules(a.cfg.RulesFile)
			if err != nil {
				return fmt.Errorf("load rules: %w", err)
			}

			in := a.path(input, config.RawTreesFile)
			out := a.path(output, config.CleanTreesFile)
			c := pipeline.NewCleaner(csvfile.NewReader(in), csvfile.NewWriter(out), rules, a.logger, a.metrics)
			stats, err := c.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("clean %s: %w", in, err)
			}

			rep := pipeline.CleanReport(stats)
			rep.Input, rep.Output = in, out
			return a.writeReport(report, rep)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "raw street tree CSV (default <data-dir>/"+config.RawTreesFile+")")
	cmd.Flags().StringVar(&output, "output", "", "cleaned CSV (default <data-dir>/"+config.CleanTreesFile+")")
	cmd.Flags().StringVar(&report, "report", "", "write a JSON run report to this path")
	return cmd
}
