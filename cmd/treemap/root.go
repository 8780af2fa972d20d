package main

import (
	"fmt"
	"log/slog"

	"github.com/couchcryptid/street-tree-map/internal/adapter/jsonfile"
	"github.com/couchcryptid/street-tree-map/internal/config"
	"github.com/couchcryptid/street-tree-map/internal/domain"
	"github.com/couchcryptid/street-tree-map/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// app carries the state shared by every subcommand once the root command
// has loaded configuration.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *observability.Metrics
	registry *prometheus.Registry

	dataDir         string
	logLevel        string
	logFormat       string
	rulesFile       string
	metricsTextfile string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "treemap",
		Short: "Prepare the street tree dataset for the map",
		Long: `treemap turns the city street tree list into the artifacts the map front-end
loads: a cleaned CSV, genus and neighborhood lookups, a GeoJSON FeatureCollection
and a flat property lookup. It can also serve, publish and upload those artifacts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return observability.WriteTextfile(a.cfg.MetricsTextfile, a.registry)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.dataDir, "data-dir", "", "directory holding inputs and artifacts (overrides DATA_DIR)")
	f.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	f.StringVar(&a.logFormat, "log-format", "", "text or json (overrides LOG_FORMAT)")
	f.StringVar(&a.rulesFile, "rules", "", "YAML cleaning rules (overrides RULES_FILE)")
	f.StringVar(&a.metricsTextfile, "metrics-textfile", "", "write metrics here after the run (overrides METRICS_TEXTFILE)")

	root.AddCommand(
		newCleanCmd(a),
		newNeighborhoodsCmd(a),
		newGeneraCmd(a),
		newGeoJSONCmd(a),
		newLookupCmd(a),
		newServeCmd(a),
		newPublishCmd(a),
		newUploadCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	f := cmd.Flags()
	if f.Changed("data-dir") {
		cfg.DataDir = a.dataDir
	}
	if f.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if f.Changed("log-format") {
		cfg.LogFormat = a.logFormat
	}
	if f.Changed("rules") {
		cfg.RulesFile = a.rulesFile
	}
	if f.Changed("metrics-textfile") {
		cfg.MetricsTextfile = a.metricsTextfile
	}

	a.cfg = cfg
	a.logger = observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	a.metrics, a.registry = observability.NewMetricsWithRegistry()
	return nil
}

// path returns flagValue when set, otherwise the named artifact in the data directory.
func (a *app) path(flagValue, name string) string {
	if flagValue != "" {
		return flagValue
	}
	return a.cfg.Path(name)
}

// writeReport stores rep at path when a report was requested.
func (a *app) writeReport(path string, rep domain.RunReport) error {
	if path == "" {
		return nil
	}
	if err := jsonfile.Write(path, rep); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	a.logger.Info("run report written", "path", path, "stage", rep.Stage)
	return nil
}
