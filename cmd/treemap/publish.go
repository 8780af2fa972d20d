package main

import (
	"fmt"

	"github.com/couchcryptid/street-tree-map/internal/adapter/geojsonfile"
	kafkaadapter "github.com/couchcryptid/street-tree-map/internal/adapter/kafka"
	"github.com/couchcryptid/street-tree-map/internal/config"
	"github.com/spf13/cobra"
)

func newPublishCmd(a *app) *cobra.Command {
	var input, topic string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish every tree feature to Kafka",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if topic != "" {
				a.cfg.KafkaTopic = topic
			}
			if err := a.cfg.ValidatePublish(); err != nil {
				return err
			}

			in := a.path(input, config.GeoJSONFile)
			features, err := geojsonfile.ReadFile(in)
			if err != nil {
				return err
			}

			writer := kafkaadapter.NewWriter(a.cfg, a.logger, a.metrics)
			defer func() {
				if err := writer.Close(); err != nil {
					a.logger.Error("kafka writer close error", "error", err)
				}
			}()

			if err := writer.WriteFeatures(cmd.Context(), features); err != nil {
				return fmt.Errorf("publish %s: %w", in, err)
			}
			a.logger.Info("features published",
				"topic", a.cfg.KafkaTopic,
				"brokers", a.cfg.KafkaBrokers,
				"messages", len(features),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "FeatureCollection (default <data-dir>/"+config.GeoJSONFile+")")
	cmd.Flags().StringVar(&topic, "topic", "", "destination topic (overrides KAFKA_TOPIC)")
	return cmd
}
