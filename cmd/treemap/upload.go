package main

import (
	"github.com/couchcryptid/street-tree-map/internal/adapter/geojsonfile"
	"github.com/couchcryptid/street-tree-map/internal/adapter/s3"
	"github.com/couchcryptid/street-tree-map/internal/config"
	"github.com/spf13/cobra"
)

func newUploadCmd(a *app) *cobra.Command {
	var bucket, prefix string

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload the GeoJSON and lookup artifacts to S3",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if bucket != "" {
				a.cfg.S3Bucket = bucket
			}
			if cmd.Flags().Changed("prefix") {
				a.cfg.S3Prefix = prefix
			}

			u, err := s3.New(cmd.Context(), a.cfg, a.logger, a.metrics)
			if err != nil {
				return err
			}
			return u.Upload(cmd.Context(),
				s3.Object{Path: a.cfg.Path(config.GeoJSONFile), ContentType: geojsonfile.ContentType},
				s3.Object{Path: a.cfg.Path(config.LookupFile), ContentType: "application/json"},
			)
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "destination bucket (overrides S3_BUCKET)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "object key prefix (overrides S3_PREFIX)")
	return cmd
}
