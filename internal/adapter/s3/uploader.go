// Package s3 uploads the generated artifacts to an S3 bucket that fronts the
// map's CDN origin.
package s3

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/couchcryptid/street-tree-map/internal/config"
	"github.com/couchcryptid/street-tree-map/internal/observability"
)

// cacheControl keeps CDN copies short-lived so a rerun shows up within minutes.
const cacheControl = "public, max-age=300"

// objectPutter is the subset of *s3.Client the Uploader uses.
type objectPutter interface {
	PutObject(ctx context.Context, in *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

// Object is one local file to upload.
type Object struct {
	Path        string
	ContentType string
}

// Uploader puts files into a single bucket under a key prefix.
type Uploader struct {
	client  objectPutter
	bucket  string
	prefix  string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates an Uploader using the default AWS credential chain.
// S3_ENDPOINT switches to path-style addressing for S3-compatible stores.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*Uploader, error) {
	if err := cfg.ValidateUpload(); err != nil {
		return nil, err
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewWithClient(client, cfg.S3Bucket, cfg.S3Prefix, logger, metrics), nil
}

// NewWithClient creates an Uploader around an existing client.
func NewWithClient(client objectPutter, bucket, prefix string, logger *slog.Logger, metrics *observability.Metrics) *Uploader {
	return &Uploader{client: client, bucket: bucket, prefix: prefix, logger: logger, metrics: metrics}
}

// Key returns the object key a local file is stored under.
func (u *Uploader) Key(localPath string) string {
	return path.Join(u.prefix, path.Base(localPath))
}

// Upload puts every object, stopping at the first failure.
func (u *Uploader) Upload(ctx context.Context, objects ...Object) error {
	for _, obj := range objects {
		if err := u.put(ctx, obj); err != nil {
			return err
		}
	}
	return nil
}

func (u *Uploader) put(ctx context.Context, obj Object) error {
	start := time.Now()
	f, err := os.Open(obj.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", obj.Path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", obj.Path, err)
	}

	key := u.Key(obj.Path)
	_, err = u.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(obj.ContentType),
		CacheControl:  aws.String(cacheControl),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", u.bucket, key, err)
	}

	u.metrics.UploadedBytes.Add(float64(info.Size()))
	u.logger.Info("uploaded artifact",
		"bucket", u.bucket,
		"key", key,
		"bytes", info.Size(),
		"duration", time.Since(start),
	)
	return nil
}
