package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/street-tree-map/internal/config"
	"github.com/couchcryptid/street-tree-map/internal/domain"
	"github.com/couchcryptid/street-tree-map/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer the Writer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes tree features to a Kafka topic, one message per tree.
// It implements pipeline.FeatureSink.
type Writer struct {
	writer    messageWriter
	logger    *slog.Logger
	metrics   *observability.Metrics
	batchSize int
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger, metrics: metrics, batchSize: cfg.BatchSize}
}

// WriteFeatures serializes the features and publishes them in batches of
// BATCH_SIZE messages per WriteMessages call.
func (w *Writer) WriteFeatures(ctx context.Context, features []domain.TreeFeature) error {
	if len(features) == 0 {
		return nil
	}
	size := w.batchSize
	if size <= 0 {
		size = len(features)
	}

	for start := 0; start < len(features); start += size {
		end := min(start+size, len(features))
		msgs := make([]kafkago.Message, 0, end-start)
		for i := start; i < end; i++ {
			msg, err := serializeToMessage(features[i])
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
			return fmt.Errorf("publish features %d-%d: %w", start, end-1, err)
		}
		w.metrics.MessagesPublished.Add(float64(len(msgs)))
		w.logger.Debug("published batch", "from", start, "count", len(msgs))
	}
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage encodes a feature as a GeoJSON Feature keyed by tree id.
// Trees without an id get a nil key and are spread by the balancer.
func serializeToMessage(f domain.TreeFeature) (kafkago.Message, error) {
	data, err := f.GeoJSON().MarshalJSON()
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize tree feature: %w", err)
	}
	var key []byte
	if f.Properties.ID != nil {
		key = []byte(domain.FormatID(*f.Properties.ID))
	}
	return kafkago.Message{
		Key:   key,
		Value: data,
		Headers: []kafkago.Header{
			{Key: "genus", Value: []byte(f.Genus)},
			{Key: "color", Value: []byte(f.Properties.Color)},
		},
	}, nil
}
