// Package kafka publishes finalized visualization records to a sink topic
// for downstream consumers. Publishing is optional and feature-flagged.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/lawatlas/disaster-law-etl/internal/config"
	"github.com/lawatlas/disaster-law-etl/internal/dataset"
)

// Publisher produces dataset records to a Kafka topic.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured sink topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishDataset serializes and publishes the dataset's visualization
// records in a single WriteMessages call, keyed by jurisdiction identifier.
func (p *Publisher) PublishDataset(ctx context.Context, ds *dataset.Dataset) error {
	records := ds.ForVisualization()
	if len(records) == 0 {
		return nil
	}

	msgs := make([]kafkago.Message, len(records))
	for i, rec := range records {
		msg, err := serializeToMessage(rec, ds.BuiltAt())
		if err != nil {
			return err
		}
		msgs[i] = msg
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish dataset: %w", err)
	}
	p.logger.Info("dataset published", "topic", p.writer.Topic, "records", len(msgs))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals one visualization record into a Kafka message.
func serializeToMessage(rec dataset.VizRecord, builtAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize record %s: %w", rec.JurisdictionID, err)
	}
	return kafkago.Message{
		Key:   []byte(rec.JurisdictionID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "built_at", Value: []byte(builtAt.Format(time.RFC3339))},
			{Key: "data_tier", Value: []byte(rec.DataTier)},
			{Key: "completeness", Value: []byte(strconv.FormatFloat(rec.Completeness, 'f', 4, 64))},
		},
	}, nil
}
