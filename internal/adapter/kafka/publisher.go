package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/covid-map-service/internal/config"
	"github.com/couchcryptid/covid-map-service/internal/domain"
	"github.com/couchcryptid/covid-map-service/internal/observability"
)

// Publisher produces render-cycle snapshots to a Kafka topic.
// It implements tracker.Publisher.
type Publisher struct {
	writer  *kafkago.Writer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured snapshot topic.
func NewPublisher(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, metrics: metrics, logger: logger}
}

// Publish writes one snapshot as a single message keyed by cycle id.
func (p *Publisher) Publish(ctx context.Context, snap domain.Snapshot) error {
	msg, err := serializeSnapshot(snap)
	if err != nil {
		p.metrics.PublishErrors.Inc()
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.PublishErrors.Inc()
		return fmt.Errorf("write snapshot %s: %w", snap.CycleID, err)
	}
	p.metrics.SnapshotsPublished.Inc()
	p.logger.Debug("snapshot published", "cycle_id", snap.CycleID, "topic", p.writer.Topic, "bytes", len(msg.Value))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeSnapshot marshals a Snapshot into a Kafka message.
func serializeSnapshot(snap domain.Snapshot) (kafkago.Message, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(snap.CycleID),
		Value: data,
		Time:  snap.GeneratedAt,
		Headers: []kafkago.Header{
			{Key: "cycle_id", Value: []byte(snap.CycleID)},
			{Key: "generated_at", Value: []byte(snap.GeneratedAt.Format(time.RFC3339))},
			{Key: "no_data", Value: []byte(strconv.FormatBool(snap.NoData))},
		},
	}, nil
}
