package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/ncasuk/ncas-aws-10-software/internal/config"
	"github.com/ncasuk/ncas-aws-10-software/internal/domain"
)

// Writer publishes observations to a Kafka topic.
// It implements pipeline.ObservationSink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    cfg.BatchSize,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes observations and writes them in a single WriteMessages call.
func (w *Writer) Publish(ctx context.Context, observations []domain.Observation) error {
	if len(observations) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(observations))
	for i := range observations {
		msg, err := serializeToMessage(observations[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish observations: %w", err)
	}
	w.logger.Debug("observations published", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an Observation into a Kafka message keyed by
// instrument so one station's timesteps stay on one partition in order.
func serializeToMessage(obs domain.Observation) (kafkago.Message, error) {
	data, err := json.Marshal(obs)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize observation: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(obs.Instrument),
		Value: data,
		Time:  obs.Time,
		Headers: []kafkago.Header{
			{Key: "instrument", Value: []byte(obs.Instrument)},
			{Key: "processed_at", Value: []byte(obs.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
