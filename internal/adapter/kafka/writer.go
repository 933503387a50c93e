// Package kafka publishes canonical observation records to a sink topic for
// downstream consumers that want a stream instead of polling the load-ready
// bucket. The publish is optional and feature-flagged via KAFKA_ENABLED.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/greenandcoop/weather-obs-etl/internal/config"
	"github.com/greenandcoop/weather-obs-etl/internal/domain"
)

// Writer produces canonical records to the sink topic. It implements
// pipeline.Sink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Store serializes and publishes a record batch in a single WriteMessages
// call.
func (w *Writer) Store(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i, rec := range records {
		msg, err := recordToMessage(rec)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// recordToMessage marshals a record, keyed by station for per-station
// partition ordering.
func recordToMessage(rec domain.Record) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize record: %w", err)
	}
	key, _ := rec["station_id"].(string)
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
	}, nil
}
