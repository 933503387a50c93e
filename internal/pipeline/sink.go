package pipeline

import (
	"context"
	"log/slog"

	"github.com/greenandcoop/weather-obs-etl/internal/domain"
)

// ObjectSink is the write side of the object-store adapter.
type ObjectSink interface {
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) error
}

// NDJSONSink writes the serialized batch as a single newline-delimited JSON
// object at a fixed key in the load-ready bucket, overwriting the previous
// run's output.
type NDJSONSink struct {
	store  ObjectSink
	bucket string
	key    string
	logger *slog.Logger
}

// NewNDJSONSink creates a sink targeting s3://bucket/key.
func NewNDJSONSink(store ObjectSink, bucket, key string, logger *slog.Logger) *NDJSONSink {
	return &NDJSONSink{store: store, bucket: bucket, key: key, logger: logger}
}

// Store serializes and uploads the batch. An empty batch still produces an
// object, so downstream steps can tell "ran, nothing to load" from "never
// ran".
func (s *NDJSONSink) Store(ctx context.Context, records []domain.Record) error {
	body, err := domain.MarshalNDJSON(records)
	if err != nil {
		return err
	}
	s.logger.Info("storing load-ready batch",
		"bucket", s.bucket, "key", s.key, "records", len(records))
	return s.store.Put(ctx, s.bucket, s.key, body, "application/x-ndjson")
}
