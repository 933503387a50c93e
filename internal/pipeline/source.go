package pipeline

import (
	"context"
	"log/slog"

	"github.com/greenandcoop/weather-obs-etl/internal/domain"
)

// ObjectSource is the slice of the object-store adapter the extractor needs.
// MaxKey is the ingestion selection policy: staged key names embed a
// sortable timestamp, so the maximal key is the newest batch.
type ObjectSource interface {
	MaxKey(ctx context.Context, bucket, prefix, suffix string) (string, error)
	GetLines(ctx context.Context, bucket, key string) ([][]byte, error)
}

// StagingConfig locates the staged source objects.
type StagingConfig struct {
	Bucket          string
	TelemetryPrefix string
	TabularPrefix   string
	Suffix          string
}

// S3Extractor reads the newest staged object per source from the staging
// bucket. It implements Extractor.
type S3Extractor struct {
	store  ObjectSource
	cfg    StagingConfig
	logger *slog.Logger
}

// NewS3Extractor creates an extractor over the staging bucket.
func NewS3Extractor(store ObjectSource, cfg StagingConfig, logger *slog.Logger) *S3Extractor {
	return &S3Extractor{store: store, cfg: cfg, logger: logger}
}

// ExtractTelemetry fetches and decodes the newest staged telemetry object.
func (e *S3Extractor) ExtractTelemetry(ctx context.Context) (domain.TelemetryBatch, error) {
	key, err := e.store.MaxKey(ctx, e.cfg.Bucket, e.cfg.TelemetryPrefix, e.cfg.Suffix)
	if err != nil {
		return domain.TelemetryBatch{}, err
	}
	e.logger.Info("extracting telemetry", "bucket", e.cfg.Bucket, "key", key)
	lines, err := e.store.GetLines(ctx, e.cfg.Bucket, key)
	if err != nil {
		return domain.TelemetryBatch{}, err
	}
	return domain.ParseTelemetry(lines)
}

// ExtractTabular fetches and decodes the newest staged tabular object.
func (e *S3Extractor) ExtractTabular(ctx context.Context) (domain.TabularBatch, error) {
	key, err := e.store.MaxKey(ctx, e.cfg.Bucket, e.cfg.TabularPrefix, e.cfg.Suffix)
	if err != nil {
		return domain.TabularBatch{}, err
	}
	e.logger.Info("extracting tabular", "bucket", e.cfg.Bucket, "key", key)
	lines, err := e.store.GetLines(ctx, e.cfg.Bucket, key)
	if err != nil {
		return domain.TabularBatch{}, err
	}
	return domain.ParseTabular(lines, key)
}
