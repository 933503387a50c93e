// The etl command runs one normalize-unify-serialize-store batch: it picks
// the newest staged object per source, converts both to the canonical
// observation schema, and uploads the unified batch to the load-ready
// bucket. Health and metrics endpoints stay up for the duration of the run.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	httpadapter "github.com/greenandcoop/weather-obs-etl/internal/adapter/http"
	kafkaadapter "github.com/greenandcoop/weather-obs-etl/internal/adapter/kafka"
	s3adapter "github.com/greenandcoop/weather-obs-etl/internal/adapter/s3"
	"github.com/greenandcoop/weather-obs-etl/internal/config"
	"github.com/greenandcoop/weather-obs-etl/internal/observability"
	"github.com/greenandcoop/weather-obs-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.RequireS3(cfg.StagingBucket, cfg.ReadyBucket); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat).
		With("run_id", uuid.NewString())
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		logger.Error("failed to load aws config", "error", err)
		os.Exit(1)
	}
	store := s3adapter.New(awss3.NewFromConfig(awsCfg), logger)

	extractor := pipeline.NewS3Extractor(store, pipeline.StagingConfig{
		Bucket:          cfg.StagingBucket,
		TelemetryPrefix: cfg.TelemetryPrefix,
		TabularPrefix:   cfg.TabularPrefix,
		Suffix:          cfg.StagingSuffix,
	}, logger)

	sinks := []pipeline.Sink{
		pipeline.NewNDJSONSink(store, cfg.ReadyBucket, cfg.OutKey, logger),
	}

	// Optional downstream publish (feature-flagged via KAFKA_ENABLED).
	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg, logger)
		sinks = append(sinks, kafkaWriter)
		logger.Info("kafka publish enabled", "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka publish disabled")
	}

	p := pipeline.New(extractor, sinks, cfg.Location(), logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	exitCode := 0
	if _, err := p.Run(ctx); err != nil {
		logger.Error("run failed", "error", err)
		exitCode = 1
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	os.Exit(exitCode)
}
