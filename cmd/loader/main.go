// The loader command takes the current load-ready object (most recently
// modified key in the ready bucket) and appends its records to the document
// store. An empty batch is a clean no-op.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	mongoadapter "github.com/greenandcoop/weather-obs-etl/internal/adapter/mongo"
	s3adapter "github.com/greenandcoop/weather-obs-etl/internal/adapter/s3"
	"github.com/greenandcoop/weather-obs-etl/internal/config"
	"github.com/greenandcoop/weather-obs-etl/internal/domain"
	"github.com/greenandcoop/weather-obs-etl/internal/observability"
)

func main() {
	if err := run(); err != nil {
		slog.Error("load failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireS3(cfg.ReadyBucket); err != nil {
		return err
	}
	if err := cfg.RequireMongo(); err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return err
	}
	store := s3adapter.New(awss3.NewFromConfig(awsCfg), logger)

	key, err := store.LatestByModified(ctx, cfg.ReadyBucket, "", "")
	if err != nil {
		return err
	}
	logger.Info("loading", "bucket", cfg.ReadyBucket, "key", key)

	lines, err := store.GetLines(ctx, cfg.ReadyBucket, key)
	if err != nil {
		return err
	}
	records, err := domain.UnmarshalNDJSON(lines)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		logger.Info("load-ready object is empty, nothing to load", "key", key)
		return nil
	}

	docs, err := mongoadapter.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := docs.Close(context.Background()); err != nil {
			logger.Error("document store close error", "error", err)
		}
	}()

	inserted, err := docs.InsertMany(ctx, records)
	if err != nil {
		return err
	}
	logger.Info("load complete", "key", key, "records", inserted)
	return nil
}
