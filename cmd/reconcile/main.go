// The reconcile command measures drift between the current load-ready batch
// (what should have been persisted) and the document store's actual
// contents: row loss, per-field null-rate drift, and per-numeric-field mean
// drift. The full report is written to stdout as JSON.
package main

import (
	"context"
	"encoding/json"
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
		slog.Error("reconciliation failed", "error", err)
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
	lines, err := store.GetLines(ctx, cfg.ReadyBucket, key)
	if err != nil {
		return err
	}
	expected, err := domain.UnmarshalNDJSON(lines)
	if err != nil {
		return err
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

	observed, err := docs.FindAll(ctx)
	if err != nil {
		return err
	}

	report := domain.Reconcile(expected, observed)

	logger.Info("reconciliation complete",
		"key", key,
		"expected", report.ExpectedCount,
		"observed", report.ObservedCount,
		"row_error_rate", report.RowErrorRate,
		"field_error_rate", report.FieldErrorRate,
		"total_error_rate", report.TotalErrorRate)
	for _, m := range report.MeanDrifts {
		if !m.Comparable {
			logger.Warn("mean not comparable", "field", m.Field)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
