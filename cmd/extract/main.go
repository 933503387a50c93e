// The extract command turns raw spreadsheet uploads into staged tables: it
// scans the raw bucket for workbooks, matches each key against the known
// station directory, and writes one CSV per sheet to the staging area with
// the station's static attributes attached as extra columns. The sheet name
// is the day the sheet covers and becomes the Date column.
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	s3adapter "github.com/greenandcoop/weather-obs-etl/internal/adapter/s3"
	"github.com/greenandcoop/weather-obs-etl/internal/adapter/xlsx"
	"github.com/greenandcoop/weather-obs-etl/internal/config"
	"github.com/greenandcoop/weather-obs-etl/internal/domain"
	"github.com/greenandcoop/weather-obs-etl/internal/observability"
)

var extraColumns = []string{
	"Date", "Station_ID", "Station_Name", "Latitude", "Longitude",
	"Elevation", "City", "Software",
}

func main() {
	if err := run(); err != nil {
		slog.Error("extraction failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireS3(cfg.RawBucket, cfg.StagingBucket); err != nil {
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

	var staged, skipped int
	for info, err := range store.Keys(ctx, cfg.RawBucket, "", ".xlsx") {
		if err != nil {
			return err
		}
		station, ok := domain.MatchStation(info.Key)
		if !ok {
			logger.Warn("no known station matches key, skipping", "key", info.Key)
			skipped++
			continue
		}
		n, err := stageWorkbook(ctx, store, cfg, station, info.Key, logger)
		if err != nil {
			return err
		}
		staged += n
	}

	logger.Info("extraction complete", "sheets_staged", staged, "objects_skipped", skipped)
	return nil
}

// stageWorkbook stages every sheet of one workbook and returns how many
// sheets it wrote.
func stageWorkbook(ctx context.Context, store *s3adapter.Client, cfg *config.Config, station domain.StationInfo, key string, logger *slog.Logger) (int, error) {
	body, err := store.Get(ctx, cfg.RawBucket, key)
	if err != nil {
		return 0, err
	}
	sheets, err := xlsx.ReadWorkbook(bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("workbook %s: %w", key, err)
	}

	for _, sheet := range sheets {
		out, err := sheetToCSV(sheet, station)
		if err != nil {
			return 0, fmt.Errorf("sheet %s of %s: %w", sheet.Name, key, err)
		}
		outKey := cfg.TabularPrefix + station.ID + "_" + sheet.Name + ".csv"
		if err := store.Put(ctx, cfg.StagingBucket, outKey, out, "text/csv"); err != nil {
			return 0, err
		}
		logger.Info("staged sheet", "source", key, "key", outKey, "rows", len(sheet.Rows))
	}
	return len(sheets), nil
}

// sheetToCSV renders one sheet with the station's static attributes appended
// to every row.
func sheetToCSV(sheet xlsx.Sheet, station domain.StationInfo) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := append(append([]string{}, sheet.Header...), extraColumns...)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	extra := []string{
		sheet.Name,
		station.ID,
		station.Name,
		formatFloat(station.Latitude),
		formatFloat(station.Longitude),
		formatFloat(station.Elevation),
		station.City,
		station.Software,
	}
	for _, row := range sheet.Rows {
		if isBlank(row) {
			continue
		}
		if err := w.Write(append(append([]string{}, row...), extra...)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
