package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/uhi-zone-etl/internal/adapter/csvfile"
	kafkaadapter "github.com/couchcryptid/uhi-zone-etl/internal/adapter/kafka"
	"github.com/couchcryptid/uhi-zone-etl/internal/config"
	"github.com/couchcryptid/uhi-zone-etl/internal/observability"
	"github.com/couchcryptid/uhi-zone-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	source := csvfile.NewReader(cfg.RawPath, logger)
	sink := csvfile.NewWriter(cfg.OutDir)

	var exporter pipeline.HotspotExporter
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		exporter = writer
		logger.Info("hotspot export enabled", "topic", cfg.KafkaHotspotTopic)
	}

	p := pipeline.New(source, sink, exporter, cfg, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := p.Run(ctx)
	if err != nil {
		logger.Error("etl run failed", "error", err)
		os.Exit(1)
	}

	if cfg.PushgatewayURL != "" {
		if err := metrics.Push(cfg.PushgatewayURL, "uhi_zone_etl", result.Zone); err != nil {
			logger.Warn("metrics push failed", "url", cfg.PushgatewayURL, "error", err)
		}
	}

	logger.Info("etl complete",
		"zone", result.Zone,
		"rows_read", result.RowsRead,
		"rows_malformed", result.RowsMalformed,
		"outliers", result.Outliers,
		"hourly_rows", len(result.Hourly),
		"daily_rows", len(result.Daily),
		"hotspot_rows", len(result.Hotspots),
		"out_dir", cfg.OutDir,
	)
}
