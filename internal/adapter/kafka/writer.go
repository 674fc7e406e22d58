// Package kafka publishes finished hotspot rows to a topic so downstream
// alerting can pick them up without re-reading the CSVs. The export runs once
// per batch, after the files are written; it is not a streaming path.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/uhi-zone-etl/internal/config"
	"github.com/couchcryptid/uhi-zone-etl/internal/domain"
)

// Writer produces hotspot messages to a Kafka topic.
// It implements pipeline.HotspotExporter.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured hotspot topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaHotspotTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// ExportHotspots serializes and publishes all hotspot rows in a single
// WriteMessages call.
func (w *Writer) ExportHotspots(ctx context.Context, zone string, rows []domain.HotspotRow) error {
	if len(rows) == 0 {
		w.logger.Info("no hotspots to export")
		return nil
	}

	processedAt := domain.ProcessedAt()
	msgs := make([]kafkago.Message, len(rows))
	for i := range rows {
		msg, err := serializeToMessage(rows[i], zone, processedAt)
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

// serializeToMessage marshals a HotspotRow into a Kafka message keyed by its
// hour timestamp.
func serializeToMessage(row domain.HotspotRow, zone string, processedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(hotspotPayload{
		Timestamp: row.Timestamp.Format(time.RFC3339),
		Zone:      row.Zone,
		TempC:     row.TempC,
		Anomaly:   row.Anomaly,
		Hour:      row.Hour,
		Weekday:   row.Weekday,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize hotspot row: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(row.Timestamp.Format(time.RFC3339)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "zone", Value: []byte(zone)},
			{Key: "processed_at", Value: []byte(processedAt.Format(time.RFC3339))},
		},
	}, nil
}

// hotspotPayload is the wire form of a hotspot row.
type hotspotPayload struct {
	Timestamp string  `json:"timestamp"`
	Zone      string  `json:"zone_id"`
	TempC     float64 `json:"temp_c"`
	Anomaly   float64 `json:"anomaly"`
	Hour      int     `json:"hour"`
	Weekday   int     `json:"weekday"`
}
