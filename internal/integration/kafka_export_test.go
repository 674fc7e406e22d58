//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/uhi-zone-etl/internal/adapter/kafka"
	"github.com/couchcryptid/uhi-zone-etl/internal/config"
	"github.com/couchcryptid/uhi-zone-etl/internal/domain"
)

const testHotspotTopic = "test-zone-hotspots"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka launches a single-node Kafka container and returns its broker
// address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	ctr, err := tckafka.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("uhi-test-cluster"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(ctr) })

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err, "resolve kafka brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrlConn, err := kafkago.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestHotspotExport publishes a finished hotspot table through the adapter
// and verifies the messages a downstream consumer would see.
func TestHotspotExport(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testHotspotTopic)

	cfg := &config.Config{
		KafkaBrokers:      []string{broker},
		KafkaHotspotTopic: testHotspotTopic,
	}

	rows := []domain.HotspotRow{
		{
			Timestamp: time.Date(2024, 7, 15, 14, 0, 0, 0, time.UTC),
			Zone:      "athens",
			TempC:     36.5,
			Anomaly:   2.75,
			Hour:      14,
			Weekday:   0,
		},
		{
			Timestamp: time.Date(2024, 7, 15, 15, 0, 0, 0, time.UTC),
			Zone:      "athens",
			TempC:     37.1,
			Anomaly:   3.1,
			Hour:      15,
			Weekday:   0,
		},
	}

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.ExportHotspots(ctx, "athens", rows))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testHotspotTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	for i, want := range rows {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read message %d", i)

		assert.Equal(t, []byte(want.Timestamp.Format(time.RFC3339)), msg.Key)

		var payload struct {
			Timestamp string  `json:"timestamp"`
			Zone      string  `json:"zone_id"`
			TempC     float64 `json:"temp_c"`
			Anomaly   float64 `json:"anomaly"`
			Hour      int     `json:"hour"`
			Weekday   int     `json:"weekday"`
		}
		require.NoError(t, json.Unmarshal(msg.Value, &payload))
		assert.Equal(t, want.Timestamp.Format(time.RFC3339), payload.Timestamp)
		assert.Equal(t, want.Zone, payload.Zone)
		assert.Equal(t, want.TempC, payload.TempC)
		assert.Equal(t, want.Anomaly, payload.Anomaly)
		assert.Equal(t, want.Hour, payload.Hour)

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, "athens", headers["zone"])
		_, err = time.Parse(time.RFC3339, headers["processed_at"])
		assert.NoError(t, err, "processed_at header is RFC3339")
	}
}

// TestHotspotExport_EmptyTable verifies that an empty table publishes nothing
// and does not error.
func TestHotspotExport_EmptyTable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testHotspotTopic)

	cfg := &config.Config{
		KafkaBrokers:      []string{broker},
		KafkaHotspotTopic: testHotspotTopic,
	}

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.ExportHotspots(ctx, "athens", nil))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testHotspotTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no messages on the hotspot topic")
}
