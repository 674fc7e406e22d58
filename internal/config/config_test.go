package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/raw/temperatures.csv", cfg.RawPath)
	assert.Equal(t, "reports/tableau", cfg.OutDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, -40.0, cfg.TempMinC)
	assert.Equal(t, 55.0, cfg.TempMaxC)
	assert.Equal(t, 3.5, cfg.RobustZMax)
	assert.Equal(t, 2.0, cfg.AnomalyThresholdC)
	assert.False(t, cfg.KafkaEnabled)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "zone-hotspots", cfg.KafkaHotspotTopic)
	assert.Empty(t, cfg.PushgatewayURL)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("RAW_PATH", "/data/athens_2024.csv")
	t.Setenv("OUT_DIR", "/out")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("TEMP_MIN_C", "-25")
	t.Setenv("TEMP_MAX_C", "50")
	t.Setenv("ROBUST_Z_MAX", "4")
	t.Setenv("ANOMALY_THRESHOLD_C", "1.5")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_HOTSPOT_TOPIC", "custom-hotspots")
	t.Setenv("PUSHGATEWAY_URL", "http://pushgw:9091")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/athens_2024.csv", cfg.RawPath)
	assert.Equal(t, "/out", cfg.OutDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, -25.0, cfg.TempMinC)
	assert.Equal(t, 50.0, cfg.TempMaxC)
	assert.Equal(t, 4.0, cfg.RobustZMax)
	assert.Equal(t, 1.5, cfg.AnomalyThresholdC)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-hotspots", cfg.KafkaHotspotTopic)
	assert.Equal(t, "http://pushgw:9091", cfg.PushgatewayURL)
}

func TestLoad_InvalidTempMin(t *testing.T) {
	t.Setenv("TEMP_MIN_C", "cold")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEMP_MIN_C")
}

func TestLoad_InvertedPlausibleRange(t *testing.T) {
	t.Setenv("TEMP_MIN_C", "60")
	t.Setenv("TEMP_MAX_C", "10")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEMP_MIN_C")
}

func TestLoad_InvalidRobustZ(t *testing.T) {
	t.Setenv("ROBUST_Z_MAX", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ROBUST_Z_MAX")
}

func TestLoad_InvalidAnomalyThreshold(t *testing.T) {
	t.Setenv("ANOMALY_THRESHOLD_C", "-1")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANOMALY_THRESHOLD_C")
}

func TestLoad_BrokersImplyKafkaEnabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}
