package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	RawPath string
	OutDir  string

	LogLevel  string
	LogFormat string

	// Outlier policy: readings outside [TempMinC, TempMaxC] or with a robust
	// z-score above RobustZMax within their calendar month are flagged.
	TempMinC   float64
	TempMaxC   float64
	RobustZMax float64

	// AnomalyThresholdC is the minimum deseasonalized anomaly for a record
	// to appear in hotspots.csv.
	AnomalyThresholdC float64

	// Optional hotspot export to Kafka, enabled when KAFKA_BROKERS is set.
	KafkaBrokers      []string
	KafkaHotspotTopic string
	KafkaEnabled      bool

	// Optional Prometheus Pushgateway target, empty disables the push.
	PushgatewayURL string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	tempMin, err := parseFloatEnv("TEMP_MIN_C", -40)
	if err != nil {
		return nil, err
	}
	tempMax, err := parseFloatEnv("TEMP_MAX_C", 55)
	if err != nil {
		return nil, err
	}
	robustZMax, err := parseFloatEnv("ROBUST_Z_MAX", 3.5)
	if err != nil {
		return nil, err
	}
	anomalyThreshold, err := parseFloatEnv("ANOMALY_THRESHOLD_C", 2.0)
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		RawPath:           sharedcfg.EnvOrDefault("RAW_PATH", "data/raw/temperatures.csv"),
		OutDir:            sharedcfg.EnvOrDefault("OUT_DIR", "reports/tableau"),
		LogLevel:          sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		TempMinC:          tempMin,
		TempMaxC:          tempMax,
		RobustZMax:        robustZMax,
		AnomalyThresholdC: anomalyThreshold,
		KafkaBrokers:      brokers,
		KafkaHotspotTopic: sharedcfg.EnvOrDefault("KAFKA_HOTSPOT_TOPIC", "zone-hotspots"),
		KafkaEnabled:      len(brokers) > 0,
		PushgatewayURL:    os.Getenv("PUSHGATEWAY_URL"),
	}

	if cfg.RawPath == "" {
		return nil, errors.New("RAW_PATH is required")
	}
	if cfg.OutDir == "" {
		return nil, errors.New("OUT_DIR is required")
	}
	if cfg.TempMinC >= cfg.TempMaxC {
		return nil, errors.New("TEMP_MIN_C must be below TEMP_MAX_C")
	}
	if cfg.RobustZMax <= 0 {
		return nil, errors.New("ROBUST_Z_MAX must be positive")
	}
	if cfg.AnomalyThresholdC <= 0 {
		return nil, errors.New("ANOMALY_THRESHOLD_C must be positive")
	}
	if cfg.KafkaEnabled && cfg.KafkaHotspotTopic == "" {
		return nil, errors.New("KAFKA_HOTSPOT_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func parseFloatEnv(name string, def float64) (float64, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, s)
	}
	return v, nil
}
