package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/vortex-track/internal/track"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	StormID    string
	FileDeck   track.FileDeck
	Mode       track.Mode
	ModeSet    bool // ATCF_MODE was set explicitly, catalog never overrides it
	Advisories []track.AdvisoryCode
	SourceFile string
	RMWFill    track.RMWFillMethod

	FetchTimeout time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka product sink, feature-flagged via KAFKA_ENABLED.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying
// defaults where unset. Invalid values fail here, not at first use.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fileDeck, err := track.ParseFileDeck(sharedcfg.EnvOrDefault("ATCF_FILE_DECK", "b"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATCF_FILE_DECK: %w", err)
	}
	mode, err := track.ParseMode(sharedcfg.EnvOrDefault("ATCF_MODE", "realtime"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATCF_MODE: %w", err)
	}
	rmwFill, err := track.ParseRMWFillMethod(sharedcfg.EnvOrDefault("RMW_FILL_METHOD", "none"))
	if err != nil {
		return nil, fmt.Errorf("invalid RMW_FILL_METHOD: %w", err)
	}

	advisories, err := parseAdvisories(os.Getenv("ATCF_ADVISORIES"))
	if err != nil {
		return nil, err
	}

	fetchTimeoutStr := sharedcfg.EnvOrDefault("FETCH_TIMEOUT", "30s")
	fetchTimeout, err2 := time.ParseDuration(fetchTimeoutStr)
	if err2 != nil || fetchTimeout <= 0 {
		return nil, errors.New("invalid FETCH_TIMEOUT")
	}

	kafkaEnabled := os.Getenv("KAFKA_ENABLED") == "true"

	cfg := &Config{
		StormID:    os.Getenv("STORM_ID"),
		FileDeck:   fileDeck,
		Mode:       mode,
		ModeSet:    os.Getenv("ATCF_MODE") != "",
		Advisories: advisories,
		SourceFile: os.Getenv("ATCF_SOURCE_FILE"),
		RMWFill:    rmwFill,

		FetchTimeout: fetchTimeout,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled:   kafkaEnabled,
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "vortex-track-products"),
	}

	if cfg.StormID == "" && cfg.SourceFile == "" {
		return nil, errors.New("STORM_ID or ATCF_SOURCE_FILE is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is empty")
	}

	return cfg, nil
}

func parseAdvisories(raw string) ([]track.AdvisoryCode, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil // store defaults from the file deck
	}
	var out []track.AdvisoryCode
	for _, part := range strings.Split(raw, ",") {
		code, err := track.ParseAdvisoryCode(part)
		if err != nil {
			return nil, fmt.Errorf("invalid ATCF_ADVISORIES: %w", err)
		}
		out = append(out, code)
	}
	return out, nil
}
