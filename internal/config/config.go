package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Supported weather providers.
const (
	ProviderOpenWeatherMap = "openweathermap"
	ProviderNWS            = "nws"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	Provider        string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	MCPEnabled      bool

	// Outbound weather API configuration.
	HTTPTimeout  time.Duration
	OWMAPIKey    string
	OWMBaseURL   string
	NWSBaseURL   string
	NWSUserAgent string

	// RegionsFile overrides the embedded region table when set.
	RegionsFile string

	// Alert notification sink.
	PublishEnabled   bool
	KafkaBrokers     []string
	KafkaAlertsTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	timeoutStr := sharedcfg.EnvOrDefault("HTTP_TIMEOUT", "30s")
	httpTimeout, err := time.ParseDuration(timeoutStr)
	if err != nil || httpTimeout <= 0 {
		return nil, errors.New("invalid HTTP_TIMEOUT")
	}

	brokers := os.Getenv("KAFKA_BROKERS")
	publishEnabled := brokers != ""
	if v := os.Getenv("ALERTS_PUBLISH_ENABLED"); v != "" {
		publishEnabled = v == "true"
	}

	httpAddr, ok := os.LookupEnv("HTTP_ADDR")
	if !ok {
		httpAddr = ":8080"
	}

	cfg := &Config{
		Provider:        strings.ToLower(sharedcfg.EnvOrDefault("WEATHER_PROVIDER", ProviderOpenWeatherMap)),
		HTTPAddr:        httpAddr,
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		MCPEnabled:      os.Getenv("MCP_ENABLED") != "false",

		HTTPTimeout:  httpTimeout,
		OWMAPIKey:    os.Getenv("OWM_API_KEY"),
		OWMBaseURL:   strings.TrimSuffix(sharedcfg.EnvOrDefault("OWM_BASE_URL", "https://api.openweathermap.org/data/2.5"), "/"),
		NWSBaseURL:   strings.TrimSuffix(sharedcfg.EnvOrDefault("NWS_BASE_URL", "https://api.weather.gov"), "/"),
		NWSUserAgent: sharedcfg.EnvOrDefault("NWS_USER_AGENT", "weather-app/1.0"),

		RegionsFile: os.Getenv("REGIONS_FILE"),

		PublishEnabled:   publishEnabled,
		KafkaAlertsTopic: sharedcfg.EnvOrDefault("KAFKA_ALERTS_TOPIC", "weather-alerts"),
	}
	if brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	switch cfg.Provider {
	case ProviderOpenWeatherMap:
		if cfg.OWMAPIKey == "" {
			return nil, errors.New("OWM_API_KEY is required for the openweathermap provider")
		}
	case ProviderNWS:
	default:
		return nil, fmt.Errorf("unsupported WEATHER_PROVIDER %q", cfg.Provider)
	}
	if cfg.PublishEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("ALERTS_PUBLISH_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.PublishEnabled && cfg.KafkaAlertsTopic == "" {
		return nil, errors.New("KAFKA_ALERTS_TOPIC is required")
	}
	if !cfg.MCPEnabled && cfg.HTTPAddr == "" {
		return nil, errors.New("MCP_ENABLED is false and HTTP_ADDR is empty: nothing to serve")
	}

	return cfg, nil
}
