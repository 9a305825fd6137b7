package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/weather-mcp/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/weather-mcp/internal/adapter/kafka"
	"github.com/couchcryptid/weather-mcp/internal/adapter/mcpadapter"
	"github.com/couchcryptid/weather-mcp/internal/adapter/nws"
	"github.com/couchcryptid/weather-mcp/internal/adapter/openweathermap"
	"github.com/couchcryptid/weather-mcp/internal/config"
	"github.com/couchcryptid/weather-mcp/internal/observability"
	"github.com/couchcryptid/weather-mcp/internal/regions"
	"github.com/couchcryptid/weather-mcp/internal/service"
)

const (
	serverName = "weather"
	version    = "1.0.0"
)

// alwaysReady is the readiness checker when only the HTTP host runs.
type alwaysReady struct{}

func (alwaysReady) CheckReadiness(context.Context) error { return nil }

func main() {
	// A missing .env is normal; the environment alone is enough.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	slog.SetDefault(logger)
	metrics := observability.NewMetrics()

	table, err := regions.Load(cfg.RegionsFile)
	if err != nil {
		logger.Error("failed to load regions", "error", err)
		os.Exit(1)
	}

	var (
		publisher service.Publisher
		writer    *kafkaadapter.Writer
	)
	if cfg.PublishEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("alert notifications enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaAlertsTopic)
	}

	var svc service.Service
	switch cfg.Provider {
	case config.ProviderNWS:
		client := nws.NewClient(cfg.NWSUserAgent, cfg.NWSBaseURL, cfg.HTTPTimeout, metrics, logger)
		svc = service.NewNWS(client, publisher, logger, metrics)
	default:
		client := openweathermap.NewClient(cfg.OWMAPIKey, cfg.OWMBaseURL, cfg.HTTPTimeout, metrics, logger)
		svc = service.NewOpenWeatherMap(client, table, publisher, logger, metrics)
	}
	logger.Info("weather provider selected", "provider", cfg.Provider, "regions", table.Codes())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var ready sharedobs.ReadinessChecker = alwaysReady{}

	if cfg.MCPEnabled {
		tools := mcpadapter.NewServer(serverName, version, svc, logger, metrics)
		ready = tools

		// The host closing stdin ends the session and the process with it.
		go func() {
			defer stop()
			if err := tools.Serve(ctx, os.Stdin, os.Stdout); err != nil {
				logger.Error("mcp server error", "error", err)
			}
		}()
	}

	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		// Sequential city lookups can each take the full upstream timeout.
		writeTimeout := cfg.HTTPTimeout*time.Duration(table.MaxCities()+1) + 5*time.Second
		srv = httpadapter.NewServer(cfg.HTTPAddr, svc, ready, writeTimeout, logger)

		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
				stop()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
