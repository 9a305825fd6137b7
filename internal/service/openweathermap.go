package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/weather-mcp/internal/domain"
	"github.com/couchcryptid/weather-mcp/internal/observability"
	"github.com/couchcryptid/weather-mcp/internal/regions"
)

// ObservationSource reads current weather and forecasts from a key-based provider.
type ObservationSource interface {
	CurrentWeather(ctx context.Context, city string) (*domain.Observation, error)
	Forecast(ctx context.Context, lat, lon float64) (*domain.Forecast, error)
}

// OpenWeatherMap derives alerts by classifying the current weather of each
// sample city in a region.
type OpenWeatherMap struct {
	source  ObservationSource
	regions *regions.Table
	notify  notifier
	logger  *slog.Logger
	metrics *observability.Metrics
}

var _ Service = (*OpenWeatherMap)(nil)

// NewOpenWeatherMap creates the OpenWeatherMap orchestrator. Pass a nil
// publisher to skip alert notifications.
func NewOpenWeatherMap(source ObservationSource, table *regions.Table, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics) *OpenWeatherMap {
	return &OpenWeatherMap{
		source:  source,
		regions: table,
		notify:  notifier{publisher: publisher, logger: logger, metrics: metrics},
		logger:  logger,
		metrics: metrics,
	}
}

// GetAlerts checks every sample city of region in order and joins the alerts
// raised. A city whose fetch fails is skipped.
func (s *OpenWeatherMap) GetAlerts(ctx context.Context, region string) string {
	cities, ok := s.regions.Cities(region)
	if !ok {
		s.metrics.UnsupportedRegions.Inc()
		s.logger.Info("unsupported region", "region", region, "supported", s.regions.Codes())
		return fmt.Sprintf("State %s not supported yet. Please add cities to the regions configuration.", region)
	}

	var (
		alerts        []string
		notifications []domain.AlertNotification
	)
	for _, city := range cities {
		obs, err := s.source.CurrentWeather(ctx, city)
		if err != nil {
			logFetchFailure(s.logger, "skipping city without data", err, "region", region, "city", city)
			continue
		}

		msg, ok := domain.FormatAlert(obs)
		if !ok {
			continue
		}
		alerts = append(alerts, msg)

		location := city
		if obs.Location != nil && *obs.Location != "" {
			location = *obs.Location
		}
		notifications = append(notifications,
			domain.NewAlertNotification(domain.ProviderOpenWeatherMap, region, location, domain.Classify(obs), msg))
	}

	if len(alerts) == 0 {
		return fmt.Sprintf("No severe weather alerts for %s", region)
	}

	s.metrics.AlertsGenerated.WithLabelValues(domain.ProviderOpenWeatherMap).Add(float64(len(alerts)))
	s.notify.publish(ctx, notifications)
	return strings.Join(alerts, domain.Separator)
}

// GetForecast renders the next forecast periods for a coordinate pair.
func (s *OpenWeatherMap) GetForecast(ctx context.Context, lat, lon float64) string {
	f, err := s.source.Forecast(ctx, lat, lon)
	if err != nil {
		logFetchFailure(s.logger, "forecast unavailable", err, "lat", lat, "lon", lon)
		return domain.MsgForecastUnavailable
	}
	return domain.FormatForecast(f)
}
