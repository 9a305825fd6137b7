package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/couchcryptid/weather-mcp/internal/domain"
	"github.com/couchcryptid/weather-mcp/internal/observability"
)

// AlertSource reads provider-issued alerts and gridpoint forecasts.
type AlertSource interface {
	ActiveAlerts(ctx context.Context, area string) ([]domain.ActiveAlert, error)
	Forecast(ctx context.Context, lat, lon float64) ([]domain.PointPeriod, error)
}

// NWS relays the alerts and forecasts published by the National Weather Service.
type NWS struct {
	source  AlertSource
	notify  notifier
	logger  *slog.Logger
	metrics *observability.Metrics
}

var _ Service = (*NWS)(nil)

// NewNWS creates the NWS orchestrator. Pass a nil publisher to skip alert
// notifications.
func NewNWS(source AlertSource, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics) *NWS {
	return &NWS{
		source:  source,
		notify:  notifier{publisher: publisher, logger: logger, metrics: metrics},
		logger:  logger,
		metrics: metrics,
	}
}

// GetAlerts formats every active alert for the region.
func (s *NWS) GetAlerts(ctx context.Context, region string) string {
	alerts, err := s.source.ActiveAlerts(ctx, region)
	if err != nil {
		logFetchFailure(s.logger, "alerts unavailable", err, "region", region)
		return domain.MsgAlertsUnavailable
	}
	if len(alerts) == 0 {
		return domain.MsgNoActiveAlerts
	}

	blocks := make([]string, 0, len(alerts))
	notifications := make([]domain.AlertNotification, 0, len(alerts))
	for _, a := range alerts {
		msg := domain.FormatActiveAlert(a)
		blocks = append(blocks, msg)
		notifications = append(notifications,
			domain.NewIssuedAlertNotification(domain.ProviderNWS, region, a, msg))
	}

	s.metrics.AlertsGenerated.WithLabelValues(domain.ProviderNWS).Add(float64(len(blocks)))
	s.notify.publish(ctx, notifications)
	return strings.Join(blocks, domain.Separator)
}

// GetForecast resolves the gridpoint and renders its next periods. A failure
// in either step gives the same message.
func (s *NWS) GetForecast(ctx context.Context, lat, lon float64) string {
	periods, err := s.source.Forecast(ctx, lat, lon)
	if err != nil {
		logFetchFailure(s.logger, "forecast unavailable", err, "lat", lat, "lon", lon)
		return domain.MsgForecastUnavailable
	}
	return domain.FormatPointForecast(periods)
}
