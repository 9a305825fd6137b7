// Package service answers the weather tool operations. Each provider has its
// own orchestrator; all of them return plain text and never fail, every
// upstream problem ends in a fixed message.
package service

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/weather-mcp/internal/domain"
	"github.com/couchcryptid/weather-mcp/internal/fetch"
	"github.com/couchcryptid/weather-mcp/internal/observability"
)

// Service answers get_alerts and get_forecast.
type Service interface {
	GetAlerts(ctx context.Context, region string) string
	GetForecast(ctx context.Context, lat, lon float64) string
}

// Publisher hands generated alerts to a notification sink.
type Publisher interface {
	Publish(ctx context.Context, notifications []domain.AlertNotification) error
}

// notifier publishes notifications best-effort: failures are logged and
// counted but never change a tool response.
type notifier struct {
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
}

func (n notifier) publish(ctx context.Context, notifications []domain.AlertNotification) {
	if n.publisher == nil || len(notifications) == 0 {
		return
	}
	if err := n.publisher.Publish(ctx, notifications); err != nil {
		n.logger.Warn("publish alert notifications failed", "error", err, "count", len(notifications))
		n.metrics.PublishErrors.Inc()
		return
	}
	n.metrics.NotificationsPublished.Add(float64(len(notifications)))
}

func logFetchFailure(logger *slog.Logger, msg string, err error, attrs ...any) {
	attrs = append(attrs, "outcome", fetch.OutcomeOf(err), "error", err)
	logger.Info(msg, attrs...)
}
