package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/couchcryptid/weather-mcp/internal/domain"
	"github.com/couchcryptid/weather-mcp/internal/fetch"
	"github.com/couchcryptid/weather-mcp/internal/observability"
	"github.com/couchcryptid/weather-mcp/internal/regions"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTable() *regions.Table {
	t, err := regions.Parse([]byte(`
regions:
  CA: [Los Angeles, San Francisco, Sacramento]
  NY: [New York]
`))
	if err != nil {
		panic(err)
	}
	return t
}

var errUpstream = &fetch.Error{Outcome: fetch.OutcomeHTTP, StatusCode: 500, Err: errors.New("status 500")}

// fakeObservations serves canned observations per city and records lookups in order.
type fakeObservations struct {
	mu          sync.Mutex
	byCity      map[string]*domain.Observation
	failCities  map[string]bool
	lookups     []string
	forecast    *domain.Forecast
	forecastErr error
}

func (f *fakeObservations) CurrentWeather(_ context.Context, city string) (*domain.Observation, error) {
	f.mu.Lock()
	f.lookups = append(f.lookups, city)
	f.mu.Unlock()
	if f.failCities[city] {
		return nil, errUpstream
	}
	if obs, ok := f.byCity[city]; ok {
		return obs, nil
	}
	return &domain.Observation{Condition: "Clear", Description: domain.Text("clear sky"), Temperature: domain.Float(20), Location: domain.Text(city)}, nil
}

func (f *fakeObservations) Forecast(context.Context, float64, float64) (*domain.Forecast, error) {
	return f.forecast, f.forecastErr
}

type fakeAlerts struct {
	alerts      []domain.ActiveAlert
	alertsErr   error
	areas       []string
	periods     []domain.PointPeriod
	forecastErr error
}

func (f *fakeAlerts) ActiveAlerts(_ context.Context, area string) ([]domain.ActiveAlert, error) {
	f.areas = append(f.areas, area)
	return f.alerts, f.alertsErr
}

func (f *fakeAlerts) Forecast(context.Context, float64, float64) ([]domain.PointPeriod, error) {
	return f.periods, f.forecastErr
}

// capturePublisher records published notifications.
type capturePublisher struct {
	mu        sync.Mutex
	published []domain.AlertNotification
	err       error
}

func (p *capturePublisher) Publish(_ context.Context, n []domain.AlertNotification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, n...)
	return nil
}

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}
