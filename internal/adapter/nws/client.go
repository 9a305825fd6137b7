package nws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/weather-mcp/internal/domain"
	"github.com/couchcryptid/weather-mcp/internal/fetch"
	"github.com/couchcryptid/weather-mcp/internal/observability"
)

// ProviderName labels this provider in logs, metrics and notifications.
const ProviderName = domain.ProviderNWS

// DefaultBaseURL is the National Weather Service API root.
const DefaultBaseURL = "https://api.weather.gov"

// Client reads active alerts and gridpoint forecasts from api.weather.gov.
type Client struct {
	fetcher *fetch.Client
	baseURL string
}

// NewClient creates an NWS client. NWS rejects requests without a
// User-Agent, and GeoJSON is requested explicitly.
func NewClient(userAgent, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger, opts ...fetch.Option) *Client {
	opts = append([]fetch.Option{
		fetch.WithHeader("User-Agent", userAgent),
		fetch.WithHeader("Accept", "application/geo+json"),
	}, opts...)
	return &Client{
		fetcher: fetch.NewClient(ProviderName, timeout, metrics, logger, opts...),
		baseURL: baseURL,
	}
}

// ActiveAlerts returns the alerts currently in effect for a two-letter area code.
func (c *Client) ActiveAlerts(ctx context.Context, area string) ([]domain.ActiveAlert, error) {
	area = strings.ToUpper(strings.TrimSpace(area))
	endpoint := fmt.Sprintf("%s/alerts/active/area/%s", c.baseURL, url.PathEscape(area))

	var resp alertsResponse
	if err := c.fetcher.GetJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("active alerts for %s: %w", area, err)
	}
	if resp.Features == nil {
		return nil, fmt.Errorf("active alerts for %s: %w", area, fetch.Malformed("response has no features"))
	}

	alerts := make([]domain.ActiveAlert, 0, len(*resp.Features))
	for _, f := range *resp.Features {
		alerts = append(alerts, domain.ActiveAlert{
			ID:          f.ID,
			Event:       f.Properties.Event,
			Area:        f.Properties.AreaDesc,
			Severity:    f.Properties.Severity,
			Description: f.Properties.Description,
			Instruction: f.Properties.Instruction,
		})
	}
	return alerts, nil
}

// ForecastURL resolves a coordinate pair to its gridpoint forecast URL.
func (c *Client) ForecastURL(ctx context.Context, lat, lon float64) (string, error) {
	endpoint := fmt.Sprintf("%s/points/%s,%s", c.baseURL,
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lon, 'f', -1, 64))

	var resp pointsResponse
	if err := c.fetcher.GetJSON(ctx, endpoint, nil, &resp); err != nil {
		return "", fmt.Errorf("resolve point %v,%v: %w", lat, lon, err)
	}
	if resp.Properties.Forecast == "" {
		return "", fmt.Errorf("resolve point %v,%v: %w", lat, lon, fetch.Malformed("response has no forecast url"))
	}
	return resp.Properties.Forecast, nil
}

// ForecastPeriods fetches the periods of a gridpoint forecast URL.
func (c *Client) ForecastPeriods(ctx context.Context, forecastURL string) ([]domain.PointPeriod, error) {
	var resp forecastResponse
	if err := c.fetcher.GetJSON(ctx, forecastURL, nil, &resp); err != nil {
		return nil, fmt.Errorf("gridpoint forecast: %w", err)
	}
	if resp.Properties.Periods == nil {
		return nil, fmt.Errorf("gridpoint forecast: %w", fetch.Malformed("response has no periods"))
	}

	periods := make([]domain.PointPeriod, 0, len(*resp.Properties.Periods))
	for _, p := range *resp.Properties.Periods {
		periods = append(periods, domain.PointPeriod{
			Name:             p.Name,
			Temperature:      p.Temperature,
			TemperatureUnit:  p.TemperatureUnit,
			WindSpeed:        p.WindSpeed,
			WindDirection:    p.WindDirection,
			DetailedForecast: p.DetailedForecast,
		})
	}
	return periods, nil
}

// Forecast resolves the gridpoint for a coordinate pair and fetches its
// periods. Failure of either step fails the whole call.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) ([]domain.PointPeriod, error) {
	forecastURL, err := c.ForecastURL(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	return c.ForecastPeriods(ctx, forecastURL)
}

// NWS API response types (GeoJSON).

// Alert text fields are nil when NWS sends null, which it does for
// instruction on most advisories.
type alertProperties struct {
	Event       *string `json:"event"`
	AreaDesc    *string `json:"areaDesc"`
	Severity    *string `json:"severity"`
	Description *string `json:"description"`
	Instruction *string `json:"instruction"`
}

type alertFeature struct {
	ID         string          `json:"id"`
	Properties alertProperties `json:"properties"`
}

type alertsResponse struct {
	Features *[]alertFeature `json:"features"`
}

type pointsResponse struct {
	Properties struct {
		Forecast string `json:"forecast"`
	} `json:"properties"`
}

type period struct {
	Name             string       `json:"name"`
	Temperature      *json.Number `json:"temperature"`
	TemperatureUnit  string       `json:"temperatureUnit"`
	WindSpeed        string       `json:"windSpeed"`
	WindDirection    string       `json:"windDirection"`
	DetailedForecast string       `json:"detailedForecast"`
}

type forecastResponse struct {
	Properties struct {
		Periods *[]period `json:"periods"`
	} `json:"properties"`
}
