package openweathermap

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/weather-mcp/internal/domain"
	"github.com/couchcryptid/weather-mcp/internal/fetch"
	"github.com/couchcryptid/weather-mcp/internal/observability"
)

// ProviderName labels this provider in logs, metrics and notifications.
const ProviderName = domain.ProviderOpenWeatherMap

// DefaultBaseURL is the OpenWeatherMap data API root.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Client reads current weather and forecasts from the OpenWeatherMap API.
type Client struct {
	fetcher *fetch.Client
	baseURL string
}

// NewClient creates an OpenWeatherMap client. Every request carries the API
// key and asks for metric units (°C, m/s).
func NewClient(apiKey, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger, opts ...fetch.Option) *Client {
	opts = append([]fetch.Option{fetch.WithDefaultParams(url.Values{
		"appid": {apiKey},
		"units": {"metric"},
	})}, opts...)
	return &Client{
		fetcher: fetch.NewClient(ProviderName, timeout, metrics, logger, opts...),
		baseURL: baseURL,
	}
}

// CurrentWeather fetches the current observation for a city name.
func (c *Client) CurrentWeather(ctx context.Context, city string) (*domain.Observation, error) {
	var resp currentResponse
	if err := c.fetcher.GetJSON(ctx, c.baseURL+"/weather", url.Values{"q": {city}}, &resp); err != nil {
		return nil, fmt.Errorf("current weather for %q: %w", city, err)
	}
	return resp.toObservation(), nil
}

// Forecast fetches the 3-hourly forecast for a coordinate pair.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) (*domain.Forecast, error) {
	params := url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', -1, 64)},
	}

	var resp forecastResponse
	if err := c.fetcher.GetJSON(ctx, c.baseURL+"/forecast", params, &resp); err != nil {
		return nil, fmt.Errorf("forecast for %v,%v: %w", lat, lon, err)
	}
	if resp.List == nil {
		return nil, fmt.Errorf("forecast for %v,%v: %w", lat, lon, fetch.Malformed("response has no forecast list"))
	}

	f := &domain.Forecast{Periods: make([]domain.ForecastPeriod, 0, len(*resp.List))}
	for _, item := range *resp.List {
		f.Periods = append(f.Periods, item.toPeriod())
	}
	return f, nil
}

// OpenWeatherMap API response types.

// Readings decode as json.Number so 36.0 is rendered as sent, not as 36.

type condition struct {
	Main        string  `json:"main"`
	Description *string `json:"description"`
}

type mainReadings struct {
	Temp      *json.Number `json:"temp"`
	FeelsLike *json.Number `json:"feels_like"`
	Humidity  *json.Number `json:"humidity"`
}

type wind struct {
	Speed *json.Number `json:"speed"`
	Deg   *json.Number `json:"deg"`
}

type currentResponse struct {
	Weather []condition  `json:"weather"`
	Main    mainReadings `json:"main"`
	Wind    wind         `json:"wind"`
	Name    *string      `json:"name"`
}

type forecastItem struct {
	DtTxt   string       `json:"dt_txt"`
	Main    mainReadings `json:"main"`
	Weather []condition  `json:"weather"`
	Wind    wind         `json:"wind"`
}

type forecastResponse struct {
	List *[]forecastItem `json:"list"`
}

func firstCondition(cs []condition) condition {
	if len(cs) == 0 {
		return condition{}
	}
	return cs[0]
}

func (c condition) description() string {
	if c.Description == nil {
		return ""
	}
	return *c.Description
}

func (r currentResponse) toObservation() *domain.Observation {
	c := firstCondition(r.Weather)
	return &domain.Observation{
		Condition:   c.Main,
		Description: c.Description,
		Temperature: r.Main.Temp,
		Humidity:    r.Main.Humidity,
		WindSpeed:   r.Wind.Speed,
		Location:    r.Name,
	}
}

func (i forecastItem) toPeriod() domain.ForecastPeriod {
	c := firstCondition(i.Weather)
	return domain.ForecastPeriod{
		Time:          i.DtTxt,
		Temperature:   i.Main.Temp,
		FeelsLike:     i.Main.FeelsLike,
		Humidity:      i.Main.Humidity,
		Condition:     c.Main,
		Description:   c.description(),
		WindSpeed:     i.Wind.Speed,
		WindDirection: i.Wind.Deg,
	}
}
