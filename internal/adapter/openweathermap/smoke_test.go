//go:build live

package openweathermap

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-mcp/internal/domain"
	"github.com/couchcryptid/weather-mcp/internal/observability"
)

// These tests hit the real OpenWeatherMap API and require a valid OWM_API_KEY env var.
// Run with: go test -tags=live ./internal/adapter/openweathermap/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	key := os.Getenv("OWM_API_KEY")
	if key == "" {
		t.Fatal("OWM_API_KEY must be set to run smoke tests")
	}
	return NewClient(key, DefaultBaseURL, 30*time.Second,
		observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_CurrentWeather(t *testing.T) {
	c := smokeClient(t)

	obs, err := c.CurrentWeather(context.Background(), "Sacramento")
	require.NoError(t, err)

	assert.Equal(t, domain.Text("Sacramento"), obs.Location)
	assert.NotEmpty(t, obs.Condition)
	require.NotNil(t, obs.Temperature)
	temp, err := obs.Temperature.Float64()
	require.NoError(t, err)
	assert.InDelta(t, 15, temp, 40, "temperature should be plausible in °C")
}

func TestSmoke_Forecast(t *testing.T) {
	c := smokeClient(t)

	// San Francisco
	f, err := c.Forecast(context.Background(), 37.7749, -122.4194)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(f.Periods), 5)
	assert.NotEmpty(t, f.Periods[0].Time)
}

func TestSmoke_UnknownCity(t *testing.T) {
	c := smokeClient(t)

	_, err := c.CurrentWeather(context.Background(), "XYZNONEXISTENT99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
