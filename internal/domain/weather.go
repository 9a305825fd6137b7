package domain

import (
	"encoding/json"
	"strconv"
)

// Separator joins rendered alert and forecast blocks.
const Separator = "\n---\n"

// Fixed tool responses.
const (
	MsgForecastUnavailable = "Unable to fetch forecast data for this location."
	MsgAlertsUnavailable   = "Unable to fetch alerts or no alerts found."
	MsgNoActiveAlerts      = "No active alerts for this state."
)

// Observation is a single current-weather reading for one location.
// Readings keep the literal the API sent, so 36.0 renders as "36.0".
type Observation struct {
	Condition   string       // primary condition group, e.g. "Thunderstorm"
	Description *string      // nil when the API omitted it
	Temperature *json.Number // °C
	Humidity    *json.Number // %
	WindSpeed   *json.Number // m/s
	Location    *string
}

// ForecastPeriod is one step of a metric forecast.
type ForecastPeriod struct {
	Time          string
	Temperature   *json.Number // °C
	FeelsLike     *json.Number // °C
	Humidity      *json.Number // %
	Condition     string
	Description   string
	WindSpeed     *json.Number // m/s
	WindDirection *json.Number // degrees
}

// Forecast is an ordered list of periods for one location.
type Forecast struct {
	Periods []ForecastPeriod
}

// PointPeriod is one named forecast period from a gridpoint forecast
// ("Tonight", "Saturday"). Wind values arrive pre-formatted ("10 mph").
type PointPeriod struct {
	Name             string
	Temperature      *json.Number
	TemperatureUnit  string
	WindSpeed        string
	WindDirection    string
	DetailedForecast string
}

// ActiveAlert is an alert already issued and classified by the provider.
// Text fields are nil when the provider sent null or left them out; an empty
// string is rendered as sent.
type ActiveAlert struct {
	ID          string
	Event       *string
	Area        *string
	Severity    *string
	Description *string
	Instruction *string
}

// Number returns a reading holding the literal text, e.g. Number("36.0").
func Number(literal string) *json.Number {
	n := json.Number(literal)
	return &n
}

// Float returns a reading for v in its shortest decimal form.
func Float(v float64) *json.Number {
	return Number(strconv.FormatFloat(v, 'f', -1, 64))
}

// Text returns a pointer to s, for building text fields in code.
func Text(s string) *string { return &s }

// formatNumber renders a reading as the API sent it, or the absent
// placeholder for nil.
func formatNumber(v *json.Number) string {
	if v == nil {
		return "<nil>"
	}
	return v.String()
}

// numberValue returns the reading as a float. Unparseable literals count as
// absent.
func numberValue(v *json.Number) (float64, bool) {
	if v == nil {
		return 0, false
	}
	f, err := v.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// orDefault substitutes def only when the field is absent.
func orDefault(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

// textValue returns the field or "" when absent.
func textValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Provider labels.
const (
	ProviderOpenWeatherMap = "openweathermap"
	ProviderNWS            = "nws"
)
