package domain

import (
	"fmt"
	"strings"
)

// MaxForecastPeriods caps how many periods a forecast response renders.
const MaxForecastPeriods = 5

// FormatForecast renders the first periods of f. A nil forecast means the
// provider response had no period list.
func FormatForecast(f *Forecast) string {
	if f == nil {
		return MsgForecastUnavailable
	}

	periods := f.Periods
	if len(periods) > MaxForecastPeriods {
		periods = periods[:MaxForecastPeriods]
	}

	blocks := make([]string, 0, len(periods))
	for _, p := range periods {
		blocks = append(blocks, fmt.Sprintf(`
Time: %s
Temperature: %s°C
Feels Like: %s°C
Conditions: %s - %s
Humidity: %s%%
Wind: %s m/s
`,
			p.Time,
			formatNumber(p.Temperature),
			formatNumber(p.FeelsLike),
			p.Condition, p.Description,
			formatNumber(p.Humidity),
			formatNumber(p.WindSpeed),
		))
	}
	return strings.Join(blocks, Separator)
}

// FormatPointForecast renders the first gridpoint periods.
func FormatPointForecast(periods []PointPeriod) string {
	if len(periods) > MaxForecastPeriods {
		periods = periods[:MaxForecastPeriods]
	}

	blocks := make([]string, 0, len(periods))
	for _, p := range periods {
		blocks = append(blocks, fmt.Sprintf(`
%s:
Temperature: %s°%s
Wind: %s %s
Forecast: %s
`,
			p.Name,
			formatNumber(p.Temperature), p.TemperatureUnit,
			p.WindSpeed, p.WindDirection,
			p.DetailedForecast,
		))
	}
	return strings.Join(blocks, Separator)
}
