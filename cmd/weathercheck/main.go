// Command weathercheck runs the weather tools once against the live provider
// and reports whether each lookup produced data. It reads the same environment
// as the server.
//
// Usage:
//
//	go run ./cmd/weathercheck -alerts CA,NY -lat 37.7749 -lon -122.4194
//	go run ./cmd/weathercheck -provider nws -alerts TX -v
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/weather-mcp/internal/adapter/nws"
	"github.com/couchcryptid/weather-mcp/internal/adapter/openweathermap"
	"github.com/couchcryptid/weather-mcp/internal/config"
	"github.com/couchcryptid/weather-mcp/internal/domain"
	"github.com/couchcryptid/weather-mcp/internal/observability"
	"github.com/couchcryptid/weather-mcp/internal/regions"
	"github.com/couchcryptid/weather-mcp/internal/service"
)

// check tracks pass/fail for one tool invocation.
type check struct {
	name   string
	output string
	errors []string
}

func (c *check) errorf(format string, args ...any) {
	c.errors = append(c.errors, fmt.Sprintf(format, args...))
}

func (c *check) passed() bool { return len(c.errors) == 0 }

// checkPlan lists the tool invocations to run.
type checkPlan struct {
	states      []string
	lat, lon    float64
	hasForecast bool
	verbose     bool
}

func main() {
	provider := flag.String("provider", "", "weather provider (openweathermap or nws); defaults to WEATHER_PROVIDER")
	alerts := flag.String("alerts", "", "comma-separated region codes to run get_alerts for")
	lat := flag.Float64("lat", 0, "latitude for get_forecast")
	lon := flag.Float64("lon", 0, "longitude for get_forecast")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline")
	verbose := flag.Bool("v", false, "print tool output")
	flag.Parse()

	p := checkPlan{states: splitCodes(*alerts), lat: *lat, lon: *lon, verbose: *verbose}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "lat" || f.Name == "lon" {
			p.hasForecast = true
		}
	})
	if len(p.states) == 0 && !p.hasForecast {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	if *provider != "" {
		_ = os.Setenv("WEATHER_PROVIDER", *provider)
	}
	// Only the tool path runs here.
	_ = os.Setenv("ALERTS_PUBLISH_ENABLED", "false")

	svc, err := newService()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	os.Exit(run(ctx, svc, p, os.Stdout))
}

func newService() (service.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = "warn"
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetricsForTesting()

	if cfg.Provider == config.ProviderNWS {
		client := nws.NewClient(cfg.NWSUserAgent, cfg.NWSBaseURL, cfg.HTTPTimeout, metrics, logger)
		return service.NewNWS(client, nil, logger, metrics), nil
	}

	table, err := regions.Load(cfg.RegionsFile)
	if err != nil {
		return nil, err
	}
	client := openweathermap.NewClient(cfg.OWMAPIKey, cfg.OWMBaseURL, cfg.HTTPTimeout, metrics, logger)
	return service.NewOpenWeatherMap(client, table, nil, logger, metrics), nil
}

func run(ctx context.Context, svc service.Service, p checkPlan, w io.Writer) int {
	fmt.Fprintln(w, "=== Weather Tool Check ===")
	fmt.Fprintln(w)

	var checks []*check
	for _, state := range p.states {
		checks = append(checks, checkAlerts(ctx, svc, state))
	}
	if p.hasForecast {
		checks = append(checks, checkForecast(ctx, svc, p.lat, p.lon))
	}

	allPassed := true
	for _, c := range checks {
		status := "\033[32mPASS\033[0m"
		if !c.passed() {
			status = "\033[31mFAIL\033[0m"
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", c.name, status)
	}

	for _, c := range checks {
		if !c.passed() {
			fmt.Fprintf(w, "\n--- %s ---\n", c.name)
			for i, e := range c.errors {
				fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
			}
		}
		if p.verbose {
			fmt.Fprintf(w, "\n--- %s output ---\n%s\n", c.name, c.output)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll checks passed.")
		return 0
	}
	fmt.Fprintln(w, "\nCheck FAILED.")
	return 1
}

func checkAlerts(ctx context.Context, svc service.Service, state string) *check {
	c := &check{name: fmt.Sprintf("get_alerts(%s)", state)}
	c.output = svc.GetAlerts(ctx, state)
	switch {
	case c.output == domain.MsgAlertsUnavailable:
		c.errorf("provider returned no alert data")
	case strings.Contains(c.output, "not supported yet"):
		c.errorf("region %s is not in the region table", state)
	case strings.TrimSpace(c.output) == "":
		c.errorf("empty response")
	}
	return c
}

func checkForecast(ctx context.Context, svc service.Service, lat, lon float64) *check {
	c := &check{name: fmt.Sprintf("get_forecast(%v, %v)", lat, lon)}
	c.output = svc.GetForecast(ctx, lat, lon)
	switch {
	case c.output == domain.MsgForecastUnavailable:
		c.errorf("provider returned no forecast data")
	case strings.TrimSpace(c.output) == "":
		c.errorf("forecast has no periods")
	}
	return c
}

func splitCodes(s string) []string {
	var codes []string
	for _, part := range strings.Split(s, ",") {
		if code := strings.TrimSpace(part); code != "" {
			codes = append(codes, strings.ToUpper(code))
		}
	}
	return codes
}
