package mcpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-mcp/internal/observability"
)

type forecastCall struct{ lat, lon float64 }

// fakeService records calls and returns canned text.
type fakeService struct {
	mu        sync.Mutex
	regions   []string
	forecasts []forecastCall
	onCall    func()
}

func (f *fakeService) GetAlerts(_ context.Context, region string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.onCall != nil {
		f.onCall()
	}
	f.regions = append(f.regions, region)
	return "alerts for " + region
}

func (f *fakeService) GetForecast(_ context.Context, lat, lon float64) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forecasts = append(f.forecasts, forecastCall{lat, lon})
	return fmt.Sprintf("forecast for %v,%v", lat, lon)
}

type toolResult struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	IsError bool `json:"isError"`
}

type rpcResponse struct {
	ID     int             `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestServer() (*Server, *fakeService, *observability.Metrics) {
	svc := &fakeService{}
	m := observability.NewMetricsForTesting()
	return NewServer("weather", "test", svc, slog.New(slog.NewTextHandler(io.Discard, nil)), m), svc, m
}

func callTool(t *testing.T, s *Server, name string, args any) toolResult {
	t.Helper()
	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params":  map[string]any{"name": name, "arguments": args},
	})
	require.NoError(t, err)

	raw, err := json.Marshal(s.MCPServer().HandleMessage(context.Background(), msg))
	require.NoError(t, err)

	var resp rpcResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	require.Nil(t, resp.Error, "unexpected protocol error")

	var res toolResult
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	require.Len(t, res.Content, 1)
	return res
}

func TestGetAlerts(t *testing.T) {
	s, svc, m := newTestServer()

	res := callTool(t, s, ToolGetAlerts, map[string]any{"state": "CA"})

	assert.False(t, res.IsError)
	assert.Equal(t, "alerts for CA", res.Content[0].Text)
	assert.Equal(t, []string{"CA"}, svc.regions)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ToolCalls.WithLabelValues(ToolGetAlerts, outcomeOK)), 0)
}

func TestGetAlerts_TimedWithClock(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc := &fakeService{onCall: func() { clock.Advance(1500 * time.Millisecond) }}
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	s := NewServer("weather", "test", svc, logger, observability.NewMetricsForTesting(), WithClock(clock))

	res := callTool(t, s, ToolGetAlerts, map[string]any{"state": "CA"})
	require.False(t, res.IsError)

	var entry struct {
		Msg      string `json:"msg"`
		Tool     string `json:"tool"`
		Duration int64  `json:"duration"`
	}
	for _, line := range bytes.Split(bytes.TrimSpace(logs.Bytes()), []byte("\n")) {
		require.NoError(t, json.Unmarshal(line, &entry))
		if entry.Msg == "tool call complete" {
			break
		}
	}
	assert.Equal(t, "tool call complete", entry.Msg)
	assert.Equal(t, ToolGetAlerts, entry.Tool)
	assert.Equal(t, (1500 * time.Millisecond).Nanoseconds(), entry.Duration)
}

func TestGetAlerts_MissingState(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{name: "absent", args: map[string]any{}},
		{name: "blank", args: map[string]any{"state": "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, svc, m := newTestServer()

			res := callTool(t, s, ToolGetAlerts, tt.args)

			assert.True(t, res.IsError)
			assert.Contains(t, res.Content[0].Text, "state is required")
			assert.Empty(t, svc.regions)
			assert.InDelta(t, 1, testutil.ToFloat64(m.ToolCalls.WithLabelValues(ToolGetAlerts, outcomeInvalidArgs)), 0)
		})
	}
}

func TestGetForecast(t *testing.T) {
	s, svc, _ := newTestServer()

	res := callTool(t, s, ToolGetForecast, map[string]any{"latitude": 37.7749, "longitude": -122.4194})

	assert.False(t, res.IsError)
	assert.Equal(t, "forecast for 37.7749,-122.4194", res.Content[0].Text)
	assert.Equal(t, []forecastCall{{37.7749, -122.4194}}, svc.forecasts)
}

func TestGetForecast_NumericStrings(t *testing.T) {
	s, svc, _ := newTestServer()

	res := callTool(t, s, ToolGetForecast, map[string]any{"latitude": "40.7128", "longitude": "-74.006"})

	assert.False(t, res.IsError)
	assert.Equal(t, []forecastCall{{40.7128, -74.006}}, svc.forecasts)
}

func TestGetForecast_InvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "missing latitude", args: map[string]any{"longitude": 1.0}, want: "latitude is required"},
		{name: "missing longitude", args: map[string]any{"latitude": 1.0}, want: "longitude is required"},
		{name: "non-numeric", args: map[string]any{"latitude": "north", "longitude": 1.0}, want: "invalid arguments"},
		{name: "NaN latitude", args: map[string]any{"latitude": "NaN", "longitude": 1.0}, want: "latitude must be a finite number"},
		{name: "infinite longitude", args: map[string]any{"latitude": 1.0, "longitude": "Inf"}, want: "longitude must be a finite number"},
		{name: "negative infinity", args: map[string]any{"latitude": "-Infinity", "longitude": 1.0}, want: "latitude must be a finite number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, svc, _ := newTestServer()

			res := callTool(t, s, ToolGetForecast, tt.args)

			assert.True(t, res.IsError)
			assert.Contains(t, res.Content[0].Text, tt.want)
			assert.Empty(t, svc.forecasts)
		})
	}
}

func TestToolsList(t *testing.T) {
	s, _, _ := newTestServer()
	msg := []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)

	raw, err := json.Marshal(s.MCPServer().HandleMessage(context.Background(), msg))
	require.NoError(t, err)

	var resp struct {
		Result struct {
			Tools []struct {
				Name        string `json:"name"`
				InputSchema struct {
					Required []string `json:"required"`
				} `json:"inputSchema"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &resp))

	schemas := map[string][]string{}
	for _, tool := range resp.Result.Tools {
		schemas[tool.Name] = tool.InputSchema.Required
	}
	assert.ElementsMatch(t, []string{"state"}, schemas[ToolGetAlerts])
	assert.ElementsMatch(t, []string{"latitude", "longitude"}, schemas[ToolGetForecast])
}

func TestServe_Stdio(t *testing.T) {
	s, _, _ := newTestServer()
	in := strings.NewReader(
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"get_alerts","arguments":{"state":"NY"}}}` + "\n")
	var out bytes.Buffer

	require.NoError(t, s.Serve(context.Background(), in, &out))

	var resp rpcResponse
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(out.Bytes()), &resp))
	assert.Equal(t, 1, resp.ID)

	var res toolResult
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	require.Len(t, res.Content, 1)
	assert.Equal(t, "alerts for NY", res.Content[0].Text)
}

func TestCheckReadiness(t *testing.T) {
	s, _, _ := newTestServer()
	assert.Error(t, s.CheckReadiness(context.Background()))

	s.serving.Store(true)
	assert.NoError(t, s.CheckReadiness(context.Background()))
}
