// Package mcpadapter exposes the weather operations as MCP tools over stdio.
package mcpadapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	"github.com/couchcryptid/weather-mcp/internal/observability"
	"github.com/couchcryptid/weather-mcp/internal/service"
)

// Tool names.
const (
	ToolGetAlerts   = "get_alerts"
	ToolGetForecast = "get_forecast"
)

const (
	outcomeOK          = "ok"
	outcomeInvalidArgs = "invalid_args"
)

// Server registers the weather tools on an MCP server and serves them.
type Server struct {
	mcp     *server.MCPServer
	svc     service.Service
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
	serving atomic.Bool
}

// Option configures a Server.
type Option func(*Server)

// WithClock swaps the clock used to time tool calls.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// NewServer creates an MCP server named name exposing get_alerts and get_forecast.
func NewServer(name, version string, svc service.Service, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Server {
	s := &Server{
		mcp: server.NewMCPServer(name, version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		svc:     svc,
		logger:  logger,
		metrics: metrics,
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp.AddTool(mcp.NewTool(ToolGetAlerts,
		mcp.WithDescription("Get weather alerts for a US state."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("state",
			mcp.Required(),
			mcp.Description("Two-letter US state code (e.g. CA, NY)"),
		),
	), s.instrument(ToolGetAlerts, s.handleGetAlerts))

	s.mcp.AddTool(mcp.NewTool(ToolGetForecast,
		mcp.WithDescription("Get weather forecast for a location."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithNumber("latitude",
			mcp.Required(),
			mcp.Description("Latitude of the location"),
		),
		mcp.WithNumber("longitude",
			mcp.Required(),
			mcp.Description("Longitude of the location"),
		),
	), s.instrument(ToolGetForecast, s.handleGetForecast))

	return s
}

// MCPServer returns the underlying server, for in-process transports.
func (s *Server) MCPServer() *server.MCPServer { return s.mcp }

// Serve reads JSON-RPC requests from in and writes responses to out until ctx
// is cancelled or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(log.New(&slogWriter{logger: s.logger}, "", 0))

	s.serving.Store(true)
	defer s.serving.Store(false)

	s.logger.Info("mcp stdio server listening")
	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	return nil
}

// CheckReadiness reports whether the stdio transport is running.
func (s *Server) CheckReadiness(_ context.Context) error {
	if !s.serving.Load() {
		return errors.New("mcp transport not serving")
	}
	return nil
}

type alertsArgs struct {
	State *string `mapstructure:"state"`
}

type forecastArgs struct {
	Latitude  *float64 `mapstructure:"latitude"`
	Longitude *float64 `mapstructure:"longitude"`
}

func (s *Server) handleGetAlerts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args alertsArgs
	if err := decodeArgs(req.GetArguments(), &args); err != nil {
		return nil, err
	}
	if args.State == nil || strings.TrimSpace(*args.State) == "" {
		return nil, errors.New("state is required")
	}
	return mcp.NewToolResultText(s.svc.GetAlerts(ctx, strings.TrimSpace(*args.State))), nil
}

func (s *Server) handleGetForecast(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args forecastArgs
	if err := decodeArgs(req.GetArguments(), &args); err != nil {
		return nil, err
	}
	if args.Latitude == nil {
		return nil, errors.New("latitude is required")
	}
	if args.Longitude == nil {
		return nil, errors.New("longitude is required")
	}
	if !finite(*args.Latitude) {
		return nil, errors.New("latitude must be a finite number")
	}
	if !finite(*args.Longitude) {
		return nil, errors.New("longitude must be a finite number")
	}
	return mcp.NewToolResultText(s.svc.GetForecast(ctx, *args.Latitude, *args.Longitude)), nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

type toolFunc func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)

// instrument wraps a tool with request logging and metrics. Errors from fn
// are argument problems and become tool error results, not protocol errors.
func (s *Server) instrument(tool string, fn toolFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := s.clock.Now()
		logger := s.logger.With("tool", tool, "request_id", uuid.NewString())

		res, err := fn(ctx, req)
		elapsed := s.clock.Since(start)
		s.metrics.ToolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
		if err != nil {
			s.metrics.ToolCalls.WithLabelValues(tool, outcomeInvalidArgs).Inc()
			logger.Warn("invalid tool arguments", "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}

		s.metrics.ToolCalls.WithLabelValues(tool, outcomeOK).Inc()
		logger.Info("tool call complete", "duration", elapsed)
		return res, nil
	}
}

// decodeArgs maps loosely typed JSON arguments onto out. Numeric strings are
// accepted for number fields.
func decodeArgs(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// slogWriter forwards the stdio server's error log lines to slog.
type slogWriter struct {
	logger *slog.Logger
}

func (w *slogWriter) Write(p []byte) (int, error) {
	w.logger.Error("mcp transport error", "detail", strings.TrimSpace(string(p)))
	return len(p), nil
}
