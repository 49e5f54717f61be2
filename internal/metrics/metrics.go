package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kagent-dev/gemini-mcp-server/internal/version"
)

// Tool call outcomes.
const (
	OutcomeSuccess = "success"
	// OutcomeToolError is an in-band failure flagged with isError.
	OutcomeToolError = "tool_error"
	// OutcomeHandlerError is a Go error returned by the handler itself.
	OutcomeHandlerError = "handler_error"
)

// NewBuildInfoCollector returns a collector that exports metrics about current version
// information.
func NewBuildInfoCollector() prometheus.Collector {
	info := version.Get()
	return prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "gemini_mcp_build_info",
			Help: "gemini-mcp-server build metadata exposed as labels with a constant value of 1.",
			ConstLabels: prometheus.Labels{
				"version":    info.Version,
				"git_commit": info.GitCommit,
				"build_date": info.BuildDate,
				"go_version": info.GoVersion,
				"platform":   info.Platform,
			},
		},
		func() float64 { return 1 },
	)
}

// Recorder owns the server's metric registry.
type Recorder struct {
	registry         *prometheus.Registry
	toolCalls        *prometheus.CounterVec
	toolCallDuration *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gemini_mcp_tool_calls_total",
				Help: "Total number of MCP tool calls by tool and outcome.",
			},
			[]string{"tool", "outcome"},
		),
		toolCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gemini_mcp_tool_call_duration_seconds",
				Help:    "Duration of MCP tool calls in seconds.",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"tool"},
		),
	}
	r.registry.MustRegister(
		NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.toolCalls,
		r.toolCallDuration,
	)
	return r
}

// ObserveToolCall records one finished tool call.
func (r *Recorder) ObserveToolCall(tool, outcome string, duration time.Duration) {
	r.toolCalls.WithLabelValues(tool, outcome).Inc()
	r.toolCallDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
