package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Tool metrics
	ToolExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helios_tool_executions_total",
			Help: "Total number of tool executions",
		},
		[]string{"tool", "status"}, // status: ok|invalid_params|panic|<error category>
	)

	ToolLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "helios_tool_latency_seconds",
			Help:    "Tool execution latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"tool"},
	)

	// Analysis run metrics
	AnalysisRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helios_analysis_runs_total",
			Help: "Total number of agent analysis runs",
		},
		[]string{"agent", "status"}, // status: success|error
	)

	AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "helios_analysis_duration_seconds",
			Help:    "End-to-end analysis run duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"agent"},
	)

	AnalysisIterations = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "helios_analysis_iterations",
			Help:    "Model round-trips per analysis run",
			Buckets: []float64{1, 2, 3, 4, 5, 7, 10, 15},
		},
		[]string{"agent"},
	)

	// Model metrics
	ModelCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helios_model_calls_total",
			Help: "Total number of model calls",
		},
		[]string{"model", "status"}, // status: success|error
	)

	ModelRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helios_model_retries_total",
			Help: "Total number of model call retries",
		},
		[]string{"model"},
	)

	ModelTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helios_model_tokens_total",
			Help: "Total tokens consumed by model calls",
		},
		[]string{"model", "type"}, // type: input|output
	)

	// Broker metrics
	BrokerAPICalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helios_broker_api_calls_total",
			Help: "Total number of broker API calls",
		},
		[]string{"broker", "endpoint", "status"},
	)

	BrokerAPILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "helios_broker_api_latency_seconds",
			Help:    "Broker API latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"broker", "endpoint"},
	)
)

// Init registers all metrics with the default registry.
func Init() {
	prometheus.MustRegister(ToolExecutions)
	prometheus.MustRegister(ToolLatency)
	prometheus.MustRegister(AnalysisRuns)
	prometheus.MustRegister(AnalysisDuration)
	prometheus.MustRegister(AnalysisIterations)
	prometheus.MustRegister(ModelCalls)
	prometheus.MustRegister(ModelRetries)
	prometheus.MustRegister(ModelTokens)
	prometheus.MustRegister(BrokerAPICalls)
	prometheus.MustRegister(BrokerAPILatency)
}

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordToolExecution records a single tool execution outcome.
func RecordToolExecution(tool, status string, latency time.Duration) {
	ToolExecutions.WithLabelValues(tool, status).Inc()
	if latency > 0 {
		ToolLatency.WithLabelValues(tool).Observe(latency.Seconds())
	}
}

// RecordAnalysisRun records the outcome of a full analysis run.
func RecordAnalysisRun(agent string, duration time.Duration, iterations int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	AnalysisRuns.WithLabelValues(agent, status).Inc()
	AnalysisDuration.WithLabelValues(agent).Observe(duration.Seconds())
	AnalysisIterations.WithLabelValues(agent).Observe(float64(iterations))
}

// RecordModelCall records a model call outcome and token usage.
func RecordModelCall(model string, inputTokens, outputTokens int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ModelCalls.WithLabelValues(model, status).Inc()
	if inputTokens > 0 {
		ModelTokens.WithLabelValues(model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		ModelTokens.WithLabelValues(model, "output").Add(float64(outputTokens))
	}
}

// RecordBrokerAPICall records a broker API call outcome.
func RecordBrokerAPICall(broker, endpoint string, latency time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	BrokerAPICalls.WithLabelValues(broker, endpoint, status).Inc()
	BrokerAPILatency.WithLabelValues(broker, endpoint).Observe(latency.Seconds())
}
