package metrics

import (
    "net/http"
    "sync"
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
    requests = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "nfsextract",
            Name:      "generate_requests_total",
            Help:      "Total /generate requests by result (ok, no_file, no_text, pdf_error, stage1, stage2, invalid_json, internal)",
        },
        []string{"result"},
    )

    stageLatency = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{
            Namespace: "nfsextract",
            Name:      "stage_duration_seconds",
            Help:      "Duration of pipeline stages (extract, normalize, convert, sanitize)",
            Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
        },
        []string{"stage"},
    )

    llmCalls = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "nfsextract",
            Name:      "llm_calls_total",
            Help:      "LLM calls by stage and result (ok, timeout, transport, empty)",
        },
        []string{"stage", "result"},
    )

    llmRetries = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "nfsextract",
            Name:      "llm_retries_total",
            Help:      "LLM call retries by stage",
        },
        []string{"stage"},
    )

    schemaMismatches = prometheus.NewCounter(
        prometheus.CounterOpts{
            Namespace: "nfsextract",
            Name:      "schema_mismatches_total",
            Help:      "Completions that parsed but did not match the requested JSON shape",
        },
    )

    sinkErrors = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "nfsextract",
            Name:      "sink_errors_total",
            Help:      "Failed writes to outcome sinks",
        },
        []string{"sink"},
    )

    pagesExtracted = prometheus.NewHistogram(
        prometheus.HistogramOpts{
            Namespace: "nfsextract",
            Name:      "pdf_pages",
            Help:      "Page count of uploaded PDFs",
            Buckets:   []float64{1, 2, 3, 5, 10, 20, 50},
        },
    )
)

var once sync.Once

// Init registers collectors. Safe to call more than once.
func Init() {
    once.Do(func() {
        prometheus.MustRegister(requests, stageLatency, llmCalls, llmRetries, schemaMismatches, sinkErrors, pagesExtracted)
    })
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func IncRequest(result string) { requests.WithLabelValues(result).Inc() }

func ObserveStage(stage string, dur time.Duration) {
    stageLatency.WithLabelValues(stage).Observe(dur.Seconds())
}

func IncLLMCall(stage, result string) { llmCalls.WithLabelValues(stage, result).Inc() }
func IncLLMRetry(stage string)        { llmRetries.WithLabelValues(stage).Inc() }
func IncSchemaMismatch()              { schemaMismatches.Inc() }
func IncSinkError(sink string)        { sinkErrors.WithLabelValues(sink).Inc() }
func ObservePages(n int)              { pagesExtracted.Observe(float64(n)) }
