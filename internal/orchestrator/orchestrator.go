package orchestrator

import (
    "context"
    "encoding/json"
    "net/http"
    "sync"
    "time"

    "github.com/rs/zerolog/log"

    "github.com/local/nfsextract/internal/ai"
    "github.com/local/nfsextract/internal/config"
    "github.com/local/nfsextract/internal/metrics"
    "github.com/local/nfsextract/internal/nfse"
    "github.com/local/nfsextract/internal/sink"
)

type Dependencies struct {
    Extractor TextExtractor
    LLM       ai.Client
    Status    StatusReporter
    Sinks     sink.Fanout
    Server    config.ServerConfig
}

// Orchestrator serves /generate. It holds no per-request state; the wait
// group only tracks outcome writes still in flight to the sinks.
type Orchestrator struct {
    deps     Dependencies
    inflight sync.WaitGroup
}

func New(deps Dependencies) *Orchestrator {
    if deps.Server.DefaultFilename == "" { deps.Server.DefaultFilename = "documento.pdf" }
    if deps.Server.MaxUploadMB <= 0 { deps.Server.MaxUploadMB = 32 }
    return &Orchestrator{deps: deps}
}

func (o *Orchestrator) RegisterRoutes(mux *http.ServeMux) {
    mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request){ w.WriteHeader(http.StatusOK); _,_ = w.Write([]byte("ok")) })
    mux.HandleFunc("/generate", o.handleGenerate)
    mux.HandleFunc("/status", o.handleStatus)
    mux.Handle("/metrics", metrics.Handler())
}

// Wait blocks until pending sink writes finish or ctx expires.
func (o *Orchestrator) Wait(ctx context.Context) error {
    done := make(chan struct{})
    go func() { o.inflight.Wait(); close(done) }()
    select {
    case <-done:
        return nil
    case <-ctx.Done():
        return ctx.Err()
    }
}

func (o *Orchestrator) record(out sink.Outcome) {
    if len(o.deps.Sinks) == 0 { return }
    o.inflight.Add(1)
    go func() {
        defer o.inflight.Done()
        ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
        defer cancel()
        o.deps.Sinks.Record(ctx, out)
    }()
}

func writeEnvelope(w http.ResponseWriter, status int, env nfse.Envelope) {
    w.Header().Set("Content-Type", "application/json; charset=utf-8")
    w.WriteHeader(status)
    enc := json.NewEncoder(w)
    enc.SetEscapeHTML(false)
    if err := enc.Encode(env); err != nil {
        log.Warn().Err(err).Msg("failed to write response")
    }
}
