package main

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "os"
    "os/signal"
    "syscall"

    "github.com/joho/godotenv"
    "github.com/rs/zerolog/log"

    "github.com/local/nfsextract/internal/ai"
    cfgpkg "github.com/local/nfsextract/internal/config"
    logpkg "github.com/local/nfsextract/internal/logger"
    "github.com/local/nfsextract/internal/metrics"
    "github.com/local/nfsextract/internal/mupdf"
    "github.com/local/nfsextract/internal/orchestrator"
    "github.com/local/nfsextract/internal/sink"
    "github.com/local/nfsextract/internal/statuscheck"
)

func main() {
    _ = godotenv.Load() // .env is optional
    cfg := cfgpkg.FromEnv()

    // Init logging
    if err := logpkg.Init(logpkg.Options{
        Service: "nfsextract",
        Level: cfg.Logging.Level,
        Pretty: cfg.Logging.Pretty,
        File: cfg.Logging.File,
        MaxSizeMB: cfg.Logging.MaxSizeMB,
        MaxBackups: cfg.Logging.MaxBackups,
        MaxAgeDays: cfg.Logging.MaxAgeDays,
        Compress: cfg.Logging.Compress,
        SendToAxiom: cfg.Axiom.Send && cfg.Axiom.APIKey != "",
        AxiomAPIKey: cfg.Axiom.APIKey,
        AxiomOrgID: cfg.Axiom.OrgID,
        AxiomDataset: cfg.Axiom.Dataset,
        AxiomFlush: cfg.Axiom.FlushInterval,
    }); err != nil {
        fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
    }
    defer logpkg.Close()

    metrics.Init()

    llm := ai.NewOllamaClient(cfg.LLM)
    log.Info().Str("url", llm.URL()).Str("model", llm.Model()).Dur("timeout", cfg.LLM.Timeout).
        Int("max_attempts", cfg.LLM.MaxAttempts).Msg("llm endpoint configured")

    // Optional outcome sinks
    var sinks sink.Fanout
    statusOpts := statuscheck.Options{LLMURL: cfg.LLM.URL, MuPDFProbe: mupdf.Probe}
    if cfg.Sinks.RedisURL != "" {
        events, err := sink.NewRedisEvents(cfg.Sinks.RedisURL, cfg.Sinks.EventsStream)
        if err != nil {
            log.Fatal().Err(err).Msg("failed to connect to redis")
        }
        defer events.Close()
        sinks = append(sinks, events)
        statusOpts.Redis = events
        log.Info().Str("stream", cfg.Sinks.EventsStream).Msg("redis events sink enabled")
    }
    if cfg.Sinks.S3Bucket != "" {
        archive, err := sink.NewS3Archive(context.Background(), cfg.Sinks.S3Bucket, cfg.Sinks.ArchivePrefix)
        if err != nil {
            log.Fatal().Err(err).Msg("failed to init s3 archive")
        }
        sinks = append(sinks, archive)
        statusOpts.S3 = archive.Client()
        statusOpts.S3Bucket = archive.Bucket()
        log.Info().Str("bucket", cfg.Sinks.S3Bucket).Str("prefix", cfg.Sinks.ArchivePrefix).Msg("s3 archive sink enabled")
    }

    orch := orchestrator.New(orchestrator.Dependencies{
        Extractor: mupdf.NewExtractor(),
        LLM:       ai.WithRetry(llm, cfg.LLM),
        Status:    statuscheck.New(statusOpts),
        Sinks:     sinks,
        Server:    cfg.Server,
    })
    mux := http.NewServeMux()
    orch.RegisterRoutes(mux)

    port := cfg.Server.Port
    srv := &http.Server{Addr: ":"+port, Handler: mux}

    go func(){
        log.Info().Msgf("HTTP server listening on :%s", port)
        if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            log.Fatal().Err(err).Msg("http server error")
        }
    }()

    // Graceful shutdown
    stop := make(chan os.Signal, 1)
    signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
    <-stop
    ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
    defer cancel()
    _ = srv.Shutdown(ctx)
    if err := orch.Wait(ctx); err != nil {
        log.Warn().Err(err).Msg("pending sink writes abandoned")
    }
    fmt.Println("shutdown complete")
}
