package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
    Level        string
    Pretty       bool
    File         string
    MaxSizeMB    int
    MaxBackups   int
    MaxAgeDays   int
    Compress     bool
}

// AxiomConfig holds Axiom logging configuration.
type AxiomConfig struct {
    Send          bool
    APIKey        string
    OrgID         string
    Dataset       string
    FlushInterval time.Duration
}

// LLMConfig describes the text-completion endpoint used by both stages.
type LLMConfig struct {
    URL                string
    Model              string
    Timeout            time.Duration
    MaxAttempts        int // 1 disables retries
    RetryBaseDelay     time.Duration
    RetryMaxDelay      time.Duration
    RetryBackoffFactor float64
}

// ServerConfig holds the HTTP surface settings.
type ServerConfig struct {
    Port            string
    MaxUploadMB     int
    DefaultFilename string
    ShutdownTimeout time.Duration
}

// SinkConfig enables the optional write-only outcome sinks. Empty values disable them.
type SinkConfig struct {
    RedisURL      string
    EventsStream  string
    S3Bucket      string
    ArchivePrefix string
}

// Config is the top-level configuration.
type Config struct {
    Logging LoggingConfig
    Axiom   AxiomConfig
    LLM     LLMConfig
    Server  ServerConfig
    Sinks   SinkConfig
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
    cfg := Config{}

    // Logging defaults
    cfg.Logging = LoggingConfig{
        Level:      getEnv("LOG_LEVEL", "info"),
        Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
        File:       getEnv("LOG_FILE", "logs/nfsextract.log"),
        MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
        MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
        MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
        Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
    }

    // Axiom defaults
    baseDataset := getEnv("AXIOM_DATASET", "dev")
    cfg.Axiom = AxiomConfig{
        Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
        APIKey:        getEnv("AXIOM_API_KEY", ""),
        OrgID:         getEnv("AXIOM_ORG_ID", ""),
        Dataset:       baseDataset + "_nfsextract",
        FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
    }

    cfg.LLM = LLMConfig{
        URL:                getEnv("LLM_API_URL", "http://localhost:11434/api/generate"),
        Model:              getEnv("LLM_MODEL", "llama3"),
        Timeout:            parseDuration(getEnv("LLM_TIMEOUT", "30s"), 30*time.Second),
        MaxAttempts:        parseInt(getEnv("LLM_MAX_ATTEMPTS", "1"), 1),
        RetryBaseDelay:     parseDuration(getEnv("LLM_RETRY_BASE_DELAY", "1s"), time.Second),
        RetryMaxDelay:      parseDuration(getEnv("LLM_RETRY_MAX_DELAY", "10s"), 10*time.Second),
        RetryBackoffFactor: parseFloat(getEnv("LLM_RETRY_BACKOFF_FACTOR", "2.0"), 2.0),
    }
    if cfg.LLM.MaxAttempts < 1 { cfg.LLM.MaxAttempts = 1 }
    if cfg.LLM.Timeout <= 0 { cfg.LLM.Timeout = 30 * time.Second }

    cfg.Server = ServerConfig{
        Port:            getEnv("PORT", "5050"),
        MaxUploadMB:     parseInt(getEnv("MAX_UPLOAD_MB", "32"), 32),
        DefaultFilename: getEnv("DEFAULT_FILENAME", "documento.pdf"),
        ShutdownTimeout: parseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s"), 10*time.Second),
    }

    cfg.Sinks = SinkConfig{
        RedisURL:      getEnv("REDIS_URL", ""),
        EventsStream:  getEnv("EVENTS_STREAM", "nfse:extractions"),
        S3Bucket:      getEnv("AWS_S3_BUCKET", ""),
        ArchivePrefix: strings.Trim(getEnv("ARCHIVE_PREFIX", "nfse"), "/"),
    }

    return cfg
}

// Helpers
func getEnv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func parseInt(s string, def int) int {
    if s == "" { return def }
    if n, err := strconv.Atoi(s); err == nil { return n }
    return def
}

func parseFloat(s string, def float64) float64 {
    if s == "" { return def }
    if f, err := strconv.ParseFloat(s, 64); err == nil { return f }
    return def
}

func parseBool(s string) bool {
    v := strings.ToLower(strings.TrimSpace(s))
    return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
    if s == "" { return def }
    if d, err := time.ParseDuration(s); err == nil { return d }
    return def
}

func devDefaultPretty() string {
    env := strings.ToLower(os.Getenv("ENVIRONMENT"))
    if env == "dev" || env == "development" || env == "local" { return "true" }
    return "false"
}
