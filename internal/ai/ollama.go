package ai

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "io"
    "net"
    "net/http"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/rs/zerolog/log"

    "github.com/local/nfsextract/internal/config"
)

// OllamaClient talks to an Ollama-style /api/generate endpoint.
type OllamaClient struct {
    http    *http.Client
    url     string
    model   string
    timeout time.Duration
}

func NewOllamaClient(cfg config.LLMConfig) *OllamaClient {
    timeout := cfg.Timeout
    if timeout <= 0 {
        timeout = 30 * time.Second
    }
    return &OllamaClient{http: &http.Client{}, url: cfg.URL, model: cfg.Model, timeout: timeout}
}

func (c *OllamaClient) Name() string { return "ollama" }

// Model returns the fixed model id sent with every call.
func (c *OllamaClient) Model() string { return c.model }

// URL returns the completion endpoint.
func (c *OllamaClient) URL() string { return c.url }

type generateReq struct {
    Model  string `json:"model"`
    Prompt string `json:"prompt"`
    Stream bool   `json:"stream"`
}

type generateResp struct {
    Model           string `json:"model"`
    Response        string `json:"response"`
    PromptEvalCount int    `json:"prompt_eval_count"`
    EvalCount       int    `json:"eval_count"`
}

// Do posts the prompt and returns the "response" field of the reply. An absent
// field decodes to "" and is not treated as an error here.
func (c *OllamaClient) Do(ctx context.Context, req Request) (Response, error) {
    ctx, cancel := context.WithTimeout(ctx, c.timeout)
    defer cancel()

    body, err := json.Marshal(generateReq{Model: c.model, Prompt: req.Prompt, Stream: false})
    if err != nil {
        return Response{}, &TransportError{Err: err}
    }
    httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
    if err != nil {
        return Response{}, &TransportError{Err: err}
    }
    requestID := req.RequestID
    if requestID == "" {
        requestID = uuid.NewString()
    }
    httpReq.Header.Set("Content-Type", "application/json")
    httpReq.Header.Set("X-Request-ID", requestID)

    start := time.Now()
    resp, err := c.http.Do(httpReq)
    if err != nil {
        return Response{}, c.classify(ctx, err)
    }
    defer resp.Body.Close()

    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
        return Response{}, &TransportError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
    }

    var r generateResp
    if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
        return Response{}, c.classify(ctx, err)
    }

    out := Response{
        Text:      r.Response,
        Model:     r.Model,
        TokensIn:  r.PromptEvalCount,
        TokensOut: r.EvalCount,
        Duration:  time.Since(start),
    }
    log.Debug().Str("request_id", requestID).Str("stage", req.Stage).Str("model", c.model).
        Int("tokens_in", out.TokensIn).Int("tokens_out", out.TokensOut).Dur("duration", out.Duration).
        Msg("llm call completed")
    return out, nil
}

func (c *OllamaClient) classify(ctx context.Context, err error) error {
    if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
        return &TimeoutError{Timeout: c.timeout, Err: err}
    }
    var netErr net.Error
    if errors.As(err, &netErr) && netErr.Timeout() {
        return &TimeoutError{Timeout: c.timeout, Err: err}
    }
    return &TransportError{Err: err}
}
