package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/local/nfsextract/internal/config"
	"github.com/local/nfsextract/internal/metrics"
)

// RetryingClient wraps a Client with bounded exponential backoff. Only
// transient failures are retried; the last error is returned unchanged so
// callers still see TimeoutError or TransportError.
type RetryingClient struct {
	inner       Client
	maxAttempts int
	base        time.Duration
	max         time.Duration
	factor      float64
}

// WithRetry returns c unchanged when cfg allows a single attempt.
func WithRetry(c Client, cfg config.LLMConfig) Client {
	if cfg.MaxAttempts <= 1 {
		return c
	}
	factor := cfg.RetryBackoffFactor
	if factor < 1 {
		factor = 1
	}
	return &RetryingClient{
		inner:       c,
		maxAttempts: cfg.MaxAttempts,
		base:        cfg.RetryBaseDelay,
		max:         cfg.RetryMaxDelay,
		factor:      factor,
	}
}

func (r *RetryingClient) Name() string { return r.inner.Name() }

func (r *RetryingClient) Do(ctx context.Context, req Request) (Response, error) {
	exp := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(r.base),
		backoff.WithMaxInterval(r.max),
		backoff.WithMultiplier(r.factor),
		backoff.WithMaxElapsedTime(0),
	)
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(r.maxAttempts-1)), ctx)

	attempt := 0
	op := func() (Response, error) {
		attempt++
		resp, err := r.inner.Do(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !isTransientError(err) {
			return Response{}, backoff.Permanent(err)
		}
		return Response{}, err
	}
	notify := func(err error, wait time.Duration) {
		metrics.IncLLMRetry(req.Stage)
		log.Warn().Err(err).Str("request_id", req.RequestID).Str("stage", req.Stage).
			Int("attempt", attempt).Dur("wait", wait).Msg("llm call failed, retrying")
	}
	return backoff.RetryNotifyWithData[Response](op, policy, notify)
}

// isTransientError reports whether another attempt could succeed.
func isTransientError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return true
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		switch {
		case transportErr.StatusCode == http.StatusTooManyRequests:
			return true
		case transportErr.StatusCode >= 500 && transportErr.StatusCode < 600:
			return true
		case transportErr.StatusCode != 0:
			return false
		}
	}

	// no response received: connection or network level
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "network") ||
		strings.Contains(errStr, "eof")
}
