package ai

import (
    "context"
    "errors"
    "fmt"
    "time"
)

// Request is one text-completion call. RequestID and Stage only travel into
// logs and headers; the endpoint sees the prompt alone.
type Request struct {
    RequestID string
    Stage     string
    Prompt    string
}

type Response struct {
    Text       string
    Model      string
    TokensIn   int
    TokensOut  int
    Duration   time.Duration
}

// Client is a text-completion provider.
type Client interface {
    Name() string
    Do(ctx context.Context, req Request) (Response, error)
}

// TimeoutError means no response arrived within the per-call timeout.
type TimeoutError struct {
    Timeout time.Duration
    Err     error
}

func (e *TimeoutError) Error() string {
    return fmt.Sprintf("llm call timed out after %s", e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// TransportError covers every other failure: connection, DNS, non-2xx status
// or an undecodable body. StatusCode is 0 when no response was received.
type TransportError struct {
    StatusCode int
    Body       string
    Err        error
}

func (e *TransportError) Error() string {
    if e.StatusCode != 0 {
        return fmt.Sprintf("llm endpoint returned HTTP %d: %s", e.StatusCode, e.Body)
    }
    return fmt.Sprintf("llm transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func IsTimeout(err error) bool {
    var te *TimeoutError
    return errors.As(err, &te)
}

func IsTransport(err error) bool {
    var te *TransportError
    return errors.As(err, &te)
}
