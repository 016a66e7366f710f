package statuscheck

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "net/url"
    "time"

    "github.com/aws/aws-sdk-go-v2/service/s3"
)

// RedisPinger models the minimal Redis capability we need for status checks.
type RedisPinger interface {
    Ping(ctx context.Context) error
}

// BucketHeader is satisfied by *s3.Client.
type BucketHeader interface {
    HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Checker aggregates readiness checks for the dependencies of /generate.
type Checker struct {
    redis      RedisPinger
    s3         BucketHeader
    s3Bucket   string
    llmURL     string
    httpClient *http.Client
    mupdfProbe func() error
}

// Options configures the Checker. Nil Redis or S3 means the sink is disabled.
type Options struct {
    Redis      RedisPinger
    S3         BucketHeader
    S3Bucket   string
    LLMURL     string
    HTTPClient *http.Client
    MuPDFProbe func() error
}

// Status represents the readiness of a subsystem.
type Status struct {
    OK      bool   `json:"ok"`
    Message string `json:"message"`
}

// Summary bundles all subsystem statuses.
type Summary struct {
    LLM   Status `json:"llm"`
    MuPDF Status `json:"mupdf"`
    Redis Status `json:"redis"`
    S3    Status `json:"s3"`
}

// Ready is false when a required dependency (LLM endpoint, MuPDF) or an
// enabled sink is down.
func (s Summary) Ready() bool {
    return s.LLM.OK && s.MuPDF.OK && s.Redis.OK && s.S3.OK
}

// New creates a new Checker with the provided options.
func New(opts Options) *Checker {
    client := opts.HTTPClient
    if client == nil {
        client = &http.Client{Timeout: 5 * time.Second}
    }
    return &Checker{
        redis:      opts.Redis,
        s3:         opts.S3,
        s3Bucket:   opts.S3Bucket,
        llmURL:     opts.LLMURL,
        httpClient: client,
        mupdfProbe: opts.MuPDFProbe,
    }
}

// Summary returns the current status snapshot.
func (c *Checker) Summary(ctx context.Context) Summary {
    return Summary{
        LLM:   c.checkLLM(ctx),
        MuPDF: c.checkMuPDF(),
        Redis: c.checkRedis(ctx),
        S3:    c.checkS3(ctx),
    }
}

// checkLLM only proves the host answers HTTP; a completion is too slow for a probe.
func (c *Checker) checkLLM(ctx context.Context) Status {
    if c.llmURL == "" {
        return Status{OK: false, Message: "Endpoint not configured"}
    }
    u, err := url.Parse(c.llmURL)
    if err != nil || u.Host == "" {
        return Status{OK: false, Message: "Invalid endpoint URL"}
    }
    root := url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}

    ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
    defer cancel()
    req, _ := http.NewRequestWithContext(ctx, http.MethodGet, root.String(), nil)
    resp, err := c.httpClient.Do(req)
    if err != nil {
        return Status{OK: false, Message: trimError(err)}
    }
    defer resp.Body.Close()
    if resp.StatusCode >= 500 {
        return Status{OK: false, Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
    }
    return Status{OK: true, Message: "Available"}
}

func (c *Checker) checkMuPDF() Status {
    if c.mupdfProbe == nil {
        return Status{OK: false, Message: "Probe not configured"}
    }
    if err := c.mupdfProbe(); err != nil {
        return Status{OK: false, Message: trimError(err)}
    }
    return Status{OK: true, Message: "Available"}
}

func (c *Checker) checkRedis(ctx context.Context) Status {
    if c.redis == nil {
        return Status{OK: true, Message: "Disabled"}
    }
    ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
    defer cancel()
    if err := c.redis.Ping(ctx); err != nil {
        return Status{OK: false, Message: trimError(err)}
    }
    return Status{OK: true, Message: "Connected"}
}

func (c *Checker) checkS3(ctx context.Context) Status {
    if c.s3 == nil || c.s3Bucket == "" {
        return Status{OK: true, Message: "Disabled"}
    }
    ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
    defer cancel()
    _, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &c.s3Bucket})
    if err != nil {
        return Status{OK: false, Message: trimError(err)}
    }
    return Status{OK: true, Message: "Connected"}
}

func trimError(err error) string {
    if err == nil {
        return ""
    }
    var netErr interface{ Timeout() bool }
    if errors.As(err, &netErr) && netErr.Timeout() {
        return "timeout"
    }
    msg := err.Error()
    if len(msg) > 120 {
        return msg[:120]
    }
    return msg
}
