package statuscheck

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type bucket struct{ err error }

func (b bucket) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, b.err
}

func TestSummaryAllHealthy(t *testing.T) {
	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/", r.URL.Path)
		_, _ = w.Write([]byte("Ollama is running"))
	}))
	defer llm.Close()

	c := New(Options{
		Redis:      pinger{},
		S3:         bucket{},
		S3Bucket:   "invoices",
		LLMURL:     llm.URL + "/api/generate",
		MuPDFProbe: func() error { return nil },
	})
	s := c.Summary(context.Background())

	assert.True(t, s.Ready())
	assert.Equal(t, "Available", s.LLM.Message)
	assert.Equal(t, "Connected", s.Redis.Message)
	assert.Equal(t, "Connected", s.S3.Message)
}

func TestSummaryDisabledSinksAreReady(t *testing.T) {
	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer llm.Close()

	s := New(Options{LLMURL: llm.URL, MuPDFProbe: func() error { return nil }}).Summary(context.Background())

	assert.True(t, s.Ready())
	assert.Equal(t, "Disabled", s.Redis.Message)
	assert.Equal(t, "Disabled", s.S3.Message)
}

func TestSummaryFailures(t *testing.T) {
	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer llm.Close()

	s := New(Options{
		Redis:      pinger{err: errors.New("dial tcp: connection refused")},
		S3:         bucket{err: errors.New("forbidden")},
		S3Bucket:   "invoices",
		LLMURL:     llm.URL,
		MuPDFProbe: func() error { return errors.New("cannot open document") },
	}).Summary(context.Background())

	assert.False(t, s.Ready())
	assert.Equal(t, Status{OK: false, Message: "HTTP 502"}, s.LLM)
	assert.Equal(t, "cannot open document", s.MuPDF.Message)
	assert.Equal(t, "dial tcp: connection refused", s.Redis.Message)
	assert.Equal(t, "forbidden", s.S3.Message)
}

func TestCheckLLMRejectsBadURL(t *testing.T) {
	s := New(Options{LLMURL: "not a url"}).Summary(context.Background())
	assert.False(t, s.LLM.OK)
	assert.False(t, s.MuPDF.OK)
}
