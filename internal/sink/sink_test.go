package sink

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/nfsextract/internal/nfse"
)

type fakeStream struct {
	added []*redis.XAddArgs
	err   error
}

func (f *fakeStream) XAdd(_ context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.added = append(f.added, a)
	return redis.NewStringResult("1-0", f.err)
}

func (f *fakeStream) Ping(context.Context) *redis.StatusCmd { return redis.NewStatusResult("PONG", nil) }
func (f *fakeStream) Close() error                        { return nil }

type upload struct {
	key         string
	contentType string
	body        []byte
	metadata    map[string]string
}

type fakeUploader struct {
	uploads []upload
	err     error
}

func (f *fakeUploader) Upload(_ context.Context, in *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, _ := io.ReadAll(in.Body)
	f.uploads = append(f.uploads, upload{key: *in.Key, contentType: *in.ContentType, body: b, metadata: in.Metadata})
	return &manager.UploadOutput{}, nil
}

func sampleOutcome() Outcome {
	env := nfse.Merge(map[string]any{"nota": map[string]any{"numero": "99"}})
	return Outcome{
		RequestID: "req-1",
		Filename:  "nota.pdf",
		Result:    "ok",
		Status:    200,
		Bytes:     4,
		Duration:  1500 * time.Millisecond,
		At:        time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC),
		PDF:       []byte("%PDF"),
		Envelope:  &env,
	}
}

func TestRedisEventsRecord(t *testing.T) {
	fs := &fakeStream{}
	r := newRedisEvents(fs, "nfse:extractions")

	require.NoError(t, r.Record(context.Background(), sampleOutcome()))
	require.Len(t, fs.added, 1)
	assert.Equal(t, "nfse:extractions", fs.added[0].Stream)

	var ev map[string]any
	require.NoError(t, json.Unmarshal([]byte(fs.added[0].Values.(map[string]any)["data"].(string)), &ev))
	assert.Equal(t, "req-1", ev["request_id"])
	assert.Equal(t, "ok", ev["result"])
	assert.Equal(t, float64(1500), ev["duration_ms"])
	assert.NotContains(t, ev, "PDF")
	assert.NoError(t, r.Ping(context.Background()))
}

func TestS3ArchiveRecordsSuccessOnly(t *testing.T) {
	fu := &fakeUploader{}
	a := &S3Archive{uploader: fu, bucket: "b", prefix: "nfse"}

	require.NoError(t, a.Record(context.Background(), sampleOutcome()))
	require.Len(t, fu.uploads, 2)
	assert.Equal(t, "nfse/2024/03/09/req-1/nota.pdf", fu.uploads[0].key)
	assert.Equal(t, "application/pdf", fu.uploads[0].contentType)
	assert.Equal(t, []byte("%PDF"), fu.uploads[0].body)
	assert.Equal(t, "nfse/2024/03/09/req-1/result.json", fu.uploads[1].key)
	assert.Contains(t, string(fu.uploads[1].body), `"numero":"99"`)

	failed := sampleOutcome()
	failEnv := nfse.NewErrorEnvelope("Resposta do LLaMA não é um JSON válido")
	failed.Envelope = &failEnv
	require.NoError(t, a.Record(context.Background(), failed))
	assert.Len(t, fu.uploads, 2)
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "nota.pdf", safeName("../../etc/nota.pdf"))
	assert.Equal(t, "nota.pdf", safeName(`C:\Users\x\nota.pdf`))
	assert.Equal(t, "documento.pdf", safeName(""))
}

func TestS3ArchiveKeysStayUnderPrefix(t *testing.T) {
	a := &S3Archive{prefix: "nfse"}
	at := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

	for _, id := range []string{
		"../../../../other-tenant/2024/01/01/victim",
		"..",
		"a/b",
		"",
		"0b7e3f4c-2a1d-4c55-9e0f-5d8f7a9b1c2d",
	} {
		dir := a.keyDir(Outcome{RequestID: id, At: at})
		assert.True(t, strings.HasPrefix(dir, "nfse/2024/03/09/"), "%q -> %q", id, dir)
		assert.NotContains(t, strings.TrimPrefix(dir, "nfse/2024/03/09/"), "/", id)
	}
	assert.Equal(t, "nfse/2024/03/09/req-1", a.keyDir(Outcome{RequestID: "req-1", At: at}))
}

func TestS3ArchiveMetadataIsASCII(t *testing.T) {
	fu := &fakeUploader{}
	a := &S3Archive{uploader: fu, bucket: "b", prefix: "nfse"}
	o := sampleOutcome()
	o.Filename = "Nota_Março.pdf"

	require.NoError(t, a.Record(context.Background(), o))
	require.Len(t, fu.uploads, 2)
	name := fu.uploads[0].metadata["name"]
	for _, r := range name {
		assert.Less(t, r, rune(0x80), name)
	}
	decoded, err := new(mime.WordDecoder).DecodeHeader(name)
	require.NoError(t, err)
	assert.Equal(t, "Nota_Março.pdf", decoded)
	assert.Equal(t, "nfse/2024/03/09/req-1/Nota_Março.pdf", fu.uploads[0].key)
}

type namedSink struct {
	name  string
	err   error
	calls int
}

func (s *namedSink) Name() string { return s.name }
func (s *namedSink) Record(context.Context, Outcome) error {
	s.calls++
	return s.err
}

func TestFanoutContinuesPastErrors(t *testing.T) {
	first := &namedSink{name: "a", err: errors.New("down")}
	second := &namedSink{name: "b"}

	Fanout{first, second}.Record(context.Background(), sampleOutcome())

	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}
