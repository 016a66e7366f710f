package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Archive stores the uploaded PDF and the success envelope of every
// successful extraction under <prefix>/<yyyy>/<mm>/<dd>/<request_id>/.
// Failed requests are not archived.
type S3Archive struct {
	client   *s3.Client
	uploader uploader
	bucket   string
	prefix   string
}

// NewS3Archive loads the default AWS config chain (env, shared files, IMDS).
func NewS3Archive(ctx context.Context, bucket, prefix string) (*S3Archive, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	cli := s3.NewFromConfig(cfg)
	return &S3Archive{
		client:   cli,
		uploader: manager.NewUploader(cli),
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
	}, nil
}

func (a *S3Archive) Name() string { return "s3" }

// Client exposes the S3 client for readiness checks.
func (a *S3Archive) Client() *s3.Client { return a.client }

func (a *S3Archive) Bucket() string { return a.bucket }

func (a *S3Archive) Record(ctx context.Context, o Outcome) error {
	if o.Envelope == nil || !o.Envelope.Sucesso {
		return nil
	}
	dir := a.keyDir(o)

	body, err := json.Marshal(o.Envelope)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	// user metadata travels as US-ASCII headers
	meta := map[string]string{"request-id": safeSegment(o.RequestID), "name": mime.QEncoding.Encode("utf-8", o.Filename)}

	pdfKey := path.Join(dir, safeName(o.Filename))
	if _, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(pdfKey),
		Body:        bytes.NewReader(o.PDF),
		ContentType: aws.String("application/pdf"),
		Metadata:    meta,
	}); err != nil {
		return fmt.Errorf("upload pdf: %w", err)
	}

	jsonKey := path.Join(dir, "result.json")
	if _, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(jsonKey),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata:    meta,
	}); err != nil {
		return fmt.Errorf("upload result: %w", err)
	}

	log.Debug().Str("request_id", o.RequestID).Str("bucket", a.bucket).Str("key", jsonKey).Msg("archived extraction")
	return nil
}

func (a *S3Archive) keyDir(o Outcome) string {
	day := o.At.UTC().Format("2006/01/02")
	if a.prefix == "" {
		return path.Join(day, safeSegment(o.RequestID))
	}
	return path.Join(a.prefix, day, safeSegment(o.RequestID))
}

// safeSegment maps id onto [A-Za-z0-9_-] so it stays a single key element.
func safeSegment(id string) string {
	seg := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, id)
	if seg == "" {
		return "unknown"
	}
	return seg
}

// safeName keeps the last path element of a client-supplied filename.
func safeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "documento.pdf"
	}
	return name
}
