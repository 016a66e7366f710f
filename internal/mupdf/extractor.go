package mupdf

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog/log"

	"github.com/local/nfsextract/internal/metrics"
)

var (
	// ErrEmptyText is returned when a document opens fine but carries no text layer.
	ErrEmptyText = errors.New("pdf has no extractable text")
	// ErrNotPDF is returned for uploads whose magic bytes are not a PDF header.
	ErrNotPDF = errors.New("content is not a pdf")
)

// ExtractionError means the bytes could not be read as a PDF document.
type ExtractionError struct {
	Detail string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Err.Error()
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Extractor pulls the text layer out of in-memory PDFs using go-fitz (MuPDF).
type Extractor struct{}

// NewExtractor creates a new go-fitz based extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractText returns the text of every page, concatenated in page order.
func (e *Extractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	// MuPDF also opens images, EPUB and plain text; only PDFs are accepted here.
	data = skipToHeader(data)
	if !IsPDF(data) {
		return "", &ExtractionError{Detail: Diagnose(data), Err: ErrNotPDF}
	}
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", &ExtractionError{Detail: Diagnose(data), Err: err}
	}
	defer doc.Close()

	pages := doc.NumPage()
	metrics.ObservePages(pages)
	log.Debug().Int("pages", pages).Int("bytes", len(data)).Msg("extracting text with go-fitz")

	var b strings.Builder
	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := doc.Text(i)
		if err != nil {
			return "", &ExtractionError{Detail: fmt.Sprintf("page %d", i+1), Err: err}
		}
		b.WriteString(text)
	}

	text := b.String()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	log.Debug().Int("pages", pages).Int("chars", len(text)).Msg("extracted text from PDF")
	return text, nil
}
