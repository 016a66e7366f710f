package orchestrator

import "context"

// TextExtractor returns the page-ordered text layer of an in-memory PDF.
// *mupdf.Extractor is the production implementation.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}
