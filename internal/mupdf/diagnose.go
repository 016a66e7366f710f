package mupdf

import (
	"bytes"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const (
	pdfMIME = "application/pdf"
	// readers accept a header anywhere in the first KiB
	headerWindow = 1024
)

var pdfHeader = []byte("%PDF-")

// IsPDF sniffs the magic bytes of data, ignoring junk before the header.
func IsPDF(data []byte) bool {
	return mimetype.Detect(skipToHeader(data)).Is(pdfMIME)
}

// skipToHeader drops whatever precedes a "%PDF-" header found within the
// first KiB, such as a stray CRLF or BOM.
func skipToHeader(data []byte) []byte {
	window := data
	if len(window) > headerWindow {
		window = window[:headerWindow]
	}
	if i := bytes.Index(window, pdfHeader); i > 0 {
		return data[i:]
	}
	return data
}

// Diagnose explains why MuPDF refused a document. Uploads that are not PDFs at
// all are reported by their sniffed type; PDFs are handed to pdfcpu, whose
// structural errors are more specific than MuPDF's.
func Diagnose(data []byte) string {
	if len(data) == 0 {
		return "arquivo vazio"
	}
	data = skipToHeader(data)
	if m := mimetype.Detect(data); !m.Is(pdfMIME) {
		return fmt.Sprintf("arquivo não é um PDF (tipo detectado: %s)", m.String())
	}
	if _, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration()); err != nil {
		return fmt.Sprintf("PDF corrompido: %v", err)
	}
	return "PDF ilegível"
}
