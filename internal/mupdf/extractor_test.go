package mupdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF writes a minimal single-font PDF with one page per entry. An empty
// entry produces a page with no text operators.
func buildPDF(pages ...string) []byte {
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	for i, text := range pages {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		content := ""
		if text != "" {
			content = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func TestExtractTextConcatenatesPagesInOrder(t *testing.T) {
	data := buildPDF("Prestador ACME Servicos", "Tomador Beta Comercio")

	text, err := NewExtractor().ExtractText(context.Background(), data)
	require.NoError(t, err)

	first := strings.Index(text, "Prestador ACME Servicos")
	second := strings.Index(text, "Tomador Beta Comercio")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first)
}

func TestExtractTextEmptyTextLayer(t *testing.T) {
	_, err := NewExtractor().ExtractText(context.Background(), buildPDF("", ""))
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestExtractTextRejectsNonPDF(t *testing.T) {
	_, err := NewExtractor().ExtractText(context.Background(), []byte("just some plain text, definitely not a pdf"))

	var extErr *ExtractionError
	require.True(t, errors.As(err, &extErr))
	assert.Contains(t, extErr.Detail, "não é um PDF")
	assert.ErrorIs(t, err, ErrNotPDF)
}

func TestExtractTextEmptyUpload(t *testing.T) {
	_, err := NewExtractor().ExtractText(context.Background(), nil)

	var extErr *ExtractionError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, "arquivo vazio", extErr.Detail)
}

func TestExtractTextSkipsBytesBeforeHeader(t *testing.T) {
	for _, junk := range []string{"\r\n", "\xef\xbb\xbf", "From: scanner@example.com\r\n\r\n"} {
		data := append([]byte(junk), buildPDF("Nota Fiscal de Servico")...)
		text, err := NewExtractor().ExtractText(context.Background(), data)
		require.NoError(t, err, "%q", junk)
		assert.Contains(t, text, "Nota Fiscal de Servico")
	}
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF(append([]byte("\r\n"), buildPDF("x")...)))
	assert.False(t, IsPDF(append(bytes.Repeat([]byte(" "), headerWindow), buildPDF("x")...)))
	assert.True(t, IsPDF(buildPDF("x")))
	assert.False(t, IsPDF([]byte("<html></html>")))
}

func TestProbe(t *testing.T) {
	require.NoError(t, Probe())
	assert.True(t, IsPDF([]byte(blankPage)))
}
