package mupdf

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// blankPage is a one-page PDF with no content stream.
const blankPage = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 72 72] >>\nendobj\nxref\n0 4\n0000000000 65535 f \n0000000009 00000 n \n0000000058 00000 n \n0000000115 00000 n \ntrailer\n<< /Size 4 /Root 1 0 R >>\nstartxref\n184\n%%EOF\n"

// Probe opens a built-in document to confirm the linked MuPDF works.
func Probe() error {
	doc, err := fitz.NewFromMemory([]byte(blankPage))
	if err != nil {
		return err
	}
	defer doc.Close()
	if n := doc.NumPage(); n != 1 {
		return fmt.Errorf("probe document reports %d pages", n)
	}
	return nil
}
