// Package pdftest builds small text PDFs for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

var fixedDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Build returns a PDF with one page per entry, each page showing its text
// in Helvetica. Text should be plain ASCII. It panics if gofpdf fails.
func Build(pages ...string) []byte {
	doc := gofpdf.New("P", "pt", "Letter", "")
	doc.SetCompression(false)
	doc.SetCreationDate(fixedDate)
	doc.SetFont("Helvetica", "", 12)

	for _, text := range pages {
		doc.AddPage()
		doc.Cell(0, 14, text)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		panic(fmt.Sprintf("pdftest: %v", err))
	}
	return buf.Bytes()
}
