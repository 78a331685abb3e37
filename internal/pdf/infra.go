package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	lpdf "github.com/ledongthuc/pdf"

	"github.com/Vovarama1992/paper2deck/internal/domain"
)

const pageSeparator = "\n\n"

// LedongthucExtractor reads the text layer in memory, no temp files.
type LedongthucExtractor struct{}

func NewLedongthucExtractor() *LedongthucExtractor {
	return &LedongthucExtractor{}
}

func (e *LedongthucExtractor) ExtractText(ctx context.Context, data []byte) (doc Document, err error) {
	if len(data) == 0 {
		return Document{}, domain.ExtractionError("PDF file is empty", nil)
	}

	// the parser panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			doc = Document{}
			err = domain.ExtractionError("PDF file could not be read", fmt.Errorf("panic: %v", r))
		}
	}()

	r, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Document{}, domain.ExtractionError("PDF file could not be read", err)
	}

	numPages := r.NumPage()
	if numPages == 0 {
		return Document{}, domain.ExtractionError("PDF file has no pages", nil)
	}

	var (
		sb      strings.Builder
		skipped int
	)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return Document{}, err
		}

		page := r.Page(i)
		if page.V.IsNull() {
			skipped++
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// one broken page should not sink the whole article
			skipped++
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(pageSeparator)
		}
		sb.WriteString(text)
	}

	if sb.Len() == 0 {
		return Document{}, domain.ExtractionError("no extractable text found; the PDF may be a scanned image", nil)
	}

	return Document{Text: sb.String(), PageCount: numPages, SkippedPages: skipped}, nil
}
