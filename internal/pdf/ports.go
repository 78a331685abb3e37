package pdf

import "context"

// Document is the text layer of a PDF, pages joined in physical order.
type Document struct {
	Text      string
	PageCount int
	// SkippedPages counts pages whose text could not be decoded.
	SkippedPages int
}

type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (Document, error)
}
