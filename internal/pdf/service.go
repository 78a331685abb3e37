package pdf

import (
	"context"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

type PDFService struct {
	ext TextExtractor
	log *zap.SugaredLogger
}

func NewPDFService(ext TextExtractor, log *zap.SugaredLogger) *PDFService {
	return &PDFService{ext: ext, log: log}
}

func (s *PDFService) Extract(ctx context.Context, data []byte) (Document, error) {
	s.log.Debugw("[pdf] extracting", "size", humanize.Bytes(uint64(len(data))))

	doc, err := s.ext.ExtractText(ctx, data)
	if err != nil {
		s.log.Warnw("[pdf] extraction failed", "error", err)
		return Document{}, err
	}

	if doc.SkippedPages > 0 {
		s.log.Warnw("[pdf] skipped undecodable pages", "skipped", doc.SkippedPages, "pages", doc.PageCount)
	}
	s.log.Infow("[pdf] extracted", "pages", doc.PageCount, "chars", len(doc.Text))
	return doc, nil
}
