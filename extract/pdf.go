package extract

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/groundwork/pdf"
)

// PageTexter returns the text layer of each page.
type PageTexter interface {
	Pages(data []byte) ([]string, error)
}

// PDF extracts text from PDF documents, falling back to OCR when the text
// layer is missing or degenerate.
type PDF struct {
	downloader Downloader
	text       PageTexter
	rasterizer pdf.Rasterizer
	recognizer pdf.Recognizer
	logger     *slog.Logger
}

// PDFOption configures a PDF extractor.
type PDFOption func(*PDF)

// WithPageTexter replaces the text layer reader.
func WithPageTexter(t PageTexter) PDFOption {
	return func(p *PDF) {
		p.text = t
	}
}

// WithRasterizer replaces the page renderer used for OCR.
func WithRasterizer(r pdf.Rasterizer) PDFOption {
	return func(p *PDF) {
		p.rasterizer = r
	}
}

// WithRecognizer replaces the OCR engine.
func WithRecognizer(r pdf.Recognizer) PDFOption {
	return func(p *PDF) {
		p.recognizer = r
	}
}

// NewPDF creates a PDF extractor. By default pages are rendered with
// MuPDF, falling back to embedded page images, and read with Tesseract.
func NewPDF(d Downloader, opts ...PDFOption) *PDF {
	p := &PDF{
		downloader: d,
		text:       pdf.NewTextLayer(),
		rasterizer: pdf.Chain{pdf.NewFitzRasterizer(), pdf.NewImageRasterizer()},
		recognizer: pdf.NewTesseract(),
		logger:     slog.Default().With("component", "extract-pdf"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *PDF) Extract(ctx context.Context, url string) string {
	resp, err := p.downloader.Download(ctx, url)
	if err != nil {
		p.logger.Debug("download failed", "url", url, "err", err)
		return ""
	}
	return p.ExtractBytes(ctx, resp.Body)
}

// ExtractBytes extracts text from a PDF payload. Text-layer pages are
// joined with blank lines; OCR pages with single newlines.
func (p *PDF) ExtractBytes(ctx context.Context, data []byte) string {
	pages, err := p.text.Pages(data)
	if err != nil {
		p.logger.Debug("text layer extraction failed", "err", err)
	}
	direct := joinPages(pages, "\n\n")
	switch {
	case direct == "":
		p.logger.Debug("text layer empty, falling back to ocr")
	case IsDegenerate(direct):
		p.logger.Debug("text layer degenerate, falling back to ocr", "ratio", RepetitionRatio(direct))
	default:
		return direct
	}

	return p.ocr(ctx, data)
}

func (p *PDF) ocr(ctx context.Context, data []byte) string {
	images, err := p.rasterizer.Rasterize(data)
	if err != nil {
		p.logger.Debug("rasterize failed", "err", err)
		return ""
	}
	texts := make([]string, 0, len(images))
	for i, img := range images {
		if ctx.Err() != nil {
			return ""
		}
		if img == nil {
			continue
		}
		text, err := p.recognizer.Recognize(img)
		if err != nil {
			p.logger.Debug("ocr failed", "page", i+1, "err", err)
			continue
		}
		texts = append(texts, text)
	}
	return joinPages(texts, "\n")
}

// joinPages collapses whitespace within each page, drops empty pages and
// joins the rest with sep.
func joinPages(pages []string, sep string) string {
	kept := make([]string, 0, len(pages))
	for _, page := range pages {
		if cleaned := strings.TrimSpace(whitespace.ReplaceAllString(page, " ")); cleaned != "" {
			kept = append(kept, cleaned)
		}
	}
	return strings.Join(kept, sep)
}
