package usecase

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"cv-generator/internal/domain"

	"go.uber.org/zap"
)

// Renderer rasterizes print HTML into a PDF.
type Renderer interface {
	RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

// DocumentRenderer turns a document into text or print HTML.
type DocumentRenderer interface {
	RenderText(doc *domain.Document, format string) (string, error)
	RenderHTML(doc *domain.Document) (string, error)
}

type GeneratorOptions struct {
	Attempts int
	Backoff  time.Duration
}

// Generator runs the render half of the pipeline: dedup, optional selection,
// then text or PDF output.
type Generator struct {
	docs     DocumentRenderer
	renderer Renderer
	opts     GeneratorOptions
	log      *zap.Logger
}

func NewGenerator(docs DocumentRenderer, r Renderer, opts GeneratorOptions, log *zap.Logger) *Generator {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	return &Generator{docs: docs, renderer: r, opts: opts, log: log}
}

// Prepare dedups otros and, when sel is non-nil, applies the selection.
func (g *Generator) Prepare(doc *domain.Document, sel *domain.Selection) *domain.Document {
	out := DedupOtros(doc)
	if sel != nil {
		out = Filter(out, *sel)
	}
	return out
}

func (g *Generator) RenderText(doc *domain.Document, format string) (string, error) {
	return g.docs.RenderText(doc, format)
}

// RenderPDF renders print HTML and rasterizes it, retrying with exponential
// backoff. It returns PdfGenerationFailed rather than a partial file.
func (g *Generator) RenderPDF(ctx context.Context, doc *domain.Document) ([]byte, error) {
	if g.renderer == nil {
		return nil, fmt.Errorf("%w: no rasterizer configured", domain.ErrPDFGeneration)
	}
	html, err := g.docs.RenderHTML(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: render html: %v", domain.ErrPDFGeneration, err)
	}

	var renderErr error
	for i := 0; i < g.opts.Attempts; i++ {
		var pdfBytes []byte
		pdfBytes, renderErr = g.renderer.RenderHTMLToPDF(ctx, html)
		if renderErr == nil {
			if bytes.HasPrefix(pdfBytes, []byte("%PDF")) {
				g.log.Info("pdf rendered", zap.Int("bytes", len(pdfBytes)), zap.Int("attempt", i+1))
				return pdfBytes, nil
			}
			renderErr = fmt.Errorf("invalid PDF output (len=%d)", len(pdfBytes))
		}
		g.log.Warn("pdf render attempt failed", zap.Int("attempt", i+1), zap.Error(renderErr))
		if i < g.opts.Attempts-1 {
			backoff := g.opts.Backoff * time.Duration(1<<i)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", domain.ErrPDFGeneration, ctx.Err())
			}
		}
	}
	g.log.Error("pdf rendering failed", zap.Int("attempts", g.opts.Attempts), zap.Error(renderErr))
	return nil, fmt.Errorf("%w: %v", domain.ErrPDFGeneration, renderErr)
}
