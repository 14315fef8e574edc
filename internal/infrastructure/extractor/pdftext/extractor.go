// Package pdftext adapts a PDF reader into positioned page tokens. The
// PDF coordinate origin is bottom-left; tokens are flipped to top-left so
// every downstream y comparison reads top to bottom.
package pdftext

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/hushdesk/maraudit/internal/core/domain"
)

type Extractor struct{}

func New() *Extractor { return &Extractor{} }

func (e *Extractor) Extract(ctx context.Context, source string) ([]domain.PageTokens, error) {
	f, reader, err := pdf.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", source, err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages := make([]domain.PageTokens, 0, total)
	for num := 1; num <= total; num++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages = append(pages, extractPage(reader.Page(num), num-1))
	}
	return pages, nil
}

func extractPage(page pdf.Page, index int) domain.PageTokens {
	out := domain.PageTokens{Index: index}
	if page.V.IsNull() {
		return out
	}

	mediaBox := page.V.Key("MediaBox")
	out.Width = mediaBox.Index(2).Float64() - mediaBox.Index(0).Float64()
	out.Height = mediaBox.Index(3).Float64() - mediaBox.Index(1).Float64()

	content := page.Content()
	out.Tokens = make([]domain.Token, 0, len(content.Text))
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		height := t.FontSize
		if height <= 0 {
			height = 10
		}
		out.Tokens = append(out.Tokens, domain.Token{
			Text: t.S,
			Page: index,
			Box: domain.Rect{
				X0: t.X,
				Y0: out.Height - t.Y - height,
				X1: t.X + t.W,
				Y1: out.Height - t.Y,
			},
		})
	}
	return out
}
