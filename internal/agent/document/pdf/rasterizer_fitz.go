//go:build ocr

package pdf

import (
	"context"
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// fitzRasterizer renders pages with MuPDF.
type fitzRasterizer struct{}

// NewRasterizer returns the MuPDF-backed rasterizer.
func NewRasterizer() (Rasterizer, error) {
	return &fitzRasterizer{}, nil
}

func (r *fitzRasterizer) RenderPages(ctx context.Context, path string, dpi float64, visit PageVisitor) error {
	doc, err := fitz.New(path)
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	for n := 0; n < doc.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := doc.ImageDPI(n, dpi)
		if err != nil {
			return fmt.Errorf("failed to render page %d: %w", n+1, err)
		}
		if err := visit(n+1, img); err != nil {
			return err
		}
	}
	return nil
}

func (r *fitzRasterizer) Close() error {
	return nil
}
