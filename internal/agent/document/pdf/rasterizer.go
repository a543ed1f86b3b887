package pdf

import (
	"context"
	"image"
)

// PageVisitor receives each rendered page in order, numbered from 1.
type PageVisitor func(page int, img image.Image) error

// Rasterizer 将 PDF 页面渲染为位图
type Rasterizer interface {
	RenderPages(ctx context.Context, path string, dpi float64, visit PageVisitor) error
	Close() error
}
