//go:build !ocr

package pdf

import (
	"fmt"

	"github.com/feichai0017/clinical-doc-processor/internal/agent/ocr"
)

// NewRasterizer needs MuPDF through cgo; build with -tags ocr to enable it.
func NewRasterizer() (Rasterizer, error) {
	return nil, fmt.Errorf("%w: pdf rasterizer built without the ocr tag", ocr.ErrUnavailable)
}
