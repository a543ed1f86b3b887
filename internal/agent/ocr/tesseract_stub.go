//go:build !ocr

package ocr

import (
	"fmt"

	"github.com/feichai0017/clinical-doc-processor/config"
	"github.com/feichai0017/clinical-doc-processor/pkg/logger"
)

// Tesseract needs cgo and libtesseract; build with -tags ocr to enable it.
func newTesseract(opts config.OCRConfig, log logger.Logger) (Recognizer, error) {
	log.Warn("Tesseract support not compiled in, build with -tags ocr")
	return nil, fmt.Errorf("%w: built without the ocr tag", ErrUnavailable)
}
