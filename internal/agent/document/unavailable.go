package document

import (
	"context"

	"github.com/feichai0017/clinical-doc-processor/internal/models"
)

const (
	OCRUnavailablePDF   = "OCR processing not available - unable to process PDF files"
	OCRUnavailableImage = "OCR processing not available - unable to process image files"
)

// UnavailableAcquirer stands in for OCR-backed acquirers when no recognition
// engine is available. It succeeds with a fixed notice instead of text.
type UnavailableAcquirer struct {
	fileType models.FileType
	message  string
}

func NewUnavailableAcquirer(fileType models.FileType) *UnavailableAcquirer {
	msg := OCRUnavailableImage
	if fileType == models.PDF {
		msg = OCRUnavailablePDF
	}
	return &UnavailableAcquirer{fileType: fileType, message: msg}
}

func (a *UnavailableAcquirer) CanProcess(format models.SupportedFormat) bool {
	return format.Type == a.fileType
}

func (a *UnavailableAcquirer) Acquire(ctx context.Context, path string, format models.SupportedFormat) (string, error) {
	return a.message, nil
}

func (a *UnavailableAcquirer) Close() error {
	return nil
}
