package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/feichai0017/clinical-doc-processor/config"
	"github.com/feichai0017/clinical-doc-processor/pkg/logger"
)

// ErrUnavailable means no recognition engine can be used in this process.
var ErrUnavailable = errors.New("ocr engine not available")

// Recognizer 光学字符识别能力
// Implementations receive an already preprocessed bitmap and treat it as a
// single uniform block of text.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
	Name() string
	Close() error
}

// New 根据配置选择识别引擎
// It returns an error wrapping ErrUnavailable when the configured engine
// cannot run in this build or was disabled.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (Recognizer, error) {
	switch cfg.OCR.Engine {
	case config.EngineNone:
		return nil, fmt.Errorf("%w: disabled by configuration", ErrUnavailable)
	case config.EngineTextract:
		rec, err := NewTextractRecognizer(ctx, &cfg.Textract, log)
		if err != nil {
			return nil, err
		}
		return rec, nil
	default:
		return newTesseract(cfg.OCR, log)
	}
}

// encodePNG serializes img losslessly for engines that take encoded bytes.
func encodePNG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, errors.New("input image is nil")
	}
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
