//go:build ocr

package ocr

import (
	"context"
	"fmt"
	"image"

	"github.com/otiai10/gosseract/v2"

	"github.com/feichai0017/clinical-doc-processor/config"
	"github.com/feichai0017/clinical-doc-processor/pkg/logger"
)

type tesseractRecognizer struct {
	opts   config.OCRConfig
	logger logger.Logger
}

func newTesseract(opts config.OCRConfig, log logger.Logger) (Recognizer, error) {
	log.Info("Tesseract recognizer ready",
		logger.String("version", gosseract.Version()),
		logger.Strings("languages", opts.Languages),
	)
	return &tesseractRecognizer{opts: opts, logger: log}, nil
}

func (t *tesseractRecognizer) Name() string {
	return "tesseract"
}

// Recognize 每次调用创建新的 Tesseract 客户端
func (t *tesseractRecognizer) Recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if t.opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.opts.TessdataPrefix); err != nil {
			return "", fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(t.opts.Languages...); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	data, err := encodePNG(img)
	if err != nil {
		return "", err
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to get text: %w", err)
	}
	return text, nil
}

func (t *tesseractRecognizer) Close() error {
	return nil
}
