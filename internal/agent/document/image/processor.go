// internal/agent/document/image/processor.go
package image

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/image/tiff"

	"github.com/feichai0017/clinical-doc-processor/internal/agent/ocr"
	"github.com/feichai0017/clinical-doc-processor/internal/models"
	"github.com/feichai0017/clinical-doc-processor/pkg/logger"
)

// Processor 图像文档的文本获取器
type Processor struct {
	logger     logger.Logger
	pipeline   *Pipeline
	recognizer ocr.Recognizer
}

func NewProcessor(recognizer ocr.Recognizer, pipeline *Pipeline, log logger.Logger) (*Processor, error) {
	if recognizer == nil {
		return nil, fmt.Errorf("recognizer is required")
	}
	if pipeline == nil {
		pipeline = DefaultPipeline()
	}
	return &Processor{
		logger:     log,
		pipeline:   pipeline,
		recognizer: recognizer,
	}, nil
}

func (p *Processor) CanProcess(format models.SupportedFormat) bool {
	return format.Type == models.Image
}

// Acquire decodes, preprocesses and recognizes the image. The recognized
// text is returned as is.
func (p *Processor) Acquire(ctx context.Context, path string, format models.SupportedFormat) (string, error) {
	start := time.Now()

	img, err := DecodeFile(path, format)
	if err != nil {
		return "", models.NewExtractionError(path, string(format.Type), err)
	}

	processed, err := p.pipeline.Process(img)
	if err != nil {
		return "", models.NewExtractionError(path, string(format.Type), err)
	}

	text, err := p.recognizer.Recognize(ctx, processed)
	if err != nil {
		return "", models.NewExtractionError(path, string(format.Type), fmt.Errorf("%s: %w", p.recognizer.Name(), err))
	}

	b := img.Bounds()
	p.logger.Debug("Image recognized",
		logger.String("engine", p.recognizer.Name()),
		logger.Int("width", b.Dx()),
		logger.Int("height", b.Dy()),
		logger.Int("chars", len(text)),
		logger.Duration("elapsed", time.Since(start)),
	)
	return text, nil
}

// Close is a no-op; the recognizer belongs to whoever passed it in.
func (p *Processor) Close() error {
	return nil
}

// DecodeFile 读取并解码图像文件
func DecodeFile(path string, format models.SupportedFormat) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()
	return Decode(f, format)
}

// Decode uses the TIFF decoder for .tif/.tiff and imaging (with EXIF
// orientation) for everything else.
func Decode(r io.Reader, format models.SupportedFormat) (image.Image, error) {
	var (
		img image.Image
		err error
	)
	switch format.Extension {
	case ".tif", ".tiff":
		img, err = tiff.Decode(r)
	default:
		img, err = imaging.Decode(r, imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
