package agent

import (
	"context"
	"errors"
	"fmt"

	cfg "github.com/feichai0017/clinical-doc-processor/config"
	"github.com/feichai0017/clinical-doc-processor/internal/agent/document"
	"github.com/feichai0017/clinical-doc-processor/internal/agent/document/docx"
	"github.com/feichai0017/clinical-doc-processor/internal/agent/document/image"
	"github.com/feichai0017/clinical-doc-processor/internal/agent/document/pdf"
	"github.com/feichai0017/clinical-doc-processor/internal/agent/document/text"
	"github.com/feichai0017/clinical-doc-processor/internal/agent/ocr"
	"github.com/feichai0017/clinical-doc-processor/internal/models"
	"github.com/feichai0017/clinical-doc-processor/pkg/logger"
)

// Engines are the OCR collaborators. A nil field means the capability is
// not available in this process.
type Engines struct {
	Recognizer ocr.Recognizer
	Rasterizer pdf.Rasterizer
}

// ProcessorFactory 按文件类型分发到对应的文本获取器
// The factory owns the engines and closes each of them once.
type ProcessorFactory struct {
	processors map[models.FileType]document.Acquirer
	engines    Engines
	logger     logger.Logger
}

var _ document.TextAcquirer = (*ProcessorFactory)(nil)

// NewProcessorFactory probes the configured OCR engine and the PDF rasterizer,
// then registers one acquirer per file type. Missing OCR capability is not an
// error: PDF and image files get a fixed notice instead of text.
func NewProcessorFactory(ctx context.Context, conf *cfg.Config, log logger.Logger) (*ProcessorFactory, error) {
	var engines Engines

	recognizer, err := ocr.New(ctx, conf, log)
	switch {
	case err == nil:
		engines.Recognizer = recognizer
	case errors.Is(err, ocr.ErrUnavailable):
		log.Warn("OCR engine not available", logger.String("engine", conf.OCR.Engine), logger.Error(err))
	default:
		return nil, fmt.Errorf("failed to create OCR engine: %w", err)
	}

	if engines.Recognizer != nil {
		rasterizer, err := pdf.NewRasterizer()
		switch {
		case err == nil:
			engines.Rasterizer = rasterizer
		case errors.Is(err, ocr.ErrUnavailable):
			log.Warn("PDF rasterizer not available", logger.Error(err))
		default:
			return nil, fmt.Errorf("failed to create PDF rasterizer: %w", err)
		}
	}

	return NewProcessorFactoryWithEngines(conf, engines, log)
}

// NewProcessorFactoryWithEngines builds the factory around already constructed engines.
func NewProcessorFactoryWithEngines(conf *cfg.Config, engines Engines, log logger.Logger) (*ProcessorFactory, error) {
	factory := &ProcessorFactory{
		processors: make(map[models.FileType]document.Acquirer),
		engines:    engines,
		logger:     log,
	}

	factory.processors[models.Text] = text.NewProcessor(log)
	factory.processors[models.Document] = docx.NewProcessor(log)

	// 初始化图像处理器
	if engines.Recognizer != nil {
		imageProcessor, err := image.NewProcessor(engines.Recognizer, image.DefaultPipeline(), log)
		if err != nil {
			return nil, fmt.Errorf("failed to create image processor: %w", err)
		}
		factory.processors[models.Image] = imageProcessor
	} else {
		factory.processors[models.Image] = document.NewUnavailableAcquirer(models.Image)
	}

	// 初始化 PDF 处理器
	if engines.Recognizer != nil && engines.Rasterizer != nil {
		pdfProcessor, err := pdf.NewProcessor(engines.Rasterizer, engines.Recognizer, image.DefaultPipeline(), pdf.Options{
			DPI:             conf.OCR.DPI,
			MaxPages:        conf.PDF.MaxPages,
			PreferTextLayer: conf.PDF.PreferTextLayer,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create pdf processor: %w", err)
		}
		factory.processors[models.PDF] = pdfProcessor
	} else {
		factory.processors[models.PDF] = document.NewUnavailableAcquirer(models.PDF)
	}

	recognizerName := "none"
	if engines.Recognizer != nil {
		recognizerName = engines.Recognizer.Name()
	}
	log.Info("Processor factory ready",
		logger.String("recognizer", recognizerName),
		logger.Bool("pdfRasterizer", engines.Rasterizer != nil),
	)
	return factory, nil
}

// GetProcessor returns the acquirer registered for the format.
func (f *ProcessorFactory) GetProcessor(format models.SupportedFormat) (document.Acquirer, error) {
	processor, ok := f.processors[format.Type]
	if !ok || !format.Supported || !processor.CanProcess(format) {
		f.logger.Error("No processor found",
			logger.String("extension", format.Extension),
			logger.String("fileType", string(format.Type)),
		)
		return nil, &models.UnsupportedFormatError{
			Extension: format.Extension,
			Supported: models.SupportedExtensions(),
		}
	}
	return processor, nil
}

// Acquire dispatches to the acquirer for format.
func (f *ProcessorFactory) Acquire(ctx context.Context, path string, format models.SupportedFormat) (string, error) {
	processor, err := f.GetProcessor(format)
	if err != nil {
		return "", err
	}
	return processor.Acquire(ctx, path, format)
}

// Close releases every registered acquirer, then the shared engines.
func (f *ProcessorFactory) Close() error {
	var errs []error
	for fileType, p := range f.processors {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s processor: %w", fileType, err))
		}
	}
	if f.engines.Rasterizer != nil {
		if err := f.engines.Rasterizer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pdf rasterizer: %w", err))
		}
	}
	if f.engines.Recognizer != nil {
		if err := f.engines.Recognizer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s recognizer: %w", f.engines.Recognizer.Name(), err))
		}
	}
	f.engines = Engines{}
	return errors.Join(errs...)
}
