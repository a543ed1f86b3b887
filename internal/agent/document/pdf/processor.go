package pdf

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	imgdoc "github.com/feichai0017/clinical-doc-processor/internal/agent/document/image"
	"github.com/feichai0017/clinical-doc-processor/internal/agent/ocr"
	"github.com/feichai0017/clinical-doc-processor/internal/models"
	"github.com/feichai0017/clinical-doc-processor/pkg/logger"
)

const DefaultDPI = 300

var disableConfigDir sync.Once

// Options PDF 处理选项
type Options struct {
	DPI             float64
	MaxPages        int
	PreferTextLayer bool
}

// Processor renders each page, preprocesses it and runs recognition on it.
type Processor struct {
	logger     logger.Logger
	rasterizer Rasterizer
	recognizer ocr.Recognizer
	pipeline   *imgdoc.Pipeline
	opts       Options
}

func NewProcessor(rasterizer Rasterizer, recognizer ocr.Recognizer, pipeline *imgdoc.Pipeline, opts Options, log logger.Logger) (*Processor, error) {
	if rasterizer == nil || recognizer == nil {
		return nil, fmt.Errorf("rasterizer and recognizer are required")
	}
	if pipeline == nil {
		pipeline = imgdoc.DefaultPipeline()
	}
	if opts.DPI <= 0 {
		opts.DPI = DefaultDPI
	}
	// pdfcpu would otherwise create its config dir under the user's home
	disableConfigDir.Do(api.DisableConfigDir)

	return &Processor{
		logger:     log,
		rasterizer: rasterizer,
		recognizer: recognizer,
		pipeline:   pipeline,
		opts:       opts,
	}, nil
}

func (p *Processor) CanProcess(format models.SupportedFormat) bool {
	return format.Type == models.PDF
}

func (p *Processor) Acquire(ctx context.Context, path string, format models.SupportedFormat) (string, error) {
	fail := func(err error) (string, error) {
		return "", models.NewExtractionError(path, string(format.Type), err)
	}

	pageCount, err := p.inspect(path)
	if err != nil {
		return fail(err)
	}

	if p.opts.PreferTextLayer {
		text, err := ReadTextLayer(path)
		switch {
		case err != nil:
			p.logger.Warn("Text layer unreadable, falling back to OCR", logger.String("path", path), logger.Error(err))
		case strings.TrimSpace(text) != "":
			p.logger.Debug("Using embedded text layer", logger.String("path", path), logger.Int("pages", pageCount))
			return text, nil
		}
	}

	var pages pageWriter
	err = p.rasterizer.RenderPages(ctx, path, p.opts.DPI, func(page int, img image.Image) error {
		start := time.Now()
		processed, err := p.pipeline.Process(img)
		if err != nil {
			return fmt.Errorf("page %d: %w", page, err)
		}
		text, err := p.recognizer.Recognize(ctx, processed)
		if err != nil {
			return fmt.Errorf("page %d: %s: %w", page, p.recognizer.Name(), err)
		}
		pages.add(page, text)

		p.logger.Debug("Page recognized",
			logger.Int("page", page),
			logger.Int("chars", len(text)),
			logger.Duration("elapsed", time.Since(start)),
		)
		return nil
	})
	if err != nil {
		return fail(err)
	}
	return pages.String(), nil
}

// inspect validates the file structure and enforces the page limit.
func (p *Processor) inspect(path string) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(path, conf); err != nil {
		return 0, fmt.Errorf("invalid PDF: %w", err)
	}

	pageCount, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	if p.opts.MaxPages > 0 && pageCount > p.opts.MaxPages {
		return 0, fmt.Errorf("PDF has %d pages, limit is %d", pageCount, p.opts.MaxPages)
	}
	return pageCount, nil
}

// Close is a no-op; rasterizer and recognizer are shared and closed by their owner.
func (p *Processor) Close() error {
	return nil
}
