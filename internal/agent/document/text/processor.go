package text

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/feichai0017/clinical-doc-processor/internal/models"
	"github.com/feichai0017/clinical-doc-processor/pkg/logger"
)

var errInvalidUTF8 = errors.New("file is not valid UTF-8")

// Processor 读取纯文本文件
type Processor struct {
	logger logger.Logger
}

func NewProcessor(log logger.Logger) *Processor {
	return &Processor{logger: log}
}

func (p *Processor) CanProcess(format models.SupportedFormat) bool {
	return format.Type == models.Text
}

// Acquire returns the file content unchanged.
func (p *Processor) Acquire(ctx context.Context, path string, format models.SupportedFormat) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", models.NewExtractionError(path, string(format.Type), fmt.Errorf("failed to read file: %w", err))
	}
	if !utf8.Valid(data) {
		return "", models.NewExtractionError(path, string(format.Type), errInvalidUTF8)
	}

	p.logger.Debug("Text file read", logger.String("path", path), logger.Int("bytes", len(data)))
	return string(data), nil
}

func (p *Processor) Close() error {
	return nil
}
