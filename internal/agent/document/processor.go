package document

import (
	"context"

	"github.com/feichai0017/clinical-doc-processor/internal/models"
)

// TextAcquirer 将文档转换为原始文本
// Failures are *models.UnsupportedFormatError or *models.ExtractionError.
type TextAcquirer interface {
	Acquire(ctx context.Context, path string, format models.SupportedFormat) (string, error)
}

// Acquirer is a TextAcquirer bound to one family of formats.
type Acquirer interface {
	TextAcquirer

	// CanProcess 检查是否可以处理指定格式
	CanProcess(format models.SupportedFormat) bool

	// Close 清理资源
	Close() error
}
