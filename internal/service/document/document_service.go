package document

import (
	"context"

	"github.com/feichai0017/clinical-doc-processor/internal/models"
)

// Pipeline turns document files into patient field results.
// Neither method returns an error: failures are reported through
// ProcessingResult.Success and ErrorMessage.
type Pipeline interface {
	Process(ctx context.Context, path string) *models.ProcessingResult
	ProcessBatch(ctx context.Context, paths []string) []*models.ProcessingResult
}
