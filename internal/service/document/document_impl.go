package document

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/feichai0017/clinical-doc-processor/config"
	"github.com/feichai0017/clinical-doc-processor/internal/agent"
	"github.com/feichai0017/clinical-doc-processor/internal/agent/document"
	"github.com/feichai0017/clinical-doc-processor/internal/agent/patient"
	"github.com/feichai0017/clinical-doc-processor/internal/models"
	"github.com/feichai0017/clinical-doc-processor/internal/utils/validator"
	"github.com/feichai0017/clinical-doc-processor/pkg/logger"
)

type DocumentService struct {
	acquirer  document.TextAcquirer
	validator *validator.DocumentValidator
	extractor *patient.Extractor
	scorer    *patient.Scorer
	logger    logger.Logger
	config    *ServiceConfig
}

type ServiceConfig struct {
	MaxFileSize    int64
	MaxConcurrent  int
	ExtendedFields bool
}

var _ Pipeline = (*DocumentService)(nil)

func NewService(acquirer document.TextAcquirer, log logger.Logger, cfg *ServiceConfig) *DocumentService {
	if cfg == nil {
		cfg = &ServiceConfig{
			MaxFileSize:   validator.DefaultMaxFileSize, // 16MB
			MaxConcurrent: 4,
		}
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}

	extractor := patient.NewExtractor(patient.WithExtendedFields(cfg.ExtendedFields))
	return &DocumentService{
		acquirer:  acquirer,
		validator: validator.NewDocumentValidator(log, &validator.ValidatorConfig{MaxFileSize: cfg.MaxFileSize}),
		extractor: extractor,
		scorer:    patient.NewScorer(extractor.Fields()),
		logger:    log,
		config:    cfg,
	}
}

// GetService wires the production acquirers from configuration.
func GetService(ctx context.Context, conf *config.Config, log logger.Logger) (*DocumentService, error) {
	// 初始化处理器工厂
	factory, err := agent.NewProcessorFactory(ctx, conf, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize processor factory: %w", err)
	}

	return NewService(factory, log, &ServiceConfig{
		MaxFileSize:    conf.MaxFileSize(),
		MaxConcurrent:  conf.Batch.MaxConcurrent,
		ExtendedFields: conf.Extraction.ExtendedFields,
	}), nil
}

// Process 处理单个文件
// Every error and panic below this point ends up in the returned result.
func (s *DocumentService) Process(ctx context.Context, path string) (result *models.ProcessingResult) {
	start := time.Now()
	runID := uuid.New().String()
	ctx = logger.WithPath(logger.WithRunID(ctx, runID), path)
	log := logger.FromContext(ctx, s.logger)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Document processing panicked",
				logger.Any("panic", r),
				logger.Stack(),
			)
			result = models.NewFailedResult(runID, path, fmt.Errorf("internal error: %v", r), time.Since(start))
		}
	}()

	log.Info("Starting document processing")

	result, err := s.process(ctx, log, path)
	elapsed := time.Since(start)
	if err != nil {
		log.Error("Document processing failed",
			logger.Error(err),
			logger.Duration("elapsed", elapsed),
		)
		return models.NewFailedResult(runID, path, err, elapsed)
	}

	result.RunID = runID
	result.ProcessingTime = elapsed
	log.Info("Document processing completed",
		logger.String("format", result.Format),
		logger.Int("resolvedFields", countResolved(result.ConfidenceScores)),
		logger.Duration("elapsed", elapsed),
	)
	return result
}

func (s *DocumentService) process(ctx context.Context, log logger.Logger, path string) (*models.ProcessingResult, error) {
	// 验证文件
	validation, err := s.validator.ValidateFile(path)
	if err != nil {
		return nil, err
	}
	if err := validation.Err(); err != nil {
		return nil, err
	}
	format := validation.FileInfo.Format
	log.Debug("File accepted",
		logger.String("type", string(format.Type)),
		logger.Int64("size", validation.FileInfo.Size),
		logger.String("sha256", validation.FileInfo.Hash),
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stage := time.Now()
	raw, err := s.acquirer.Acquire(ctx, path, format)
	if err != nil {
		return nil, err
	}
	log.Debug("Text acquired",
		logger.Int("chars", len(raw)),
		logger.Duration("elapsed", time.Since(stage)),
	)

	stage = time.Now()
	cleaned := patient.Clean(raw)
	fields := s.extractor.Extract(cleaned)
	fields.DateOfBirth = patient.NormalizeDate(fields.DateOfBirth)
	scores := s.scorer.Score(fields, cleaned)
	log.Debug("Patient fields inferred", logger.Duration("elapsed", time.Since(stage)))

	return &models.ProcessingResult{
		Path:             path,
		Format:           string(format.Type),
		Success:          true,
		ExtractedText:    cleaned,
		PatientData:      fields,
		ConfidenceScores: scores,
	}, nil
}

// ProcessBatch 批量处理文件
// Results are returned in input order; one failing file never stops the others.
func (s *DocumentService) ProcessBatch(ctx context.Context, paths []string) []*models.ProcessingResult {
	results := make([]*models.ProcessingResult, len(paths))

	var g errgroup.Group
	g.SetLimit(s.config.MaxConcurrent)
	for i, path := range paths {
		g.Go(func() error {
			results[i] = s.Process(ctx, path)
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("Batch processing completed",
		logger.Int("files", len(paths)),
		logger.Int("failed", countFailed(results)),
	)
	return results
}

// Close releases the acquirer when it holds resources.
func (s *DocumentService) Close() error {
	if c, ok := s.acquirer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func countResolved(scores map[models.Field]float64) int {
	n := 0
	for _, v := range scores {
		if v > 0 {
			n++
		}
	}
	return n
}

func countFailed(results []*models.ProcessingResult) int {
	n := 0
	for _, r := range results {
		if r == nil || !r.Success {
			n++
		}
	}
	return n
}
