// internal/utils/validator/document.go
package validator

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/feichai0017/clinical-doc-processor/internal/models"
	"github.com/feichai0017/clinical-doc-processor/pkg/logger"
)

const DefaultMaxFileSize = 16 * 1024 * 1024

const (
	CodeInvalidFileType = "INVALID_FILE_TYPE"
	CodeFileNotFound    = "FILE_NOT_FOUND"
	CodeNotRegularFile  = "NOT_A_FILE"
	CodeFileTooLarge    = "FILE_TOO_LARGE"
)

// DocumentValidator 文档验证器
type DocumentValidator struct {
	logger logger.Logger
	config *ValidatorConfig
}

// ValidatorConfig 验证器配置
type ValidatorConfig struct {
	MaxFileSize int64 // 最大文件大小（字节）
}

// ValidationResult 验证结果
type ValidationResult struct {
	IsValid  bool              `json:"isValid"`
	Errors   []ValidationError `json:"errors,omitempty"`
	FileInfo FileInfo          `json:"fileInfo"`
}

// ValidationError 验证错误
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// FileInfo 文件信息
type FileInfo struct {
	Filename  string                 `json:"filename"`
	Path      string                 `json:"path"`
	Size      int64                  `json:"size"`
	MimeType  string                 `json:"mimeType,omitempty"`
	Extension string                 `json:"extension"`
	Hash      string                 `json:"hash,omitempty"`
	Format    models.SupportedFormat `json:"format"`
}

// NewDocumentValidator 创建新的文档验证器
func NewDocumentValidator(log logger.Logger, config *ValidatorConfig) *DocumentValidator {
	if config == nil {
		config = &ValidatorConfig{}
	}
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = DefaultMaxFileSize // 16MB
	}
	return &DocumentValidator{
		logger: log,
		config: config,
	}
}

// ValidateFile checks extension, existence and size of the file at path.
// Rule violations are reported in the result; the returned error is reserved
// for I/O failures while reading a file that passed every rule.
func (v *DocumentValidator) ValidateFile(path string) (*ValidationResult, error) {
	ext := strings.ToLower(filepath.Ext(path))
	result := &ValidationResult{
		IsValid: true,
		Errors:  make([]ValidationError, 0),
		FileInfo: FileInfo{
			Filename:  filepath.Base(path),
			Path:      path,
			Extension: ext,
		},
	}

	// 检查文件扩展名
	format, err := models.FormatForPath(path)
	if err != nil {
		result.fail(CodeInvalidFileType, err.Error(), "extension")
		return result, nil
	}
	result.FileInfo.Format = format

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		result.fail(CodeFileNotFound, fmt.Sprintf("File not found: %s", path), "path")
		return result, nil
	case err != nil:
		return nil, models.NewExtractionError(path, string(format.Type), fmt.Errorf("failed to stat file: %w", err))
	case !info.Mode().IsRegular():
		result.fail(CodeNotRegularFile, fmt.Sprintf("Not a regular file: %s", path), "path")
		return result, nil
	}
	result.FileInfo.Size = info.Size()

	// 检查文件大小
	if info.Size() > v.config.MaxFileSize {
		result.fail(CodeFileTooLarge, fmt.Sprintf("File size exceeds maximum limit of %d bytes", v.config.MaxFileSize), "size")
		return result, nil
	}

	if err := v.inspectContent(path, &result.FileInfo); err != nil {
		return nil, models.NewExtractionError(path, string(format.Type), err)
	}
	return result, nil
}

// Err converts a failed result into an error. An unknown extension becomes
// *models.UnsupportedFormatError, a missing or non-regular file becomes
// *models.ExtractionError.
func (r *ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		switch e.Code {
		case CodeInvalidFileType:
			return &models.UnsupportedFormatError{
				Extension: r.FileInfo.Extension,
				Supported: models.SupportedExtensions(),
			}
		case CodeFileNotFound:
			return r.extractionError(fmt.Errorf("%s: %w", e.Message, fs.ErrNotExist))
		case CodeNotRegularFile:
			return r.extractionError(errors.New(e.Message))
		}
		msgs = append(msgs, e.Message)
	}
	return errors.New(strings.Join(msgs, "; "))
}

func (r *ValidationResult) extractionError(err error) error {
	return models.NewExtractionError(r.FileInfo.Path, string(r.FileInfo.Format.Type), err)
}

func (r *ValidationResult) fail(code, message, field string) {
	r.IsValid = false
	r.Errors = append(r.Errors, ValidationError{Code: code, Message: message, Field: field})
}

// inspectContent fills the hash and sniffed MIME type. Both are informational.
func (v *DocumentValidator) inspectContent(path string, info *FileInfo) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	// 读取文件头部
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("failed to read file: %w", err)
	}
	info.MimeType = http.DetectContentType(head[:n])

	// 计算文件哈希
	hash := sha256.New()
	hash.Write(head[:n])
	if _, err := io.Copy(hash, f); err != nil {
		return fmt.Errorf("failed to calculate hash: %w", err)
	}
	info.Hash = hex.EncodeToString(hash.Sum(nil))

	v.logger.Debug("File validated",
		logger.String("path", path),
		logger.Int64("size", info.Size),
		logger.String("mimeType", info.MimeType),
	)
	return nil
}
