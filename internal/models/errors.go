package models

import (
	"fmt"
	"strings"
)

// UnsupportedFormatError 文件扩展名不在支持列表中
type UnsupportedFormatError struct {
	Extension string
	Supported []string
}

func (e *UnsupportedFormatError) Error() string {
	ext := e.Extension
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Sprintf("unsupported file format %s, supported formats: %s", ext, strings.Join(e.Supported, ", "))
}

// ExtractionError wraps any failure while acquiring text from a document.
type ExtractionError struct {
	Path   string
	Format string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract text from %s (%s): %v", e.Path, e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError 包装文本提取错误
func NewExtractionError(path, format string, err error) *ExtractionError {
	return &ExtractionError{Path: path, Format: format, Err: err}
}
