package models

import (
	"path/filepath"
	"sort"
	"strings"
)

// FileType 文件类型
type FileType string

const (
	PDF      FileType = "pdf"
	Image    FileType = "image"
	Document FileType = "document"
	Text     FileType = "text"
)

// Preprocessing names the acquisition strategy used for a format.
type Preprocessing string

const (
	PreprocessPDFToImage       Preprocessing = "pdf_to_image"
	PreprocessImageEnhancement Preprocessing = "image_enhancement"
	PreprocessTextExtraction   Preprocessing = "text_extraction"
	PreprocessTextRead         Preprocessing = "text_read"
)

// SupportedFormat 支持的文件格式信息
type SupportedFormat struct {
	Extension     string        `json:"extension" yaml:"extension"`
	Type          FileType      `json:"type" yaml:"type"`
	Description   string        `json:"description" yaml:"description"`
	Supported     bool          `json:"supported" yaml:"supported"`
	OCRRequired   bool          `json:"ocrRequired" yaml:"ocrRequired"`
	Preprocessing Preprocessing `json:"preprocessing" yaml:"preprocessing"`
}

var supportedFormats = map[string]SupportedFormat{
	".pdf":  {Extension: ".pdf", Type: PDF, Description: "Portable Document Format", Supported: true, OCRRequired: true, Preprocessing: PreprocessPDFToImage},
	".png":  {Extension: ".png", Type: Image, Description: "Portable Network Graphics", Supported: true, OCRRequired: true, Preprocessing: PreprocessImageEnhancement},
	".jpg":  {Extension: ".jpg", Type: Image, Description: "JPEG Image", Supported: true, OCRRequired: true, Preprocessing: PreprocessImageEnhancement},
	".jpeg": {Extension: ".jpeg", Type: Image, Description: "JPEG Image", Supported: true, OCRRequired: true, Preprocessing: PreprocessImageEnhancement},
	".tiff": {Extension: ".tiff", Type: Image, Description: "Tagged Image File Format", Supported: true, OCRRequired: true, Preprocessing: PreprocessImageEnhancement},
	".tif":  {Extension: ".tif", Type: Image, Description: "Tagged Image File Format", Supported: true, OCRRequired: true, Preprocessing: PreprocessImageEnhancement},
	".docx": {Extension: ".docx", Type: Document, Description: "Microsoft Word Document", Supported: true, OCRRequired: false, Preprocessing: PreprocessTextExtraction},
	".txt":  {Extension: ".txt", Type: Text, Description: "Plain Text", Supported: true, OCRRequired: false, Preprocessing: PreprocessTextRead},
}

// LookupFormat returns the format registered for an extension (case-insensitive, with or without the dot).
func LookupFormat(ext string) (SupportedFormat, bool) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	f, ok := supportedFormats[ext]
	if !ok || !f.Supported {
		return SupportedFormat{}, false
	}
	return f, true
}

// FormatForPath resolves the format of a file from its extension.
func FormatForPath(path string) (SupportedFormat, error) {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := LookupFormat(ext)
	if !ok {
		return SupportedFormat{}, &UnsupportedFormatError{Extension: ext, Supported: SupportedExtensions()}
	}
	return f, nil
}

// SupportedExtensions 返回排序后的扩展名列表
func SupportedExtensions() []string {
	exts := make([]string, 0, len(supportedFormats))
	for ext, f := range supportedFormats {
		if f.Supported {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}

// SupportedFormats returns the format table ordered by extension.
func SupportedFormats() []SupportedFormat {
	exts := SupportedExtensions()
	out := make([]SupportedFormat, 0, len(exts))
	for _, ext := range exts {
		out = append(out, supportedFormats[ext])
	}
	return out
}
