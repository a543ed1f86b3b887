package converters

import (
	"errors"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/feichai0017/clinical-doc-processor/internal/models"
)

// DocumentConverter 定义文档转换器接口
type DocumentConverter interface {
	Convert(result *models.ProcessingResult) (*ProcessedDocument, error)
}

// ProcessedDocument 定义处理后的文档结构
type ProcessedDocument struct {
	RunID       string                   `json:"runId"`
	Status      string                   `json:"status"`
	Patient     models.PatientFields     `json:"patient"`
	Confidence  map[models.Field]float64 `json:"confidence"`
	Content     []ChunkContent           `json:"content,omitempty"`
	Metadata    DocumentMetadata         `json:"metadata"`
	Error       string                   `json:"error,omitempty"`
	ProcessedAt time.Time                `json:"processedAt"`
}

// ChunkContent 定义文档块内容
type ChunkContent struct {
	Text     string `json:"text"`
	Position int    `json:"position"`
	Type     string `json:"type"` // "page" 或 "text"
}

// DocumentMetadata 定义文档元数据
type DocumentMetadata struct {
	FileName     string  `json:"fileName"`
	FileType     string  `json:"fileType,omitempty"`
	PageCount    int     `json:"pageCount,omitempty"`
	Confidence   float64 `json:"confidence"`
	ProcessingMs int64   `json:"processingMs"`
}

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var _ DocumentConverter = (*JSONConverter)(nil)

var pageMarker = regexp.MustCompile(`--- Page (\d+) ---`)

// JSONConverter 实现文档转换器
type JSONConverter struct {
	now func() time.Time
}

func NewJSONConverter() *JSONConverter {
	return &JSONConverter{now: time.Now}
}

func (c *JSONConverter) Convert(result *models.ProcessingResult) (*ProcessedDocument, error) {
	if result == nil {
		return nil, errors.New("no result to convert")
	}

	doc := &ProcessedDocument{
		RunID:       result.RunID,
		Status:      StatusCompleted,
		Patient:     result.PatientData,
		Confidence:  result.ConfidenceScores,
		ProcessedAt: c.now(),
		Metadata: DocumentMetadata{
			FileName:     filepath.Base(result.Path),
			FileType:     result.Format,
			ProcessingMs: result.ProcessingTime.Milliseconds(),
		},
	}
	if doc.Confidence == nil {
		doc.Confidence = map[models.Field]float64{}
	}

	if !result.Success {
		doc.Status = StatusFailed
		doc.Error = result.ErrorMessage
		return doc, nil
	}

	doc.Content = splitPages(result.ExtractedText)
	for _, chunk := range doc.Content {
		if chunk.Type == "page" {
			doc.Metadata.PageCount++
		}
	}

	// 计算平均置信度
	if len(doc.Confidence) > 0 {
		var total float64
		for _, v := range doc.Confidence {
			total += v
		}
		doc.Metadata.Confidence = total / float64(len(doc.Confidence))
	}

	return doc, nil
}

// splitPages cuts text at page markers. Text without markers is one chunk.
func splitPages(text string) []ChunkContent {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	locs := pageMarker.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return []ChunkContent{{Text: text, Position: 1, Type: "text"}}
	}

	var chunks []ChunkContent
	if lead := strings.TrimSpace(text[:locs[0][0]]); lead != "" {
		chunks = append(chunks, ChunkContent{Text: lead, Position: 0, Type: "text"})
	}
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		page, _ := strconv.Atoi(text[loc[2]:loc[3]])
		chunks = append(chunks, ChunkContent{
			Text:     strings.TrimSpace(text[loc[1]:end]),
			Position: page,
			Type:     "page",
		})
	}
	return chunks
}
