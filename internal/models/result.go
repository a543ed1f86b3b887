package models

import (
	"time"
)

// ProcessingResult 单个文档的处理结果
type ProcessingResult struct {
	RunID            string            `json:"runId"`
	Path             string            `json:"path"`
	Format           string            `json:"format,omitempty"`
	Success          bool              `json:"success"`
	ExtractedText    string            `json:"extractedText"`
	PatientData      PatientFields     `json:"patientData"`
	ConfidenceScores map[Field]float64 `json:"confidenceScores"`
	ProcessingTime   time.Duration     `json:"processingTime"`
	ErrorMessage     string            `json:"errorMessage,omitempty"`
}

// NewFailedResult builds a failure result. Patient data and scores stay empty.
func NewFailedResult(runID, path string, err error, elapsed time.Duration) *ProcessingResult {
	msg := "unknown processing error"
	if err != nil {
		msg = err.Error()
	}
	return &ProcessingResult{
		RunID:            runID,
		Path:             path,
		Success:          false,
		ConfidenceScores: map[Field]float64{},
		ProcessingTime:   elapsed,
		ErrorMessage:     msg,
	}
}
