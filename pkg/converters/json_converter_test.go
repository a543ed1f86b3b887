package converters

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/clinical-doc-processor/internal/models"
)

func fixedConverter() *JSONConverter {
	return &JSONConverter{now: func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }}
}

func TestConvertPagedResult(t *testing.T) {
	result := &models.ProcessingResult{
		RunID:         "run-1",
		Path:          "/data/scans/intake.pdf",
		Format:        "pdf",
		Success:       true,
		ExtractedText: "--- Page 1 --- Patient Name: Emily Chen --- Page 3 --- DOB: 12/08/1992",
		PatientData:   models.PatientFields{FirstName: "Emily", LastName: "Chen", DateOfBirth: "12/08/1992"},
		ConfidenceScores: map[models.Field]float64{
			models.FieldFirstName:   0.9,
			models.FieldLastName:    0.9,
			models.FieldDateOfBirth: 0.9,
		},
		ProcessingTime: 1500 * time.Millisecond,
	}

	doc, err := fixedConverter().Convert(result)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, doc.Status)
	assert.Equal(t, "intake.pdf", doc.Metadata.FileName)
	assert.Equal(t, 2, doc.Metadata.PageCount)
	assert.Equal(t, int64(1500), doc.Metadata.ProcessingMs)
	assert.InDelta(t, 0.9, doc.Metadata.Confidence, 1e-9)
	assert.Equal(t, []ChunkContent{
		{Text: "Patient Name: Emily Chen", Position: 1, Type: "page"},
		{Text: "DOB: 12/08/1992", Position: 3, Type: "page"},
	}, doc.Content)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"first_name":"Emily"`)
	assert.Contains(t, string(data), `"processedAt":"2024-03-01T12:00:00Z"`)
}

func TestConvertFailedResult(t *testing.T) {
	failed := models.NewFailedResult("run-2", "setup.exe", errors.New("unsupported file format .exe"), time.Millisecond)

	doc, err := fixedConverter().Convert(failed)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, doc.Status)
	assert.Equal(t, "unsupported file format .exe", doc.Error)
	assert.Empty(t, doc.Content)
	assert.Empty(t, doc.Confidence)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"patient":{}`)
}

func TestConvertNil(t *testing.T) {
	_, err := NewJSONConverter().Convert(nil)
	assert.Error(t, err)
}

func TestSplitPages(t *testing.T) {
	assert.Nil(t, splitPages("  "))
	assert.Equal(t, []ChunkContent{{Text: "plain note", Position: 1, Type: "text"}}, splitPages("plain note"))
	assert.Equal(t, []ChunkContent{
		{Text: "header", Position: 0, Type: "text"},
		{Text: "", Position: 2, Type: "page"},
	}, splitPages("header --- Page 2 ---"))
}
