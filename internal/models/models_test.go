package models

import (
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want FileType
	}{
		{"scan.PDF", PDF},
		{"photo.jpeg", Image},
		{"page.tif", Image},
		{"note.docx", Document},
		{"intake.txt", Text},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			f, err := FormatForPath(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Type)
		})
	}
}

func TestFormatForPathUnsupported(t *testing.T) {
	_, err := FormatForPath("/tmp/tool.exe")
	require.Error(t, err)

	var unsupported *UnsupportedFormatError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, ".exe", unsupported.Extension)
	assert.Contains(t, err.Error(), ".exe")
	assert.Contains(t, err.Error(), ".pdf")
	assert.Contains(t, err.Error(), ".docx")
}

func TestSupportedFormatsTable(t *testing.T) {
	formats := SupportedFormats()
	require.Len(t, formats, 8)

	pdf, ok := LookupFormat("pdf")
	require.True(t, ok)
	assert.True(t, pdf.OCRRequired)
	assert.Equal(t, PreprocessPDFToImage, pdf.Preprocessing)

	docx, ok := LookupFormat(".DOCX")
	require.True(t, ok)
	assert.False(t, docx.OCRRequired)

	_, ok = LookupFormat(".doc")
	assert.False(t, ok)
}

func TestExtractionErrorUnwrap(t *testing.T) {
	err := NewExtractionError("/tmp/a.txt", "text", fs.ErrNotExist)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), "/tmp/a.txt")
}

func TestPatientFieldsAccessors(t *testing.T) {
	var p PatientFields
	assert.True(t, p.IsEmpty())

	p.Set(FieldFirstName, "John")
	p.Set(FieldDiagnosis, "Asthma")
	assert.Equal(t, "John", p.Get(FieldFirstName))
	assert.True(t, p.Has(FieldDiagnosis))
	assert.False(t, p.Has(FieldLastName))
	assert.False(t, p.IsEmpty())
}

func TestNewFailedResult(t *testing.T) {
	res := NewFailedResult("run", "/tmp/x.exe", errors.New("boom"), time.Millisecond)
	assert.False(t, res.Success)
	assert.Equal(t, "boom", res.ErrorMessage)
	assert.True(t, res.PatientData.IsEmpty())
	assert.Empty(t, res.ConfidenceScores)
	assert.Equal(t, time.Millisecond, res.ProcessingTime)
}
