package text

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/clinical-doc-processor/internal/models"
	"github.com/feichai0017/clinical-doc-processor/pkg/logger"
)

func txtFormat() models.SupportedFormat {
	f, _ := models.LookupFormat(".txt")
	return f
}

func TestAcquireVerbatim(t *testing.T) {
	content := "Patient Name: José Núñez\r\nDOB: 03/04/1975\n\n  trailing  "
	path := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p := NewProcessor(logger.NewTestLogger())
	got, err := p.Acquire(context.Background(), path, txtFormat())
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestAcquireEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	got, err := NewProcessor(logger.NewTestLogger()).Acquire(context.Background(), path, txtFormat())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAcquireInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latin1.txt")
	require.NoError(t, os.WriteFile(path, []byte{'J', 'o', 's', 0xe9}, 0o644))

	_, err := NewProcessor(logger.NewTestLogger()).Acquire(context.Background(), path, txtFormat())
	var extractErr *models.ExtractionError
	require.True(t, errors.As(err, &extractErr))
	assert.ErrorIs(t, err, errInvalidUTF8)
	assert.Equal(t, path, extractErr.Path)
}

func TestAcquireMissingFile(t *testing.T) {
	_, err := NewProcessor(logger.NewTestLogger()).Acquire(context.Background(), filepath.Join(t.TempDir(), "nope.txt"), txtFormat())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCanProcess(t *testing.T) {
	p := NewProcessor(logger.NewNopLogger())
	assert.True(t, p.CanProcess(txtFormat()))
	docx, _ := models.LookupFormat(".docx")
	assert.False(t, p.CanProcess(docx))
}
