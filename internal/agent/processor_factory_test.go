package agent

import (
	"context"
	"errors"
	stdimage "image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/feichai0017/clinical-doc-processor/config"
	"github.com/feichai0017/clinical-doc-processor/internal/agent/document"
	"github.com/feichai0017/clinical-doc-processor/internal/agent/document/pdf"
	"github.com/feichai0017/clinical-doc-processor/internal/models"
	"github.com/feichai0017/clinical-doc-processor/pkg/logger"
)

type stubRecognizer struct {
	text   string
	closes int
}

func (s *stubRecognizer) Recognize(ctx context.Context, img stdimage.Image) (string, error) {
	return s.text, nil
}
func (s *stubRecognizer) Name() string { return "stub" }
func (s *stubRecognizer) Close() error { s.closes++; return nil }

type stubRasterizer struct {
	closes int
}

func (s *stubRasterizer) RenderPages(ctx context.Context, path string, dpi float64, visit pdf.PageVisitor) error {
	return nil
}
func (s *stubRasterizer) Close() error { s.closes++; return nil }

func mustFormat(t *testing.T, ext string) models.SupportedFormat {
	t.Helper()
	f, ok := models.LookupFormat(ext)
	require.True(t, ok, ext)
	return f
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func writePNG(t *testing.T) string {
	t.Helper()
	img := stdimage.NewGray(stdimage.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.SetGray(10, 10, color.Gray{Y: 0})

	path := filepath.Join(t.TempDir(), "scan.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestFactoryWithoutOCRUsesNotices(t *testing.T) {
	factory, err := NewProcessorFactoryWithEngines(cfg.Default(), Engines{}, logger.NewTestLogger())
	require.NoError(t, err)
	defer factory.Close()

	ctx := context.Background()
	got, err := factory.Acquire(ctx, "/does/not/matter.pdf", mustFormat(t, ".pdf"))
	require.NoError(t, err)
	assert.Equal(t, document.OCRUnavailablePDF, got)

	got, err = factory.Acquire(ctx, "/does/not/matter.jpg", mustFormat(t, ".jpg"))
	require.NoError(t, err)
	assert.Equal(t, document.OCRUnavailableImage, got)

	path := writeFile(t, "note.txt", []byte("Name: John Doe"))
	got, err = factory.Acquire(ctx, path, mustFormat(t, ".txt"))
	require.NoError(t, err)
	assert.Equal(t, "Name: John Doe", got)
}

func TestFactoryImagesWithoutRasterizer(t *testing.T) {
	rec := &stubRecognizer{text: "Patient Name: Ana Ruiz"}
	factory, err := NewProcessorFactoryWithEngines(cfg.Default(), Engines{Recognizer: rec}, logger.NewTestLogger())
	require.NoError(t, err)

	got, err := factory.Acquire(context.Background(), writePNG(t), mustFormat(t, ".png"))
	require.NoError(t, err)
	assert.Equal(t, "Patient Name: Ana Ruiz", got)

	got, err = factory.Acquire(context.Background(), "scan.pdf", mustFormat(t, ".pdf"))
	require.NoError(t, err)
	assert.Equal(t, document.OCRUnavailablePDF, got)

	require.NoError(t, factory.Close())
	assert.Equal(t, 1, rec.closes)
}

func TestFactoryClosesSharedEnginesOnce(t *testing.T) {
	rec := &stubRecognizer{}
	ras := &stubRasterizer{}
	factory, err := NewProcessorFactoryWithEngines(cfg.Default(), Engines{Recognizer: rec, Rasterizer: ras}, logger.NewTestLogger())
	require.NoError(t, err)

	require.NoError(t, factory.Close())
	assert.Equal(t, 1, rec.closes)
	assert.Equal(t, 1, ras.closes)

	require.NoError(t, factory.Close())
	assert.Equal(t, 1, rec.closes)
}

func TestFactoryUnsupportedFormat(t *testing.T) {
	factory, err := NewProcessorFactoryWithEngines(cfg.Default(), Engines{}, logger.NewTestLogger())
	require.NoError(t, err)

	_, err = factory.Acquire(context.Background(), "setup.exe", models.SupportedFormat{Extension: ".exe"})
	var unsupported *models.UnsupportedFormatError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, ".exe", unsupported.Extension)
	assert.Contains(t, unsupported.Supported, ".pdf")
}

func TestNewProcessorFactoryEngineDisabled(t *testing.T) {
	conf := cfg.Default()
	conf.OCR.Engine = cfg.EngineNone
	log := logger.NewTestLogger()

	factory, err := NewProcessorFactory(context.Background(), conf, log)
	require.NoError(t, err)

	got, err := factory.Acquire(context.Background(), "scan.tiff", mustFormat(t, ".tiff"))
	require.NoError(t, err)
	assert.Equal(t, document.OCRUnavailableImage, got)
	assert.NotEmpty(t, log.EntriesAt("WARN"))
}
