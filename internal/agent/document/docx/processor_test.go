package docx

import (
	"archive/zip"
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

const intakeXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Intake Form</w:t></w:r></w:p>
<w:p><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">Patient Name: </w:t></w:r><w:r><w:t>Emily Chen</w:t></w:r></w:p>
<w:p></w:p>
<w:tbl>
<w:tr><w:tc><w:p><w:r><w:t>DOB</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>12/03/1988</w:t></w:r></w:p></w:tc></w:tr>
<w:tr><w:tc><w:p><w:r><w:t>  </w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>line one</w:t></w:r></w:p><w:p><w:r><w:t>line two</w:t></w:r></w:p></w:tc></w:tr>
</w:tbl>
<w:p><w:r><w:t>Seen</w:t><w:tab/><w:t>today</w:t><w:br/><w:t>follow up</w:t></w:r></w:p>
<w:sectPr/>
</w:body>
</w:document>`

func writeDocx(t *testing.T, parts map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "intake.docx")
	f, err := os.Create(path)
	require.NoError(t, err)

	w := zip.NewWriter(f)
	for name, content := range parts {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
	return path
}

func docxFormat() models.SupportedFormat {
	f, _ := models.LookupFormat(".docx")
	return f
}

func TestAcquireParagraphsThenTables(t *testing.T) {
	path := writeDocx(t, map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types/>`,
		documentPart:          intakeXML,
	})

	got, err := NewProcessor(logger.NewTestLogger()).Acquire(context.Background(), path, docxFormat())
	require.NoError(t, err)

	want := "Intake Form\n" +
		"Patient Name: Emily Chen\n" +
		"Seen\ttoday\nfollow up\n" +
		"DOB\n" +
		"12/03/1988\n" +
		"line one\nline two"
	assert.Equal(t, want, got)
}

func TestAcquireMissingDocumentPart(t *testing.T) {
	path := writeDocx(t, map[string]string{"word/styles.xml": "<styles/>"})

	_, err := NewProcessor(logger.NewTestLogger()).Acquire(context.Background(), path, docxFormat())
	var extractErr *models.ExtractionError
	require.True(t, errors.As(err, &extractErr))
	assert.ErrorIs(t, err, errNoDocumentPart)
	assert.Equal(t, "document", extractErr.Format)
}

func TestAcquireNotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.docx")
	require.NoError(t, os.WriteFile(path, []byte("plain text pretending"), 0o644))

	_, err := NewProcessor(logger.NewTestLogger()).Acquire(context.Background(), path, docxFormat())
	var extractErr *models.ExtractionError
	assert.True(t, errors.As(err, &extractErr))
}

func TestAcquireEmptyBody(t *testing.T) {
	path := writeDocx(t, map[string]string{
		documentPart: `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body/></w:document>`,
	})

	got, err := NewProcessor(logger.NewTestLogger()).Acquire(context.Background(), path, docxFormat())
	require.NoError(t, err)
	assert.Empty(t, got)
}
