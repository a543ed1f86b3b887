package pdf

import (
	"fmt"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
)

// ReadTextLayer returns the embedded text of every page, with the same page
// markers the OCR path produces. Scanned PDFs yield an empty string.
func ReadTextLayer(path string) (text string, err error) {
	// the reader panics on some malformed object streams
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("failed to read text layer: %v", r)
		}
	}()

	f, reader, err := lpdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var pages pageWriter
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to get text from page %d: %w", i, err)
		}
		pages.add(i, content)
	}
	return pages.String(), nil
}

// pageWriter joins per-page text as "--- Page N ---\n<text>" blocks
// separated by a blank line. Pages without visible text are skipped.
type pageWriter struct {
	b     strings.Builder
	pages int
}

func (w *pageWriter) add(page int, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if w.pages > 0 {
		w.b.WriteString("\n\n")
	}
	fmt.Fprintf(&w.b, "--- Page %d ---\n%s", page, text)
	w.pages++
}

func (w *pageWriter) String() string {
	return w.b.String()
}
