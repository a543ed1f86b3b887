package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/feichai0017/clinical-doc-processor/internal/models"
	"github.com/feichai0017/clinical-doc-processor/pkg/logger"
)

const documentPart = "word/document.xml"

var errNoDocumentPart = errors.New(documentPart + " not found in archive")

// Processor reads body paragraphs and table cells out of a Word document.
type Processor struct {
	logger logger.Logger
}

func NewProcessor(log logger.Logger) *Processor {
	return &Processor{logger: log}
}

func (p *Processor) CanProcess(format models.SupportedFormat) bool {
	return format.Type == models.Document
}

// Acquire returns one line per non-empty paragraph, followed by one line per
// non-empty table cell in row order.
func (p *Processor) Acquire(ctx context.Context, path string, format models.SupportedFormat) (string, error) {
	doc, err := readDocument(path)
	if err != nil {
		return "", models.NewExtractionError(path, string(format.Type), err)
	}

	lines := doc.lines()
	p.logger.Debug("Document parsed",
		logger.String("path", path),
		logger.Int("paragraphs", len(doc.Body.Paragraphs)),
		logger.Int("tables", len(doc.Body.Tables)),
		logger.Int("lines", len(lines)),
	)
	return strings.Join(lines, "\n"), nil
}

func (p *Processor) Close() error {
	return nil
}

func readDocument(path string) (*document, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var part *zip.File
	for _, f := range r.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return nil, errNoDocumentPart
	}

	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", documentPart, err)
	}
	defer rc.Close()

	var doc document
	if err := xml.NewDecoder(rc).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", documentPart, err)
	}
	return &doc, nil
}

// WordprocessingML, matched by local name only.
type document struct {
	Body body `xml:"body"`
}

type body struct {
	Paragraphs []node  `xml:"p"`
	Tables     []table `xml:"tbl"`
}

type table struct {
	Rows []struct {
		Cells []struct {
			Paragraphs []node `xml:"p"`
		} `xml:"tc"`
	} `xml:"tr"`
}

// node keeps child order so runs, tabs and breaks come out in sequence.
type node struct {
	XMLName xml.Name
	Text    string `xml:",chardata"`
	Nodes   []node `xml:",any"`
}

func (d *document) lines() []string {
	var lines []string
	add := func(s string) {
		if strings.TrimSpace(s) != "" {
			lines = append(lines, s)
		}
	}

	for _, p := range d.Body.Paragraphs {
		add(p.text())
	}
	for _, t := range d.Body.Tables {
		for _, row := range t.Rows {
			for _, cell := range row.Cells {
				parts := make([]string, len(cell.Paragraphs))
				for i, p := range cell.Paragraphs {
					parts[i] = p.text()
				}
				add(strings.Join(parts, "\n"))
			}
		}
	}
	return lines
}

func (n *node) text() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *node) write(b *strings.Builder) {
	for i := range n.Nodes {
		child := &n.Nodes[i]
		switch child.XMLName.Local {
		case "t":
			b.WriteString(child.Text)
		case "tab":
			b.WriteByte('\t')
		case "br", "cr":
			b.WriteByte('\n')
		case "r", "hyperlink", "ins", "smartTag", "fldSimple":
			child.write(b)
		}
		// pPr, rPr, del and field instructions carry no visible text
	}
}
