package pipeline

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dgallion1/docchunk/internal/parser"
)

// Converter turns an uploaded document into Markdown.
type Converter struct {
	PDFFallback bool // shell out to pdftotext when the PDF library fails
}

func (c Converter) Convert(filename string, data []byte) (string, error) {
	p, err := parser.ForFile(filename)
	if err != nil {
		return "", err
	}
	if pdf, ok := p.(*parser.PDFParser); ok {
		pdf.FallbackPdftotext = c.PDFFallback
	}
	text, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return "", fmt.Errorf("convert %s: %w", filename, err)
	}
	return text, nil
}

// DocName derives the output name for a file: its base name without the
// extension, with path separators and ".." replaced.
func DocName(filename string) string {
	name := parser.TitleFromFilename(strings.ReplaceAll(filename, `\`, "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
