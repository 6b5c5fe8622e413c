package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVParser renders CSV rows as Markdown sections of csvBatchSize rows.
type CSVParser struct{}

const csvBatchSize = 20

func (p *CSVParser) Parse(r io.Reader, filename string) (string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}

	var sb strings.Builder
	writeBlock(&sb, headingMarker(1)+TitleFromFilename(filename))
	if len(records) == 0 {
		return Normalize(sb.String()), nil
	}

	// First row is headers.
	headers := records[0]
	writeBlock(&sb, "Headers: "+strings.Join(headers, ", "))

	dataRows := records[1:]
	for i := 0; i < len(dataRows); i += csvBatchSize {
		end := min(i+csvBatchSize, len(dataRows))

		var section strings.Builder
		fmt.Fprintf(&section, "%sRows %d-%d\n\n", headingMarker(2), i+2, end+1) // 1-indexed, skip header
		for _, row := range dataRows[i:end] {
			cells := make([]string, len(row))
			for j, cell := range row {
				if j < len(headers) {
					cells[j] = headers[j] + ": " + cell
				} else {
					cells[j] = cell
				}
			}
			section.WriteString("- " + strings.Join(cells, ", ") + "\n")
		}
		writeBlock(&sb, section.String())
	}
	return Normalize(sb.String()), nil
}
