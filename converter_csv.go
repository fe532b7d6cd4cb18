package markitdown

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CsvConverter handles CSV files.
type CsvConverter struct{}

// NewCsvConverter creates a new CsvConverter.
func NewCsvConverter() *CsvConverter {
	return &CsvConverter{}
}

func (c *CsvConverter) Accepts(info StreamInfo) bool {
	return acceptsFormat(info, []string{".csv"}, []string{"text/csv", "application/csv"})
}

func (c *CsvConverter) Convert(reader io.ReadSeeker, info StreamInfo, opts ConvertOptions) (*DocumentConverterResult, error) {
	text, err := readText(reader, info.Charset)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}

	return &DocumentConverterResult{
		Markdown: renderMarkdownTable(records),
	}, nil
}

// renderMarkdownTable renders rows as a markdown table with the first row as
// header. Short rows are padded to the widest row.
func renderMarkdownTable(records [][]string) string {
	if len(records) == 0 {
		return ""
	}

	numCols := 0
	for _, row := range records {
		numCols = max(numCols, len(row))
	}
	if numCols == 0 {
		return ""
	}

	var b strings.Builder
	writeRow := func(row []string) {
		b.WriteString("|")
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = tableCell(row[i])
			}
			b.WriteString(" " + cell + " |")
		}
		b.WriteString("\n")
	}

	writeRow(records[0])
	b.WriteString("|" + strings.Repeat(" --- |", numCols) + "\n")
	for _, row := range records[1:] {
		writeRow(row)
	}
	return b.String()
}

// tableCell flattens a value onto one line and escapes column separators.
func tableCell(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(strings.TrimSpace(s), "|", `\|`)
}
