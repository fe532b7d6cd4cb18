package markitdown

import (
	"io"
	"strings"
)

// PlainTextConverter handles plain text, markdown, JSON, and JSONL files.
type PlainTextConverter struct{}

// NewPlainTextConverter creates a new PlainTextConverter.
func NewPlainTextConverter() *PlainTextConverter {
	return &PlainTextConverter{}
}

func (c *PlainTextConverter) Accepts(info StreamInfo) bool {
	switch strings.ToLower(info.Extension) {
	case ".txt", ".text", ".md", ".markdown", ".json", ".jsonl":
		return true
	}
	return acceptsFormat(info, nil, []string{"text/", "application/json", "application/markdown"})
}

func (c *PlainTextConverter) Convert(reader io.ReadSeeker, info StreamInfo, opts ConvertOptions) (*DocumentConverterResult, error) {
	text, err := readText(reader, info.Charset)
	if err != nil {
		return nil, err
	}
	return &DocumentConverterResult{Markdown: text}, nil
}
