package main

import (
	"encoding/json"
	"fmt"
	"strings"

	markitdown "github.com/conductor-oss/markitdown-pages"
)

// renderResult formats a conversion result for output. Paginated results
// print a page marker comment before each page.
func renderResult(result *markitdown.DocumentConverterResult, asJSON bool) (string, error) {
	if asJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode result: %w", err)
		}
		return string(data) + "\n", nil
	}

	if result.Pages == nil {
		return result.Markdown + "\n", nil
	}
	parts := make([]string, 0, len(result.Pages))
	for _, p := range result.Pages {
		parts = append(parts, fmt.Sprintf("<!-- Page %d -->\n%s", p.PageNumber, p.Content))
	}
	return strings.Join(parts, "\n\n") + "\n", nil
}
