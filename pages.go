package markitdown

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// markerLength is the number of characters captured after a page break.
	markerLength = 20
	// noTextMarker stands in for a page break with no text after it. It never
	// occurs in rendered markdown, so such breaks are always skipped.
	noTextMarker = "<No text>"
	// pageSeparator joins the pages of formats with physical pages.
	pageSeparator = "\n\n"
)

// pageMarker returns the marker for a page break followed by text.
func pageMarker(following string) string {
	if following == "" {
		return noTextMarker
	}
	runes := []rune(following)
	if len(runes) > markerLength {
		runes = runes[:markerLength]
	}
	return string(runes)
}

// splitByMarkers cuts markdown into pages at the first occurrence of each
// marker at or after the end of the previous page. Markers that cannot be
// found are skipped without consuming anything. The text after the last
// located marker becomes the final page, so the page contents always
// concatenate back to markdown. It returns the pages and the number of
// skipped markers.
func splitByMarkers(markdown string, markers []string) ([]PageInfo, int) {
	pages := []PageInfo{}
	cursor := 0
	skipped := 0

	for _, marker := range markers {
		idx := indexMarker(markdown[cursor:], marker)
		if idx == -1 {
			skipped++
			continue
		}
		end := cursor + idx
		pages = append(pages, PageInfo{
			PageNumber: len(pages) + 1,
			Content:    markdown[cursor:end],
		})
		cursor = end
	}

	if cursor < len(markdown) {
		pages = append(pages, PageInfo{
			PageNumber: len(pages) + 1,
			Content:    markdown[cursor:],
		})
	}
	return pages, skipped
}

// indexMarker finds marker in markdown, also where the renderer escaped
// punctuation in it with a backslash ("1\. Step" for "1. Step"). The
// sentinel is only matched literally.
func indexMarker(markdown, marker string) int {
	if marker == noTextMarker || !strings.ContainsFunc(marker, isASCIIPunct) {
		return strings.Index(markdown, marker)
	}
	var pattern strings.Builder
	for _, r := range marker {
		if isASCIIPunct(r) {
			pattern.WriteString(`\\?`)
		}
		pattern.WriteString(regexp.QuoteMeta(string(r)))
	}
	loc := regexp.MustCompile(pattern.String()).FindStringIndex(markdown)
	if loc == nil {
		return -1
	}
	return loc[0]
}

func isASCIIPunct(r rune) bool {
	return r < unicode.MaxASCII && unicode.IsPunct(r) || strings.ContainsRune("$+<=>^`|~", r)
}

// aggregatePages numbers page contents in order and joins them with a blank
// line to form the document markdown.
func aggregatePages(contents []string) (string, []PageInfo) {
	pages := make([]PageInfo, len(contents))
	for i, c := range contents {
		pages[i] = PageInfo{PageNumber: i + 1, Content: c}
	}
	return strings.Join(contents, pageSeparator), pages
}

// pagedResult builds the result of a converter with physical pages. Page
// contents are normalized individually and the markdown is their join, which
// is identical whether or not pages were requested.
func pagedResult(contents []string, title string, opts ConvertOptions) *DocumentConverterResult {
	normalized := make([]string, len(contents))
	for i, c := range contents {
		normalized[i] = normalizeOutput(c)
	}
	markdown, pages := aggregatePages(normalized)
	result := &DocumentConverterResult{
		Markdown: markdown,
		Title:    title,
		paged:    true,
	}
	if opts.ExtractPages {
		result.Pages = pages
	}
	return result
}
