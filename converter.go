// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package markitdown

import (
	"io"
	"strings"
)

// StreamInfo holds metadata about the input being converted.
type StreamInfo struct {
	MIMEType  string
	Extension string
	Charset   string
	Filename  string
	LocalPath string
	URL       string
}

// PageInfo is one numbered page of a paginated conversion.
type PageInfo struct {
	PageNumber int    `json:"page_number"`
	Content    string `json:"content"`
}

// DocumentConverterResult holds the output of a conversion.
//
// Pages is nil unless page extraction was requested. When set, page numbers
// run 1..N and the page contents rebuild Markdown: by plain concatenation for
// marker-split documents (DOCX, and single-page results of formats without
// pagination), or joined with a blank line for formats with physical pages
// (PDF, spreadsheets, slides).
type DocumentConverterResult struct {
	Markdown string     `json:"markdown"`
	Title    string     `json:"title,omitempty"`
	Pages    []PageInfo `json:"pages,omitempty"`

	// paged is set by converters that normalized their own output before
	// splitting it into pages; the registry leaves such markdown untouched.
	paged bool
}

// ConvertOptions holds per-call conversion settings passed to converters.
type ConvertOptions struct {
	// ExtractPages requests a page-segmented result.
	ExtractPages bool
	// StyleMap overrides the instance style map for DOCX conversion.
	StyleMap string
}

// DocumentConverter is the interface all format converters implement.
type DocumentConverter interface {
	// Accepts returns true if this converter can handle the given input.
	// It only inspects info; it never touches the stream.
	Accepts(info StreamInfo) bool

	// Convert performs the actual document-to-markdown conversion.
	// The reader may be rewound and read several times.
	Convert(reader io.ReadSeeker, info StreamInfo, opts ConvertOptions) (*DocumentConverterResult, error)
}

// acceptsFormat implements the common Accepts rule: an exact extension match
// or a MIME type starting with one of the accepted prefixes, case-insensitive.
func acceptsFormat(info StreamInfo, extensions []string, mimePrefixes []string) bool {
	ext := strings.ToLower(info.Extension)
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	mime := strings.ToLower(info.MIMEType)
	for _, p := range mimePrefixes {
		if strings.HasPrefix(mime, p) {
			return true
		}
	}
	return false
}
