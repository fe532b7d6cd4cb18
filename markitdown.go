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
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const (
	// PrioritySpecific is for format-specific converters (PDF, DOCX, etc.).
	PrioritySpecific = 0.0
	// PriorityGeneric is for fallback converters (PlainText, HTML, ZIP).
	PriorityGeneric = 10.0
)

type registeredConverter struct {
	converter DocumentConverter
	priority  float64
	name      string
}

// MarkItDown is the main document-to-markdown conversion engine.
//
// A MarkItDown holds no per-conversion state; one instance may serve
// concurrent conversions as long as each call gets its own reader.
// Converters must be registered before conversions start.
type MarkItDown struct {
	converters   []registeredConverter
	keepDataURIs bool
	styleMap     string
	pdfFallback  bool
	logger       *zap.Logger
}

// New creates a new MarkItDown instance with the given options.
func New(opts ...Option) *MarkItDown {
	m := &MarkItDown{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	m.enableBuiltins()
	return m
}

// RegisterConverter adds a custom converter with the given priority.
// Lower priority values are tried first; converters with equal priority are
// tried in registration order.
func (m *MarkItDown) RegisterConverter(name string, c DocumentConverter, priority float64) {
	m.converters = append(m.converters, registeredConverter{
		converter: c,
		priority:  priority,
		name:      name,
	})
	sort.SliceStable(m.converters, func(i, j int) bool {
		return m.converters[i].priority < m.converters[j].priority
	})
}

// Convert auto-detects the source type (file path or URL) and converts it.
func (m *MarkItDown) Convert(source string, opts ...ConvertOption) (*DocumentConverterResult, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return m.ConvertURL(source, opts...)
	}
	return m.ConvertFile(source, opts...)
}

// ConvertFile converts a local file to markdown.
func (m *MarkItDown) ConvertFile(path string, opts ...ConvertOption) (*DocumentConverterResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	info := StreamInfo{
		Extension: filepath.Ext(path),
		Filename:  filepath.Base(path),
		LocalPath: path,
	}
	return m.ConvertReader(f, info, opts...)
}

// ConvertReader converts a stream to markdown using the provided StreamInfo as hints.
func (m *MarkItDown) ConvertReader(r io.ReadSeeker, info StreamInfo, opts ...ConvertOption) (*DocumentConverterResult, error) {
	info, err := ClassifyStream(r, info)
	if err != nil {
		return nil, err
	}
	return m.convert(r, info, buildConvertOptions(opts))
}

// ConvertURL fetches a URL and converts the response to markdown.
func (m *MarkItDown) ConvertURL(url string, opts ...ConvertOption) (*DocumentConverterResult, error) {
	resp, err := http.Get(url) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("fetch URL: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	info := StreamInfo{
		URL:      url,
		MIMEType: resp.Header.Get("Content-Type"),
	}
	if ext := extensionFromHints(info); ext != "" {
		info.Extension = ext
		info.Filename = filepath.Base(strings.SplitN(url, "?", 2)[0])
	}

	return m.ConvertReader(bytes.NewReader(data), info, opts...)
}

// Select returns the first registered converter that accepts info.
func (m *MarkItDown) Select(info StreamInfo) (DocumentConverter, string, error) {
	for _, rc := range m.converters {
		if rc.converter.Accepts(info) {
			return rc.converter, rc.name, nil
		}
	}
	return nil, "", &UnsupportedFormatError{
		Extension: info.Extension,
		MIMEType:  info.MIMEType,
	}
}

// convert is the internal dispatch method.
func (m *MarkItDown) convert(r io.ReadSeeker, info StreamInfo, opts ConvertOptions) (*DocumentConverterResult, error) {
	conv, name, err := m.Select(info)
	if err != nil {
		return nil, err
	}
	m.log().Debug("converter selected",
		zap.String("converter", name),
		zap.String("extension", info.Extension),
		zap.String("mime", info.MIMEType),
		zap.Bool("extract_pages", opts.ExtractPages))

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}

	result, err := conv.Convert(r, info, opts)
	if err != nil {
		return nil, &ConversionError{Converter: name, Err: err}
	}

	// Paginating converters normalize before splitting; touching their
	// markdown here would break the page/markdown correspondence. Other
	// results are normalized here, so their single page is the normalized
	// markdown rather than the converter's raw output.
	if !result.paged {
		result.Markdown = normalizeOutput(result.Markdown)
		result.Pages = nil
	}
	switch {
	case !opts.ExtractPages:
		result.Pages = nil
	case result.Pages == nil:
		result.Pages = []PageInfo{{PageNumber: 1, Content: result.Markdown}}
	}
	return result, nil
}

func (m *MarkItDown) log() *zap.Logger {
	if m == nil || m.logger == nil {
		return zap.NewNop()
	}
	return m.logger
}

// enableBuiltins registers all built-in converters.
func (m *MarkItDown) enableBuiltins() {
	// Specific format converters (priority 0.0 - tried first)
	m.RegisterConverter("csv", NewCsvConverter(), PrioritySpecific)
	m.RegisterConverter("rss", NewRSSConverter(m), PrioritySpecific)
	m.RegisterConverter("ipynb", NewIpynbConverter(), PrioritySpecific)
	m.RegisterConverter("docx", NewDocxConverter(m), PrioritySpecific)
	m.RegisterConverter("xlsx", NewXlsxConverter(), PrioritySpecific)
	m.RegisterConverter("xls", NewXlsConverter(), PrioritySpecific)
	m.RegisterConverter("pptx", NewPptxConverter(m), PrioritySpecific)
	m.RegisterConverter("pdf", NewPdfConverter(m), PrioritySpecific)
	m.RegisterConverter("epub", NewEpubConverter(m), PrioritySpecific)

	// Generic format converters (priority 10.0 - tried last as fallbacks)
	m.RegisterConverter("html", NewHTMLConverter(m), PriorityGeneric)
	m.RegisterConverter("zip", NewZipConverter(m), PriorityGeneric)
	m.RegisterConverter("plaintext", NewPlainTextConverter(), PriorityGeneric)
}
