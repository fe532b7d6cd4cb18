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
	"strings"

	"go.uber.org/zap"
)

// pdfElement is one layout element of a PDF page. Graphic elements (images,
// vector shapes) carry no text.
type pdfElement struct {
	text    string
	graphic bool
}

// pdfDocument is the view of a PDF the converter needs from its backend.
// Pages are numbered from 1.
type pdfDocument interface {
	NumPages() int
	PageElements(page int) ([]pdfElement, error)
	Text() (string, error)
}

// pdfOpener opens a PDF backend document.
type pdfOpener func(r io.ReaderAt, size int64) (pdfDocument, error)

// PdfConverter handles PDF files.
//
// Pages come straight from the physical page sequence: each page's content is
// the text of its text-bearing layout elements, and the markdown is the pages
// joined by a blank line. By default any page failure fails the conversion.
// With WithPDFFallback(true) a page failure discards the pages extracted so
// far and the whole-document text is returned as page 1.
type PdfConverter struct {
	markitdown *MarkItDown
	dep        dependency
	open       pdfOpener
}

// NewPdfConverter creates a new PdfConverter.
func NewPdfConverter(m *MarkItDown) *PdfConverter {
	return &PdfConverter{markitdown: m, dep: pdfDependency, open: openPDFBackend}
}

func (c *PdfConverter) Accepts(info StreamInfo) bool {
	return acceptsFormat(info, []string{".pdf"}, []string{"application/pdf", "application/x-pdf"})
}

func (c *PdfConverter) Convert(reader io.ReadSeeker, info StreamInfo, opts ConvertOptions) (*DocumentConverterResult, error) {
	if err := c.dep.check("PdfConverter", ".pdf"); err != nil {
		return nil, err
	}

	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read PDF: %w", err)
	}

	doc, err := c.openDocument(data)
	if err != nil {
		return nil, err
	}

	contents, err := c.extractPages(doc)
	if err == nil {
		return pagedResult(contents, "", opts), nil
	}
	if c.markitdown == nil || !c.markitdown.pdfFallback {
		return nil, err
	}

	c.markitdown.log().Debug("pdf page extraction failed, using whole-document text", zap.Error(err))
	text, textErr := c.wholeText(doc)
	if textErr != nil {
		return nil, fmt.Errorf("PDF fallback after %v: %w", err, textErr)
	}
	return pagedResult([]string{text}, "", opts), nil
}

func (c *PdfConverter) openDocument(data []byte) (doc pdfDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("open PDF: panic: %v", r)
		}
	}()
	doc, err = c.open(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	return doc, nil
}

// extractPages returns the text of every physical page in order. Pages with
// no text yield empty content so page numbers stay aligned with the document.
func (c *PdfConverter) extractPages(doc pdfDocument) ([]string, error) {
	n := doc.NumPages()
	contents := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		text, err := c.pageText(doc, i)
		if err != nil {
			return nil, err
		}
		contents = append(contents, text)
	}
	return contents, nil
}

func (c *PdfConverter) pageText(doc pdfDocument, page int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PDFExtractionError{Page: page, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	elements, err := doc.PageElements(page)
	if err != nil {
		return "", &PDFExtractionError{Page: page, Err: err}
	}
	var b strings.Builder
	for _, el := range elements {
		if el.graphic {
			continue
		}
		b.WriteString(el.text)
	}
	return strings.TrimSpace(b.String()), nil
}

func (c *PdfConverter) wholeText(doc pdfDocument) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extract PDF text: panic: %v", r)
		}
	}()
	text, err = doc.Text()
	if err != nil {
		return "", fmt.Errorf("extract PDF text: %w", err)
	}
	return strings.TrimSpace(text), nil
}
