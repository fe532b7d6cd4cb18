package markitdown

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePDF serves canned page elements. A page listed in fail returns an
// error; a page listed in panics panics.
type fakePDF struct {
	pages  [][]pdfElement
	fail   map[int]error
	panics map[int]bool
	text   string
}

func (f *fakePDF) NumPages() int { return len(f.pages) }

func (f *fakePDF) PageElements(n int) ([]pdfElement, error) {
	if f.panics[n] {
		panic("malformed content stream")
	}
	if err := f.fail[n]; err != nil {
		return nil, err
	}
	return f.pages[n-1], nil
}

func (f *fakePDF) Text() (string, error) { return f.text, nil }

func newFakePdfConverter(m *MarkItDown, doc *fakePDF) *PdfConverter {
	c := NewPdfConverter(m)
	c.dep = dependency{feature: "pdf"}
	c.open = func(io.ReaderAt, int64) (pdfDocument, error) { return doc, nil }
	return c
}

func twoPagePDF() *fakePDF {
	return &fakePDF{
		pages: [][]pdfElement{
			{{text: "Page one heading\n"}, {graphic: true}, {text: "first body line\n"}},
			{{text: "Page two text\n"}},
		},
		text: "Page one heading first body line Page two text",
	}
}

func TestPdfDirectAggregation(t *testing.T) {
	c := newFakePdfConverter(New(), twoPagePDF())

	res, err := c.Convert(bytes.NewReader([]byte("%PDF-1.4")), StreamInfo{Extension: ".pdf"}, ConvertOptions{ExtractPages: true})
	require.NoError(t, err)

	require.Len(t, res.Pages, 2)
	assert.Equal(t, PageInfo{PageNumber: 1, Content: "Page one heading\nfirst body line"}, res.Pages[0])
	assert.Equal(t, PageInfo{PageNumber: 2, Content: "Page two text"}, res.Pages[1])
	assert.Equal(t, res.Pages[0].Content+pageSeparator+res.Pages[1].Content, res.Markdown)

	plain, err := c.Convert(bytes.NewReader([]byte("%PDF-1.4")), StreamInfo{Extension: ".pdf"}, ConvertOptions{})
	require.NoError(t, err)
	assert.Nil(t, plain.Pages)
	assert.Equal(t, res.Markdown, plain.Markdown)
}

func TestPdfEmptyPageKeepsNumbering(t *testing.T) {
	doc := &fakePDF{pages: [][]pdfElement{
		{{text: "cover"}},
		{{graphic: true}},
		{{text: "last"}},
	}}
	res, err := newFakePdfConverter(New(), doc).Convert(bytes.NewReader(nil), StreamInfo{}, ConvertOptions{ExtractPages: true})
	require.NoError(t, err)

	require.Len(t, res.Pages, 3)
	assert.Empty(t, res.Pages[1].Content)
	assert.Equal(t, 3, res.Pages[2].PageNumber)
	assert.Equal(t, "last", res.Pages[2].Content)
}

func TestPdfStrictPolicy(t *testing.T) {
	doc := twoPagePDF()
	doc.fail = map[int]error{2: errors.New("bad xref")}

	_, err := newFakePdfConverter(New(), doc).Convert(bytes.NewReader(nil), StreamInfo{}, ConvertOptions{ExtractPages: true})
	require.Error(t, err)
	var pageErr *PDFExtractionError
	require.True(t, errors.As(err, &pageErr))
	assert.Equal(t, 2, pageErr.Page)
	assert.EqualError(t, errors.Unwrap(pageErr), "bad xref")
}

func TestPdfStrictPolicyRecoversPanics(t *testing.T) {
	doc := twoPagePDF()
	doc.panics = map[int]bool{1: true}

	_, err := newFakePdfConverter(New(), doc).Convert(bytes.NewReader(nil), StreamInfo{}, ConvertOptions{})
	require.Error(t, err)
	var pageErr *PDFExtractionError
	require.True(t, errors.As(err, &pageErr))
	assert.Equal(t, 1, pageErr.Page)
	assert.Contains(t, err.Error(), "malformed content stream")
}

func TestPdfResilientFallback(t *testing.T) {
	doc := twoPagePDF()
	doc.fail = map[int]error{2: errors.New("bad xref")}

	c := newFakePdfConverter(New(WithPDFFallback(true)), doc)
	res, err := c.Convert(bytes.NewReader(nil), StreamInfo{}, ConvertOptions{ExtractPages: true})
	require.NoError(t, err)

	require.Len(t, res.Pages, 1)
	assert.Equal(t, PageInfo{PageNumber: 1, Content: doc.text}, res.Pages[0])
	assert.Equal(t, doc.text, res.Markdown)

	plain, err := c.Convert(bytes.NewReader(nil), StreamInfo{}, ConvertOptions{})
	require.NoError(t, err)
	assert.Equal(t, res.Markdown, plain.Markdown)
}

func TestPdfOpenFailure(t *testing.T) {
	c := NewPdfConverter(New(WithPDFFallback(true)))
	c.dep = dependency{feature: "pdf"}
	c.open = func(io.ReaderAt, int64) (pdfDocument, error) { return nil, errors.New("not a PDF") }

	_, err := c.Convert(bytes.NewReader([]byte("garbage")), StreamInfo{}, ConvertOptions{})
	assert.ErrorContains(t, err, "open PDF: not a PDF")
}

func TestPdfMissingDependencyDeferredToConvert(t *testing.T) {
	m := New()
	c := NewPdfConverter(m)
	c.dep = dependency{feature: "pdf", err: errors.New("backend excluded")}
	m.RegisterConverter("pdf-unavailable", c, PrioritySpecific-1)

	assert.True(t, c.Accepts(StreamInfo{Extension: ".pdf"}))

	_, err := m.ConvertReader(bytes.NewReader([]byte("%PDF-1.4\n")), StreamInfo{Extension: ".pdf"})
	require.Error(t, err)
	assert.True(t, IsMissingDependency(err))
	assert.Contains(t, err.Error(), "nopdf")
}

func TestPdfFixture(t *testing.T) {
	path := "testdata/test.pdf"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skipf("test fixture %s not found", path)
	}

	res, err := New().ConvertFile(path, WithExtractPages(true))
	require.NoError(t, err)
	require.NotEmpty(t, res.Pages)
	assert.Equal(t, 1, res.Pages[0].PageNumber)

	contents := make([]string, len(res.Pages))
	for i, p := range res.Pages {
		contents[i] = p.Content
	}
	assert.Equal(t, res.Markdown, strings.Join(contents, pageSeparator))
}
