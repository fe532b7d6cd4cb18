package markitdown

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildXlsx(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Name", "Qty"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"apple", 3}))

	_, err := f.NewSheet("Empty")
	require.NoError(t, err)

	_, err = f.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Notes", "A1", "remark"))
	require.NoError(t, f.SetCellValue("Notes", "A2", "a|b"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestXlsxSheetPages(t *testing.T) {
	data := buildXlsx(t)

	res, err := New().ConvertReader(bytes.NewReader(data), StreamInfo{Extension: ".xlsx"}, WithExtractPages(true))
	require.NoError(t, err)

	require.Len(t, res.Pages, 2)
	assert.Equal(t, "## Sheet1\n\n| Name | Qty |\n| --- | --- |\n| apple | 3 |", res.Pages[0].Content)
	assert.Equal(t, "## Notes\n\n| remark |\n| --- |\n| a\\|b |", res.Pages[1].Content)
	assert.Equal(t, res.Pages[0].Content+"\n\n"+res.Pages[1].Content, res.Markdown)

	plain, err := New().ConvertReader(bytes.NewReader(data), StreamInfo{Extension: ".xlsx"})
	require.NoError(t, err)
	assert.Equal(t, res.Markdown, plain.Markdown)
	assert.Nil(t, plain.Pages)
}

func TestPptxSlidePages(t *testing.T) {
	data := buildPptx(t,
		pptxSlideFixture{title: "Welcome", body: "Opening remarks", notes: "Speak slowly"},
		pptxSlideFixture{title: "Results", body: "Numbers went up"},
	)

	res, err := New().ConvertReader(bytes.NewReader(data), StreamInfo{Extension: ".pptx"}, WithExtractPages(true))
	require.NoError(t, err)

	assert.Equal(t, "Welcome", res.Title)
	require.Len(t, res.Pages, 2)
	assert.Equal(t, "<!-- Slide number: 1 -->\n# Welcome\n\nOpening remarks\n\n### Notes:\nSpeak slowly", res.Pages[0].Content)
	assert.Equal(t, "<!-- Slide number: 2 -->\n# Results\n\nNumbers went up", res.Pages[1].Content)
	assert.Equal(t, res.Pages[0].Content+"\n\n"+res.Pages[1].Content, res.Markdown)
}

func TestEpubConversion(t *testing.T) {
	data := buildZip(t, map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": `<?xml version="1.0"?><container xmlns="urn:oasis:names:tc:opendocument:xmlns:container"><rootfiles><rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/></rootfiles></container>`,
		"OEBPS/content.opf": `<?xml version="1.0"?><package xmlns="http://www.idpf.org/2007/opf" xmlns:dc="http://purl.org/dc/elements/1.1/">` +
			`<metadata><dc:title>Test Book</dc:title><dc:creator>Test Author</dc:creator><dc:language>en</dc:language></metadata>` +
			`<manifest><item id="c1" href="text/ch1.xhtml" media-type="application/xhtml+xml"/><item id="c2" href="text/ch2.xhtml" media-type="application/xhtml+xml"/></manifest>` +
			`<spine><itemref idref="c2"/><itemref idref="c1"/></spine></package>`,
		"OEBPS/text/ch1.xhtml": `<html><body><h2>Chapter 1</h2><p>First words.</p></body></html>`,
		"OEBPS/text/ch2.xhtml": `<html><body><h2>Preface</h2></body></html>`,
	})

	res, err := New().ConvertReader(bytes.NewReader(data), StreamInfo{Extension: ".epub"}, WithExtractPages(true))
	require.NoError(t, err)

	assert.Equal(t, "Test Book", res.Title)
	assert.Equal(t, "# Test Book\n\n**Authors:** Test Author\n\n**Language:** en\n\n## Preface\n\n## Chapter 1\n\nFirst words.", res.Markdown)
	require.Len(t, res.Pages, 1)
}

func TestRSSConversion(t *testing.T) {
	feed := `<?xml version="1.0"?><rss version="2.0"><channel><title>Example Feed</title><description>News</description>` +
		`<item><title>First post</title><link>https://example.com/1</link><description>&lt;p&gt;Hello &lt;b&gt;readers&lt;/b&gt;&lt;/p&gt;</description></item>` +
		`</channel></rss>`

	res, err := New().ConvertReader(strings.NewReader(feed), StreamInfo{Extension: ".rss"})
	require.NoError(t, err)
	assert.Equal(t, "Example Feed", res.Title)
	assert.Contains(t, res.Markdown, "# Example Feed")
	assert.Contains(t, res.Markdown, "## First post")
	assert.Contains(t, res.Markdown, "Hello **readers**")
	assert.NotContains(t, res.Markdown, "<rss")
}

func TestCSVConversion(t *testing.T) {
	res, err := New().ConvertReader(strings.NewReader("a,b,c\n1,2\n"), StreamInfo{Extension: ".csv"})
	require.NoError(t, err)
	assert.Equal(t, "| a | b | c |\n| --- | --- | --- |\n| 1 | 2 |  |", res.Markdown)
}

func TestCSVCharsetHint(t *testing.T) {
	// "café" in ISO-8859-1.
	data := []byte("name\ncaf\xe9\n")
	res, err := New().ConvertReader(bytes.NewReader(data), StreamInfo{Extension: ".csv", Charset: "ISO-8859-1"})
	require.NoError(t, err)
	assert.Contains(t, res.Markdown, "café")
}

func TestIpynbConversion(t *testing.T) {
	nb := `{"metadata":{"kernelspec":{"language":"python"}},"cells":[
  {"cell_type":"markdown","source":["# Test Notebook\n","intro"]},
  {"cell_type":"code","source":"print(\"markitdown\")","outputs":[{"output_type":"stream","text":["markitdown\n"]}]}
]}`

	res, err := New().ConvertReader(strings.NewReader(nb), StreamInfo{Extension: ".ipynb"})
	require.NoError(t, err)
	assert.Equal(t, "Test Notebook", res.Title)
	assert.Equal(t, "# Test Notebook\nintro\n\n```python\nprint(\"markitdown\")\n```\n\n```\nmarkitdown\n```", res.Markdown)
}

func TestZipConversion(t *testing.T) {
	data := buildZip(t, map[string]string{
		"docs/readme.txt": "plain text entry",
		"docs/page.html":  "<html><body><h1>Inside</h1></body></html>",
		"blob.bin":        string([]byte{0x00, 0x01, 0xfe, 0xff}),
	})

	res, err := New().ConvertReader(bytes.NewReader(data), StreamInfo{Filename: "bundle.zip"}, WithExtractPages(true))
	require.NoError(t, err)
	assert.Contains(t, res.Markdown, "Content from the zip file `bundle.zip`:")
	assert.Contains(t, res.Markdown, "## File: docs/readme.txt\n\nplain text entry")
	assert.Contains(t, res.Markdown, "## File: docs/page.html\n\n# Inside")
	assert.NotContains(t, res.Markdown, "blob.bin")
	require.Len(t, res.Pages, 1)
}

func TestPlainTextDetection(t *testing.T) {
	res, err := New().ConvertReader(strings.NewReader("\ufeffhello\r\nworld  \n"), StreamInfo{Extension: ".txt"})
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld", res.Markdown)
}

func TestRenderMarkdownTable(t *testing.T) {
	assert.Empty(t, renderMarkdownTable(nil))
	assert.Equal(t, "| h |\n| --- |\n| multi line |\n", renderMarkdownTable([][]string{{"h"}, {"multi\nline"}}))
}

func TestLookupEncoding(t *testing.T) {
	for _, label := range []string{"utf-8", "Shift_JIS", "windows-1252", "GB-18030", "UTF-16LE", "big5", "euc-kr", "ascii"} {
		assert.NotNil(t, lookupEncoding(label), label)
	}
	assert.Nil(t, lookupEncoding(""))
	assert.Nil(t, lookupEncoding("no-such-charset"))
}
