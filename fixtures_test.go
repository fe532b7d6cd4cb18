package markitdown

import (
	"archive/zip"
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conductor-oss/markitdown-pages/internal/ooxml"
)

const (
	wNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:m="http://schemas.openxmlformats.org/officeDocument/2006/math"`
	pNS = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`
)

// buildZip writes files into an in-memory archive in name order.
func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const relsNS = `xmlns="http://schemas.openxmlformats.org/package/2006/relationships"`

// docxFixture describes a minimal word processing package. A non-empty
// mainPart stores the document under that name and points the package
// relationships at it.
type docxFixture struct {
	body      string
	styles    string
	numbering string
	comments  string
	rels      string
	title     string
	mainPart  string
	extra     map[string]string
}

func (f docxFixture) build(t *testing.T) []byte {
	t.Helper()
	mainPart := "word/document.xml"
	if f.mainPart != "" {
		mainPart = f.mainPart
	}
	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"_rels/.rels": `<?xml version="1.0"?><Relationships ` + relsNS + `>` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="/` + mainPart + `"/>` +
			`</Relationships>`,
		mainPart: `<?xml version="1.0"?><w:document ` + wNS + `><w:body>` + f.body + `</w:body></w:document>`,
	}
	if f.styles != "" {
		files["word/styles.xml"] = `<?xml version="1.0"?><w:styles ` + wNS + `>` + f.styles + `</w:styles>`
	}
	if f.numbering != "" {
		files["word/numbering.xml"] = `<?xml version="1.0"?><w:numbering ` + wNS + `>` + f.numbering + `</w:numbering>`
	}
	if f.comments != "" {
		files["word/comments.xml"] = `<?xml version="1.0"?><w:comments ` + wNS + `>` + f.comments + `</w:comments>`
	}
	if f.rels != "" {
		files[ooxml.RelsPathFor(mainPart)] = `<?xml version="1.0"?><Relationships ` + relsNS + `>` + f.rels + `</Relationships>`
	}
	if f.title != "" {
		files["docProps/core.xml"] = `<?xml version="1.0"?><cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>` + f.title + `</dc:title></cp:coreProperties>`
	}
	for name, content := range f.extra {
		files[name] = content
	}
	return buildZip(t, files)
}

// para builds a body paragraph from runs.
func para(runs ...string) string {
	return "<w:p>" + strings.Join(runs, "") + "</w:p>"
}

// styledPara builds a paragraph with a paragraph style.
func styledPara(styleID string, runs ...string) string {
	return `<w:p><w:pPr><w:pStyle w:val="` + styleID + `"/></w:pPr>` + strings.Join(runs, "") + "</w:p>"
}

// listPara builds a numbered paragraph.
func listPara(numID string, level int, runs ...string) string {
	return fmt.Sprintf(`<w:p><w:pPr><w:numPr><w:ilvl w:val="%d"/><w:numId w:val="%s"/></w:numPr></w:pPr>%s</w:p>`,
		level, numID, strings.Join(runs, ""))
}

func run(text string) string {
	return `<w:r><w:t xml:space="preserve">` + text + `</w:t></w:r>`
}

func boldRun(text string) string {
	return `<w:r><w:rPr><w:b/></w:rPr><w:t>` + text + `</w:t></w:r>`
}

// pageBreakRun is a run that starts on a new rendered page.
func pageBreakRun(text string) string {
	if text == "" {
		return `<w:r><w:lastRenderedPageBreak/></w:r>`
	}
	return `<w:r><w:lastRenderedPageBreak/><w:t xml:space="preserve">` + text + `</w:t></w:r>`
}

// mathRun wraps OMML content in an inline equation.
func mathRun(omml string) string {
	return `<m:oMath>` + omml + `</m:oMath>`
}

// mathText is an equation run of plain text.
func mathText(text string) string {
	return `<m:r><m:t>` + text + `</m:t></m:r>`
}

func headingStyles() string {
	return `<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/></w:style>` +
		`<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/></w:style>` +
		`<w:style w:type="paragraph" w:styleId="SectionTitle"><w:name w:val="Section Title"/></w:style>` +
		`<w:style w:type="character" w:styleId="Hidden"><w:name w:val="Hidden"/></w:style>`
}

// pptxSlideFixture describes one slide of a pptx fixture.
type pptxSlideFixture struct {
	title string
	body  string
	notes string
}

func buildPptx(t *testing.T, slides ...pptxSlideFixture) []byte {
	t.Helper()
	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
	}

	var ids, rels strings.Builder
	for i, s := range slides {
		n := i + 1
		fmt.Fprintf(&ids, `<p:sldId id="%d" r:id="rId%d"/>`, 255+n, n)
		fmt.Fprintf(&rels, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`, n, n)

		files[fmt.Sprintf("ppt/slides/slide%d.xml", n)] = `<?xml version="1.0"?><p:sld ` + pNS + `><p:cSld><p:spTree>` +
			`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Title"/><p:cNvSpPr/><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr>` +
			`<p:spPr><a:xfrm><a:off x="100" y="100"/></a:xfrm></p:spPr><p:txBody><a:p><a:r><a:t>` + s.title + `</a:t></a:r></a:p></p:txBody></p:sp>` +
			`<p:sp><p:nvSpPr><p:cNvPr id="3" name="Body"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>` +
			`<p:spPr><a:xfrm><a:off x="100" y="2000"/></a:xfrm></p:spPr><p:txBody><a:p><a:r><a:t>` + s.body + `</a:t></a:r></a:p></p:txBody></p:sp>` +
			`</p:spTree></p:cSld></p:sld>`

		if s.notes != "" {
			files[fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n)] = `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
				fmt.Sprintf(`<Relationship Id="rId9" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide" Target="../notesSlides/notesSlide%d.xml"/>`, n) +
				`</Relationships>`
			files[fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", n)] = `<?xml version="1.0"?><p:notes ` + pNS + `><p:cSld><p:spTree>` +
				`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Notes"/><p:cNvSpPr/><p:nvPr><p:ph type="body"/></p:nvPr></p:nvSpPr>` +
				`<p:txBody><a:p><a:r><a:t>` + s.notes + `</a:t></a:r></a:p></p:txBody></p:sp>` +
				`</p:spTree></p:cSld></p:notes>`
		}
	}

	files["ppt/presentation.xml"] = `<?xml version="1.0"?><p:presentation ` + pNS + `><p:sldIdLst>` + ids.String() + `</p:sldIdLst></p:presentation>`
	files["ppt/_rels/presentation.xml.rels"] = `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` + rels.String() + `</Relationships>`
	return buildZip(t, files)
}

// joinPages concatenates page contents in order.
func joinPages(pages []PageInfo) string {
	var b strings.Builder
	for _, p := range pages {
		b.WriteString(p.Content)
	}
	return b.String()
}

// newTestServer serves a small HTML page at /page.html and 404 elsewhere.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/page.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body><h1>Served</h1></body></html>"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}
