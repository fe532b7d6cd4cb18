package markitdown

import (
	"encoding/base64"
	"fmt"
	"html"
	"io"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/conductor-oss/markitdown-pages/internal/ooxml"
)

// DocxConverter handles DOCX files.
//
// Word documents carry no stored page boundaries. With page extraction
// enabled, the converter reads the rendered page breaks Word leaves in the
// paragraph stream, takes the first characters of the text after each break
// as a marker, and cuts the rendered markdown where the markers occur.
type DocxConverter struct {
	markitdown *MarkItDown
	dep        dependency
}

// NewDocxConverter creates a new DocxConverter.
func NewDocxConverter(m *MarkItDown) *DocxConverter {
	return &DocxConverter{markitdown: m, dep: docxDependency}
}

func (c *DocxConverter) Accepts(info StreamInfo) bool {
	return acceptsFormat(info, []string{".docx"}, []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"})
}

func (c *DocxConverter) Convert(reader io.ReadSeeker, info StreamInfo, opts ConvertOptions) (*DocumentConverterResult, error) {
	if err := c.dep.check("DocxConverter", ".docx"); err != nil {
		return nil, err
	}

	styleMapText := opts.StyleMap
	if styleMapText == "" && c.markitdown != nil {
		styleMapText = c.markitdown.styleMap
	}
	styleMap, err := ParseStyleMap(styleMapText)
	if err != nil {
		return nil, err
	}

	// First pass: render the document to HTML, then to markdown.
	dp, doc, err := openDocx(reader)
	if err != nil {
		return nil, err
	}
	htmlStr := c.renderHTML(dp, doc, styleMap)
	rendered, err := NewHTMLConverter(c.markitdown).ConvertString(htmlStr)
	if err != nil {
		return nil, fmt.Errorf("convert DOCX HTML to markdown: %w", err)
	}

	result := &DocumentConverterResult{
		Markdown: normalizeOutput(rendered.Markdown),
		Title:    dp.title,
		paged:    true,
	}
	if !opts.ExtractPages {
		return result, nil
	}

	// Second pass: walk the paragraph stream for rendered page breaks.
	markers, err := docxPageMarkers(reader)
	if err != nil {
		return nil, err
	}
	pages, skipped := splitByMarkers(result.Markdown, markers)
	c.markitdown.log().Debug("docx pages located",
		zap.Int("breaks", len(markers)),
		zap.Int("undetectable", skipped),
		zap.Int("pages", len(pages)))
	result.Pages = pages
	return result, nil
}

// docxPageMarkers re-reads the document and returns one marker per rendered
// page break in body paragraphs, in document order.
func docxPageMarkers(reader io.ReadSeeker) ([]string, error) {
	_, doc, err := openDocx(reader)
	if err != nil {
		return nil, err
	}

	var markers []string
	for _, b := range doc.blocks {
		if b.para == nil {
			continue
		}
		for i, in := range b.para.inlines {
			if in.kind == inlineRenderedBreak {
				markers = append(markers, pageMarker(followingText(b.para.inlines[i+1:])))
			}
		}
	}
	return markers, nil
}

// followingText returns the text after a page break up to the next line
// break, with whitespace collapsed the way the HTML rendering collapses it.
func followingText(inlines []docxInline) string {
	var b strings.Builder
	for _, in := range inlines {
		if in.kind == inlineLineBreak || in.kind == inlineRenderedBreak {
			break
		}
		switch in.kind {
		case inlineText:
			b.WriteString(in.text)
		case inlineTab:
			b.WriteString(" ")
		case inlineMath:
			b.WriteString(in.mathText())
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// renderHTML turns the parsed body into HTML for the markdown renderer.
func (c *DocxConverter) renderHTML(dp *docxPackage, doc *docxDocument, sm *StyleMap) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	c.renderBlocks(&b, dp, doc.blocks, sm)
	b.WriteString("</body></html>")
	return b.String()
}

type openList struct {
	tag    string
	liOpen bool
}

func (c *DocxConverter) renderBlocks(b *strings.Builder, dp *docxPackage, blocks []docxBlock, sm *StyleMap) {
	var lists []openList

	closeLists := func(depth int) {
		for len(lists) > depth {
			top := lists[len(lists)-1]
			if top.liOpen {
				b.WriteString("</li>")
			}
			b.WriteString("</" + top.tag + ">")
			lists = lists[:len(lists)-1]
		}
	}

	for _, blk := range blocks {
		if blk.table != nil {
			closeLists(0)
			c.renderTable(b, dp, blk.table, sm)
			continue
		}
		p := blk.para
		content := c.renderParagraph(dp, p, sm)
		if strings.TrimSpace(content) == "" {
			continue
		}

		styleName := dp.styles[p.styleID]
		tag, mapped := sm.Paragraph(p.styleID, styleName)
		if mapped && tag == dropStyle {
			continue
		}

		if !mapped && p.numID != "" && p.numID != "0" {
			listTag := "ul"
			if dp.numbering[p.numID][p.level] {
				listTag = "ol"
			}
			depth := p.level + 1
			closeLists(depth)
			if len(lists) == depth && lists[depth-1].tag != listTag {
				closeLists(depth - 1)
			}
			if len(lists) == depth && lists[depth-1].liOpen {
				b.WriteString("</li>")
				lists[depth-1].liOpen = false
			}
			for len(lists) < depth {
				if n := len(lists); n > 0 && !lists[n-1].liOpen {
					b.WriteString("<li>")
					lists[n-1].liOpen = true
				}
				b.WriteString("<" + listTag + ">")
				lists = append(lists, openList{tag: listTag})
			}
			b.WriteString("<li>" + content)
			lists[depth-1].liOpen = true
			continue
		}

		closeLists(0)
		if !mapped {
			tag = "p"
			if level := headingLevel(p.styleID, styleName); level > 0 {
				tag = fmt.Sprintf("h%d", level)
			}
		}
		b.WriteString("<" + tag + ">" + content + "</" + tag + ">\n")
	}
	closeLists(0)
}

func (c *DocxConverter) renderTable(b *strings.Builder, dp *docxPackage, tbl *docxTable, sm *StyleMap) {
	if len(tbl.rows) == 0 {
		return
	}
	b.WriteString("<table>")
	for i, row := range tbl.rows {
		tag := "td"
		if i == 0 {
			tag = "th"
		}
		b.WriteString("<tr>")
		for _, cell := range row {
			var parts []string
			for _, blk := range cell.blocks {
				if blk.para != nil {
					if s := c.renderParagraph(dp, blk.para, sm); strings.TrimSpace(s) != "" {
						parts = append(parts, s)
					}
				}
			}
			b.WriteString("<" + tag + ">" + strings.Join(parts, " ") + "</" + tag + ">")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>\n")
}

// renderParagraph renders the paragraph's inlines followed by the comments
// anchored in it.
func (c *DocxConverter) renderParagraph(dp *docxPackage, p *docxParagraph, sm *StyleMap) string {
	content := c.renderInlines(dp, p.inlines, sm)
	for _, id := range p.comments {
		if cm, ok := dp.comments[id]; ok && cm.text != "" {
			content += html.EscapeString(fmt.Sprintf(" [comment by %s: %s]", cm.author, cm.text))
		}
	}
	return content
}

// renderInlines renders a paragraph's runs, merging neighbours that share
// formatting so the markdown does not split emphasis needlessly.
func (c *DocxConverter) renderInlines(dp *docxPackage, inlines []docxInline, sm *StyleMap) string {
	var merged []docxInline
	for _, in := range inlines {
		if in.kind == inlineTab {
			in = docxInline{kind: inlineText, text: " "}
			if n := len(merged); n > 0 && merged[n-1].kind == inlineText {
				in = merged[n-1]
				in.text = " "
			}
		}
		if n := len(merged); n > 0 && in.kind == inlineText && merged[n-1].kind == inlineText && merged[n-1].sameFormat(in) {
			merged[n-1].text += in.text
			continue
		}
		merged = append(merged, in)
	}

	var b strings.Builder
	for _, in := range merged {
		switch in.kind {
		case inlineText:
			text := html.EscapeString(in.text)
			if in.runStyle != "" {
				if tag, ok := sm.Run(in.runStyle, dp.styles[in.runStyle]); ok {
					if tag == dropStyle {
						continue
					}
					text = "<" + tag + ">" + text + "</" + tag + ">"
				}
			}
			if in.strike {
				text = "<s>" + text + "</s>"
			}
			if in.italic {
				text = "<em>" + text + "</em>"
			}
			if in.bold {
				text = "<strong>" + text + "</strong>"
			}
			if in.href != "" {
				text = `<a href="` + html.EscapeString(in.href) + `">` + text + "</a>"
			}
			b.WriteString(text)
		case inlineLineBreak:
			b.WriteString("<br>")
		case inlineMath:
			b.WriteString(html.EscapeString(in.mathText()))
		case inlineImage:
			b.WriteString(c.renderImage(dp, in))
		}
	}
	return b.String()
}

// renderImage embeds a package image as a data URI.
func (c *DocxConverter) renderImage(dp *docxPackage, in docxInline) string {
	rel, ok := dp.rels[in.imageRel]
	if !ok || rel.External() {
		return ""
	}
	data, err := dp.pkg.ReadFile(ooxml.ResolveTarget(dp.mainPart, rel.Target))
	if err != nil {
		return ""
	}

	contentType := "image/png"
	switch strings.ToLower(path.Ext(rel.Target)) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".gif":
		contentType = "image/gif"
	case ".bmp":
		contentType = "image/bmp"
	case ".svg":
		contentType = "image/svg+xml"
	}

	alt := in.alt
	if alt == "" {
		alt = path.Base(rel.Target)
	}
	src := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
	return fmt.Sprintf(`<img src="%s" alt="%s"/>`, src, html.EscapeString(alt))
}

// headingLevel returns the heading level (1-6) for a style, or 0 if not a heading.
func headingLevel(styleID, styleName string) int {
	for _, s := range []string{styleName, styleID} {
		lower := strings.ToLower(strings.ReplaceAll(s, " ", ""))
		if lower == "title" {
			return 1
		}
		if len(lower) == len("heading1") && strings.HasPrefix(lower, "heading") {
			if d := lower[len(lower)-1]; d >= '1' && d <= '6' {
				return int(d - '0')
			}
		}
	}
	return 0
}
