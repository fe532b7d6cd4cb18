package markitdown

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/conductor-oss/markitdown-pages/internal/docxmath"
	"github.com/conductor-oss/markitdown-pages/internal/ooxml"
)

// Default part names, used when the package relationships do not name them.
const (
	docxMainPart      = "word/document.xml"
	docxStylesPart    = "word/styles.xml"
	docxNumberingPart = "word/numbering.xml"
	docxCommentsPart  = "word/comments.xml"
)

// drawingElements are the non-WordprocessingML elements read inside images.
var drawingElements = map[string]bool{
	"blip":      true,
	"imagedata": true,
	"docPr":     true,
}

type docxInlineKind int

const (
	inlineText docxInlineKind = iota
	inlineTab
	inlineLineBreak
	inlineImage
	// inlineRenderedBreak marks where the last rendering engine that saved
	// the document started a new page (w:lastRenderedPageBreak).
	inlineRenderedBreak
	// inlineMath holds an equation converted to LaTeX.
	inlineMath
)

type docxInline struct {
	kind      docxInlineKind
	text      string
	bold      bool
	italic    bool
	strike    bool
	underline bool
	runStyle  string
	href      string
	imageRel  string
	alt       string
	display   bool
}

// mathText returns the equation delimited for markdown: $...$ inline and
// $$...$$ for display equations (m:oMathPara).
func (in docxInline) mathText() string {
	if in.display {
		return "$$" + in.text + "$$"
	}
	return "$" + in.text + "$"
}

// sameFormat reports whether two text inlines can be merged.
func (in docxInline) sameFormat(o docxInline) bool {
	return in.bold == o.bold && in.italic == o.italic && in.strike == o.strike &&
		in.underline == o.underline && in.runStyle == o.runStyle && in.href == o.href
}

type docxParagraph struct {
	styleID  string
	numID    string
	level    int
	inlines  []docxInline
	comments []string
}

// text returns the plain text of the paragraph.
func (p *docxParagraph) text() string {
	var b strings.Builder
	for _, in := range p.inlines {
		switch in.kind {
		case inlineText:
			b.WriteString(in.text)
		case inlineTab:
			b.WriteString("\t")
		case inlineLineBreak:
			b.WriteString("\n")
		case inlineMath:
			b.WriteString(in.mathText())
		}
	}
	return b.String()
}

type docxCell struct {
	blocks []docxBlock
}

type docxTable struct {
	rows [][]*docxCell
}

// docxBlock is either a paragraph or a table.
type docxBlock struct {
	para  *docxParagraph
	table *docxTable
}

// docxDocument is the body of word/document.xml reduced to what the
// renderer and the page-break walk need.
type docxDocument struct {
	blocks []docxBlock
}

// docxComment is one entry of the comments part.
type docxComment struct {
	author string
	text   string
}

// docxPackage bundles the parts a DOCX conversion reads.
type docxPackage struct {
	pkg       *ooxml.Package
	mainPart  string
	rels      map[string]ooxml.Relationship
	styles    map[string]string
	numbering map[string]map[int]bool
	comments  map[string]docxComment
	title     string
}

// openDocx reads the stream from the start and loads the package parts. The
// main document is found through the package relationships.
func openDocx(r io.ReadSeeker) (*docxPackage, *docxDocument, error) {
	pkg, err := ooxml.Open(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open DOCX: %w", err)
	}
	mainPart, err := pkg.MainPart(docxMainPart)
	if err != nil {
		return nil, nil, fmt.Errorf("read package relationships: %w", err)
	}
	data, err := pkg.ReadFile(mainPart)
	if err != nil {
		return nil, nil, fmt.Errorf("read main document: %w", err)
	}
	rels, err := pkg.Relationships(mainPart)
	if err != nil {
		return nil, nil, fmt.Errorf("read document relationships: %w", err)
	}
	dp := &docxPackage{
		pkg:       pkg,
		mainPart:  mainPart,
		rels:      rels,
		styles:    parseDocxStyles(pkg, relatedPart(mainPart, rels, "/styles", docxStylesPart)),
		numbering: parseDocxNumbering(pkg, relatedPart(mainPart, rels, "/numbering", docxNumberingPart)),
		comments:  parseDocxComments(pkg, relatedPart(mainPart, rels, "/comments", docxCommentsPart)),
		title:     parseCoreTitle(pkg),
	}
	doc, err := parseDocxDocument(data, rels)
	if err != nil {
		return nil, nil, err
	}
	return dp, doc, nil
}

// relatedPart resolves the target of the main part's relationship whose type
// ends in suffix, or returns fallback.
func relatedPart(mainPart string, rels map[string]ooxml.Relationship, suffix, fallback string) string {
	for _, rel := range rels {
		if !rel.External() && strings.HasSuffix(rel.Type, suffix) {
			return ooxml.ResolveTarget(mainPart, rel.Target)
		}
	}
	return fallback
}

// parseDocxDocument decodes the body of document.xml.
func parseDocxDocument(data []byte, rels map[string]ooxml.Relationship) (*docxDocument, error) {
	doc := &docxDocument{}
	decoder := xml.NewDecoder(bytes.NewReader(data))

	containers := []*[]docxBlock{&doc.blocks}
	var tables []*docxTable
	var paras []*docxParagraph
	var hrefs []string

	var (
		inRun, inRunProps, inText, inDrawing bool
		run                                  docxInline
		textBuf                              strings.Builder
		image                                docxInline
	)

	add := func(b docxBlock) {
		top := containers[len(containers)-1]
		*top = append(*top, b)
	}
	current := func() *docxParagraph {
		if len(paras) == 0 {
			return nil
		}
		return paras[len(paras)-1]
	}
	emit := func(in docxInline) {
		if p := current(); p != nil {
			p.inlines = append(p.inlines, in)
		}
	}

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			local := t.Name.Local
			if t.Name.Space == docxmath.Namespace && (local == "oMath" || local == "oMathPara") {
				var node docxmath.Node
				if err := decoder.DecodeElement(&node, &t); err != nil {
					return nil, fmt.Errorf("parse equation: %w", err)
				}
				if latex := docxmath.Latex(&node); latex != "" {
					emit(docxInline{kind: inlineMath, text: latex, display: local == "oMathPara"})
				}
				continue
			}
			if t.Name.Space != ooxml.NSWordprocessingML && !drawingElements[local] {
				continue
			}
			switch local {
			case "p":
				paras = append(paras, &docxParagraph{})
			case "pStyle":
				if p := current(); p != nil && !inRun {
					p.styleID, _ = ooxml.Attr(t, "val")
				}
			case "numId":
				if p := current(); p != nil {
					p.numID, _ = ooxml.Attr(t, "val")
				}
			case "ilvl":
				if p := current(); p != nil {
					v, _ := ooxml.Attr(t, "val")
					p.level, _ = strconv.Atoi(v)
				}
			case "r":
				if inDrawing {
					break
				}
				inRun = true
				run = docxInline{kind: inlineText}
				if len(hrefs) > 0 {
					run.href = hrefs[len(hrefs)-1]
				}
			case "rPr":
				inRunProps = inRun
			case "b":
				if inRunProps {
					run.bold = onOffValue(t)
				}
			case "i":
				if inRunProps {
					run.italic = onOffValue(t)
				}
			case "strike", "dstrike":
				if inRunProps {
					run.strike = onOffValue(t)
				}
			case "u":
				if inRunProps {
					v, _ := ooxml.Attr(t, "val")
					run.underline = v != "none"
				}
			case "rStyle":
				if inRunProps {
					run.runStyle, _ = ooxml.Attr(t, "val")
				}
			case "t":
				if inRun && !inDrawing {
					inText = true
					textBuf.Reset()
				}
			case "tab":
				if inRun && !inDrawing {
					emit(docxInline{kind: inlineTab})
				}
			case "br", "cr":
				if inRun && !inDrawing {
					// Explicit page breaks are not rendered; only rendered
					// breaks take part in pagination.
					if v, _ := ooxml.Attr(t, "type"); v != "page" {
						emit(docxInline{kind: inlineLineBreak})
					}
				}
			case "noBreakHyphen":
				if inRun {
					in := run
					in.text = "-"
					emit(in)
				}
			case "commentReference":
				if p := current(); p != nil {
					if id, ok := ooxml.Attr(t, "id"); ok {
						p.comments = append(p.comments, id)
					}
				}
			case "lastRenderedPageBreak":
				if len(tables) == 0 && len(paras) == 1 {
					emit(docxInline{kind: inlineRenderedBreak})
				}
			case "hyperlink":
				href := ""
				if id, ok := ooxml.Attr(t, "id"); ok {
					if rel, ok := rels[id]; ok {
						href = rel.Target
					}
				} else if anchor, ok := ooxml.Attr(t, "anchor"); ok {
					href = "#" + anchor
				}
				hrefs = append(hrefs, href)
			case "drawing", "pict":
				inDrawing = true
				image = docxInline{kind: inlineImage, href: run.href}
			case "blip":
				if inDrawing {
					image.imageRel, _ = ooxml.Attr(t, "embed")
				}
			case "imagedata":
				if inDrawing {
					image.imageRel, _ = ooxml.Attr(t, "id")
				}
			case "docPr":
				if inDrawing {
					image.alt, _ = ooxml.Attr(t, "descr")
				}
			case "tbl":
				tables = append(tables, &docxTable{})
			case "tr":
				if len(tables) > 0 {
					tbl := tables[len(tables)-1]
					tbl.rows = append(tbl.rows, nil)
				}
			case "tc":
				if len(tables) > 0 {
					tbl := tables[len(tables)-1]
					if len(tbl.rows) == 0 {
						tbl.rows = append(tbl.rows, nil)
					}
					cell := &docxCell{}
					last := len(tbl.rows) - 1
					tbl.rows[last] = append(tbl.rows[last], cell)
					containers = append(containers, &cell.blocks)
				}
			}

		case xml.CharData:
			if inText {
				textBuf.Write(t)
			}

		case xml.EndElement:
			if t.Name.Space != ooxml.NSWordprocessingML {
				continue
			}
			switch t.Name.Local {
			case "t":
				if inText {
					in := run
					in.text = textBuf.String()
					emit(in)
					inText = false
				}
			case "rPr":
				inRunProps = false
			case "r":
				if !inDrawing {
					inRun = false
				}
			case "hyperlink":
				if len(hrefs) > 0 {
					hrefs = hrefs[:len(hrefs)-1]
				}
			case "drawing", "pict":
				if inDrawing {
					inDrawing = false
					if image.imageRel != "" {
						emit(image)
					}
				}
			case "p":
				if p := current(); p != nil {
					paras = paras[:len(paras)-1]
					add(docxBlock{para: p})
				}
			case "tc":
				if len(containers) > 1 {
					containers = containers[:len(containers)-1]
				}
			case "tbl":
				if len(tables) > 0 {
					tbl := tables[len(tables)-1]
					tables = tables[:len(tables)-1]
					add(docxBlock{table: tbl})
				}
			}
		}
	}

	return doc, nil
}

// onOffValue reads a WordprocessingML toggle property such as <w:b w:val="0"/>.
func onOffValue(se xml.StartElement) bool {
	v, ok := ooxml.Attr(se, "val")
	if !ok {
		return true
	}
	switch strings.ToLower(v) {
	case "0", "false", "off", "none":
		return false
	}
	return true
}

// parseDocxStyles maps style IDs to style names.
func parseDocxStyles(pkg *ooxml.Package, part string) map[string]string {
	styles := make(map[string]string)
	data, err := pkg.ReadFile(part)
	if err != nil {
		return styles
	}

	decoder := xml.NewDecoder(bytes.NewReader(data))
	var currentID string
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "style":
				currentID, _ = ooxml.Attr(t, "styleId")
			case "name":
				if currentID != "" {
					styles[currentID], _ = ooxml.Attr(t, "val")
				}
			}
		case xml.EndElement:
			if t.Name.Local == "style" {
				currentID = ""
			}
		}
	}
	return styles
}

// parseDocxNumbering maps numbering IDs to per-level "ordered" flags.
func parseDocxNumbering(pkg *ooxml.Package, part string) map[string]map[int]bool {
	result := make(map[string]map[int]bool)
	data, err := pkg.ReadFile(part)
	if err != nil {
		return result
	}

	abstract := make(map[string]map[int]bool)
	numToAbstract := make(map[string]string)

	decoder := xml.NewDecoder(bytes.NewReader(data))
	var absID, numID string
	level := -1
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "abstractNum":
				absID, _ = ooxml.Attr(t, "abstractNumId")
				abstract[absID] = make(map[int]bool)
			case "lvl":
				v, _ := ooxml.Attr(t, "ilvl")
				level, _ = strconv.Atoi(v)
			case "numFmt":
				if absID != "" && level >= 0 {
					v, _ := ooxml.Attr(t, "val")
					abstract[absID][level] = v != "bullet" && v != "none"
				}
			case "num":
				numID, _ = ooxml.Attr(t, "numId")
			case "abstractNumId":
				if numID != "" {
					numToAbstract[numID], _ = ooxml.Attr(t, "val")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "abstractNum":
				absID = ""
			case "lvl":
				level = -1
			case "num":
				numID = ""
			}
		}
	}

	for num, abs := range numToAbstract {
		if levels, ok := abstract[abs]; ok {
			result[num] = levels
		}
	}
	return result
}

// parseDocxComments maps comment IDs to their author and text. The
// paragraphs of a comment are joined with a space.
func parseDocxComments(pkg *ooxml.Package, part string) map[string]docxComment {
	comments := make(map[string]docxComment)
	data, err := pkg.ReadFile(part)
	if err != nil {
		return comments
	}

	decoder := xml.NewDecoder(bytes.NewReader(data))
	var (
		id, author string
		inText     bool
		paras      []string
		para       strings.Builder
	)
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "comment":
				id, _ = ooxml.Attr(t, "id")
				author, _ = ooxml.Attr(t, "author")
				paras = paras[:0]
			case "p":
				para.Reset()
			case "t":
				inText = true
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if text := strings.TrimSpace(para.String()); text != "" {
					paras = append(paras, text)
				}
			case "comment":
				comments[id] = docxComment{author: author, text: strings.Join(paras, " ")}
			}
		}
	}
	return comments
}

// parseCoreTitle reads dc:title from the package core properties.
func parseCoreTitle(pkg *ooxml.Package) string {
	data, err := pkg.ReadFile("docProps/core.xml")
	if err != nil {
		return ""
	}
	var core struct {
		Title string `xml:"title"`
	}
	if err := xml.Unmarshal(data, &core); err != nil {
		return ""
	}
	return strings.TrimSpace(core.Title)
}
