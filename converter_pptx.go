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
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/conductor-oss/markitdown-pages/internal/ooxml"
)

const pptxPresentationPart = "ppt/presentation.xml"

// PptxConverter handles PPTX files. Each slide is one page.
type PptxConverter struct {
	markitdown *MarkItDown
}

// NewPptxConverter creates a new PptxConverter.
func NewPptxConverter(m *MarkItDown) *PptxConverter {
	return &PptxConverter{markitdown: m}
}

func (c *PptxConverter) Accepts(info StreamInfo) bool {
	return acceptsFormat(info, []string{".pptx"}, []string{"application/vnd.openxmlformats-officedocument.presentationml"})
}

func (c *PptxConverter) Convert(reader io.ReadSeeker, info StreamInfo, opts ConvertOptions) (*DocumentConverterResult, error) {
	pkg, err := ooxml.Open(reader)
	if err != nil {
		return nil, fmt.Errorf("open PPTX: %w", err)
	}

	slides, err := pptxSlideParts(pkg)
	if err != nil {
		return nil, err
	}

	title := ""
	pages := make([]string, 0, len(slides))
	for i, part := range slides {
		slide, err := readPptxSlide(pkg, part)
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", i+1, err)
		}
		if title == "" {
			title = slide.title
		}
		pages = append(pages, fmt.Sprintf("<!-- Slide number: %d -->\n%s", i+1, slide.markdown))
	}

	return pagedResult(pages, title, opts), nil
}

// pptxSlideParts returns the slide part names in presentation order.
func pptxSlideParts(pkg *ooxml.Package) ([]string, error) {
	presentation, err := pkg.MainPart(pptxPresentationPart)
	if err != nil {
		return nil, fmt.Errorf("read package relationships: %w", err)
	}
	data, err := pkg.ReadFile(presentation)
	if err != nil {
		return nil, fmt.Errorf("read presentation: %w", err)
	}
	var pres struct {
		Slides []struct {
			RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
		} `xml:"sldIdLst>sldId"`
	}
	if err := xml.Unmarshal(data, &pres); err != nil {
		return nil, fmt.Errorf("parse presentation: %w", err)
	}
	rels, err := pkg.Relationships(presentation)
	if err != nil {
		return nil, err
	}

	parts := make([]string, 0, len(pres.Slides))
	for _, s := range pres.Slides {
		if rel, ok := rels[s.RID]; ok {
			parts = append(parts, ooxml.ResolveTarget(presentation, rel.Target))
		}
	}
	return parts, nil
}

type pptxSlide struct {
	title    string
	markdown string
}

// pptxShape is one rendered shape with its position on the slide in EMU.
type pptxShape struct {
	top, left int64
	markdown  string
}

func readPptxSlide(pkg *ooxml.Package, part string) (*pptxSlide, error) {
	data, err := pkg.ReadFile(part)
	if err != nil {
		return nil, err
	}
	var root xmlNode
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse slide: %w", err)
	}
	rels, err := pkg.Relationships(part)
	if err != nil {
		return nil, err
	}

	slide := &pptxSlide{}
	var shapes []pptxShape
	root.walk(func(n *xmlNode) bool {
		switch n.XMLName.Local {
		case "sp":
			text := n.child("txBody").paragraphs()
			if strings.TrimSpace(text) == "" {
				return false
			}
			if ph := n.path("nvSpPr", "nvPr", "ph"); ph != nil {
				if t := ph.attr("type"); t == "title" || t == "ctrTitle" {
					if slide.title == "" {
						slide.title = strings.TrimSpace(text)
					}
					text = "# " + strings.TrimSpace(text)
				}
			}
			shapes = append(shapes, newPptxShape(n, text))
			return false
		case "pic":
			alt := strings.Join(strings.Fields(n.path("nvPicPr", "cNvPr").attr("descr")), " ")
			name := "image"
			if blip := n.find("blip"); blip != nil {
				if rel, ok := rels[blip.attr("embed")]; ok {
					name = path.Base(rel.Target)
				}
			}
			shapes = append(shapes, newPptxShape(n, fmt.Sprintf("![%s](%s)", strings.NewReplacer("[", "", "]", "").Replace(alt), name)))
			return false
		case "graphicFrame":
			if tbl := n.find("tbl"); tbl != nil {
				var rows [][]string
				for _, tr := range tbl.children("tr") {
					var row []string
					for _, tc := range tr.children("tc") {
						row = append(row, strings.TrimSpace(tc.child("txBody").paragraphs()))
					}
					rows = append(rows, row)
				}
				if len(rows) > 0 {
					shapes = append(shapes, newPptxShape(n, strings.TrimSpace(renderMarkdownTable(rows))))
				}
			}
			return false
		}
		return true
	})

	sort.SliceStable(shapes, func(i, j int) bool {
		if shapes[i].top != shapes[j].top {
			return shapes[i].top < shapes[j].top
		}
		return shapes[i].left < shapes[j].left
	})

	blocks := make([]string, 0, len(shapes)+1)
	for _, s := range shapes {
		blocks = append(blocks, s.markdown)
	}
	if notes := readPptxNotes(pkg, part, rels); notes != "" {
		blocks = append(blocks, "### Notes:\n"+notes)
	}
	slide.markdown = strings.Join(blocks, "\n\n")
	return slide, nil
}

func newPptxShape(n *xmlNode, md string) pptxShape {
	s := pptxShape{top: math.MaxInt64, left: math.MaxInt64, markdown: md}
	off := n.path("spPr", "xfrm", "off")
	if off == nil {
		off = n.path("xfrm", "off")
	}
	if off != nil {
		if v, err := strconv.ParseInt(off.attr("x"), 10, 64); err == nil {
			s.left = v
		}
		if v, err := strconv.ParseInt(off.attr("y"), 10, 64); err == nil {
			s.top = v
		}
	}
	return s
}

func readPptxNotes(pkg *ooxml.Package, part string, rels map[string]ooxml.Relationship) string {
	for _, rel := range rels {
		if !strings.HasSuffix(rel.Type, "/notesSlide") {
			continue
		}
		data, err := pkg.ReadFile(ooxml.ResolveTarget(part, rel.Target))
		if err != nil {
			return ""
		}
		var root xmlNode
		if err := xml.Unmarshal(data, &root); err != nil {
			return ""
		}
		var parts []string
		root.walk(func(n *xmlNode) bool {
			if n.XMLName.Local == "sp" {
				// Slide number and header placeholders carry no notes text.
				if ph := n.path("nvSpPr", "nvPr", "ph"); ph != nil && ph.attr("type") != "body" {
					return false
				}
				if text := strings.TrimSpace(n.child("txBody").paragraphs()); text != "" {
					parts = append(parts, text)
				}
				return false
			}
			return true
		})
		return strings.Join(parts, "\n")
	}
	return ""
}

// xmlNode is a generic DrawingML element tree.
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []xmlNode  `xml:",any"`
	Content  string     `xml:",chardata"`
}

func (n *xmlNode) attr(local string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func (n *xmlNode) child(local string) *xmlNode {
	if n == nil {
		return nil
	}
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			return &n.Children[i]
		}
	}
	return nil
}

func (n *xmlNode) children(local string) []*xmlNode {
	var out []*xmlNode
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			out = append(out, &n.Children[i])
		}
	}
	return out
}

// path follows a chain of child elements.
func (n *xmlNode) path(locals ...string) *xmlNode {
	for _, l := range locals {
		n = n.child(l)
	}
	return n
}

// find returns the first descendant with the given local name.
func (n *xmlNode) find(local string) *xmlNode {
	var found *xmlNode
	n.walk(func(c *xmlNode) bool {
		if found != nil {
			return false
		}
		if c != n && c.XMLName.Local == local {
			found = c
			return false
		}
		return true
	})
	return found
}

// walk visits n and its descendants depth-first; fn returns false to skip a
// node's children.
func (n *xmlNode) walk(fn func(*xmlNode) bool) {
	if !fn(n) {
		return
	}
	for i := range n.Children {
		n.Children[i].walk(fn)
	}
}

// paragraphs returns the text of a txBody, one line per a:p.
func (n *xmlNode) paragraphs() string {
	if n == nil {
		return ""
	}
	var lines []string
	for _, p := range n.children("p") {
		var b strings.Builder
		p.walk(func(c *xmlNode) bool {
			switch c.XMLName.Local {
			case "t":
				b.WriteString(c.Content)
			case "br":
				b.WriteString("\n")
			}
			return true
		})
		if b.Len() > 0 {
			lines = append(lines, b.String())
		}
	}
	return strings.Join(lines, "\n")
}
