//go:build !nopdf

package markitdown

import (
	"io"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

var pdfDependency = dependency{feature: "pdf"}

// openPDFBackend opens a PDF with github.com/ledongthuc/pdf.
func openPDFBackend(r io.ReaderAt, size int64) (pdfDocument, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	return &ledongthucDocument{reader: reader}, nil
}

type ledongthucDocument struct {
	reader *pdf.Reader
}

func (d *ledongthucDocument) NumPages() int {
	return d.reader.NumPage()
}

// PageElements returns one text element per line of the page followed by
// one graphic element per rectangle drawn on it. Rectangles are the only
// non-text layout the backend reports; the converter leaves graphic
// elements out of the page content.
func (d *ledongthucDocument) PageElements(n int) ([]pdfElement, error) {
	page := d.reader.Page(n)
	if page.V.IsNull() {
		return nil, nil
	}

	rows, err := page.GetTextByRow()
	if err != nil {
		return nil, err
	}

	content := page.Content()
	lines := rowLines(rows)
	if len(lines) == 0 {
		lines = positionedLines(content.Text)
	}

	elements := make([]pdfElement, 0, len(lines)+len(content.Rect))
	for _, line := range lines {
		elements = append(elements, pdfElement{text: line + "\n"})
	}
	for range content.Rect {
		elements = append(elements, pdfElement{graphic: true})
	}
	return elements, nil
}

func (d *ledongthucDocument) Text() (string, error) {
	r, err := d.reader.GetPlainText()
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// rowLines joins the words of each row. An empty string between words marks
// a word boundary.
func rowLines(rows pdf.Rows) []string {
	var lines []string
	for _, row := range rows {
		var line strings.Builder
		gap := false
		for _, word := range row.Content {
			if word.S == "" {
				gap = true
				continue
			}
			if gap && line.Len() > 0 && !strings.HasSuffix(line.String(), " ") {
				line.WriteString(" ")
			}
			line.WriteString(word.S)
			gap = false
		}
		if text := strings.TrimSpace(line.String()); text != "" {
			lines = append(lines, text)
		}
	}
	return lines
}

// positionedLines groups glyphs into lines by their baseline and inserts a
// space where the horizontal gap between glyphs exceeds a fraction of the
// font size.
func positionedLines(texts []pdf.Text) []string {
	type line struct {
		y      float64
		glyphs []pdf.Text
	}

	var glyphs []pdf.Text
	for _, t := range texts {
		if strings.TrimSpace(t.S) != "" {
			glyphs = append(glyphs, t)
		}
	}
	if len(glyphs) == 0 {
		return nil
	}

	tolerance := 3.0
	if glyphs[0].FontSize > 0 {
		tolerance = glyphs[0].FontSize * 0.3
	}

	var grouped []line
	for _, g := range glyphs {
		placed := false
		for i := range grouped {
			if math.Abs(grouped[i].y-g.Y) < tolerance {
				grouped[i].glyphs = append(grouped[i].glyphs, g)
				placed = true
				break
			}
		}
		if !placed {
			grouped = append(grouped, line{y: g.Y, glyphs: []pdf.Text{g}})
		}
	}

	// PDF y grows upwards.
	sort.Slice(grouped, func(i, j int) bool { return grouped[i].y > grouped[j].y })

	var lines []string
	for _, ln := range grouped {
		sort.Slice(ln.glyphs, func(i, j int) bool { return ln.glyphs[i].X < ln.glyphs[j].X })

		var b strings.Builder
		end := 0.0
		for i, g := range ln.glyphs {
			if i > 0 && g.X-end > math.Max(g.FontSize*0.2, 1.0) {
				b.WriteString(" ")
			}
			b.WriteString(g.S)
			width := g.W
			if width <= 0 {
				width = float64(len([]rune(g.S))) * g.FontSize * 0.55
			}
			end = g.X + width
		}
		if text := strings.TrimSpace(b.String()); text != "" {
			lines = append(lines, text)
		}
	}
	return lines
}
