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

// Package docxmath converts Office Math Markup (OMML) equations to LaTeX.
package docxmath

import (
	"encoding/xml"
	"strings"
)

// Namespace is the OMML namespace used by the m: prefix in WordprocessingML.
const Namespace = "http://schemas.openxmlformats.org/officeDocument/2006/math"

// Node is a generic OMML element. A DOCX reader decodes m:oMath and
// m:oMathPara subtrees into it with xml.Decoder.DecodeElement.
type Node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Nodes   []Node     `xml:",any"`
	Text    string     `xml:",chardata"`
}

func (n *Node) name() string { return n.XMLName.Local }

func (n *Node) child(name string) *Node {
	for i := range n.Nodes {
		if n.Nodes[i].name() == name {
			return &n.Nodes[i]
		}
	}
	return nil
}

// prop returns the m:val of a child of the element's property node, e.g.
// the chr of an accent in <m:accPr><m:chr m:val="..."/></m:accPr>.
func (n *Node) prop(name string) (string, bool) {
	pr := n.child(n.name() + "Pr")
	if pr == nil {
		return "", false
	}
	c := pr.child(name)
	if c == nil {
		return "", false
	}
	for _, a := range c.Attrs {
		if a.Name.Local == "val" {
			return a.Value, true
		}
	}
	return "", true
}

// Latex converts an m:oMath or m:oMathPara element. Equations of a
// paragraph are separated by a space. When the markup yields nothing the
// element's plain text is returned, escaped.
func Latex(n *Node) string {
	var out string
	if n.name() == "oMathPara" {
		var parts []string
		for i := range n.Nodes {
			if n.Nodes[i].name() == "oMath" {
				if s := strings.TrimSpace(convertAll(&n.Nodes[i])); s != "" {
					parts = append(parts, s)
				}
			}
		}
		out = strings.Join(parts, " ")
	} else {
		out = strings.TrimSpace(convertAll(n))
	}
	if out == "" {
		out = escapeText(strings.Join(strings.Fields(plainText(n)), " "))
	}
	return out
}

// Unmarshal decodes an OMML fragment and converts it.
func Unmarshal(data []byte) (string, error) {
	var n Node
	if err := xml.Unmarshal(data, &n); err != nil {
		return "", err
	}
	return Latex(&n), nil
}

func plainText(n *Node) string {
	var b strings.Builder
	b.WriteString(n.Text)
	for i := range n.Nodes {
		b.WriteString(plainText(&n.Nodes[i]))
	}
	return b.String()
}

func convertAll(n *Node) string {
	var b strings.Builder
	for i := range n.Nodes {
		b.WriteString(convert(&n.Nodes[i]))
	}
	return b.String()
}

// arg converts the named child, or returns "" when it is absent.
func arg(n *Node, name string) string {
	if c := n.child(name); c != nil {
		return convertAll(c)
	}
	return ""
}

func convert(n *Node) string {
	switch n.name() {
	case "r":
		return runText(n)
	case "acc":
		chr, _ := n.prop("chr")
		cmd, ok := accents[firstRune(chr)]
		if !ok {
			cmd = `\hat`
		}
		return cmd + "{" + arg(n, "e") + "}"
	case "bar":
		cmd := `\overline`
		if pos, _ := n.prop("pos"); pos == "bot" {
			cmd = `\underline`
		}
		return cmd + "{" + arg(n, "e") + "}"
	case "groupChr":
		chr, ok := n.prop("chr")
		if !ok || chr == "" {
			chr = "⏟"
		}
		if cmd, ok := accents[firstRune(chr)]; ok {
			return cmd + "{" + arg(n, "e") + "}"
		}
		return arg(n, "e")
	case "sSub":
		return arg(n, "e") + "_{" + arg(n, "sub") + "}"
	case "sSup":
		return arg(n, "e") + "^{" + arg(n, "sup") + "}"
	case "sSubSup":
		return arg(n, "e") + "_{" + arg(n, "sub") + "}^{" + arg(n, "sup") + "}"
	case "sPre":
		return "{}_{" + arg(n, "sub") + "}^{" + arg(n, "sup") + "}" + arg(n, "e")
	case "f":
		return fraction(n)
	case "func":
		return function(n)
	case "d":
		return delimited(n)
	case "rad":
		if deg := arg(n, "deg"); deg != "" {
			return `\sqrt[` + deg + "]{" + arg(n, "e") + "}"
		}
		return `\sqrt{` + arg(n, "e") + "}"
	case "nary":
		return nary(n)
	case "limLow":
		base, lim := arg(n, "e"), arg(n, "lim")
		if _, ok := limitFuncs[base]; ok {
			return `\` + base + "_{" + lim + "}"
		}
		return base + "_{" + lim + "}"
	case "limUpp":
		return `\overset{` + arg(n, "lim") + "}{" + arg(n, "e") + "}"
	case "lim":
		return strings.ReplaceAll(convertAll(n), `\rightarrow `, `\to `)
	case "eqArr":
		return `\begin{array}{c}` + joinChildren(n, "e", ` \\ `) + `\end{array}`
	case "m":
		rows := make([]string, 0, len(n.Nodes))
		for i := range n.Nodes {
			if n.Nodes[i].name() == "mr" {
				rows = append(rows, joinChildren(&n.Nodes[i], "e", " & "))
			}
		}
		return `\begin{matrix}` + strings.Join(rows, ` \\ `) + `\end{matrix}`
	}
	if strings.HasSuffix(n.name(), "Pr") {
		return ""
	}
	// Containers (e, num, den, box, borderBox, phant, ...) pass through.
	return convertAll(n)
}

func joinChildren(n *Node, name, sep string) string {
	var parts []string
	for i := range n.Nodes {
		if n.Nodes[i].name() == name {
			parts = append(parts, convertAll(&n.Nodes[i]))
		}
	}
	return strings.Join(parts, sep)
}

func fraction(n *Node) string {
	num, den := arg(n, "num"), arg(n, "den")
	typ, _ := n.prop("type")
	switch typ {
	case "skw":
		return "^{" + num + "}/_{" + den + "}"
	case "lin":
		return "{" + num + "}/{" + den + "}"
	case "noBar":
		return `\genfrac{}{}{0pt}{}{` + num + "}{" + den + "}"
	}
	return `\frac{` + num + "}{" + den + "}"
}

func function(n *Node) string {
	name := strings.TrimSpace(arg(n, "fName"))
	body := arg(n, "e")
	if _, ok := namedFuncs[name]; ok {
		return `\` + name + "(" + body + ")"
	}
	return name + body
}

func delimited(n *Node) string {
	begin, ok := n.prop("begChr")
	if !ok {
		begin = "("
	}
	end, ok := n.prop("endChr")
	if !ok {
		end = ")"
	}
	sep, ok := n.prop("sepChr")
	if !ok {
		sep = "|"
	}
	return `\left` + delimiter(begin) + joinChildren(n, "e", sep) + `\right` + delimiter(end)
}

func delimiter(chr string) string {
	switch chr {
	case "":
		return "."
	case "{", "}":
		return `\` + chr
	}
	return chr
}

func nary(n *Node) string {
	chr, ok := n.prop("chr")
	if !ok {
		// OMML defaults to the integral sign.
		chr = "∫"
	}
	op, found := bigOperators[firstRune(chr)]
	if !found {
		op = chr
	}
	if sub := arg(n, "sub"); sub != "" {
		op += "_{" + sub + "}"
	}
	if sup := arg(n, "sup"); sup != "" {
		op += "^{" + sup + "}"
	}
	return op + " " + arg(n, "e")
}

// runText maps the characters of an m:r to LaTeX. Characters with a LaTeX
// meaning are escaped; mapped symbols are emitted as commands.
func runText(n *Node) string {
	var b strings.Builder
	for i := range n.Nodes {
		if n.Nodes[i].name() != "t" {
			continue
		}
		for _, r := range n.Nodes[i].Text {
			b.WriteString(symbol(r))
		}
	}
	return b.String()
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
