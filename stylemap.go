package markitdown

import (
	"fmt"
	"regexp"
	"strings"
)

// StyleMap maps DOCX paragraph and run styles to HTML elements. It accepts a
// subset of the mammoth style map syntax, one rule per line:
//
//	p[style-name='Section Title'] => h1:fresh
//	r[style-name='Code'] => code
//	p.Quote => blockquote
//	r[style-name='Hidden'] => !
//
// Style names match case-insensitively; the ".ID" form matches the style ID.
// A target of "!" drops the paragraph or run. Blank lines and lines starting
// with # are ignored.
type StyleMap struct {
	paragraphs map[string]string
	runs       map[string]string
}

// dropStyle is the target that removes matching content.
const dropStyle = "!"

var reStyleRule = regexp.MustCompile(`^([pr])(?:\[style-name=(?:'([^']+)'|"([^"]+)")\]|\.([A-Za-z0-9_-]+))\s*=>\s*(!|[a-z][a-z0-9]*)(?::fresh)?$`)

// ParseStyleMap parses a style map. An empty string yields an empty map.
func ParseStyleMap(s string) (*StyleMap, error) {
	sm := &StyleMap{
		paragraphs: make(map[string]string),
		runs:       make(map[string]string),
	}
	for i, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := reStyleRule.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("style map line %d: cannot parse %q", i+1, line)
		}
		var key string
		switch {
		case m[2] != "":
			key = "name:" + strings.ToLower(m[2])
		case m[3] != "":
			key = "name:" + strings.ToLower(m[3])
		default:
			key = "id:" + m[4]
		}
		if m[1] == "p" {
			sm.paragraphs[key] = m[5]
		} else {
			sm.runs[key] = m[5]
		}
	}
	return sm, nil
}

// Paragraph returns the element for a paragraph style, if mapped.
func (sm *StyleMap) Paragraph(styleID, styleName string) (string, bool) {
	if sm == nil {
		return "", false
	}
	return lookupStyle(sm.paragraphs, styleID, styleName)
}

// Run returns the element for a character style, if mapped.
func (sm *StyleMap) Run(styleID, styleName string) (string, bool) {
	if sm == nil {
		return "", false
	}
	return lookupStyle(sm.runs, styleID, styleName)
}

func lookupStyle(rules map[string]string, styleID, styleName string) (string, bool) {
	if styleID == "" && styleName == "" {
		return "", false
	}
	if styleName != "" {
		if tag, ok := rules["name:"+strings.ToLower(styleName)]; ok {
			return tag, true
		}
	}
	if styleID != "" {
		if tag, ok := rules["id:"+styleID]; ok {
			return tag, true
		}
	}
	return "", false
}
