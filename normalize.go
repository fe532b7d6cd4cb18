package markitdown

import (
	"strings"
	"unicode"
)

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// normalizeOutput is the final cleanup applied to every converter's markdown:
// invalid UTF-8 and control characters (other than tab) are dropped, line
// endings become LF, trailing blanks are cut from each line, runs of blank
// lines shrink to one, and the result is trimmed. It is idempotent.
func normalizeOutput(s string) string {
	s = lineEndings.Replace(strings.ToValidUTF8(s, ""))

	lines := strings.Split(s, "\n")
	kept := lines[:0]
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(strings.Map(dropControl, line), " \t")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func dropControl(r rune) rune {
	if r != '\t' && unicode.IsControl(r) {
		return -1
	}
	return r
}
