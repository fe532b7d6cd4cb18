package markitdown

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// readText reads the whole stream from its start and decodes it to UTF-8,
// using the declared charset when it is known and detection otherwise.
func readText(reader io.ReadSeeker, charset string) (string, error) {
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("seek: %w", err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	if enc := lookupEncoding(charset); enc != nil {
		if decoded, err := enc.NewDecoder().Bytes(data); err == nil {
			return strings.TrimPrefix(string(decoded), "\ufeff"), nil
		}
	}
	return decodeWithDetection(data), nil
}

// decodeWithDetection decodes data of unknown encoding. Valid UTF-8 is
// returned as is; otherwise every charset chardet proposes is tried and the
// decoding with the fewest broken characters wins.
func decodeWithDetection(data []byte) string {
	if utf8.Valid(data) {
		return strings.TrimPrefix(string(data), "\ufeff")
	}

	results, err := chardet.NewTextDetector().DetectAll(data)
	if err != nil {
		return string(data)
	}

	best, bestScore := "", 0
	for _, r := range results {
		enc := lookupEncoding(r.Charset)
		if enc == nil {
			continue
		}
		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		text := string(decoded)
		if score := decodingScore(text, r.Confidence); best == "" || score > bestScore {
			best, bestScore = text, score
		}
	}
	if best == "" {
		return string(data)
	}
	return best
}

// decodingScore rates a candidate decoding. Replacement and control
// characters are strong evidence of a wrong charset; Latin-1 symbols mixed
// into the text usually mean multi-byte text decoded as a single-byte charset.
func decodingScore(text string, confidence int) int {
	score := confidence
	for _, r := range text {
		switch {
		case r == utf8.RuneError:
			score -= 10
		case r < 0x20 && r != '\n' && r != '\r' && r != '\t':
			score -= 5
		case r >= 0x80 && r <= 0xFF:
			score -= 2
		case r >= 0x3040 && r <= 0x30FF, r >= 0xAC00 && r <= 0xD7AF:
			score += 3
		case r >= 0x4E00 && r <= 0x9FFF:
			score += 2
		}
	}
	return score
}

// charsetAliases covers chardet names that the WHATWG index spells differently.
var charsetAliases = map[string]string{
	"gb-18030": "gb18030",
	"ascii":    "utf-8",
	"us-ascii": "utf-8",
}

// lookupEncoding maps a charset label to an encoding, or nil if unknown.
func lookupEncoding(charset string) encoding.Encoding {
	label := strings.ToLower(strings.TrimSpace(charset))
	if label == "" {
		return nil
	}
	if alias, ok := charsetAliases[label]; ok {
		label = alias
	}
	switch label {
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil
	}
	return enc
}
