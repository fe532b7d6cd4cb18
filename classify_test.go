package markitdown

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyExtension(t *testing.T) {
	tests := []struct {
		name  string
		hints StreamInfo
		want  string
	}{
		{"bare", StreamInfo{Extension: "DOCX"}, ".docx"},
		{"dotted", StreamInfo{Extension: " .Pdf "}, ".pdf"},
		{"filename", StreamInfo{Filename: "Notes.TXT"}, ".txt"},
		{"local path", StreamInfo{LocalPath: "/tmp/data/report.csv"}, ".csv"},
		{"url", StreamInfo{URL: "https://example.com/files/report.PDF?dl=1"}, ".pdf"},
		{"none", StreamInfo{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ClassifyStream(strings.NewReader("plain words"), tt.hints)
			require.NoError(t, err)
			assert.Equal(t, tt.want, info.Extension)
		})
	}
}

func TestClassifyDeclaredMIMEType(t *testing.T) {
	info, err := ClassifyStream(strings.NewReader("<p>hi</p>"), StreamInfo{MIMEType: "text/html; charset=Shift_JIS"})
	require.NoError(t, err)
	assert.Equal(t, "text/html", info.MIMEType)
	assert.Equal(t, "shift_jis", info.Charset)

	// An explicit charset hint wins over the media type parameter.
	info, err = ClassifyStream(strings.NewReader("a,b"), StreamInfo{MIMEType: "text/csv; charset=utf-8", Charset: "ISO-8859-1"})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", info.MIMEType)
	assert.Equal(t, "iso-8859-1", info.Charset)
}

func TestClassifySniffing(t *testing.T) {
	pdfHeader := "%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n"

	info, err := ClassifyStream(strings.NewReader(pdfHeader), StreamInfo{})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", info.MIMEType)

	// Generic declared types are replaced by the sniffed one.
	info, err = ClassifyStream(strings.NewReader(pdfHeader), StreamInfo{MIMEType: "application/octet-stream"})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", info.MIMEType)

	// Specific declared types are kept.
	info, err = ClassifyStream(strings.NewReader(pdfHeader), StreamInfo{MIMEType: "text/csv"})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", info.MIMEType)
}

func TestClassifyUnknownBinary(t *testing.T) {
	info, err := ClassifyStream(bytes.NewReader([]byte{0x00, 0x01, 0x02, 0x03}), StreamInfo{Extension: ".xyz"})
	require.NoError(t, err)
	assert.Equal(t, ".xyz", info.Extension)
	assert.Empty(t, info.MIMEType)
}

func TestClassifyFallsBackToExtensionMIME(t *testing.T) {
	info, err := ClassifyStream(bytes.NewReader([]byte{0x00, 0x01, 0x02, 0x03}), StreamInfo{Filename: "deck.pptx"})
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.presentationml.presentation", info.MIMEType)
}

func TestClassifyRewindsStream(t *testing.T) {
	r := strings.NewReader("some text to sniff")
	_, err := r.Seek(5, io.SeekStart)
	require.NoError(t, err)

	_, err = ClassifyStream(r, StreamInfo{})
	require.NoError(t, err)
	pos, err := r.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Zero(t, pos)
}

func TestSplitMediaType(t *testing.T) {
	base, charset := splitMediaType(`Text/HTML; charset="UTF-8"`)
	assert.Equal(t, "text/html", base)
	assert.Equal(t, "UTF-8", charset)

	base, charset = splitMediaType("text/plain;;bad=")
	assert.Equal(t, "text/plain", base)
	assert.Empty(t, charset)
}
