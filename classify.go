package markitdown

import (
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// genericMIMETypes are declared types too vague to pick a converter; content
// sniffing may replace them with something more specific.
var genericMIMETypes = map[string]bool{
	"application/octet-stream": true,
	"application/xml":          true,
	"text/xml":                 true,
	"binary/octet-stream":      true,
}

// ClassifyStream normalizes the caller's hints into the StreamInfo used for
// converter matching. The extension is lower-cased and dot-prefixed (and
// derived from the filename, path or URL when missing), a charset parameter is
// split out of the declared MIME type, and the content is sniffed when no
// specific MIME type was declared. The stream is left at offset 0.
func ClassifyStream(r io.ReadSeeker, hints StreamInfo) (StreamInfo, error) {
	info := hints
	info.Extension = normalizeExtension(info.Extension)
	if info.Extension == "" {
		info.Extension = extensionFromHints(info)
	}

	if info.MIMEType != "" {
		base, charset := splitMediaType(info.MIMEType)
		info.MIMEType = base
		if info.Charset == "" {
			info.Charset = charset
		}
	}

	if info.MIMEType == "" || genericMIMETypes[info.MIMEType] {
		detected, err := sniffMIMEType(r)
		if err != nil {
			return info, err
		}
		if detected != "" {
			base, charset := splitMediaType(detected)
			if info.MIMEType == "" || base != "text/plain" {
				info.MIMEType = base
			}
			if info.Charset == "" {
				info.Charset = charset
			}
		}
	}

	if info.MIMEType == "" {
		info.MIMEType = mimeFromExtension(info.Extension)
	}
	info.Charset = strings.ToLower(info.Charset)

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return info, fmt.Errorf("seek: %w", err)
	}
	return info, nil
}

// sniffMIMEType detects the MIME type from content. It returns "" when the
// content is not recognised.
func sniffMIMEType(r io.ReadSeeker) (string, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("seek: %w", err)
	}
	mtype, err := mimetype.DetectReader(r)
	if _, serr := r.Seek(0, io.SeekStart); serr != nil {
		return "", fmt.Errorf("seek: %w", serr)
	}
	if err != nil || mtype.Is("application/octet-stream") {
		return "", nil
	}
	return mtype.String(), nil
}

// splitMediaType separates "text/html; charset=UTF-8" into its base type and charset.
func splitMediaType(v string) (string, string) {
	base, params, err := mime.ParseMediaType(v)
	if err != nil {
		base = strings.TrimSpace(strings.SplitN(v, ";", 2)[0])
		return strings.ToLower(base), ""
	}
	return base, strings.Trim(params["charset"], `"'`)
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func extensionFromHints(info StreamInfo) string {
	if info.Filename != "" {
		return strings.ToLower(filepath.Ext(info.Filename))
	}
	if info.LocalPath != "" {
		return strings.ToLower(filepath.Ext(info.LocalPath))
	}
	if info.URL != "" {
		if u, err := url.Parse(info.URL); err == nil {
			return strings.ToLower(path.Ext(u.Path))
		}
	}
	return ""
}

// mimeFromExtension returns a MIME type for common extensions, or "".
func mimeFromExtension(ext string) string {
	extMap := map[string]string{
		".pdf":      "application/pdf",
		".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		".pptx":     "application/vnd.openxmlformats-officedocument.presentationml.presentation",
		".xlsx":     "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		".xls":      "application/vnd.ms-excel",
		".html":     "text/html",
		".htm":      "text/html",
		".csv":      "text/csv",
		".txt":      "text/plain",
		".text":     "text/plain",
		".md":       "text/markdown",
		".markdown": "text/markdown",
		".json":     "application/json",
		".jsonl":    "application/jsonl",
		".xml":      "text/xml",
		".rss":      "application/rss+xml",
		".atom":     "application/atom+xml",
		".epub":     "application/epub+zip",
		".zip":      "application/zip",
		".ipynb":    "application/x-ipynb+json",
	}
	return extMap[ext]
}
