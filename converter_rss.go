package markitdown

import (
	"fmt"
	"io"
	"strings"

	"github.com/mmcdole/gofeed"
)

// RSSConverter handles RSS and Atom feeds. Generic XML is left to the stream
// classifier, which reports feeds under their own MIME types.
type RSSConverter struct {
	markitdown *MarkItDown
}

// NewRSSConverter creates a new RSSConverter.
func NewRSSConverter(m *MarkItDown) *RSSConverter {
	return &RSSConverter{markitdown: m}
}

func (c *RSSConverter) Accepts(info StreamInfo) bool {
	return acceptsFormat(info, []string{".rss", ".atom"}, []string{"application/rss", "application/atom"})
}

func (c *RSSConverter) Convert(reader io.ReadSeeker, info StreamInfo, opts ConvertOptions) (*DocumentConverterResult, error) {
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}
	feed, err := gofeed.NewParser().Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	var b strings.Builder
	if feed.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", feed.Title)
	}
	if feed.Description != "" {
		b.WriteString(c.fragment(feed.Description))
		b.WriteString("\n\n")
	}

	for _, item := range feed.Items {
		if item.Title != "" {
			fmt.Fprintf(&b, "## %s\n\n", item.Title)
		}
		switch {
		case item.Published != "":
			fmt.Fprintf(&b, "Published on: %s\n\n", item.Published)
		case item.Updated != "":
			fmt.Fprintf(&b, "Updated on: %s\n\n", item.Updated)
		}
		if item.Link != "" {
			fmt.Fprintf(&b, "Link: %s\n\n", item.Link)
		}

		body := item.Content
		if body == "" {
			body = item.Description
		}
		if body != "" {
			b.WriteString(c.fragment(body))
			b.WriteString("\n\n")
		}
	}

	return &DocumentConverterResult{
		Markdown: b.String(),
		Title:    feed.Title,
	}, nil
}

// fragment renders feed text that may carry HTML markup.
func (c *RSSConverter) fragment(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	res, err := NewHTMLConverter(c.markitdown).ConvertString(s)
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(res.Markdown)
}
