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
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/conductor-oss/markitdown-pages/internal/ooxml"
)

// EpubConverter handles EPUB files. Spine documents are rendered in reading
// order after a metadata block.
type EpubConverter struct {
	markitdown *MarkItDown
}

// NewEpubConverter creates a new EpubConverter.
func NewEpubConverter(m *MarkItDown) *EpubConverter {
	return &EpubConverter{markitdown: m}
}

func (c *EpubConverter) Accepts(info StreamInfo) bool {
	return acceptsFormat(info, []string{".epub"}, []string{"application/epub", "application/x-epub"})
}

type epubContainer struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type epubPackage struct {
	Metadata struct {
		Title       []string `xml:"title"`
		Creators    []string `xml:"creator"`
		Language    string   `xml:"language"`
		Publisher   string   `xml:"publisher"`
		Date        string   `xml:"date"`
		Description string   `xml:"description"`
	} `xml:"metadata"`
	Manifest []struct {
		ID        string `xml:"id,attr"`
		Href      string `xml:"href,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"manifest>item"`
	Spine []struct {
		IDRef string `xml:"idref,attr"`
	} `xml:"spine>itemref"`
}

func (c *EpubConverter) Convert(reader io.ReadSeeker, info StreamInfo, opts ConvertOptions) (*DocumentConverterResult, error) {
	pkg, err := ooxml.Open(reader)
	if err != nil {
		return nil, fmt.Errorf("open EPUB: %w", err)
	}

	opfPath, err := epubRootfile(pkg)
	if err != nil {
		return nil, err
	}
	data, err := pkg.ReadFile(opfPath)
	if err != nil {
		return nil, fmt.Errorf("read package document: %w", err)
	}
	var opf epubPackage
	if err := xml.Unmarshal(data, &opf); err != nil {
		return nil, fmt.Errorf("parse package document: %w", err)
	}

	title := ""
	if len(opf.Metadata.Title) > 0 {
		title = strings.TrimSpace(opf.Metadata.Title[0])
	}

	var sections []string
	if meta := epubMetadataBlock(title, &opf); meta != "" {
		sections = append(sections, meta)
	}

	hrefs := make(map[string]string, len(opf.Manifest))
	types := make(map[string]string, len(opf.Manifest))
	for _, item := range opf.Manifest {
		hrefs[item.ID] = item.Href
		types[item.ID] = item.MediaType
	}

	htmlConv := NewHTMLConverter(c.markitdown)
	for _, ref := range opf.Spine {
		href, ok := hrefs[ref.IDRef]
		if !ok || !strings.Contains(types[ref.IDRef], "html") {
			continue
		}
		part := ooxml.ResolveTarget(opfPath, href)
		doc, err := pkg.ReadFile(part)
		if err != nil {
			c.markitdown.log().Debug("epub spine item skipped", zap.String("part", part), zap.Error(err))
			continue
		}
		res, err := htmlConv.ConvertString(string(doc))
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", part, err)
		}
		if md := strings.TrimSpace(res.Markdown); md != "" {
			sections = append(sections, md)
		}
	}

	return &DocumentConverterResult{
		Markdown: strings.Join(sections, "\n\n"),
		Title:    title,
	}, nil
}

func epubRootfile(pkg *ooxml.Package) (string, error) {
	data, err := pkg.ReadFile("META-INF/container.xml")
	if err != nil {
		return "", fmt.Errorf("read container: %w", err)
	}
	var container epubContainer
	if err := xml.Unmarshal(data, &container); err != nil {
		return "", fmt.Errorf("parse container: %w", err)
	}
	for _, rf := range container.Rootfiles {
		if rf.FullPath != "" {
			return rf.FullPath, nil
		}
	}
	return "", errors.New("container has no rootfile")
}

func epubMetadataBlock(title string, opf *epubPackage) string {
	var lines []string
	if title != "" {
		lines = append(lines, "# "+title)
	}
	field := func(label, value string) {
		if value = strings.TrimSpace(value); value != "" {
			lines = append(lines, fmt.Sprintf("**%s:** %s", label, value))
		}
	}
	field("Authors", strings.Join(opf.Metadata.Creators, ", "))
	field("Language", opf.Metadata.Language)
	field("Publisher", opf.Metadata.Publisher)
	field("Date", opf.Metadata.Date)
	field("Description", opf.Metadata.Description)
	return strings.Join(lines, "\n\n")
}
