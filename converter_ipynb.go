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
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// IpynbConverter handles Jupyter notebooks.
type IpynbConverter struct{}

// NewIpynbConverter creates a new IpynbConverter.
func NewIpynbConverter() *IpynbConverter {
	return &IpynbConverter{}
}

func (c *IpynbConverter) Accepts(info StreamInfo) bool {
	return acceptsFormat(info, []string{".ipynb"}, []string{"application/x-ipynb"})
}

// multiline is a notebook text field, stored either as one string or as a
// list of lines.
type multiline string

func (m *multiline) UnmarshalJSON(data []byte) error {
	var lines []string
	if err := json.Unmarshal(data, &lines); err == nil {
		*m = multiline(strings.Join(lines, ""))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*m = multiline(s)
	return nil
}

type ipynbDocument struct {
	Metadata struct {
		Title      string `json:"title"`
		KernelSpec struct {
			Language string `json:"language"`
		} `json:"kernelspec"`
		LanguageInfo struct {
			Name string `json:"name"`
		} `json:"language_info"`
	} `json:"metadata"`
	Cells []struct {
		CellType string    `json:"cell_type"`
		Source   multiline `json:"source"`
		Outputs  []struct {
			Text multiline            `json:"text"`
			Data map[string]multiline `json:"data"`
		} `json:"outputs"`
	} `json:"cells"`
}

func (nb *ipynbDocument) language() string {
	switch {
	case nb.Metadata.KernelSpec.Language != "":
		return nb.Metadata.KernelSpec.Language
	case nb.Metadata.LanguageInfo.Name != "":
		return nb.Metadata.LanguageInfo.Name
	}
	return "python"
}

func (c *IpynbConverter) Convert(reader io.ReadSeeker, info StreamInfo, opts ConvertOptions) (*DocumentConverterResult, error) {
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}
	var nb ipynbDocument
	if err := json.NewDecoder(reader).Decode(&nb); err != nil {
		return nil, fmt.Errorf("parse notebook JSON: %w", err)
	}

	lang := nb.language()
	title := nb.Metadata.Title
	var sections []string
	for _, cell := range nb.Cells {
		source := string(cell.Source)
		switch cell.CellType {
		case "markdown":
			sections = append(sections, source)
			if title == "" {
				title = firstHeading(source)
			}
		case "code":
			if strings.TrimSpace(source) != "" {
				sections = append(sections, fence(lang, source))
			}
			for _, out := range cell.Outputs {
				text := string(out.Text)
				if text == "" {
					text = string(out.Data["text/plain"])
				}
				if text = strings.TrimRight(text, "\n"); text != "" {
					sections = append(sections, fence("", text))
				}
			}
		case "raw":
			if strings.TrimSpace(source) != "" {
				sections = append(sections, fence("", source))
			}
		}
	}

	return &DocumentConverterResult{
		Markdown: strings.Join(sections, "\n\n"),
		Title:    title,
	}, nil
}

func fence(lang, body string) string {
	return "```" + lang + "\n" + strings.TrimRight(body, "\n") + "\n```"
}

// firstHeading returns the text of the first level-one heading.
func firstHeading(md string) string {
	for _, line := range strings.Split(md, "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}
