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
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/conductor-oss/markitdown-pages/internal/ooxml"
)

// ZipConverter handles ZIP archives by converting each entry through the
// registry. Entries no converter can read are skipped.
type ZipConverter struct {
	markitdown *MarkItDown
}

// NewZipConverter creates a new ZipConverter.
func NewZipConverter(m *MarkItDown) *ZipConverter {
	return &ZipConverter{markitdown: m}
}

func (c *ZipConverter) Accepts(info StreamInfo) bool {
	return acceptsFormat(info, []string{".zip"}, []string{"application/zip", "application/x-zip"})
}

func (c *ZipConverter) Convert(reader io.ReadSeeker, info StreamInfo, opts ConvertOptions) (*DocumentConverterResult, error) {
	pkg, err := ooxml.Open(reader)
	if err != nil {
		return nil, err
	}

	name := info.Filename
	if name == "" {
		name = "archive"
	}
	var md strings.Builder
	fmt.Fprintf(&md, "Content from the zip file `%s`:\n\n", name)

	for _, entry := range pkg.Names() {
		if strings.HasSuffix(entry, "/") {
			continue
		}
		data, err := pkg.ReadFile(entry)
		if err != nil {
			c.markitdown.log().Debug("zip entry skipped", zap.String("entry", entry), zap.Error(err))
			continue
		}

		// Entries are converted whole; pagination applies to the archive only.
		res, err := c.markitdown.ConvertReader(bytes.NewReader(data), StreamInfo{
			Extension: path.Ext(entry),
			Filename:  path.Base(entry),
		}, WithConvertStyleMap(opts.StyleMap))
		if err != nil {
			c.markitdown.log().Debug("zip entry skipped", zap.String("entry", entry), zap.Error(err))
			continue
		}
		if strings.TrimSpace(res.Markdown) == "" {
			continue
		}
		fmt.Fprintf(&md, "## File: %s\n\n%s\n\n", entry, res.Markdown)
	}

	return &DocumentConverterResult{Markdown: md.String()}, nil
}
