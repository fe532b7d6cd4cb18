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

// Command markitdown converts documents to Markdown.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	markitdown "github.com/conductor-oss/markitdown-pages"
	"github.com/conductor-oss/markitdown-pages/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// flagKeys binds command-line flags to configuration keys.
var flagKeys = map[string]string{
	"pages":          "extract_pages",
	"keep-data-uris": "keep_data_uris",
	"style-map":      "style_map_file",
	"pdf-fallback":   "pdf_fallback",
	"verbose":        "verbose",
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "markitdown [source]",
		Short: "Convert documents to Markdown",
		Long: `markitdown converts PDF, Word, PowerPoint, Excel, HTML, CSV, EPUB, RSS,
Jupyter notebooks, ZIP archives and plain text to Markdown.

The source is a file path or an http(s) URL; stdin is read when it is omitted.
With --pages the result is split into pages: physical pages for PDF, rendered
page breaks for Word, one page per sheet or slide for spreadsheets and decks.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runConvert,
	}

	flags := cmd.Flags()
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.StringP("extension", "x", "", "file extension hint, for stdin input")
	flags.StringP("mime-type", "m", "", "MIME type hint")
	flags.StringP("charset", "c", "", "charset hint")
	flags.BoolP("pages", "p", false, "split the result into pages")
	flags.Bool("json", false, "print the full result, pages included, as JSON")
	flags.Bool("keep-data-uris", false, "keep full base64-encoded data URIs")
	flags.String("style-map", "", "DOCX style map file")
	flags.Bool("pdf-fallback", false, "fall back to whole-document text when a PDF page fails")

	persistent := cmd.PersistentFlags()
	persistent.String("config", "", "config file (default: ./markitdown.yaml or ~/.config/markitdown/markitdown.yaml)")
	persistent.Bool("verbose", false, "log conversion details to stderr")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

// loadConfig merges the config file, the environment and the flags that were
// set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	v := config.New(path)
	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}
	return config.FromViper(v)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	m := markitdown.New(append(opts, markitdown.WithLogger(logger))...)

	var result *markitdown.DocumentConverterResult
	if len(args) == 0 {
		result, err = convertStdin(cmd, m, cfg.ConvertOptions())
	} else {
		result, err = m.Convert(args[0], cfg.ConvertOptions()...)
	}
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	out, err := renderResult(result, asJSON)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		_, err = io.WriteString(cmd.OutOrStdout(), out)
		return err
	}
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(output, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logger.Debug("wrote output", zap.String("path", output), zap.Int("bytes", len(out)))
	return nil
}

func convertStdin(cmd *cobra.Command, m *markitdown.MarkItDown, opts []markitdown.ConvertOption) (*markitdown.DocumentConverterResult, error) {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	info := markitdown.StreamInfo{}
	info.Extension, _ = cmd.Flags().GetString("extension")
	info.MIMEType, _ = cmd.Flags().GetString("mime-type")
	info.Charset, _ = cmd.Flags().GetString("charset")
	return m.ConvertReader(bytes.NewReader(data), info, opts...)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
