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
	"errors"
	"fmt"
	"strings"
)

// UnsupportedFormatError is returned when no converter can handle the input format.
type UnsupportedFormatError struct {
	Extension string
	MIMEType  string
}

func (e *UnsupportedFormatError) Error() string {
	parts := []string{"unsupported format"}
	if e.Extension != "" {
		parts = append(parts, fmt.Sprintf("extension=%q", e.Extension))
	}
	if e.MIMEType != "" {
		parts = append(parts, fmt.Sprintf("mime=%q", e.MIMEType))
	}
	return strings.Join(parts, " ")
}

// MissingDependencyError is returned by Convert when the library a converter
// needs was not available at program start. Err holds the original load failure.
type MissingDependencyError struct {
	Converter string
	Extension string
	Feature   string
	Err       error
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("%s recognized the input as a potential %s file, but the dependencies needed to read %s files are not available; rebuild without the no%s build tag: %v",
		e.Converter, e.Extension, e.Extension, e.Feature, e.Err)
}

func (e *MissingDependencyError) Unwrap() error {
	return e.Err
}

// ConversionError is returned when the selected converter accepted the input but failed to convert it.
type ConversionError struct {
	Converter string
	Err       error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion failed: %s: %v", e.Converter, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// InvalidOptionError is returned when a conversion option has a value outside
// its accepted set.
type InvalidOptionError struct {
	Key   string
	Value any
}

func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("invalid value %#v (%T) for option %q", e.Value, e.Value, e.Key)
}

// PDFExtractionError reports a failure while extracting a single PDF page.
type PDFExtractionError struct {
	Page int
	Err  error
}

func (e *PDFExtractionError) Error() string {
	return fmt.Sprintf("extract PDF page %d: %v", e.Page, e.Err)
}

func (e *PDFExtractionError) Unwrap() error {
	return e.Err
}

// IsUnsupportedFormat reports whether the error is an UnsupportedFormatError.
func IsUnsupportedFormat(err error) bool {
	var target *UnsupportedFormatError
	return errors.As(err, &target)
}

// IsMissingDependency reports whether the error is a MissingDependencyError.
func IsMissingDependency(err error) bool {
	var target *MissingDependencyError
	return errors.As(err, &target)
}
