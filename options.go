package markitdown

import (
	"reflect"

	"go.uber.org/zap"
)

// Option configures a MarkItDown instance.
type Option func(*MarkItDown)

// WithKeepDataURIs configures whether to keep full data URIs in output
// (default: false, which truncates them to data:mime/type;base64...).
func WithKeepDataURIs(keep bool) Option {
	return func(m *MarkItDown) {
		m.keepDataURIs = keep
	}
}

// WithStyleMap sets the default style map for DOCX conversion.
// See ParseStyleMap for the accepted syntax.
func WithStyleMap(styleMap string) Option {
	return func(m *MarkItDown) {
		m.styleMap = styleMap
	}
}

// WithLogger sets the logger used by the converters (default: no-op).
func WithLogger(logger *zap.Logger) Option {
	return func(m *MarkItDown) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithPDFFallback makes PDF page extraction resilient: when any page fails,
// the partial pages are discarded and the whole document text is returned as
// a single page. The default is to return the failure.
func WithPDFFallback(enabled bool) Option {
	return func(m *MarkItDown) {
		m.pdfFallback = enabled
	}
}

// ConvertOption configures a single conversion call.
type ConvertOption func(*ConvertOptions)

// WithExtractPages requests a page-segmented result.
func WithExtractPages(extract bool) ConvertOption {
	return func(o *ConvertOptions) {
		o.ExtractPages = extract
	}
}

// WithConvertStyleMap overrides the instance DOCX style map for one call.
func WithConvertStyleMap(styleMap string) ConvertOption {
	return func(o *ConvertOptions) {
		o.StyleMap = styleMap
	}
}

// Option keys understood by ParseConvertOptions.
const (
	OptionExtractPages = "extract_pages"
	OptionReturnPages  = "return_pages"
	OptionStyleMap     = "style_map"
)

// ParseConvertOptions builds per-call options from a loosely typed map, as
// produced by config files or JSON requests. The page flags (extract_pages and
// its alias return_pages) accept a bool, nil, or the numbers 0 and 1; any
// other value is rejected with an InvalidOptionError. Unknown keys are ignored.
func ParseConvertOptions(values map[string]any) ([]ConvertOption, error) {
	var opts []ConvertOption

	extract := false
	for _, key := range []string{OptionExtractPages, OptionReturnPages} {
		v, ok := values[key]
		if !ok {
			continue
		}
		flag, err := pageFlag(key, v)
		if err != nil {
			return nil, err
		}
		extract = extract || flag
	}
	if extract {
		opts = append(opts, WithExtractPages(true))
	}

	if v, ok := values[OptionStyleMap]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return nil, &InvalidOptionError{Key: OptionStyleMap, Value: v}
		}
		opts = append(opts, WithConvertStyleMap(s))
	}

	return opts, nil
}

func pageFlag(key string, v any) (bool, error) {
	if v == nil {
		return false, nil
	}
	if b, ok := v.(bool); ok {
		return b, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch rv.Int() {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		switch rv.Uint() {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
	case reflect.Float32, reflect.Float64:
		// JSON decodes every number as float64.
		switch rv.Float() {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
	}
	return false, &InvalidOptionError{Key: key, Value: v}
}

func buildConvertOptions(opts []ConvertOption) ConvertOptions {
	var o ConvertOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
