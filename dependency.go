package markitdown

// dependency records whether the parsing library behind a converter could be
// loaded. The package-level values are set once during program initialization
// and only read afterwards, so converters may check them concurrently.
type dependency struct {
	feature string
	err     error
}

// check returns a MissingDependencyError when the dependency failed to load.
// Converters call it from Convert only; Accepts never consults it.
func (d dependency) check(converter, extension string) error {
	if d.err == nil {
		return nil
	}
	return &MissingDependencyError{
		Converter: converter,
		Extension: extension,
		Feature:   d.feature,
		Err:       d.err,
	}
}

// docxDependency covers the OOXML reader and HTML renderer, which are always
// compiled in. pdfDependency is defined next to the PDF backend selected by
// build tags.
var docxDependency = dependency{feature: "docx"}
