//go:build nopdf

package markitdown

import (
	"errors"
	"io"
)

var errPDFNotBuilt = errors.New("PDF support was excluded at build time")

var pdfDependency = dependency{feature: "pdf", err: errPDFNotBuilt}

func openPDFBackend(io.ReaderAt, int64) (pdfDocument, error) {
	return nil, errPDFNotBuilt
}
