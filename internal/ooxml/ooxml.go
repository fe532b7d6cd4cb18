// Package ooxml reads the ZIP containers shared by DOCX, PPTX and EPUB files.
package ooxml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// Common OOXML namespaces.
const (
	NSWordprocessingML = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NSRelDoc           = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NSPresentationML   = "http://schemas.openxmlformats.org/presentationml/2006/main"
)

// PackageRoot names the package itself when reading relationships; its
// relationships live in _rels/.rels.
const PackageRoot = ""

// RelOfficeDocument is the suffix of the root relationship type that points
// at the main part (word/document.xml, ppt/presentation.xml). Transitional
// and strict documents use different prefixes.
const RelOfficeDocument = "/officeDocument"

// ErrNotFound is returned when a part is missing from the package.
var ErrNotFound = errors.New("part not found")

// Relationship represents an OOXML relationship.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// External reports whether the relationship points outside the package.
func (r Relationship) External() bool {
	return strings.EqualFold(r.TargetMode, "External")
}

type relationships struct {
	XMLName       xml.Name       `xml:"Relationships"`
	Relationships []Relationship `xml:"Relationship"`
}

// Package is an opened ZIP container.
type Package struct {
	zr    *zip.Reader
	files map[string]*zip.File
}

// Open reads the whole stream from its start and opens it as a ZIP package.
func Open(r io.ReadSeeker) (*Package, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read package: %w", err)
	}
	return OpenBytes(data)
}

// OpenBytes opens an in-memory ZIP package.
func OpenBytes(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open ZIP: %w", err)
	}
	p := &Package{zr: zr, files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		p.files[f.Name] = f
	}
	return p, nil
}

// Has reports whether the package contains the named part.
func (p *Package) Has(name string) bool {
	_, ok := p.files[name]
	return ok
}

// Names returns the part names in archive order.
func (p *Package) Names() []string {
	names := make([]string, 0, len(p.zr.File))
	for _, f := range p.zr.File {
		names = append(names, f.Name)
	}
	return names
}

// ReadFile returns the content of the named part.
func (p *Package) ReadFile(name string) ([]byte, error) {
	f, ok := p.files[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Relationships parses the relationships of the given part, keyed by ID.
// A part without a .rels file has no relationships.
func (p *Package) Relationships(part string) (map[string]Relationship, error) {
	data, err := p.ReadFile(RelsPathFor(part))
	if errors.Is(err, ErrNotFound) {
		return map[string]Relationship{}, nil
	}
	if err != nil {
		return nil, err
	}
	var rels relationships
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, fmt.Errorf("decode relationships: %w", err)
	}
	result := make(map[string]Relationship, len(rels.Relationships))
	for _, rel := range rels.Relationships {
		result[rel.ID] = rel
	}
	return result, nil
}

// MainPart returns the part the package's officeDocument relationship
// points at, or fallback when the package declares none.
func (p *Package) MainPart(fallback string) (string, error) {
	rels, err := p.Relationships(PackageRoot)
	if err != nil {
		return "", err
	}
	// Pick the lowest ID so the choice does not depend on map order.
	best := ""
	for id, rel := range rels {
		if rel.External() || !strings.HasSuffix(rel.Type, RelOfficeDocument) {
			continue
		}
		if best == "" || id < best {
			best = id
		}
	}
	if best == "" {
		return fallback, nil
	}
	return ResolveTarget(PackageRoot, rels[best].Target), nil
}

// RelsPathFor returns the .rels path for a given part. PackageRoot maps to
// _rels/.rels.
func RelsPathFor(part string) string {
	if part == PackageRoot {
		return "_rels/.rels"
	}
	dir := path.Dir(part)
	base := path.Base(part)
	if dir == "." {
		return "_rels/" + base + ".rels"
	}
	return dir + "/_rels/" + base + ".rels"
}

// ResolveTarget resolves a relationship target relative to the part that owns it.
func ResolveTarget(part, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(path.Dir(part), target)
}

// Attr returns the value of the attribute with the given local name.
func Attr(se xml.StartElement, local string) (string, bool) {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}
