// Package manifest reads and rewrites addon.xml documents. The document
// is held as an ordered element tree so attributes, comments and elements
// the tool does not know about survive a rewrite verbatim.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// MetadataPoint identifies the extension element carrying the addon's
// descriptive metadata fields.
const MetadataPoint = "xbmc.addon.metadata"

// declaration is written by hand so the pretty-printer never duplicates it.
const declaration = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`

var (
	// ErrNotFound reports an absent manifest file.
	ErrNotFound = errors.New("addon manifest not found")

	// ErrMalformed reports a manifest that is not well-formed XML.
	ErrMalformed = errors.New("addon manifest is malformed")
)

// Document is a parsed addon manifest.
type Document struct {
	doc *etree.Document
}

// Load parses the manifest at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse reads a manifest from raw bytes.
func Parse(data []byte) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformed)
	}
	return &Document{doc: doc}, nil
}

// Root exposes the manifest's root element.
func (d *Document) Root() *etree.Element {
	return d.doc.Root()
}

// Version reads the root version attribute, empty when absent.
func (d *Document) Version() string {
	return d.doc.Root().SelectAttrValue("version", "")
}

// SetAttributes overwrites the named attributes on the root element
// unconditionally.
func (d *Document) SetAttributes(attrs map[string]string) {
	root := d.doc.Root()
	for _, key := range sortedKeys(attrs) {
		root.CreateAttr(key, attrs[key])
	}
}

// FillMetadataDefaults sets metadata children from defaults without
// clobbering authored content: a child is written only when it is absent
// or its text is empty or whitespace. Missing children are appended
// explicitly.
func (d *Document) FillMetadataDefaults(defaults map[string]string) {
	meta := d.metadataExtension()
	if meta == nil {
		return
	}

	for _, key := range sortedKeys(defaults) {
		child := meta.SelectElement(key)
		if child == nil {
			child = meta.CreateElement(key)
		}
		if strings.TrimSpace(child.Text()) == "" {
			child.SetText(defaults[key])
		}
	}
}

func (d *Document) metadataExtension() *etree.Element {
	for _, ext := range d.doc.Root().SelectElements("extension") {
		if ext.SelectAttrValue("point", "") == MetadataPoint {
			return ext
		}
	}
	return nil
}

// Bytes serializes the manifest in its published textual form.
func (d *Document) Bytes() ([]byte, error) {
	return Serialize(d.doc.Root())
}

// WriteFile serializes the manifest and overwrites path.
func (d *Document) WriteFile(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Serialize renders root in the repository's stable textual form: the
// fixed XML declaration, a two-space indented body and CRLF line endings.
func Serialize(root *etree.Element) ([]byte, error) {
	doc := etree.NewDocument()
	doc.SetRoot(root.Copy())
	doc.Indent(2)

	body, err := doc.WriteToString()
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}

	text := declaration + "\n" + body
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\n", "\r\n")
	return []byte(text), nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
