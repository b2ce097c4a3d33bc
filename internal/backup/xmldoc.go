package backup

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
)

// NullSentinel marks fields the backup schema requires present but
// conceptually unset. The restore engine distinguishes it from both the
// empty string and "0".
const NullSentinel = "$@NULL@$"

// el is a generic XML element tree. Document builders assemble trees of
// these and the generator serializes them; there is one fixed external
// schema per document kind, so shapes are built explicitly rather than
// derived from struct tags.
type el struct {
	name     string
	attrs    []xml.Attr
	text     string
	children []*el
}

func node(name string, children ...*el) *el {
	return &el{name: name, children: children}
}

func leaf(name, value string) *el {
	return &el{name: name, text: value}
}

func leafInt(name string, value int) *el {
	return leaf(name, strconv.Itoa(value))
}

// nullLeaf emits the explicit-null sentinel.
func nullLeaf(name string) *el {
	return leaf(name, NullSentinel)
}

// attr adds an attribute and returns the element for chaining.
func (e *el) attr(name, value string) *el {
	e.attrs = append(e.attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
	return e
}

func (e *el) attrInt(name string, value int) *el {
	return e.attr(name, strconv.Itoa(value))
}

// add appends child elements and returns the element for chaining.
func (e *el) add(children ...*el) *el {
	e.children = append(e.children, children...)
	return e
}

func (e *el) encode(enc *xml.Encoder) error {
	start := xml.StartElement{Name: xml.Name{Local: e.name}, Attr: e.attrs}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if e.text != "" {
		if err := enc.EncodeToken(xml.CharData(e.text)); err != nil {
			return err
		}
	}
	for _, child := range e.children {
		if err := child.encode(enc); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// render serializes the tree as an indented UTF-8 XML document.
func (e *el) render() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := e.encode(enc); err != nil {
		return nil, fmt.Errorf("failed to encode <%s>: %w", e.name, err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush <%s>: %w", e.name, err)
	}
	buf.WriteByte('\n')

	return buf.Bytes(), nil
}

// document is one generated artifact with its path inside the staging tree.
type document struct {
	path string // relative, slash-separated
	root *el
}

// field is one name/value pair in a declarative default table. Activity
// builders overlay row-sourced values onto their type's fixed table, so a
// field is always emitted even when it only carries a schema default.
type field struct {
	name  string
	value string
}

// fieldsToEls expands a field table into leaf elements in table order.
func fieldsToEls(fields []field) []*el {
	els := make([]*el, 0, len(fields))
	for _, f := range fields {
		els = append(els, leaf(f.name, f.value))
	}
	return els
}

// overlay returns the table with the named fields replaced. Unknown names
// are a programming error and ignored deliberately; the table defines the
// schema's exhaustive field list.
func overlay(table []field, values map[string]string) []field {
	merged := make([]field, len(table))
	copy(merged, table)
	for i, f := range merged {
		if v, ok := values[f.name]; ok {
			merged[i].value = v
		}
	}
	return merged
}
