// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package xmlnode implements a minimal, ordered XML element tree used to
// represent stanzas and stream-level elements once they have been fully
// received by a Target. Every element is addressed in Clark notation
// (xml.Name{Space, Local}). Element has an NSMap field for a
// prefix-to-namespace map, but nothing in this package fills it or reads
// it: FromStart does not record prefixes and Encode does not use them.
package xmlnode // import "tesserairis.dev/xmpp/xmlnode"

import (
	"encoding/xml"
	"io"
)

// Element is a node in a received (or about-to-be-sent) XML tree.
//
// Attr, Text, Tail, and Children preserve document order; Go's encoding/xml
// does not guarantee attribute order on decode, so a Target that wants
// wire-identical round trips should build Elements directly from the
// xml.StartElement it receives rather than from a decoded struct.
type Element struct {
	Name     xml.Name
	Attr     []xml.Attr
	Text     string
	Tail     string
	Children []*Element
	NSMap    map[string]string
}

// New creates an empty Element for name with the given attributes.
func New(name xml.Name, attr ...xml.Attr) *Element {
	return &Element{Name: name, Attr: attr}
}

// FromStart creates an Element from a received xml.StartElement.
func FromStart(start xml.StartElement) *Element {
	attr := make([]xml.Attr, len(start.Attr))
	copy(attr, start.Attr)
	return &Element{Name: start.Name, Attr: attr}
}

// StartElement returns the xml.StartElement token that opens this element.
func (e *Element) StartElement() xml.StartElement {
	return xml.StartElement{Name: e.Name, Attr: e.Attr}
}

// EndElement returns the xml.EndElement token that closes this element.
func (e *Element) EndElement() xml.EndElement {
	return xml.EndElement{Name: e.Name}
}

// Attribute returns the value of the first attribute whose local name is
// local, in any namespace, and whether one was present.
func (e *Element) Attribute(local string) (string, bool) {
	for _, a := range e.Attr {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// SubElement appends a new child element and returns it.
func (e *Element) SubElement(name xml.Name, attr ...xml.Attr) *Element {
	child := New(name, attr...)
	e.Children = append(e.Children, child)
	return child
}

// AppendText appends character data either to the last child's tail, or to
// this element's own text if it has no children yet — mirroring how a
// SAX-style target accumulates character data between sibling tags.
func (e *Element) AppendText(data string) {
	if n := len(e.Children); n > 0 {
		e.Children[n-1].Tail += data
		return
	}
	e.Text += data
}

// Child returns the nth child, or nil if there is none.
func (e *Element) Child(nth int) *Element {
	if nth < 0 || nth >= len(e.Children) {
		return nil
	}
	return e.Children[nth]
}

// ChildByName returns the first child whose Name matches, or nil.
func (e *Element) ChildByName(name xml.Name) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Encode writes the element and its descendants to enc as a self-contained
// sequence of tokens (start, text/children in order, end). Each element
// whose Name has a Space is written with its own xmlns declaration by
// enc, so a namespace already declared on an enclosing element is
// declared again.
func (e *Element) Encode(enc *xml.Encoder) error {
	if err := enc.EncodeToken(e.StartElement()); err != nil {
		return err
	}
	if e.Text != "" {
		if err := enc.EncodeToken(xml.CharData(e.Text)); err != nil {
			return err
		}
	}
	for _, c := range e.Children {
		if err := c.Encode(enc); err != nil {
			return err
		}
		if c.Tail != "" {
			if err := enc.EncodeToken(xml.CharData(c.Tail)); err != nil {
				return err
			}
		}
	}
	return enc.EncodeToken(e.EndElement())
}

// WriteTo serializes the element as a self-contained subtree to w.
func (e *Element) WriteTo(w io.Writer) (int64, error) {
	enc := xml.NewEncoder(w)
	if err := e.Encode(enc); err != nil {
		return 0, err
	}
	return 0, enc.Flush()
}
