// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package xmlconn

import (
	"encoding/xml"

	"tesserairis.dev/xmpp/internal/ns"
	"tesserairis.dev/xmpp/streamerr"
	"tesserairis.dev/xmpp/xmlnode"
)

// Handler receives the fully-formed elements a Target assembles from the
// incoming token stream.
type Handler interface {
	// IsStanza reports whether a depth-1 start element should be treated as
	// a stanza (and therefore accumulated until its matching end element)
	// rather than some other stream-level child.
	IsStanza(name xml.Name) bool

	// HandleOpenStream is called once the opening <stream:stream> tag has
	// been seen.
	HandleOpenStream(e *xmlnode.Element) error

	// HandleStanza is called once a complete depth-1 stanza element has
	// been assembled.
	HandleStanza(e *xmlnode.Element) error

	// HandleCloseStream is called when the closing </stream:stream> tag
	// arrives.
	HandleCloseStream() error
}

// Target is a stack-based xml.TokenReader consumer that reassembles
// tokens into *xmlnode.Element values and dispatches them to a Handler,
// mirroring an incremental SAX-style target but specialized for the shape
// of an XMPP stream: exactly one open-ended root element (the stream
// header) containing a flat sequence of depth-1 children (the stanzas).
type Target struct {
	h     Handler
	stack []*xmlnode.Element
}

// NewTarget returns a Target that dispatches to h.
func NewTarget(h Handler) *Target {
	return &Target{h: h}
}

// Start handles an opening tag.
func (t *Target) Start(start xml.StartElement) error {
	el := xmlnode.FromStart(start)

	switch len(t.stack) {
	case 0:
		if start.Name.Space != ns.Stream || start.Name.Local != "stream" {
			return streamerr.NotWellFormed
		}
		t.stack = append(t.stack, el)
		return t.h.HandleOpenStream(el)
	case 1:
		if !t.h.IsStanza(start.Name) {
			return streamerr.UnsupportedStanzaType
		}
		root := t.stack[0]
		root.Children = append(root.Children, el)
		t.stack = append(t.stack, el)
		return nil
	default:
		parent := t.stack[len(t.stack)-1]
		parent.Children = append(parent.Children, el)
		t.stack = append(t.stack, el)
		return nil
	}
}

// End handles a closing tag.
func (t *Target) End(name xml.Name) error {
	if len(t.stack) == 0 {
		return streamerr.NotWellFormed
	}
	top := t.stack[len(t.stack)-1]
	if top.Name != name {
		return streamerr.NotWellFormed
	}
	t.stack = t.stack[:len(t.stack)-1]

	switch len(t.stack) {
	case 0:
		return t.h.HandleCloseStream()
	case 1:
		root := t.stack[0]
		stanza := root.Children[len(root.Children)-1]
		root.Children = root.Children[:len(root.Children)-1]
		return t.h.HandleStanza(stanza)
	default:
		return nil
	}
}

// CharData appends text to whichever element is currently open: the tail
// of the most recently closed sibling if there is one, otherwise the
// parent's own text.
func (t *Target) CharData(data []byte) {
	if len(t.stack) == 0 {
		return
	}
	top := t.stack[len(t.stack)-1]
	top.AppendText(string(data))
}

// Reset clears all accumulated state, as when a stream restarts after
// STARTTLS or SASL negotiation.
func (t *Target) Reset() {
	t.stack = nil
}

// Feed drives the target from r until r is exhausted or returns an error.
// Tokens unrelated to element structure (processing instructions,
// comments, directives) are rejected as malformed, matching the strict
// subset of XML an XMPP stream permits.
func (t *Target) Feed(r xml.TokenReader) error {
	for {
		tok, err := r.Token()
		if err != nil {
			return err
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			if err := t.Start(tok); err != nil {
				return err
			}
		case xml.EndElement:
			if err := t.End(tok.Name); err != nil {
				return err
			}
		case xml.CharData:
			t.CharData(tok)
		case xml.ProcInst, xml.Comment, xml.Directive:
			return streamerr.RestrictedXML
		}
	}
}
