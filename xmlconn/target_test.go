// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package xmlconn

import (
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"tesserairis.dev/xmpp/xmlnode"
)

type recordingHandler struct {
	opened  *xmlnode.Element
	stanzas []*xmlnode.Element
	closed  bool
}

func (h *recordingHandler) IsStanza(name xml.Name) bool {
	switch name.Local {
	case "iq", "message", "presence":
		return true
	}
	return false
}

func (h *recordingHandler) HandleOpenStream(e *xmlnode.Element) error {
	h.opened = e
	return nil
}

func (h *recordingHandler) HandleStanza(e *xmlnode.Element) error {
	h.stanzas = append(h.stanzas, e)
	return nil
}

func (h *recordingHandler) HandleCloseStream() error {
	h.closed = true
	return nil
}

func TestTargetAssemblesStanzas(t *testing.T) {
	src := `<stream:stream xmlns:stream='http://etherx.jabber.org/streams'>` +
		`<message><body>hi</body></message>` +
		`</stream:stream>`

	h := &recordingHandler{}
	target := NewTarget(h)
	d := xml.NewDecoder(strings.NewReader(src))

	err := target.Feed(d)
	if err != io.EOF {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.opened == nil {
		t.Fatal("expected HandleOpenStream to be called")
	}
	if !h.closed {
		t.Fatal("expected HandleCloseStream to be called")
	}
	if len(h.stanzas) != 1 {
		t.Fatalf("got %d stanzas, want 1", len(h.stanzas))
	}
	body := h.stanzas[0].ChildByName(xml.Name{Local: "body"})
	if body == nil || body.Text != "hi" {
		t.Fatalf("got body %#v, want text %q", body, "hi")
	}
}

func TestTargetRejectsNonStreamRoot(t *testing.T) {
	h := &recordingHandler{}
	target := NewTarget(h)
	d := xml.NewDecoder(strings.NewReader(`<notstream/>`))

	err := target.Feed(d)
	if err == nil {
		t.Fatal("expected an error for a non-stream root element")
	}
}

func TestTargetRejectsUnknownStanza(t *testing.T) {
	src := `<stream:stream xmlns:stream='http://etherx.jabber.org/streams'>` +
		`<bogus/>`
	h := &recordingHandler{}
	target := NewTarget(h)
	d := xml.NewDecoder(strings.NewReader(src))

	err := target.Feed(d)
	if err == nil {
		t.Fatal("expected an error for an unsupported stanza type")
	}
}
