// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package xmlnode_test

import (
	"bytes"
	"encoding/xml"
	"testing"

	"tesserairis.dev/xmpp/xmlnode"
)

func TestSubElementAndText(t *testing.T) {
	root := xmlnode.New(xml.Name{Space: "jabber:client", Local: "message"})
	body := root.SubElement(xml.Name{Local: "body"})
	body.AppendText("hello")
	root.AppendText(" tail")

	if root.Child(0) != body {
		t.Fatal("expected body to be the first child")
	}
	if body.Text != "hello" {
		t.Errorf("body.Text = %q, want hello", body.Text)
	}
	if body.Tail != " tail" {
		t.Errorf("body.Tail = %q, want ' tail'", body.Tail)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	root := xmlnode.New(xml.Name{Space: "jabber:client", Local: "iq"},
		xml.Attr{Name: xml.Name{Local: "type"}, Value: "get"},
		xml.Attr{Name: xml.Name{Local: "id"}, Value: "1"},
	)
	root.SubElement(xml.Name{Space: "urn:xmpp:ping", Local: "ping"})

	var buf bytes.Buffer
	if _, err := root.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: unexpected error: %v", err)
	}

	dec := xml.NewDecoder(&buf)
	tok, err := dec.Token()
	if err != nil {
		t.Fatalf("Token: unexpected error: %v", err)
	}
	start, ok := tok.(xml.StartElement)
	if !ok || start.Name.Local != "iq" {
		t.Fatalf("expected <iq>, got %#v", tok)
	}
}

func TestChildByName(t *testing.T) {
	root := xmlnode.New(xml.Name{Local: "iq"})
	ping := xml.Name{Space: "urn:xmpp:ping", Local: "ping"}
	root.SubElement(ping)

	if got := root.ChildByName(ping); got == nil {
		t.Fatal("expected to find ping child")
	}
	if got := root.ChildByName(xml.Name{Local: "missing"}); got != nil {
		t.Fatal("expected no match for missing name")
	}
}
