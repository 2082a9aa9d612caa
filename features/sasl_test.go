package features

import (
	"encoding/xml"
	"testing"

	"mellium.im/sasl"

	"tesserairis.dev/xmpp/core"
	"tesserairis.dev/xmpp/xmlnode"
)

func TestMechanismsHandlesClause(t *testing.T) {
	f := &Mechanisms{Mechanisms: []sasl.Mechanism{sasl.Plain}}
	if !f.Handles(mechanismsName) {
		t.Fatal("expected Handles to match the mechanisms clause name")
	}
	if f.Handles(startTLSName) {
		t.Fatal("did not expect Handles to match an unrelated clause")
	}
}

func TestMechanismsActiveBeforeAuth(t *testing.T) {
	s, conn := newTestSession(t, core.Server)
	defer conn.Close()

	f := &Mechanisms{Mechanisms: []sasl.Mechanism{sasl.Plain}}
	if !f.Active(s) {
		t.Fatal("expected Active before authorization")
	}
}

func TestMechanismsIncludeListsConfiguredMechanisms(t *testing.T) {
	s, conn := newTestSession(t, core.Server)
	defer conn.Close()
	s.State.Trigger(core.StreamSecured{})

	f := &Mechanisms{Mechanisms: []sasl.Mechanism{sasl.Plain, sasl.ScramSha1}}
	el := f.Include(s)
	if el.Name != mechanismsName {
		t.Fatalf("got element name %+v, want %+v", el.Name, mechanismsName)
	}
	if len(el.Children) != 2 {
		t.Fatalf("got %d mechanism children, want 2", len(el.Children))
	}
	if el.Children[0].Text != "PLAIN" {
		t.Fatalf("got first mechanism %q, want PLAIN", el.Children[0].Text)
	}
	if !s.State.IsStanza(core.Selector(authName)) {
		t.Fatal("expected Include to bind a handler for auth")
	}
}

func TestMechanismsIncludeWithholdsPlainBeforeSecured(t *testing.T) {
	s, conn := newTestSession(t, core.Server)
	defer conn.Close()

	f := &Mechanisms{Mechanisms: []sasl.Mechanism{sasl.Plain, sasl.ScramSha1}}
	el := f.Include(s)
	if len(el.Children) != 1 {
		t.Fatalf("got %d mechanism children, want 1 (PLAIN withheld)", len(el.Children))
	}
	if el.Children[0].Text != sasl.ScramSha1.Name {
		t.Fatalf("got remaining mechanism %q, want %q", el.Children[0].Text, sasl.ScramSha1.Name)
	}
}

func TestMechanismsReplySelectsFirstSupported(t *testing.T) {
	s, conn := newTestSession(t, core.Client)
	defer conn.Close()

	f := &Mechanisms{
		Mechanisms: []sasl.Mechanism{sasl.ScramSha1, sasl.Plain},
		Localpart:  "juliet",
		Password:   "r0m30",
	}
	clause := xmlnode.New(mechanismsName)
	m := clause.SubElement(xml.Name{Local: "mechanism"})
	m.Text = "PLAIN"

	f.Reply(s, clause)

	if !s.State.IsStanza(core.Selector(successName)) {
		t.Fatal("expected Reply to bind a handler for success")
	}
	if !s.State.IsStanza(core.Selector(saslFailureName)) {
		t.Fatal("expected Reply to bind a handler for failure")
	}
}

func TestDecodeEncodeSASLRoundTrip(t *testing.T) {
	data := []byte("hello")
	encoded := encodeSASL(data)
	decoded, err := decodeSASL(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if string(decoded) != "hello" {
		t.Fatalf("got %q, want %q", decoded, "hello")
	}
	if encodeSASL(nil) != "=" {
		t.Fatal("expected encodeSASL(nil) to be the empty-response marker")
	}
	empty, err := decodeSASL("=")
	if err != nil || len(empty) != 0 {
		t.Fatalf("got (%v, %v), want (empty, nil)", empty, err)
	}
}
