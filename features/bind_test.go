package features

import (
	"encoding/xml"
	"testing"

	"tesserairis.dev/xmpp/core"
	"tesserairis.dev/xmpp/internal/ns"
	"tesserairis.dev/xmpp/jid"
	"tesserairis.dev/xmpp/xmlnode"
)

func TestBindHandlesClause(t *testing.T) {
	f := &Bind{}
	if !f.Handles(bindName) {
		t.Fatal("expected Handles to match the bind clause name")
	}
}

func TestBindActiveRequiresAuthNotYetBound(t *testing.T) {
	s, conn := newTestSession(t, core.Server)
	defer conn.Close()

	f := &Bind{}
	if f.Active(s) {
		t.Fatal("expected Active to be false before authentication")
	}
}

func TestBindIncludeBindsIQSelector(t *testing.T) {
	s, conn := newTestSession(t, core.Server)
	defer conn.Close()

	f := &Bind{}
	el := f.Include(s)
	if el.Name != bindName {
		t.Fatalf("got %+v, want %+v", el.Name, bindName)
	}
	if !s.State.IsStanza(bindIQSelector) {
		t.Fatal("expected Include to bind the bind iq selector")
	}
}

func TestBindNewBindingAssignsResource(t *testing.T) {
	s, conn := newTestSession(t, core.Server)
	defer conn.Close()

	s.State.Trigger(core.StreamAuthorized{JID: jid.MustParse("juliet@example.com")})

	f := &Bind{}
	f.Include(s)

	iq := xmlnode.New(xml.Name{Space: ns.Client, Local: "iq"},
		xml.Attr{Name: xml.Name{Local: "type"}, Value: "set"},
		xml.Attr{Name: xml.Name{Local: "id"}, Value: "bind1"},
	)
	bindEl := iq.SubElement(bindName)
	resEl := bindEl.SubElement(xml.Name{Space: ns.Bind, Local: "resource"})
	resEl.Text = "balcony"

	var bound core.StreamBound
	s.State.One(core.StreamBound{}, func(e interface{}) { bound = e.(core.StreamBound) })

	f.newBinding(s, iq)

	if bound.JID.Equal(jid.JID{}) {
		t.Fatal("expected StreamBound to fire with a non-empty jid")
	}
	if bound.JID.Resourcepart() == "" {
		t.Fatal("expected the bound jid to have a resourcepart")
	}
}
