package xepping_test

import (
	"encoding/xml"
	"fmt"
	"io"
	"net"
	"testing"

	"golang.org/x/text/language"

	"tesserairis.dev/xmpp/core"
	"tesserairis.dev/xmpp/internal/ns"
	"tesserairis.dev/xmpp/jid"
	"tesserairis.dev/xmpp/plugin"
	"tesserairis.dev/xmpp/xepping"
	"tesserairis.dev/xmpp/xmlconn"
	"tesserairis.dev/xmpp/xmlnode"
)

func newTestSession(t *testing.T, role core.Role) (*core.Session, net.Conn) {
	t.Helper()
	client, srv := net.Pipe()
	t.Cleanup(func() { client.Close() })
	go io.Copy(io.Discard, client)
	conn := xmlconn.New(srv)
	s := core.New(conn, role, jid.MustParse("example.com"), language.Und, nil)
	return s, client
}

func TestDescriptorBindsPingSelector(t *testing.T) {
	s, conn := newTestSession(t, core.Server)
	defer conn.Close()

	reg := plugin.NewRegistry(xepping.Descriptor())
	compiled, err := reg.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	compiled.Attach(s)
	s.State.Activate()

	selector := fmt.Sprintf("{%s}iq/{urn:xmpp:ping}ping", ns.Client)
	if !s.State.IsStanza(selector) {
		t.Fatal("expected the ping descriptor to bind the ping iq selector once activated")
	}
}

func TestDescriptorAnswersPingWithoutError(t *testing.T) {
	s, conn := newTestSession(t, core.Server)
	defer conn.Close()

	reg := plugin.NewRegistry(xepping.Descriptor())
	compiled, err := reg.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	compiled.Attach(s)
	s.State.Activate()

	iq := xmlnode.New(xml.Name{Space: ns.Client, Local: "iq"},
		xml.Attr{Name: xml.Name{Local: "type"}, Value: "get"},
		xml.Attr{Name: xml.Name{Local: "id"}, Value: "ping1"},
		xml.Attr{Name: xml.Name{Local: "from"}, Value: "juliet@example.com/balcony"},
	)
	iq.SubElement(xml.Name{Space: "urn:xmpp:ping", Local: "ping"})

	selector := fmt.Sprintf("{%s}iq/{urn:xmpp:ping}ping", ns.Client)
	if err := s.State.TriggerStanza(selector, iq); err != nil {
		t.Fatalf("TriggerStanza: %v", err)
	}
}
