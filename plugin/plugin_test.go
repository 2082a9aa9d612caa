package plugin_test

import (
	"encoding/xml"
	"io"
	"net"
	"testing"

	"golang.org/x/text/language"

	"tesserairis.dev/xmpp/core"
	"tesserairis.dev/xmpp/internal/ns"
	"tesserairis.dev/xmpp/jid"
	"tesserairis.dev/xmpp/plugin"
	"tesserairis.dev/xmpp/xmlconn"
	"tesserairis.dev/xmpp/xmlnode"
)

func newTestSession(t *testing.T, role core.Role) (*core.Session, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	go io.Copy(io.Discard, client)
	conn := xmlconn.New(server)
	s := core.New(conn, role, jid.MustParse("example.com"), language.Und, nil)
	return s, client
}

func TestCompileRejectsDuplicateSelector(t *testing.T) {
	reg := plugin.NewRegistry(
		&plugin.Descriptor{
			Name: "a",
			New:  func(*core.Session) interface{} { return struct{}{} },
			Stanzas: []plugin.StanzaBinding{
				{Selector: "{jabber:client}iq", Method: func(interface{}, string, interface{}) error { return nil }},
			},
		},
		&plugin.Descriptor{
			Name: "b",
			New:  func(*core.Session) interface{} { return struct{}{} },
			Stanzas: []plugin.StanzaBinding{
				{Selector: "{jabber:client}iq", Method: func(interface{}, string, interface{}) error { return nil }},
			},
		},
	)

	if _, err := reg.Compile(); err == nil {
		t.Fatal("expected Compile to reject two descriptors claiming the same selector")
	}
}

func TestDefaultDescriptorActivatesOnSessionActivate(t *testing.T) {
	s, conn := newTestSession(t, core.Server)
	defer conn.Close()

	activated := false
	reg := plugin.NewRegistry(&plugin.Descriptor{
		Name: "greeter",
		New: func(*core.Session) interface{} {
			activated = true
			return "hello"
		},
	})
	compiled, err := reg.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	compiled.Attach(s)

	if activated {
		t.Fatal("expected the default descriptor to not activate before Activate runs")
	}

	s.State.Activate()

	if !activated {
		t.Fatal("expected the default descriptor to activate once state.State.Activate runs")
	}
	v, ok := plugin.Get(s, "greeter")
	if !ok || v.(string) != "hello" {
		t.Fatalf("got %v, %v, want hello, true", v, ok)
	}
}

func TestSpecialDescriptorActivatesOnItsEvent(t *testing.T) {
	s, conn := newTestSession(t, core.Server)
	defer conn.Close()

	reg := plugin.NewRegistry(&plugin.Descriptor{
		Name:     "roster",
		New:      func(*core.Session) interface{} { return &struct{}{} },
		Activate: []interface{}{core.StreamAuthorized{}},
	})
	compiled, err := reg.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	compiled.Attach(s)

	if _, ok := plugin.Get(s, "roster"); ok {
		t.Fatal("expected roster to not be activated before StreamAuthorized fires")
	}

	s.State.Trigger(core.StreamAuthorized{JID: jid.MustParse("juliet@example.com")})

	if _, ok := plugin.Get(s, "roster"); !ok {
		t.Fatal("expected roster to activate once StreamAuthorized fires")
	}
}

func TestStanzaBindingDispatchesToInstance(t *testing.T) {
	s, conn := newTestSession(t, core.Server)
	defer conn.Close()

	msgName := xml.Name{Space: ns.Client, Local: "message"}
	selector := core.Selector(msgName)

	var seen []string
	reg := plugin.NewRegistry(&plugin.Descriptor{
		Name: "pinger",
		New:  func(*core.Session) interface{} { return "pinger-instance" },
		Stanzas: []plugin.StanzaBinding{
			{
				Selector: selector,
				Method: func(instance interface{}, sel string, stanza interface{}) error {
					seen = append(seen, instance.(string))
					return nil
				},
			},
		},
	})
	compiled, err := reg.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	compiled.Attach(s)
	s.State.Activate()

	msg := xmlnode.New(msgName)
	if err := s.State.TriggerStanza(selector, msg); err != nil {
		t.Fatalf("TriggerStanza: %v", err)
	}
	if len(seen) != 1 || seen[0] != "pinger-instance" {
		t.Fatalf("got %v, want one dispatch to pinger-instance", seen)
	}
}

func TestEventBindingDispatchesToInstance(t *testing.T) {
	s, conn := newTestSession(t, core.Server)
	defer conn.Close()

	var got core.SessionStarted
	seen := false
	reg := plugin.NewRegistry(&plugin.Descriptor{
		Name: "logger",
		New:  func(*core.Session) interface{} { return struct{}{} },
		Events: []plugin.EventBinding{
			{
				Event: core.SessionStarted{},
				Method: func(instance interface{}, event interface{}) {
					seen = true
					got = event.(core.SessionStarted)
				},
			},
		},
	})
	compiled, err := reg.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	compiled.Attach(s)
	s.State.Activate()
	s.State.Trigger(core.SessionStarted{})

	if !seen {
		t.Fatal("expected the event binding to fire")
	}
	_ = got
}
