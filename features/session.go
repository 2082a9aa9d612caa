package features

import (
	"encoding/xml"

	"tesserairis.dev/xmpp/core"
	"tesserairis.dev/xmpp/internal/ns"
	"tesserairis.dev/xmpp/jid"
	"tesserairis.dev/xmpp/xmlnode"
)

var sessionName = xml.Name{Space: ns.Session, Local: "session"}
var sessionIQSelector = "{" + ns.Client + "}iq/" + "{" + ns.Session + "}session"

// Session negotiates the (historical, RFC 3921) session-establishment
// step clients perform once bound, before they are allowed to exchange
// stanzas other than IQs.
type Session struct{}

// Active satisfies core.Feature: a session can only be established once
// the stream is authenticated.
func (f *Session) Active(s *core.Session) bool {
	return !s.AuthJID.Equal(jid.JID{})
}

// Handles satisfies core.Feature.
func (f *Session) Handles(name xml.Name) bool {
	return name == sessionName
}

// ---------- Server ----------

// Include satisfies core.Feature.
func (f *Session) Include(s *core.Session) *xmlnode.Element {
	s.State.BindStanza(sessionIQSelector, func(_ string, v interface{}) error {
		f.start(s, v.(*xmlnode.Element))
		return nil
	}, true)
	return xmlnode.New(sessionName)
}

func (f *Session) start(s *core.Session, iq *xmlnode.Element) {
	s.State.Trigger(core.SessionStarted{})

	result := xmlnode.New(iq.Name, xml.Attr{Name: xml.Name{Local: "type"}, Value: "result"})
	if id, ok := iq.Attribute("id"); ok {
		result.Attr = append(result.Attr, xml.Attr{Name: xml.Name{Local: "id"}, Value: id})
	}
	s.Write(result)
}

// ---------- Client ----------

// Reply satisfies core.Feature: the client waits for resource binding to
// finish, then issues the session-establishment IQ.
func (f *Session) Reply(s *core.Session, _ *xmlnode.Element) {
	s.State.One(core.StreamBound{}, func(interface{}) {
		s.IQ("set", xmlnode.New(sessionName), func(_ string, v interface{}) error {
			s.State.Trigger(core.SessionStarted{})
			return nil
		})
	})
}
