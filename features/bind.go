package features

import (
	"encoding/xml"
	"log"

	"tesserairis.dev/xmpp/core"
	"tesserairis.dev/xmpp/internal/ns"
	"tesserairis.dev/xmpp/jid"
	"tesserairis.dev/xmpp/resources"
	"tesserairis.dev/xmpp/stanza"
	"tesserairis.dev/xmpp/xmlnode"
)

var (
	bindName       = xml.Name{Space: ns.Bind, Local: "bind"}
	bindIQSelector = "{" + ns.Client + "}iq/" + "{" + ns.Bind + "}bind"
)

// Bind negotiates resource binding: the server assigns (or honors a
// requested) resourcepart and the client learns its full JID.
type Bind struct{}

// Active satisfies core.Feature: binding only makes sense once the
// stream has been authenticated and hasn't been bound yet.
func (f *Bind) Active(s *core.Session) bool {
	return !s.AuthJID.Equal(jid.JID{}) && s.AuthJID.IsBare()
}

// Handles satisfies core.Feature.
func (f *Bind) Handles(name xml.Name) bool {
	return name == bindName
}

// ---------- Server ----------

// Include satisfies core.Feature.
func (f *Bind) Include(s *core.Session) *xmlnode.Element {
	if s.Resources == nil {
		s.Resources = resources.New()
	}
	s.State.BindStanza(bindIQSelector, func(_ string, v interface{}) error {
		f.newBinding(s, v.(*xmlnode.Element))
		return nil
	}, true)
	return xmlnode.New(bindName)
}

func (f *Bind) newBinding(s *core.Session, iq *xmlnode.Element) {
	requested := ""
	if child := iq.ChildByName(bindName); child != nil {
		if res := child.ChildByName(xml.Name{Space: ns.Bind, Local: "resource"}); res != nil {
			requested = res.Text
		}
	}

	full, err := s.Resources.Bind(requested, s.AuthJID.Bare(), s)
	if err != nil {
		log.Printf("features: bind failed: %v", err)
		s.StanzaError(iq, stanza.Cancel, stanza.Conflict, "")
		return
	}

	result := xmlnode.New(iq.Name, xml.Attr{Name: xml.Name{Local: "type"}, Value: "result"})
	if id, ok := iq.Attribute("id"); ok {
		result.Attr = append(result.Attr, xml.Attr{Name: xml.Name{Local: "id"}, Value: id})
	}
	bindEl := result.SubElement(bindName)
	jidEl := bindEl.SubElement(xml.Name{Space: ns.Bind, Local: "jid"})
	jidEl.Text = full.String()
	s.Write(result)

	s.State.Trigger(core.StreamBound{JID: full})
}

// ---------- Client ----------

// Reply satisfies core.Feature.
func (f *Bind) Reply(s *core.Session, _ *xmlnode.Element) {
	s.IQ("set", xmlnode.New(bindName), func(_ string, v interface{}) error {
		f.bound(s, v.(*xmlnode.Element))
		return nil
	})
}

func (f *Bind) bound(s *core.Session, iq *xmlnode.Element) {
	child := iq.ChildByName(bindName)
	if child == nil {
		log.Printf("features: bind result missing <bind/>")
		s.Close()
		return
	}
	jidEl := child.ChildByName(xml.Name{Space: ns.Bind, Local: "jid"})
	if jidEl == nil {
		log.Printf("features: bind result missing <jid/>")
		s.Close()
		return
	}

	full, err := jid.Parse(jidEl.Text)
	if err != nil {
		log.Printf("features: bind result had an invalid jid: %v", err)
		s.Close()
		return
	}
	if s.Resources == nil {
		s.Resources = resources.New()
	}
	if _, err := s.Resources.Bound(full, s); err != nil {
		log.Printf("features: bind failed: %v", err)
		s.Close()
		return
	}
	s.State.Trigger(core.StreamBound{JID: full})
}
