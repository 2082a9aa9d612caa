package features

import (
	"encoding/base64"
	"encoding/xml"
	"log"

	"mellium.im/sasl"

	"tesserairis.dev/xmpp/core"
	"tesserairis.dev/xmpp/internal/ns"
	"tesserairis.dev/xmpp/jid"
	"tesserairis.dev/xmpp/xmlnode"
)

var (
	mechanismsName  = xml.Name{Space: ns.SASL, Local: "mechanisms"}
	authName        = xml.Name{Space: ns.SASL, Local: "auth"}
	challengeName   = xml.Name{Space: ns.SASL, Local: "challenge"}
	responseName    = xml.Name{Space: ns.SASL, Local: "response"}
	successName     = xml.Name{Space: ns.SASL, Local: "success"}
	saslFailureName = xml.Name{Space: ns.SASL, Local: "failure"}
	abortName       = xml.Name{Space: ns.SASL, Local: "abort"}
)

// Mechanisms negotiates SASL authentication. The server offers the
// configured mechanisms; the client tries one mechanism that both sides
// support and does not fall back to another if that one fails.
type Mechanisms struct {
	Mechanisms []sasl.Mechanism

	// Identity, Localpart and Password authenticate the client side.
	Identity  string
	Localpart string
	Password  string

	// Permit authorizes an authenticated identity on the server side. A
	// nil Permit accepts every identity the mechanism itself accepted.
	Permit func(*sasl.Negotiator) bool
}

// Active satisfies core.Feature: SASL has nothing left to offer once the
// stream is already authorized.
func (f *Mechanisms) Active(s *core.Session) bool {
	return s.AuthJID.Equal(jid.JID{})
}

// Handles satisfies core.Feature.
func (f *Mechanisms) Handles(name xml.Name) bool {
	return name == mechanismsName
}

func (f *Mechanisms) find(name string) (sasl.Mechanism, bool) {
	for _, m := range f.Mechanisms {
		if m.Name == name {
			return m, true
		}
	}
	return sasl.Mechanism{}, false
}

// ---------- Server ----------

// Include satisfies core.Feature: it advertises every configured
// mechanism that is safe to offer on the current stream and arms the
// <auth/> handler. PLAIN exposes the password to anyone who can read the
// stream, so it is withheld until the channel is secured.
func (f *Mechanisms) Include(s *core.Session) *xmlnode.Element {
	s.State.BindStanza(core.Selector(authName), func(_ string, v interface{}) error {
		f.serverBegin(s, v.(*xmlnode.Element))
		return nil
	}, true)

	el := xmlnode.New(mechanismsName)
	for _, m := range f.Mechanisms {
		if m.Name == sasl.Plain.Name && !s.Secured {
			continue
		}
		mech := el.SubElement(xml.Name{Local: "mechanism"})
		mech.Text = m.Name
	}
	return el
}

func (f *Mechanisms) serverBegin(s *core.Session, elem *xmlnode.Element) {
	name, _ := elem.Attribute("mechanism")
	mech, ok := f.find(name)
	if !ok {
		f.serverFailure(s, "invalid-mechanism")
		return
	}

	permit := f.Permit
	if permit == nil {
		permit = func(*sasl.Negotiator) bool { return true }
	}
	neg := sasl.NewServer(mech, permit, sasl.Authz(""))

	initial, err := decodeSASL(elem.Text)
	if err != nil {
		f.serverFailure(s, "incorrect-encoding")
		return
	}
	f.serverStep(s, neg, initial)
}

func (f *Mechanisms) serverStep(s *core.Session, neg *sasl.Negotiator, challenge []byte) {
	more, resp, err := neg.Step(challenge)
	if err != nil {
		f.serverFailure(s, "not-authorized")
		return
	}

	if !more {
		f.serverSuccess(s, neg, resp)
		return
	}

	s.State.BindStanza(core.Selector(responseName), func(_ string, v interface{}) error {
		data, err := decodeSASL(v.(*xmlnode.Element).Text)
		if err != nil {
			f.serverFailure(s, "incorrect-encoding")
			return nil
		}
		f.serverStep(s, neg, data)
		return nil
	}, true)
	s.State.BindStanza(core.Selector(abortName), func(string, interface{}) error {
		f.serverFailure(s, "aborted")
		return nil
	}, true)

	challengeEl := xmlnode.New(challengeName)
	challengeEl.Text = encodeSASL(resp)
	s.Write(challengeEl)
}

func (f *Mechanisms) serverSuccess(s *core.Session, neg *sasl.Negotiator, final []byte) {
	el := xmlnode.New(successName)
	if len(final) > 0 {
		el.Text = encodeSASL(final)
	}
	s.Write(el)

	username, _, identity := neg.Credentials()
	entity := identity
	if entity == "" {
		entity = username
	}
	authJID, err := jid.New(entity, s.ServerJID().Domainpart(), "")
	if err != nil {
		log.Printf("features: sasl success produced an invalid jid: %v", err)
		s.Close()
		return
	}
	s.State.Trigger(core.StreamAuthorized{JID: authJID})
	s.Reset()
}

func (f *Mechanisms) serverFailure(s *core.Session, condition string) {
	el := xmlnode.New(saslFailureName)
	el.SubElement(xml.Name{Local: condition})
	s.Write(el)
	s.Close()
}

// ---------- Client ----------

// Reply satisfies core.Feature: it picks the first offered mechanism
// this side also supports and begins the auth loop.
func (f *Mechanisms) Reply(s *core.Session, clause *xmlnode.Element) {
	offered := make(map[string]bool, len(clause.Children))
	for _, m := range clause.Children {
		offered[m.Text] = true
	}

	for _, mech := range f.Mechanisms {
		if !offered[mech.Name] {
			continue
		}
		f.clientBegin(s, mech)
		return
	}
}

func (f *Mechanisms) clientBegin(s *core.Session, mech sasl.Mechanism) {
	opts := []sasl.Option{
		sasl.Authz(f.Identity),
		sasl.Credentials(f.Localpart, f.Password),
	}
	neg := sasl.NewClient(mech, opts...)

	more, resp, err := neg.Step(nil)
	if err != nil {
		s.Close()
		return
	}

	s.State.BindStanza(core.Selector(successName), func(_ string, v interface{}) error {
		f.clientSuccess(s, v.(*xmlnode.Element))
		return nil
	}, true)
	s.State.BindStanza(core.Selector(saslFailureName), func(_ string, v interface{}) error {
		f.clientFailure(s, v.(*xmlnode.Element))
		return nil
	}, true)
	if more {
		s.State.BindStanza(core.Selector(challengeName), func(_ string, v interface{}) error {
			f.clientStep(s, neg, v.(*xmlnode.Element))
			return nil
		}, true)
	}

	el := xmlnode.New(authName, xml.Attr{Name: xml.Name{Local: "mechanism"}, Value: mech.Name})
	el.Text = encodeSASL(resp)
	s.Write(el)
}

func (f *Mechanisms) clientStep(s *core.Session, neg *sasl.Negotiator, elem *xmlnode.Element) {
	data, err := decodeSASL(elem.Text)
	if err != nil {
		s.Close()
		return
	}
	more, resp, err := neg.Step(data)
	if err != nil {
		s.Close()
		return
	}
	if !more {
		return
	}
	respEl := xmlnode.New(responseName)
	respEl.Text = encodeSASL(resp)
	s.Write(respEl)
}

func (f *Mechanisms) clientSuccess(s *core.Session, elem *xmlnode.Element) {
	entity := f.Identity
	if entity == "" {
		entity = f.Localpart
	}
	authJID, err := jid.New(entity, s.ServerJID().Domainpart(), "")
	if err != nil {
		log.Printf("features: sasl success produced an invalid jid: %v", err)
		s.Close()
		return
	}
	s.State.Trigger(core.StreamAuthorized{JID: authJID})
	s.Reset()
}

func (f *Mechanisms) clientFailure(s *core.Session, elem *xmlnode.Element) {
	condition := "unknown"
	if len(elem.Children) > 0 {
		condition = elem.Children[0].Name.Local
	}
	log.Printf("features: sasl authentication failed: %s", condition)
	s.Close()
}

func decodeSASL(data string) ([]byte, error) {
	if data == "" || data == "=" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(data)
}

func encodeSASL(data []byte) string {
	if len(data) == 0 {
		return "="
	}
	return base64.StdEncoding.EncodeToString(data)
}
