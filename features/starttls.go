package features

import (
	"crypto/tls"
	"encoding/xml"
	"log"

	"tesserairis.dev/xmpp/core"
	"tesserairis.dev/xmpp/internal/ns"
	"tesserairis.dev/xmpp/jid"
	"tesserairis.dev/xmpp/xmlnode"
)

var startTLSName = xml.Name{Space: ns.StartTLS, Local: "starttls"}
var proceedName = xml.Name{Space: ns.StartTLS, Local: "proceed"}
var failureName = xml.Name{Space: ns.StartTLS, Local: "failure"}

// StartTLS offers (server) or negotiates (client) a TLS upgrade of the
// connection before authentication.
type StartTLS struct {
	Config *tls.Config
}

// Active satisfies core.Feature. Once a connection is secured (or
// authorized — TLS no longer has anything to offer once SASL has
// already run), StartTLS stops offering itself.
func (f *StartTLS) Active(s *core.Session) bool {
	if f.Config == nil || !s.UseTLS() {
		return false
	}
	if s.Role() == core.Server && len(f.Config.Certificates) == 0 {
		return false
	}
	if !s.AuthJID.Equal(jid.JID{}) {
		return false
	}
	return true
}

// Handles satisfies core.Feature.
func (f *StartTLS) Handles(name xml.Name) bool {
	return name == startTLSName
}

// Include satisfies core.Feature (server side): it binds the <starttls/>
// stanza handler and advertises the feature.
func (f *StartTLS) Include(s *core.Session) *xmlnode.Element {
	s.State.BindStanza(core.Selector(startTLSName), func(_ string, v interface{}) error {
		f.serverProceed(s, v.(*xmlnode.Element))
		return nil
	}, true)
	return xmlnode.New(startTLSName)
}

func (f *StartTLS) serverProceed(s *core.Session, _ *xmlnode.Element) {
	s.Write(xmlnode.New(proceedName))
	if err := s.StartTLS(f.Config); err != nil {
		log.Printf("features: starttls handshake failed: %v", err)
		s.Close()
	}
}

// Reply satisfies core.Feature (client side): it sends <starttls/> and
// arms the proceed/failure handlers.
func (f *StartTLS) Reply(s *core.Session, _ *xmlnode.Element) {
	s.State.BindStanza(core.Selector(proceedName), func(string, interface{}) error {
		if err := s.StartTLS(f.Config); err != nil {
			log.Printf("features: starttls handshake failed: %v", err)
			s.Close()
		}
		return nil
	}, true)
	s.State.BindStanza(core.Selector(failureName), func(string, interface{}) error {
		s.Close()
		return nil
	}, true)
	s.Write(xmlnode.New(startTLSName))
}
