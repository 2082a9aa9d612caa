// Command pingclient dials a server, authenticates with SASL PLAIN,
// binds a resource, and sends one XEP-0199 ping. It exists to
// demonstrate embedding core.Session and features.Set from the client
// side; it is not meant to be a general-purpose client.
package main

import (
	"log"

	"golang.org/x/text/language"
	"mellium.im/sasl"

	"tesserairis.dev/xmpp/conn"
	"tesserairis.dev/xmpp/core"
	"tesserairis.dev/xmpp/features"
	"tesserairis.dev/xmpp/jid"
	"tesserairis.dev/xmpp/xepping"
	"tesserairis.dev/xmpp/xmlconn"
)

func main() {
	local := jid.MustParse("juliet@localhost")

	nc, err := conn.Dial(local, conn.Service("xmpp-client"))
	if err != nil {
		log.Fatalf("pingclient: dial: %v", err)
	}
	defer nc.Close()

	fs := features.NewSet(
		&features.Mechanisms{
			Mechanisms: []sasl.Mechanism{sasl.Plain},
			Localpart:  local.Localpart(),
			Password:   "secret",
		},
		&features.Bind{},
		&features.Session{},
	)

	s := core.New(xmlconn.New(nc), core.Client, local, language.Und, fs)
	s.OpenStream()

	s.State.One(core.SessionStarted{}, func(interface{}) {
		xepping.Ping(s, func(err error) {
			if err != nil {
				log.Printf("pingclient: ping failed: %v", err)
				return
			}
			log.Print("pingclient: pong")
			s.Close()
		})
	})

	if err := s.Run(); err != nil {
		log.Printf("pingclient: session ended: %v", err)
	}
}
