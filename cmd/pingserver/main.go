// Command pingserver accepts XMPP connections, authenticates them with
// SASL PLAIN, binds a resource, and answers XEP-0199 pings. It exists
// to demonstrate embedding core.Session, features.Set, and plugin
// end to end; it is not meant to be run as a real server.
package main

import (
	"crypto/tls"
	"log"
	"net"

	"golang.org/x/text/language"
	"mellium.im/sasl"

	"tesserairis.dev/xmpp/core"
	"tesserairis.dev/xmpp/features"
	"tesserairis.dev/xmpp/jid"
	"tesserairis.dev/xmpp/plugin"
	"tesserairis.dev/xmpp/xepping"
	"tesserairis.dev/xmpp/xmlconn"
)

func main() {
	ln, err := net.Listen("tcp", "127.0.0.1:5222")
	if err != nil {
		log.Fatalf("pingserver: listen: %v", err)
	}
	log.Printf("pingserver: listening on %s", ln.Addr())

	for {
		nc, err := ln.Accept()
		if err != nil {
			log.Printf("pingserver: accept: %v", err)
			continue
		}
		go serve(nc)
	}
}

func serve(nc net.Conn) {
	defer nc.Close()

	domain := jid.MustParse("localhost")

	fs := features.NewSet(
		// No certificates configured, so StartTLS.Active never offers it;
		// kept in the set so a deployment only needs to set Config to turn
		// it on.
		&features.StartTLS{Config: &tls.Config{}},
		&features.Mechanisms{Mechanisms: []sasl.Mechanism{sasl.Plain}},
		&features.Bind{},
		&features.Session{},
	)

	s := core.New(xmlconn.New(nc), core.Server, domain, language.Und, fs)

	reg := plugin.NewRegistry(xepping.Descriptor())
	compiled, err := reg.Compile()
	if err != nil {
		log.Fatalf("pingserver: compile plugins: %v", err)
	}
	compiled.Attach(s)

	if err := s.Run(); err != nil {
		log.Printf("pingserver: session ended: %v", err)
	}
}
