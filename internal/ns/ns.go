// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package ns provides namespace constants used throughout the xmpp module
// and its internal packages.
package ns // import "tesserairis.dev/xmpp/internal/ns"

// List of commonly used namespaces.
const (
	Bind     = "urn:ietf:params:xml:ns:xmpp-bind"
	SASL     = "urn:ietf:params:xml:ns:xmpp-sasl"
	Session  = "urn:ietf:params:xml:ns:xmpp-session"
	StartTLS = "urn:ietf:params:xml:ns:xmpp-tls"
	XML      = "http://www.w3.org/XML/1998/namespace"

	// Stream is the namespace of the <stream:stream> framing element and
	// its children (<stream:features>, <stream:error>).
	Stream = "http://etherx.jabber.org/streams"

	// Client and Server are the default namespaces used for stanzas
	// depending on which side of a connection is speaking.
	Client = "jabber:client"
	Server = "jabber:server"

	// StreamError is the namespace of the defined-condition element
	// nested inside a <stream:error/>.
	StreamError = "urn:ietf:params:xml:ns:xmpp-streams"

	// Stanza is the namespace of the defined-condition element nested
	// inside a stanza-level <error/>.
	Stanza = "urn:ietf:params:xml:ns:xmpp-stanzas"
)
