package core

import (
	"encoding/xml"

	"tesserairis.dev/xmpp/xmlnode"
)

// Feature is one entry in a negotiated <stream:features/> element
// (StartTLS, SASL Mechanisms, Bind, or Session).
type Feature interface {
	// Active reports whether this feature should currently be offered
	// (server) or acted on (client).
	Active(s *Session) bool

	// Handles reports whether a clause of the given element name,
	// offered in a <stream:features/> the client received, belongs to
	// this feature.
	Handles(clauseName xml.Name) bool

	// Include returns the element this feature contributes to an
	// outbound <stream:features/> (server side). It also binds whatever
	// stanza/event handlers the feature needs to react to the client's
	// reply. A nil return means the feature contributes nothing this
	// round.
	Include(s *Session) *xmlnode.Element

	// Reply drives negotiation in response to an offered clause (client
	// side).
	Reply(s *Session, clause *xmlnode.Element)
}

// FeatureSet is the negotiable feature list a Session is configured
// with, implemented by package features' Set.
type FeatureSet interface {
	// Install registers whatever special-event one-shot bindings the
	// feature set needs reinstalled on every stream reset (eg. rearming
	// StartTLS/SASL/Bind/Session negotiation).
	Install(s *Session)

	// Features returns the feature list in negotiation order.
	Features() []Feature
}
