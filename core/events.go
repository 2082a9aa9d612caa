package core

import (
	"tesserairis.dev/xmpp/jid"
	"tesserairis.dev/xmpp/xmlconn"
)

// SentOpenStream fires after this side writes its opening <stream:stream>
// tag.
type SentOpenStream struct{}

// SentCloseStream fires after this side writes </stream:stream>.
type SentCloseStream struct{}

// ReceivedOpenStream fires once the peer's opening <stream:stream> tag
// has been parsed.
type ReceivedOpenStream struct{ xmlconn.Info }

// ReceivedCloseStream fires once the peer's </stream:stream> has been
// parsed.
type ReceivedCloseStream struct{}

// StreamClosed fires just before the underlying connection is shut down.
type StreamClosed struct{}

// StreamSecured fires once a StartTLS handshake completes successfully.
type StreamSecured struct{}

// StreamAuthorized fires once SASL negotiation completes successfully.
type StreamAuthorized struct{ JID jid.JID }

// StreamBound fires once resource binding completes.
type StreamBound struct{ JID jid.JID }

// SessionStarted fires once the Session feature completes, which is this
// engine's cue to instantiate default plugins.
type SessionStarted struct{}
