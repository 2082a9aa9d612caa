// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package core implements the connection's protocol engine: stream
// open/close, feature negotiation, stream- and stanza-level error
// policy, and IQ correlation. It is the glue between package xmlconn
// (bytes in, elements out), package state (event/stanza dispatch and the
// re-entrant lock), and package features (StartTLS/SASL/Bind/Session).
package core // import "tesserairis.dev/xmpp/core"
