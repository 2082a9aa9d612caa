// Copyright 2014 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

// Package jid implements XMPP addresses ("Jabber IDs") as described in
// RFC 7622: the localpart, domainpart, and resourcepart are each prepared
// with the PRECIS profile appropriate to their slot before the parts are
// compared, hashed, or written to the wire.
package jid // import "tesserairis.dev/xmpp/jid"
