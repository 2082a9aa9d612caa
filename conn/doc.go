// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

// Package conn dials a transport connection to a remote XMPP endpoint,
// resolving the target domain's "xmpp-client" or "xmpp-server" DNS SRV
// records (RFC 6120 section 3.2) before falling back to the bare
// domain name on port 5222. It hands back a plain net.Conn-shaped
// value; xmlconn.New is what turns that into a stream-aware
// connection, and core.Session is what speaks XMPP over it.
package conn
