// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package xmlconn owns one connection's byte stream and turns it into a
// sequence of fully-formed stream-level elements and stanzas.
//
// It collapses two distinct concerns that share the same connection
// lifecycle: Conn, a thin buffered wrapper around net.Conn that knows how
// to flush writes and upgrade itself in place to TLS, and Tokenizer plus
// Target, the incremental XML front end that feeds a Handler one parsed
// element at a time.
//
// Every exported type here is driven from a single goroutine per
// connection; nothing in this package is safe to call concurrently from
// more than one goroutine at a time.
package xmlconn // import "tesserairis.dev/xmpp/xmlconn"
