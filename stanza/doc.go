// Copyright 2017 Sam Whited.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package stanza defines the stanza-level error vocabulary shared by core
// and its features: the error type and condition constants from RFC 6120
// §8.3, and an Error type that marshals and unmarshals as a stanza
// <error/> element.
//
// Stanzas themselves (message, presence, iq) are built and dispatched as
// *xmlnode.Element values rather than as struct-tagged Go types; this
// package only supplies the vocabulary core needs to report a failure
// back to the peer that sent one.
package stanza // import "tesserairis.dev/xmpp/stanza"
