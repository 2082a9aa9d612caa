// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package state is the per-connection coordinator: an event map, a stanza
// dispatch table, a slot table for plugin-owned values, and the
// re-entrant lock that serializes all of it.
//
// Nothing in this package is safe for concurrent use from more than one
// goroutine; a Core (package core) drives a single State from the
// goroutine that owns the connection.
package state // import "tesserairis.dev/xmpp/state"
