// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package resources implements the per-process resource binding table: it
// maps full JIDs to the session that owns them and tracks, per bare JID,
// the set of full JIDs a message to that bare address should be routed
// to.
//
// Go has no weak reference type, so where the original design relied on a
// binding disappearing when its owning session was garbage collected,
// this package instead requires the owner to call Unbind explicitly when
// the connection it represents goes away (Core does this from its close
// path). A binding that outlives its session because Unbind was never
// called is a caller bug, not a memory-safety issue: Session values held
// here are ordinary references, not weak ones.
package resources // import "tesserairis.dev/xmpp/resources"
