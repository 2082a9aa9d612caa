// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package features implements the four stream features a session
// negotiates before it is usable: StartTLS, SASL authentication, resource
// Bind, and Session establishment. Each implements core.Feature; Set
// bundles them into a core.FeatureSet in the order they are passed to
// NewSet. It does not reorder them into the StartTLS, SASL, Bind, Session
// order that RFC 6120 §5 expects; callers list them in that order.
package features // import "tesserairis.dev/xmpp/features"
