package features

import "tesserairis.dev/xmpp/core"

// Set bundles the standard features into a core.FeatureSet.
type Set struct {
	list []core.Feature
}

// NewSet returns a Set containing exactly the given features, in
// negotiation order.
func NewSet(fs ...core.Feature) *Set {
	return &Set{list: fs}
}

// Install satisfies core.FeatureSet. None of the bundled features
// require bindings that must survive a stream reset beyond what Core
// itself already reinstalls (StreamSecured/StreamAuthorized/StreamBound
// are one-shots Core rearms in its own listen()), so Install is a no-op;
// it exists so Set satisfies core.FeatureSet and so a caller bundling
// custom features has a natural place to rearm anything they add.
func (s *Set) Install(*core.Session) {}

// Features satisfies core.FeatureSet.
func (s *Set) Features() []core.Feature {
	return s.list
}
