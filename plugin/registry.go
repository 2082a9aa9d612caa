package plugin

import (
	"fmt"

	"tesserairis.dev/xmpp/core"
)

// Descriptor declares one plugin. New constructs the plugin's instance
// the first time the plugin activates; Stanzas and Events declare what
// that instance handles for the rest of the connection's lifetime.
//
// A Descriptor with an empty Activate list is a "default" plugin: it
// activates once, when Compiled.Activate runs (wired to
// state.State.SetActivator, which core.Session.Activate calls after
// SessionStarted). A non-empty Activate list makes it a "special"
// plugin that instead activates the first time one of the listed
// events fires, possibly well before negotiation finishes (eg. a
// plugin that wants to see StreamAuthorized as soon as it happens).
type Descriptor struct {
	Name     string
	New      func(s *core.Session) interface{}
	Activate []interface{}
	Stanzas  []StanzaBinding
	Events   []EventBinding
}

// StanzaBinding describes one stanza selector an activated plugin
// instance handles. A nil Event installs the handler immediately at
// activation; a non-nil Event defers installing it until that event
// has fired once (eg. a roster plugin's iq handler shouldn't dispatch
// before the stream is authenticated).
type StanzaBinding struct {
	Selector string
	Event    interface{}
	Method   func(instance interface{}, selector string, stanza interface{}) error
}

// EventBinding describes one event listener an activated plugin
// instance keeps bound for the rest of the connection.
type EventBinding struct {
	Event  interface{}
	Method func(instance interface{}, event interface{})
}

// PluginError reports a conflict discovered while compiling a Registry:
// two descriptors claiming the same stanza selector.
type PluginError struct {
	Descriptor string
	Selector   string
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("plugin: %s: selector %s is already claimed by another plugin", e.Descriptor, e.Selector)
}

// Registry collects Descriptors before Compile merges them.
type Registry struct {
	descriptors []*Descriptor
}

// NewRegistry returns a Registry seeded with ds.
func NewRegistry(ds ...*Descriptor) *Registry {
	r := &Registry{}
	r.descriptors = append(r.descriptors, ds...)
	return r
}

// Add appends d to the registry and returns r, for chaining.
func (r *Registry) Add(d *Descriptor) *Registry {
	r.descriptors = append(r.descriptors, d)
	return r
}

type specialEntry struct {
	event interface{}
	d     *Descriptor
}

// Compile merges r's descriptors into a Compiled plugin set, ready to
// attach to a session. Two descriptors declaring the same stanza
// selector is a compile-time error rather than a silently resolved
// priority, since nothing about declaration order implies which plugin
// should win.
func (r *Registry) Compile() (*Compiled, error) {
	c := &Compiled{}
	owners := make(map[string]string)
	for _, d := range r.descriptors {
		for _, sb := range d.Stanzas {
			if owner, ok := owners[sb.Selector]; ok && owner != d.Name {
				return nil, &PluginError{Descriptor: d.Name, Selector: sb.Selector}
			}
			owners[sb.Selector] = d.Name
		}
		if len(d.Activate) == 0 {
			c.defaultDs = append(c.defaultDs, d)
			continue
		}
		for _, ev := range d.Activate {
			c.special = append(c.special, specialEntry{event: ev, d: d})
		}
	}
	return c, nil
}
