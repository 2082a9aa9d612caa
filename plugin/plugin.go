package plugin

import (
	"tesserairis.dev/xmpp/core"
	"tesserairis.dev/xmpp/state"
)

// Compiled is an immutable, ready-to-attach plugin set produced by
// Registry.Compile.
type Compiled struct {
	defaultDs []*Descriptor
	special   []specialEntry
}

// Attach wires c into s: special descriptors arm immediately (each
// activates the first time its trigger event fires), and default
// descriptors are deferred to s.State's activator, which
// core.Session.Activate runs once, after SessionStarted.
//
// Attach should be called once, right after s is constructed; unlike
// state.State's own installer hook, plugin activation is not rearmed
// across a stream reset, since the events that drive it (StreamBound,
// SessionStarted, ...) only happen once per connection.
func (c *Compiled) Attach(s *core.Session) {
	c.Install(s)
	s.State.SetActivator(func(*state.State) { c.Activate(s) })
}

// Install arms every special (event-activated) descriptor.
func (c *Compiled) Install(s *core.Session) {
	for _, entry := range c.special {
		entry := entry
		s.State.One(entry.event, func(interface{}) { activate(s, entry.d) })
	}
}

// Activate instantiates every default-activated descriptor.
func (c *Compiled) Activate(s *core.Session) {
	for _, d := range c.defaultDs {
		activate(s, d)
	}
}

func activate(s *core.Session, d *Descriptor) {
	if _, ok := s.State.Get(d.Name); ok {
		return
	}
	instance := d.New(s)
	s.State.Set(d.Name, instance)

	for _, sb := range d.Stanzas {
		sb := sb
		install := func() {
			s.State.BindStanza(sb.Selector, func(selector string, stanza interface{}) error {
				return sb.Method(instance, selector, stanza)
			}, false)
		}
		if sb.Event != nil {
			s.State.One(sb.Event, func(interface{}) { install() })
			continue
		}
		install()
	}

	for _, eb := range d.Events {
		eb := eb
		s.State.Bind(eb.Event, func(event interface{}) { eb.Method(instance, event) })
	}
}

// Get returns the instance activated under name, if any.
func Get(s *core.Session, name string) (interface{}, bool) {
	return s.State.Get(name)
}
