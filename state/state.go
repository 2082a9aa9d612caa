package state

import (
	"errors"
	"reflect"

	"tesserairis.dev/xmpp/streamerr"
)

// Handler receives an event value. The concrete type of event carries
// whatever data is relevant (eg. core's SessionStarted event is an empty
// struct, while its StreamBound event carries the bound JID);
// handlers that only care about a subset of event types type-assert on
// event.
type Handler func(event interface{})

// StanzaHandler processes one dispatched stanza.
type StanzaHandler func(selector string, stanza interface{}) error

// Token identifies a single bound handler so it can be unbound later
// without relying on function identity, which Go funcs do not support.
type Token uint64

type eventBinding struct {
	token   Token
	once    bool
	handler Handler
}

type stanzaBinding struct {
	once    bool
	handler StanzaHandler
}

// State owns everything that must be torn down and rebuilt across a
// stream reset: the event map, the stanza dispatch table, the slot table
// of plugin-owned values, and the re-entrant lock that guards all three.
type State struct {
	locked   bool
	schedule []func()

	events  map[reflect.Type][]eventBinding
	stanzas map[string]stanzaBinding
	slots   map[string]interface{}

	nextToken Token

	// install is called by Reset to reinstall any bindings that must
	// survive a stream reset (eg. the special-event plugin bindings that
	// re-arm StartTLS/SASL/Bind/Session on every negotiation). It is nil
	// until set by SetInstaller.
	install func(*State)

	// activate is called by Activate to instantiate default plugins
	// under a single held lock. It is nil until set by SetActivator.
	activate func(*State)
}

// New returns an empty State.
func New() *State {
	return &State{
		events:  make(map[reflect.Type][]eventBinding),
		stanzas: make(map[string]stanzaBinding),
		slots:   make(map[string]interface{}),
	}
}

// SetInstaller registers the function Reset calls to reinstall
// special-event plugin bindings after clearing the tables.
func (s *State) SetInstaller(install func(*State)) {
	s.install = install
}

// SetActivator registers the function Activate calls to instantiate
// default plugins.
func (s *State) SetActivator(activate func(*State)) {
	s.activate = activate
}

// Reset flushes any pending jobs, clears every table, and reinstalls
// special-event plugin bindings, returning s to its post-install,
// pre-activation state. This is what a stream restart (post-STARTTLS,
// post-SASL) runs: connection-level flags the caller keeps separately
// (secured, authJID, resources) survive; everything State owns does not.
func (s *State) Reset() *State {
	s.Flush(true)
	s.Clear()
	if s.install != nil {
		s.install(s)
	}
	return s
}

// Activate instantiates default plugins under a single held lock so
// their initializers cannot race with each other or with incoming
// traffic.
func (s *State) Activate() *State {
	if s.activate != nil {
		withLock(s, func() { s.activate(s) })
	}
	return s
}

// Clear drops every table without reinstalling anything.
func (s *State) Clear() *State {
	s.locked = false
	s.schedule = s.schedule[:0]
	for k := range s.events {
		delete(s.events, k)
	}
	for k := range s.stanzas {
		delete(s.stanzas, k)
	}
	for k := range s.slots {
		delete(s.slots, k)
	}
	return s
}

// ---------- Plugin-owned slots ----------

// Get returns the value previously stored under name, or ok=false.
func (s *State) Get(name string) (interface{}, bool) {
	v, ok := s.slots[name]
	return v, ok
}

// Set stores value under name for later retrieval with Get.
func (s *State) Set(name string, value interface{}) *State {
	s.slots[name] = value
	return s
}

// ---------- Events ----------

func eventType(kind interface{}) reflect.Type {
	return reflect.TypeOf(kind)
}

// Bind registers cb to run every time an event of the same type as kind
// is triggered. It returns a Token that can later be passed to Unbind.
func (s *State) Bind(kind interface{}, cb Handler) Token {
	s.nextToken++
	tok := s.nextToken
	t := eventType(kind)
	s.events[t] = append(s.events[t], eventBinding{token: tok, handler: cb})
	return tok
}

// One registers cb to run the next time an event of the same type as
// kind is triggered, then automatically unbind itself.
func (s *State) One(kind interface{}, cb Handler) Token {
	s.nextToken++
	tok := s.nextToken
	t := eventType(kind)
	s.events[t] = append(s.events[t], eventBinding{token: tok, once: true, handler: cb})
	return tok
}

// Unbind removes the handler previously registered under tok, if it is
// still bound.
func (s *State) Unbind(kind interface{}, tok Token) *State {
	t := eventType(kind)
	bindings := s.events[t]
	for i, b := range bindings {
		if b.token == tok {
			s.events[t] = append(bindings[:i], bindings[i+1:]...)
			break
		}
	}
	return s
}

// Trigger invokes every handler bound to event's type, in bind order,
// via Run. Handlers are snapshotted before iteration so that a handler
// which binds or unbinds more handlers for the same event type during
// the call does not corrupt iteration or see partial state; one-shot
// handlers are removed from the live table by token, not by position, so
// a concurrent removal can never drop the wrong handler.
func (s *State) Trigger(event interface{}) *State {
	t := eventType(event)
	bindings := s.events[t]
	if len(bindings) == 0 {
		return s
	}
	snapshot := make([]eventBinding, len(bindings))
	copy(snapshot, bindings)

	for _, b := range snapshot {
		if b.once {
			s.Unbind(event, b.token)
		}
		handler := b.handler
		s.Run(func() { handler(event) })
	}
	return s
}

// ---------- Stanzas ----------

// ErrUnknownStanza is the sentinel behind the unsupported-stanza-type
// stream error returned by TriggerStanza when no handler is bound for a
// selector.
var ErrUnknownStanza = streamerr.UnsupportedStanzaType

// IsStanza reports whether selector has a bound handler.
func (s *State) IsStanza(selector string) bool {
	_, ok := s.stanzas[selector]
	return ok
}

// BindStanza registers cb as the handler for selector. If replace is
// false and selector already has a handler, BindStanza returns an error
// instead of overwriting it.
func (s *State) BindStanza(selector string, cb StanzaHandler, replace bool) error {
	if _, exists := s.stanzas[selector]; exists && !replace {
		return errors.New("state: selector " + selector + " already has a handler")
	}
	s.stanzas[selector] = stanzaBinding{handler: cb}
	return nil
}

// OneStanza is like BindStanza, but the handler is removed after it
// fires once.
func (s *State) OneStanza(selector string, cb StanzaHandler) error {
	if _, exists := s.stanzas[selector]; exists {
		return errors.New("state: selector " + selector + " already has a handler")
	}
	s.stanzas[selector] = stanzaBinding{once: true, handler: cb}
	return nil
}

// UnbindStanza removes the handler for selector, if any.
func (s *State) UnbindStanza(selector string) *State {
	delete(s.stanzas, selector)
	return s
}

// TriggerStanza dispatches stanza to the handler bound for selector via
// Run. A missing selector is reported as ErrUnknownStanza; core.Session
// answers that with a feature-not-implemented stanza error and keeps the
// stream open.
func (s *State) TriggerStanza(selector string, stanza interface{}) error {
	b, ok := s.stanzas[selector]
	if !ok {
		return ErrUnknownStanza
	}
	if b.once {
		delete(s.stanzas, selector)
	}
	var runErr error
	s.Run(func() {
		runErr = b.handler(selector, stanza)
	})
	return runErr
}

// ---------- Synchronization ----------

// withLock runs fn with the lock held, restoring the prior lock state
// and draining the schedule afterward, mirroring the re-entrant
// with-statement lock in the original implementation.
func withLock(s *State, fn func()) {
	orig := s.locked
	s.locked = true
	defer func() {
		s.locked = orig
		if !orig && len(s.schedule) > 0 {
			s.Flush(false)
		}
	}()
	fn()
}

// Run executes fn immediately if the lock is free, or enqueues it to run
// when the lock is released if it is currently held. This is the only
// path by which event handlers, stanza handlers, and outbound writes run,
// so that a handler invoked while another handler holds the lock can
// never interleave half-written output or fire out of order.
func (s *State) Run(fn func()) *State {
	if s.locked {
		s.schedule = append(s.schedule, fn)
		return s
	}
	withLock(s, fn)
	return s
}

// Flush drains any scheduled jobs in FIFO order. If force is false and
// the lock is currently held, Flush does nothing (the jobs will run when
// the lock is eventually released). If force is true, Flush drains the
// queue regardless, which is what Reset needs when tearing down a
// connection that might still have a lock held by an in-flight handler.
func (s *State) Flush(force bool) *State {
	if len(s.schedule) == 0 || (s.locked && !force) {
		return s
	}
	s.locked = true
	for len(s.schedule) > 0 {
		job := s.schedule[0]
		s.schedule = s.schedule[1:]
		job()
	}
	s.locked = false
	return s
}
