package resources

import (
	"errors"

	"tesserairis.dev/xmpp/internal/attr"
	"tesserairis.dev/xmpp/jid"
	"tesserairis.dev/xmpp/stanza"
)

// ErrNoRoute is returned by Routes when no session is bound for the
// given JID.
var ErrNoRoute = errors.New("resources: no route to jid")

// Route pairs a full JID with the session bound to it.
type Route struct {
	JID     jid.JID
	Session interface{}
}

// Table tracks resource bindings for every authorized JID on a server (or
// the single local binding on a client). It is not safe for concurrent
// use; a server that shares one Table across connections must guard it
// itself (eg. by only ever touching it from a single dispatcher
// goroutine).
type Table struct {
	bound  map[jid.JID]interface{} // full JID -> owning session
	routes map[jid.JID]map[jid.JID]struct{} // bare JID -> set of full JIDs
}

// New returns an empty Table.
func New() *Table {
	return &Table{
		bound:  make(map[jid.JID]interface{}),
		routes: make(map[jid.JID]map[jid.JID]struct{}),
	}
}

// Bind creates a fresh resource under bare, deriving the resource name
// from requested (or "Resource" if empty) plus a random suffix, and
// registers session as its owner.
func (t *Table) Bind(requested string, bare jid.JID, session interface{}) (jid.JID, error) {
	name := requested
	if name == "" {
		name = "Resource"
	}
	resource := name + "-" + attr.RandomLen(8)
	full, err := bare.WithResource(resource)
	if err != nil {
		return jid.JID{}, err
	}
	return t.bind(full, session)
}

// Bound registers a binding for full that the session already negotiated
// by some other means (eg. a client registering the JID the server
// handed back from an <iq type='set'><bind/></iq>).
func (t *Table) Bound(full jid.JID, session interface{}) (jid.JID, error) {
	return t.bind(full, session)
}

func (t *Table) bind(full jid.JID, session interface{}) (jid.JID, error) {
	if existing, ok := t.bound[full]; ok && existing != session {
		return jid.JID{}, stanza.Error{Type: stanza.Cancel, Condition: stanza.Conflict}
	}
	t.bound[full] = session

	bare := full.Bare()
	set, ok := t.routes[bare]
	if !ok {
		set = make(map[jid.JID]struct{})
		t.routes[bare] = set
	}
	set[full] = struct{}{}
	return full, nil
}

// Unbind destroys the registered binding for full. It is the explicit
// substitute for the weak-reference expiration a garbage-collected
// language gets for free: callers must invoke it when the session behind
// full goes away.
func (t *Table) Unbind(full jid.JID) {
	delete(t.bound, full)

	bare := full.Bare()
	set, ok := t.routes[bare]
	if !ok {
		return
	}
	delete(set, full)
	if len(set) == 0 {
		delete(t.routes, bare)
	}
}

// Routes returns every (full JID, session) pair a message to j should be
// delivered to. A full JID has at most one route; a bare JID may fan out
// to every bound resource. ErrNoRoute is returned if nothing is bound.
func (t *Table) Routes(j jid.JID) ([]Route, error) {
	if j.IsFull() {
		session, ok := t.bound[j]
		if !ok {
			return nil, ErrNoRoute
		}
		return []Route{{JID: j, Session: session}}, nil
	}

	set, ok := t.routes[j]
	if !ok || len(set) == 0 {
		return nil, ErrNoRoute
	}
	routes := make([]Route, 0, len(set))
	for full := range set {
		if session, ok := t.bound[full]; ok {
			routes = append(routes, Route{JID: full, Session: session})
		}
	}
	if len(routes) == 0 {
		return nil, ErrNoRoute
	}
	return routes, nil
}
