package core

import (
	"crypto/tls"
	"encoding/xml"
	"fmt"
	"log"

	"golang.org/x/text/language"
	"mellium.im/xmlstream"

	"tesserairis.dev/xmpp/internal/attr"
	"tesserairis.dev/xmpp/internal/decl"
	"tesserairis.dev/xmpp/internal/ns"
	"tesserairis.dev/xmpp/jid"
	"tesserairis.dev/xmpp/resources"
	"tesserairis.dev/xmpp/stanza"
	"tesserairis.dev/xmpp/state"
	"tesserairis.dev/xmpp/streamerr"
	"tesserairis.dev/xmpp/xmlconn"
	"tesserairis.dev/xmpp/xmlnode"
)

// Role distinguishes the two sides of a stream. They differ only in who
// initiates and who sends <stream:features/>; everything else (error
// policy, IQ correlation, stanza dispatch) is shared, so Go renders the
// distinction as a field instead of the original's ServerCore/ClientCore
// subclasses.
type Role int

const (
	// Client initiates the stream and waits for features.
	Client Role = iota
	// Server accepts the stream and drives feature negotiation.
	Server
)

var (
	ivClark    = xml.Name{Space: ns.Stream, Local: "error"}
	iqClark    = xml.Name{Space: ns.Client, Local: "iq"}
	featClark  = xml.Name{Space: ns.Stream, Local: "features"}
)

// Session is one connection's protocol engine.
type Session struct {
	conn      *xmlconn.Conn
	role      Role
	serverJID jid.JID
	lang      language.Tag

	State  *state.State
	target *xmlconn.Target
	tok    *xmlconn.Tokenizer
	dec    xml.TokenReader

	root *xmlnode.Element

	Secured   bool
	AuthJID   jid.JID
	Resources *resources.Table

	id       string
	features FeatureSet

	closed bool
}

// New constructs a Session. serverJID identifies this side (the server's
// own address on the server role, or the address being authenticated as
// on the client role).
func New(conn *xmlconn.Conn, role Role, serverJID jid.JID, lang language.Tag, fs FeatureSet) *Session {
	s := &Session{
		conn:      conn,
		role:      role,
		serverJID: serverJID,
		lang:      lang,
		State:     state.New(),
		features:  fs,
	}
	s.target = xmlconn.NewTarget(s)
	s.State.SetInstaller(func(*state.State) { s.listen() })
	s.reset()
	return s
}

// IsStanza satisfies xmlconn.Handler.
func (s *Session) IsStanza(name xml.Name) bool {
	return s.State.IsStanza(selectorFor(name))
}

func selectorFor(name xml.Name) string {
	return fmt.Sprintf("{%s}%s", name.Space, name.Local)
}

// Selector renders name the same way Session keys its stanza dispatch
// table, so a Feature can bind its own depth-1 stanzas (eg. <starttls/>,
// <proceed/>, <auth/>) with a selector that matches what IsStanza and
// HandleStanza will look up.
func Selector(name xml.Name) string {
	return selectorFor(name)
}

func (s *Session) listen() {
	s.State.BindStanza(selectorFor(ivClark), func(_ string, v interface{}) error {
		s.handleStreamError(v.(*xmlnode.Element))
		return nil
	}, true)
	s.State.BindStanza(selectorFor(iqClark), func(_ string, v interface{}) error {
		s.infoQuery(v.(*xmlnode.Element))
		return nil
	}, true)
	s.State.One(StreamSecured{}, func(interface{}) { s.Secured = true })
	s.State.One(StreamAuthorized{}, func(e interface{}) {
		s.AuthJID = e.(StreamAuthorized).JID
	})
	s.State.One(StreamBound{}, func(e interface{}) {
		s.AuthJID = e.(StreamBound).JID
		if s.Resources == nil {
			s.Resources = resources.New()
		}
	})
	if s.features != nil {
		s.features.Install(s)
	}
}

// Activate stops token-mode parsing (feature negotiation is over; there
// is no longer any need to hand the decoder one token at a time) and
// instantiates default plugins.
func (s *Session) Activate() {
	s.tok.SetStreaming(true)
	s.State.Activate()
}

// ---------- Incoming stream (xmlconn.Handler) ----------

// HandleOpenStream satisfies xmlconn.Handler.
func (s *Session) HandleOpenStream(e *xmlnode.Element) error {
	info, err := xmlconn.InfoFromStart(e.StartElement())
	if err != nil {
		return err
	}

	switch s.role {
	case Client:
		s.id = info.ID
		s.State.Trigger(ReceivedOpenStream{Info: info})
		s.State.Run(s.clientOpened)
	case Server:
		s.State.Trigger(ReceivedOpenStream{Info: info})
		s.State.Run(s.serverOpened)
	}
	return nil
}

func (s *Session) clientOpened() {
	s.State.One(SessionStarted{}, func(interface{}) { s.Activate() })
	s.waitForFeatures()
}

func (s *Session) serverOpened() {
	s.OpenStream()
	if s.sendFeatures() {
		s.State.One(SessionStarted{}, func(interface{}) { s.Activate() })
	}
}

// HandleStanza satisfies xmlconn.Handler.
func (s *Session) HandleStanza(e *xmlnode.Element) error {
	if s.role == Server && !s.AuthJID.Equal(jid.JID{}) {
		if _, ok := e.Attribute("from"); !ok {
			e.Attr = append(e.Attr, xml.Attr{Name: xml.Name{Local: "from"}, Value: s.AuthJID.String()})
		}
	}
	if err := s.State.TriggerStanza(selectorFor(e.Name), e); err != nil {
		if err == state.ErrUnknownStanza {
			s.StanzaError(e, stanza.Cancel, stanza.FeatureNotImplemented, "")
			return nil
		}
		return err
	}
	return nil
}

// HandleCloseStream satisfies xmlconn.Handler.
func (s *Session) HandleCloseStream() error {
	s.State.Trigger(ReceivedCloseStream{})
	s.Close()
	return nil
}

// ---------- Outgoing stream ----------

// Write schedules data to be written to the stream through the lock, so
// that a handler invoked while another handler holds the lock can never
// interleave half-written output.
func (s *Session) Write(el *xmlnode.Element) {
	s.State.Run(func() {
		if _, err := el.WriteTo(s.conn); err != nil {
			log.Printf("core: write error: %v", err)
		}
	})
}

// OpenStream writes the opening <stream:stream> tag, unless one is
// already open.
func (s *Session) OpenStream() {
	s.State.Run(func() {
		if s.root != nil {
			return
		}
		s.root = s.makeStream()
		if err := xmlconn.Send(s.conn, false, s.streamInfo()); err != nil {
			log.Printf("core: open_stream error: %v", err)
			return
		}
		s.State.Trigger(SentOpenStream{})
	})
}

// CloseStream writes the closing </stream:stream> tag, unless the stream
// is already closed.
func (s *Session) CloseStream() {
	s.State.Run(func() {
		if s.root == nil {
			return
		}
		fmt.Fprint(s.conn, "</stream:stream>")
		s.root = nil
		s.State.Trigger(SentCloseStream{})
	})
}

// Reset tears down the parser and event/stanza tables and reinitiates
// negotiation, as required after STARTTLS and after successful SASL.
func (s *Session) Reset() {
	s.State.Run(s.reset)
}

func (s *Session) reset() {
	s.State.Reset()
	s.root = nil
	s.tok = xmlconn.NewTokenizer(s.conn)
	s.dec = decl.Skip(xml.NewDecoder(s.tok))
	s.target.Reset()
	if s.role == Client {
		s.OpenStream()
	}
}

func (s *Session) makeStream() *xmlnode.Element {
	if s.role == Server {
		s.id = attr.RandomID()
	}
	return xmlnode.New(xml.Name{Space: ns.Stream, Local: "stream"})
}

func (s *Session) streamInfo() xmlconn.Info {
	info := xmlconn.Info{Version: streamerr.DefaultVersion, Lang: s.lang, ID: s.id}
	if s.role == Client {
		info.To = s.serverJID
	} else {
		info.From = s.serverJID
	}
	return info
}

// ---------- Stream errors ----------

// StreamError reports a fatal stream-level error and closes the
// connection. It is guarded by the lock so a failure encountered while
// already tearing a stream down can't recurse.
func (s *Session) StreamError(e streamerr.Error) {
	s.State.Clear()
	s.State.Run(func() {
		s.OpenStream()
		if err := e.WriteXML(xml.NewEncoder(s.conn)); err != nil {
			log.Printf("core: failed writing stream error: %v", err)
		}
		s.Close()
	})
}

func (s *Session) handleStreamError(e *xmlnode.Element) {
	log.Printf("core: received stream error %s", e.Name.Local)
	s.State.Clear()
	s.State.Run(s.Close)
}

// StanzaError writes a stanza-level error reply; the stream stays open.
func (s *Session) StanzaError(elem *xmlnode.Element, kind stanza.ErrorType, condition stanza.Condition, text string) {
	id, _ := elem.Attribute("id")
	reply := xmlnode.New(elem.Name, xml.Attr{Name: xml.Name{Local: "type"}, Value: "error"})
	if id != "" {
		reply.Attr = append(reply.Attr, xml.Attr{Name: xml.Name{Local: "id"}, Value: id})
	}
	reply.Attr = append(reply.Attr, xml.Attr{Name: xml.Name{Local: "from"}, Value: s.serverJID.String()})
	if len(elem.Children) > 0 {
		reply.Children = append(reply.Children, elem.Children[0])
	}
	typ, _ := kind.MarshalXMLAttr(xml.Name{Local: "type"})
	errEl := reply.SubElement(xml.Name{Local: "error"}, typ)
	errEl.SubElement(xml.Name{Space: ns.Stanza, Local: string(condition)})
	if text != "" {
		textEl := errEl.SubElement(xml.Name{Space: ns.Stanza, Local: "text"})
		textEl.Text = text
	}
	s.Write(reply)
}

// ---------- Features ----------

func (s *Session) sendFeatures() bool {
	fs := xmlnode.New(featClark)
	if s.features != nil {
		for _, f := range s.features.Features() {
			if !f.Active(s) {
				continue
			}
			if el := f.Include(s); el != nil {
				fs.Children = append(fs.Children, el)
			}
		}
	}
	s.Write(fs)
	return !s.AuthJID.Equal(jid.JID{})
}

func (s *Session) waitForFeatures() bool {
	s.State.BindStanza(selectorFor(featClark), func(_ string, v interface{}) error {
		s.negotiate(v.(*xmlnode.Element))
		return nil
	}, true)
	return !s.AuthJID.Equal(jid.JID{})
}

// negotiate drives the client side of feature negotiation: for each
// offered clause, find the one active feature that handles it and let it
// reply. Before authentication only the first recognized clause is acted
// on per round (eg. STARTTLS must complete and reset the stream before
// SASL mechanisms, offered in the same <stream:features/>, make sense);
// afterward every clause in the round is given a chance.
func (s *Session) negotiate(elem *xmlnode.Element) {
	if s.features == nil {
		return
	}
	stopAfterFirst := s.AuthJID.Equal(jid.JID{})
	for _, clause := range elem.Children {
		for _, f := range s.features.Features() {
			if !f.Active(s) || !f.Handles(clause.Name) {
				continue
			}
			f.Reply(s, clause)
			if stopAfterFirst {
				return
			}
			break
		}
	}
}

// UseTLS reports whether this connection can still be upgraded with
// StartTLS (ie. it isn't already secured).
func (s *Session) UseTLS() bool {
	_, ok := s.conn.ConnectionState()
	return !ok
}

// Role reports whether this Session is the Client or Server side of the
// stream.
func (s *Session) Role() Role { return s.role }

// ServerJID reports the address this side of the stream presents: the
// server's own address on the Server role, or the address being
// authenticated as on the Client role.
func (s *Session) ServerJID() jid.JID { return s.serverJID }

// StartTLS performs the TLS handshake on the underlying connection, then
// emits StreamSecured and resets the stream, as required before the
// peer's next <stream:stream> header can be trusted.
func (s *Session) StartTLS(config *tls.Config) error {
	if err := s.conn.StartTLS(config, s.role == Server); err != nil {
		return err
	}
	s.State.Trigger(StreamSecured{})
	s.Reset()
	return nil
}

// ---------- IQ correlation ----------

func (s *Session) infoQuery(elem *xmlnode.Element) {
	if s.AuthJID.Equal(jid.JID{}) {
		s.StreamError(streamerr.NotAuthorized)
		return
	}

	kind, _ := elem.Attribute("type")

	var selector string
	if kind == "result" || kind == "error" {
		id, _ := elem.Attribute("id")
		selector = s.iqIdent(id)
	} else {
		if len(elem.Children) == 0 {
			s.StanzaError(elem, stanza.Modify, stanza.NotAcceptable, "GET or SET must have a child element.")
			return
		}
		child := elem.Children[0]
		selector = fmt.Sprintf("{%s}iq/%s", ns.Client, selectorFor(child.Name))
	}

	if err := s.State.TriggerStanza(selector, elem); err != nil {
		if kind == "error" {
			log.Printf("core: unhandled iq error")
			return
		}
		s.StanzaError(elem, stanza.Cancel, stanza.FeatureNotImplemented, "")
	}
}

// IQ writes a new correlated IQ of the given type and body, invoking cb
// when the matching result or error arrives.
func (s *Session) IQ(kind string, body *xmlnode.Element, cb state.StanzaHandler) {
	ident := attr.RandomID()
	s.State.OneStanza(s.iqIdent(ident), cb)
	el := xmlnode.New(iqClark,
		xml.Attr{Name: xml.Name{Local: "id"}, Value: ident},
		xml.Attr{Name: xml.Name{Local: "type"}, Value: kind},
	)
	if body != nil {
		el.Children = append(el.Children, body)
	}
	s.Write(el)
}

func (s *Session) iqIdent(ident string) string {
	return fmt.Sprintf("{%s}iq[id='%s']", ns.Client, ident)
}

// Routes reports the live sessions a message to j should be delivered
// to.
func (s *Session) Routes(j jid.JID) ([]resources.Route, error) {
	if s.Resources == nil {
		return nil, resources.ErrNoRoute
	}
	return s.Resources.Routes(j)
}

// ---------- Lifecycle ----------

// Close tears the stream down: it writes the closing tag if one is
// open, then schedules the final shutdown through the lock so any
// writes already queued ahead of it drain first.
func (s *Session) Close() {
	if s.closed {
		return
	}
	if s.root != nil {
		s.CloseStream()
	}
	s.State.Run(s.shutdown)
}

func (s *Session) shutdown() {
	if s.closed {
		return
	}
	s.closed = true
	if s.Resources != nil && s.AuthJID.IsFull() {
		s.Resources.Unbind(s.AuthJID)
	}
	s.State.Trigger(StreamClosed{})
	s.State.Clear()
	if err := s.conn.Shutdown(); err != nil {
		log.Printf("core: shutdown error: %v", err)
	}
}

// Run drives the session from the connection until the peer closes the
// stream or a fatal error occurs. It is meant to be called from the
// single goroutine that owns the connection.
func (s *Session) Run() error {
	// Read through s.dec on every token, so the parser installed by a
	// stream reset takes over from the one it replaced.
	current := xmlstream.ReaderFunc(func() (xml.Token, error) { return s.dec.Token() })
	for {
		if err := s.target.Feed(current); err != nil {
			return s.handleReadError(err)
		}
	}
}

func (s *Session) handleReadError(err error) error {
	if se, ok := err.(streamerr.Error); ok {
		s.StreamError(se)
		return nil
	}
	s.StreamError(streamerr.Error{Err: streamerr.BadFormat.Err, Text: err.Error()})
	return err
}
