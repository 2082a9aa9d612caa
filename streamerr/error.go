// Copyright 2015 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

// Package streamerr implements the stream-level error catalog defined by
// RFC 6120 §4.9. A stream error is unrecoverable: the side that detects it
// sends the error and then closes the stream (see package core).
package streamerr // import "tesserairis.dev/xmpp/streamerr"

import (
	"encoding/xml"
	"io"
	"net"

	"mellium.im/xmlstream"

	"tesserairis.dev/xmpp/internal/ns"
)

// The defined stream error conditions, RFC 6120 §4.9.3.
var (
	BadFormat              = Error{Err: "bad-format"}
	BadNamespacePrefix     = Error{Err: "bad-namespace-prefix"}
	Conflict               = Error{Err: "conflict"}
	ConnectionTimeout      = Error{Err: "connection-timeout"}
	HostGone               = Error{Err: "host-gone"}
	HostUnknown            = Error{Err: "host-unknown"}
	ImproperAddressing     = Error{Err: "improper-addressing"}
	InternalServerError    = Error{Err: "internal-server-error"}
	InvalidFrom            = Error{Err: "invalid-from"}
	InvalidNamespace       = Error{Err: "invalid-namespace"}
	InvalidXML             = Error{Err: "invalid-xml"}
	NotAuthorized          = Error{Err: "not-authorized"}
	NotWellFormed          = Error{Err: "not-well-formed"}
	PolicyViolation        = Error{Err: "policy-violation"}
	RemoteConnectionFailed = Error{Err: "remote-connection-failed"}
	Reset                  = Error{Err: "reset"}
	ResourceConstraint     = Error{Err: "resource-constraint"}
	RestrictedXML          = Error{Err: "restricted-xml"}
	SystemShutdown         = Error{Err: "system-shutdown"}
	UndefinedCondition     = Error{Err: "undefined-condition"}
	UnsupportedEncoding    = Error{Err: "unsupported-encoding"}
	UnsupportedFeature     = Error{Err: "unsupported-feature"}
	UnsupportedStanzaType  = Error{Err: "unsupported-stanza-type"}
	UnsupportedVersion     = Error{Err: "unsupported-version"}
)

// SeeOtherHost returns a see-other-host error pointing to addr. If addr
// looks like a raw IPv6 literal it is wrapped in brackets.
func SeeOtherHost(addr net.Addr) Error {
	host := addr.String()
	if ip := net.ParseIP(host); ip != nil && ip.To4() == nil && ip.To16() != nil {
		host = "[" + host + "]"
	}
	return Error{
		Err: "see-other-host",
		innerXML: xmlstream.ReaderFunc(func() (xml.Token, error) {
			return xml.CharData(host), io.EOF
		}),
	}
}

// Error is an unrecoverable stream-level error as defined by RFC 6120 §4.9.
// The zero value is not valid; use one of the predefined conditions or
// construct one with a defined-condition name from the xmpp-streams
// namespace.
type Error struct {
	Err  string
	Text string

	innerXML xmlstream.TokenReader
}

// Error satisfies the builtin error interface, returning the
// defined-condition name (eg. "not-authorized").
func (e Error) Error() string {
	return e.Err
}

// TokenReader returns the token stream for the wrapping <stream:error/>
// element, including an optional human-readable <text/> child.
func (e Error) TokenReader() xmlstream.TokenReader {
	readers := []xmlstream.TokenReader{
		xmlstream.Wrap(e.innerXML, xml.StartElement{
			Name: xml.Name{Space: ns.StreamError, Local: e.Err},
		}),
	}
	if e.Text != "" {
		readers = append(readers, xmlstream.Wrap(
			xmlstream.Token(xml.CharData(e.Text)),
			xml.StartElement{
				Name: xml.Name{Space: ns.StreamError, Local: "text"},
				Attr: []xml.Attr{{Name: xml.Name{Space: ns.XML, Local: "lang"}, Value: "en"}},
			},
		))
	}
	return xmlstream.Wrap(
		xmlstream.MultiReader(readers...),
		xml.StartElement{Name: xml.Name{Space: ns.Stream, Local: "error"}},
	)
}

// WriteXML writes the error's tokens to w and flushes it.
func (e Error) WriteXML(w xmlstream.TokenWriter) error {
	if _, err := xmlstream.Copy(w, e.TokenReader()); err != nil {
		return err
	}
	return w.Flush()
}

// UnmarshalXML satisfies xml.Unmarshaler.
func (e *Error) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	se := struct {
		XMLName xml.Name
		Cond    struct {
			XMLName xml.Name
		} `xml:",any"`
		Text string `xml:"urn:ietf:params:xml:ns:xmpp-streams text"`
	}{}
	if err := d.DecodeElement(&se, &start); err != nil {
		return err
	}
	e.Err = se.Cond.XMLName.Local
	e.Text = se.Text
	return nil
}

// MarshalXML satisfies xml.Marshaler by delegating to WriteXML.
func (e Error) MarshalXML(enc *xml.Encoder, _ xml.StartElement) error {
	return e.WriteXML(enc)
}
