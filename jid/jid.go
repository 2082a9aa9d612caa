// Copyright 2014 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package jid

import (
	"encoding/xml"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/precis"
)

// ErrInvalidParts is returned when a JID has no domainpart, or any part is
// longer than 1023 bytes.
var ErrInvalidParts = errors.New("jid: a domainpart is required and no part may exceed 1023 bytes")

// JID is an immutable XMPP address of the form
// [ localpart "@" ] domainpart [ "/" resourcepart ].
//
// The zero value is not a valid JID; construct one with Parse or New.
type JID struct {
	localpart    string
	domainpart   string
	resourcepart string
}

// New builds a JID from already-split parts, applying the same
// normalization Parse does.
func New(localpart, domainpart, resourcepart string) (JID, error) {
	if !utf8.ValidString(localpart) || !utf8.ValidString(resourcepart) {
		return JID{}, errors.New("jid: invalid UTF-8")
	}

	domainpart, err := idna.ToUnicode(domainpart)
	if err != nil {
		return JID{}, err
	}
	if !utf8.ValidString(domainpart) {
		return JID{}, errors.New("jid: domainpart contains invalid UTF-8")
	}

	if localpart != "" {
		localpart, err = precis.UsernameCaseMapped.String(localpart)
		if err != nil {
			return JID{}, err
		}
	}
	if resourcepart != "" {
		resourcepart, err = precis.OpaqueString.String(resourcepart)
		if err != nil {
			return JID{}, err
		}
	}

	if err := checkLengths(localpart, domainpart, resourcepart); err != nil {
		return JID{}, err
	}

	return JID{localpart: localpart, domainpart: domainpart, resourcepart: resourcepart}, nil
}

// Parse splits s of the form [ localpart "@" ] domainpart [ "/" resourcepart ]
// and normalizes each part per RFC 7622 §3.2-3.4.
func Parse(s string) (JID, error) {
	localpart, domainpart, resourcepart, err := splitString(s)
	if err != nil {
		return JID{}, err
	}
	return New(localpart, domainpart, resourcepart)
}

// MustParse is like Parse but panics on error. It is intended for use in
// tests and package-level variable initializers.
func MustParse(s string) JID {
	j, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return j
}

func splitString(s string) (localpart, domainpart, resourcepart string, err error) {
	// RFC 7622 §3.1: match the separator characters before doing any
	// normalization, because normalization might produce new separator
	// characters out of other code points.
	slash := strings.IndexByte(s, '/')
	if slash == 0 {
		return "", "", "", ErrInvalidParts
	}
	rest := s
	if slash >= 0 {
		resourcepart = s[slash+1:]
		if resourcepart == "" {
			return "", "", "", ErrInvalidParts
		}
		rest = s[:slash]
	}

	at := strings.IndexByte(rest, '@')
	if at == 0 {
		return "", "", "", ErrInvalidParts
	}
	if at >= 0 {
		localpart = rest[:at]
		domainpart = rest[at+1:]
	} else {
		domainpart = rest
	}
	if domainpart == "" {
		return "", "", "", ErrInvalidParts
	}
	return localpart, domainpart, resourcepart, nil
}

func checkLengths(localpart, domainpart, resourcepart string) error {
	if domainpart == "" || len(localpart) > 1023 || len(domainpart) > 1023 || len(resourcepart) > 1023 {
		return ErrInvalidParts
	}
	return nil
}

// Localpart returns the localpart of the JID, eg. "juliet" in
// "juliet@example.com/balcony".
func (j JID) Localpart() string { return j.localpart }

// Domainpart returns the domainpart of the JID, eg. "example.com" in
// "juliet@example.com/balcony".
func (j JID) Domainpart() string { return j.domainpart }

// Resourcepart returns the resourcepart of the JID, eg. "balcony" in
// "juliet@example.com/balcony".
func (j JID) Resourcepart() string { return j.resourcepart }

// Bare returns a copy of the JID without its resourcepart.
func (j JID) Bare() JID {
	j.resourcepart = ""
	return j
}

// WithResource returns a copy of j with its resourcepart replaced.
// An empty resourcepart produces the bare JID.
func (j JID) WithResource(resourcepart string) (JID, error) {
	return New(j.localpart, j.domainpart, resourcepart)
}

// IsBare reports whether the JID has no resourcepart.
func (j JID) IsBare() bool { return j.resourcepart == "" }

// IsFull reports whether the JID has a resourcepart.
func (j JID) IsFull() bool { return j.resourcepart != "" }

// Domain returns a copy of j with only its domainpart (no localpart or
// resourcepart), as used when addressing the server itself.
func (j JID) Domain() JID {
	return JID{domainpart: j.domainpart}
}

// Equal performs an octet-for-octet comparison of two JIDs.
func (j JID) Equal(j2 JID) bool {
	return j.localpart == j2.localpart &&
		j.domainpart == j2.domainpart &&
		j.resourcepart == j2.resourcepart
}

// String returns the string representation of the JID.
func (j JID) String() string {
	var b strings.Builder
	if j.localpart != "" {
		b.WriteString(j.localpart)
		b.WriteByte('@')
	}
	b.WriteString(j.domainpart)
	if j.resourcepart != "" {
		b.WriteByte('/')
		b.WriteString(j.resourcepart)
	}
	return b.String()
}

// MarshalXMLAttr satisfies xml.MarshalerAttr.
func (j JID) MarshalXMLAttr(name xml.Name) (xml.Attr, error) {
	return xml.Attr{Name: name, Value: j.String()}, nil
}

// UnmarshalXMLAttr satisfies xml.UnmarshalerAttr.
func (j *JID) UnmarshalXMLAttr(attr xml.Attr) error {
	parsed, err := Parse(attr.Value)
	if err != nil {
		return err
	}
	*j = parsed
	return nil
}
