// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

// Package xepping implements XEP-0199: XMPP Ping.
package xepping

import (
	"encoding/xml"
	"errors"

	"tesserairis.dev/xmpp/core"
	"tesserairis.dev/xmpp/plugin"
	"tesserairis.dev/xmpp/xmlnode"
)

const ns = "urn:xmpp:ping"

var pingName = xml.Name{Space: ns, Local: "ping"}
var selector = "{jabber:client}iq/" + "{" + ns + "}ping"

type responder struct {
	session *core.Session
}

// Descriptor answers every incoming ping with an empty result. It
// activates as a default plugin, so it only needs attaching once via a
// plugin.Registry.
func Descriptor() *plugin.Descriptor {
	return &plugin.Descriptor{
		Name: "xepping",
		New:  func(s *core.Session) interface{} { return &responder{session: s} },
		Stanzas: []plugin.StanzaBinding{
			{
				Selector: selector,
				Method: func(instance interface{}, _ string, v interface{}) error {
					instance.(*responder).reply(v.(*xmlnode.Element))
					return nil
				},
			},
		},
	}
}

func (r *responder) reply(iq *xmlnode.Element) {
	result := xmlnode.New(iq.Name, xml.Attr{Name: xml.Name{Local: "type"}, Value: "result"})
	if id, ok := iq.Attribute("id"); ok {
		result.Attr = append(result.Attr, xml.Attr{Name: xml.Name{Local: "id"}, Value: id})
	}
	if from, ok := iq.Attribute("from"); ok {
		result.Attr = append(result.Attr, xml.Attr{Name: xml.Name{Local: "to"}, Value: from})
	}
	r.session.Write(result)
}

// Ping sends an empty ping IQ and calls done with nil once a result
// comes back, or with an error if the reply is an IQ of type "error".
// If no reply arrives, done is not called.
func Ping(s *core.Session, done func(error)) {
	s.IQ("get", xmlnode.New(pingName), func(_ string, v interface{}) error {
		if kind, _ := v.(*xmlnode.Element).Attribute("type"); kind == "error" {
			done(errors.New("xepping: ping returned an error"))
			return nil
		}
		done(nil)
		return nil
	})
}
