// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package xmlconn

import (
	"encoding/xml"
	"fmt"
	"io"

	"golang.org/x/text/language"

	"tesserairis.dev/xmpp/internal/ns"
	"tesserairis.dev/xmpp/jid"
	"tesserairis.dev/xmpp/streamerr"
)

// Info describes the attributes carried on a <stream:stream> header,
// either one this side is about to send or one just received from a peer.
type Info struct {
	To      jid.JID
	From    jid.JID
	ID      string
	Version streamerr.Version
	Lang    language.Tag
}

// Send writes an opening <stream:stream> tag (deliberately left
// unclosed; the matching </stream:stream> is written by whoever tears
// the stream down) to w.
//
// s2s selects the jabber:server default namespace for a server-to-server
// stream instead of jabber:client.
func Send(w io.Writer, s2s bool, info Info) error {
	defaultNS := ns.Client
	if s2s {
		defaultNS = ns.Server
	}
	_, err := fmt.Fprintf(
		w,
		`<stream:stream xmlns='%s' xmlns:stream='%s' version='%s' xml:lang='%s'`,
		defaultNS, ns.Stream, info.Version, langOrDefault(info.Lang),
	)
	if err != nil {
		return err
	}
	if !info.To.Equal(jid.JID{}) {
		if _, err := fmt.Fprintf(w, ` to='%s'`, info.To); err != nil {
			return err
		}
	}
	if !info.From.Equal(jid.JID{}) {
		if _, err := fmt.Fprintf(w, ` from='%s'`, info.From); err != nil {
			return err
		}
	}
	if info.ID != "" {
		if _, err := fmt.Fprintf(w, ` id='%s'`, info.ID); err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, ">")
	return err
}

func langOrDefault(tag language.Tag) language.Tag {
	if tag == language.Und {
		return language.English
	}
	return tag
}

// InfoFromStart extracts the stream header attributes (to/from/id/
// version/xml:lang) from an already-received opening <stream:stream>
// start element, eg. one a Target handed to Handler.HandleOpenStream.
func InfoFromStart(start xml.StartElement) (Info, error) {
	return streamFromStartElement(start)
}

func streamFromStartElement(start xml.StartElement) (Info, error) {
	var info Info
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "to":
			j, err := jid.Parse(attr.Value)
			if err != nil {
				return info, streamerr.ImproperAddressing
			}
			info.To = j
		case "from":
			j, err := jid.Parse(attr.Value)
			if err != nil {
				return info, streamerr.ImproperAddressing
			}
			info.From = j
		case "id":
			info.ID = attr.Value
		case "version":
			v, err := streamerr.ParseVersion(attr.Value)
			if err != nil {
				return info, streamerr.UnsupportedVersion
			}
			info.Version = v
		case "lang":
			if attr.Name.Space == ns.XML {
				info.Lang = language.Make(attr.Value)
			}
		}
	}
	return info, nil
}
