// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package xmlconn

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"tesserairis.dev/xmpp/jid"
	"tesserairis.dev/xmpp/streamerr"
)

func TestSendWritesStreamHeader(t *testing.T) {
	var buf bytes.Buffer
	to := jid.MustParse("example.com")
	info := Info{To: to, ID: "abc123", Version: streamerr.DefaultVersion}

	if err := Send(&buf, false, info); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"xmlns='jabber:client'",
		"xmlns:stream='http://etherx.jabber.org/streams'",
		"version='1.0'",
		"to='example.com'",
		"id='abc123'",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected header to contain %q, got %q", want, out)
		}
	}
	if strings.Contains(out, "</stream:stream>") {
		t.Errorf("Send must not close the stream tag, got %q", out)
	}
}

func TestInfoFromStartParsesStreamHeader(t *testing.T) {
	src := `<stream:stream xmlns='jabber:client' xmlns:stream='http://etherx.jabber.org/streams' ` +
		`to='example.com' from='juliet@example.com' id='abc123' version='1.0'>`
	d := xml.NewDecoder(strings.NewReader(src))
	tok, err := d.Token()
	if err != nil {
		t.Fatalf("unexpected error reading the start element: %v", err)
	}
	start := tok.(xml.StartElement)

	info, err := InfoFromStart(start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.ID != "abc123" {
		t.Errorf("got id %q, want %q", info.ID, "abc123")
	}
	if info.Version != streamerr.DefaultVersion {
		t.Errorf("got version %v, want %v", info.Version, streamerr.DefaultVersion)
	}
	if info.To.String() != "example.com" {
		t.Errorf("got to %q, want %q", info.To, "example.com")
	}
	if info.From.String() != "juliet@example.com" {
		t.Errorf("got from %q, want %q", info.From, "juliet@example.com")
	}
}

func TestInfoFromStartRejectsMalformedAddress(t *testing.T) {
	d := xml.NewDecoder(strings.NewReader(`<stream:stream to='/nodomain'/>`))
	tok, err := d.Token()
	if err != nil {
		t.Fatalf("unexpected error reading the start element: %v", err)
	}
	start := tok.(xml.StartElement)

	_, err = InfoFromStart(start)
	if err != streamerr.ImproperAddressing {
		t.Fatalf("got error %v, want %v", err, streamerr.ImproperAddressing)
	}
}
