// Copyright 2015 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package streamerr_test

import (
	"bytes"
	"encoding/xml"
	"net"
	"strings"
	"testing"

	"tesserairis.dev/xmpp/streamerr"
)

func TestErrorString(t *testing.T) {
	if got := streamerr.NotAuthorized.Error(); got != "not-authorized" {
		t.Errorf("Error() = %q, want not-authorized", got)
	}
}

func TestMarshalXML(t *testing.T) {
	e := streamerr.Error{Err: "bad-format", Text: "oops"}
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	if err := enc.Encode(e); err != nil {
		t.Fatalf("Encode: unexpected error: %v", err)
	}
	if err := enc.Flush(); err != nil {
		t.Fatalf("Flush: unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "bad-format") || !strings.Contains(out, "oops") {
		t.Errorf("marshaled error missing expected content: %s", out)
	}
}

func TestSeeOtherHost(t *testing.T) {
	addr, err := net.ResolveTCPAddr("tcp", "192.0.2.1:5222")
	if err != nil {
		t.Fatalf("ResolveTCPAddr: unexpected error: %v", err)
	}
	e := streamerr.SeeOtherHost(addr)
	if e.Err != "see-other-host" {
		t.Errorf("Err = %q, want see-other-host", e.Err)
	}
}

func TestParseVersion(t *testing.T) {
	v, err := streamerr.ParseVersion("1.0")
	if err != nil {
		t.Fatalf("ParseVersion: unexpected error: %v", err)
	}
	if v.Major != 1 || v.Minor != 0 {
		t.Errorf("ParseVersion(\"1.0\") = %+v", v)
	}
	if !streamerr.DefaultVersion.SupportedBy(v) {
		t.Error("expected 1.0 to be supported")
	}

	if _, err := streamerr.ParseVersion("garbage"); err == nil {
		t.Error("expected error parsing malformed version")
	}
}
