// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package xmlconn

import (
	"encoding/xml"
	"io"

	"tesserairis.dev/xmpp/internal/ns"
	"tesserairis.dev/xmpp/streamerr"
)

// StreamReader wraps an xml.TokenReader positioned just after a stream
// header, enforcing the restricted token grammar a stream body is allowed
// to contain: no processing instructions, comments, or directives;
// character data only as whitespace between stanzas; a <stream:error/>
// decodes into a returned error instead of being handed to the caller;
// the closing </stream:stream> tag surfaces as io.EOF.
type StreamReader struct {
	d   *xml.Decoder
	err error
}

// NewStreamReader wraps d.
func NewStreamReader(d *xml.Decoder) *StreamReader {
	return &StreamReader{d: d}
}

// Token implements xml.TokenReader.
func (r *StreamReader) Token() (xml.Token, error) {
	if r.err != nil {
		return nil, r.err
	}
	for {
		tok, err := r.d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			if len(trimSpace(t)) != 0 {
				r.err = streamerr.RestrictedXML
				return nil, r.err
			}
			continue
		case xml.ProcInst, xml.Comment, xml.Directive:
			r.err = streamerr.RestrictedXML
			return nil, r.err
		case xml.StartElement:
			if t.Name.Space == ns.Stream && t.Name.Local == "error" {
				var streamErr streamerr.Error
				if err := r.d.DecodeElement(&streamErr, &t); err != nil {
					r.err = err
					return nil, r.err
				}
				r.err = streamErr
				return nil, r.err
			}
			return t, nil
		case xml.EndElement:
			if t.Name.Space == ns.Stream && t.Name.Local == "stream" {
				r.err = io.EOF
				return nil, r.err
			}
			r.err = streamerr.NotWellFormed
			return nil, r.err
		default:
			return tok, nil
		}
	}
}

func trimSpace(b []byte) []byte {
	start := 0
	for start < len(b) && isSpace(b[start]) {
		start++
	}
	end := len(b)
	for end > start && isSpace(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}
