// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package xmlconn

import (
	"bytes"
	"io"
)

// Tokenizer sits between the raw connection and an xml.Decoder. It has two
// modes:
//
// During feature negotiation (Token mode, the default) it hands the
// decoder exactly one raw XML token per Read call — an opening tag up to
// '>', a text run up to the next '<', or a closing tag up to '>' — never
// more. A feature handler (STARTTLS, SASL) may call Reset mid-tag, which
// must discard any bytes buffered past the token that triggered it; since
// nothing has been handed to the decoder beyond the current token, there
// is nothing stale to discard from the decoder's point of view, only from
// this type's own read-ahead buffer.
//
// After negotiation completes, SetStreaming switches to Streaming mode, in
// which bytes pass straight through in whatever size the underlying
// connection hands back, which is both simpler and faster once there is no
// more risk of a mid-tag reset.
type Tokenizer struct {
	r         io.Reader
	buf       []byte
	streaming bool
}

// NewTokenizer wraps r, starting in token mode.
func NewTokenizer(r io.Reader) *Tokenizer {
	return &Tokenizer{r: r}
}

// SetStreaming switches between token mode (false) and streaming mode
// (true).
func (t *Tokenizer) SetStreaming(streaming bool) {
	t.streaming = streaming
}

// Reset discards any buffered, not-yet-emitted bytes. It must be called
// whenever the caller is about to hand the underlying bytes to a fresh
// xml.Decoder (eg. after a STARTTLS or SASL stream restart), so that bytes
// read for the old stream are never fed to the new one.
func (t *Tokenizer) Reset() {
	t.buf = t.buf[:0]
}

// Read implements io.Reader.
func (t *Tokenizer) Read(p []byte) (int, error) {
	if t.streaming {
		if len(t.buf) > 0 {
			n := copy(p, t.buf)
			t.buf = t.buf[n:]
			return n, nil
		}
		return t.r.Read(p)
	}

	for {
		if tok, rest, ok := nextToken(t.buf); ok {
			n := copy(p, tok)
			// A caller (xml.Decoder's internal bufio.Reader) is expected to
			// provide a buffer at least as large as a single stream-level
			// token (stream headers, SASL challenges, and the like are
			// small); if it didn't, hand back the remainder of the token
			// next call rather than silently truncating it.
			leftover := append([]byte(nil), tok[n:]...)
			t.buf = append(leftover, rest...)
			return n, nil
		}

		chunk := make([]byte, 4096)
		n, err := t.r.Read(chunk)
		if n > 0 {
			t.buf = append(t.buf, chunk[:n]...)
		}
		if err != nil {
			if n > 0 {
				return 0, nil
			}
			return 0, err
		}
	}
}

// nextToken extracts the next complete token (opening tag, text run, or
// closing tag) from buf, mirroring the token boundaries an incremental XML
// tokenizer must respect. It reports ok=false if buf does not yet contain a
// complete token.
func nextToken(buf []byte) (tok, rest []byte, ok bool) {
	if len(buf) == 0 {
		return nil, nil, false
	}
	if buf[0] == '<' {
		idx := bytes.IndexByte(buf, '>')
		if idx == -1 {
			return nil, nil, false
		}
		return buf[:idx+1], buf[idx+1:], true
	}
	idx := bytes.IndexByte(buf, '<')
	if idx == -1 {
		return nil, nil, false
	}
	return buf[:idx], buf[idx:], true
}
