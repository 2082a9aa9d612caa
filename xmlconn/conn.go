// Copyright 2016 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package xmlconn

import (
	"bufio"
	"crypto/tls"
	"net"
	"sync"
)

// Conn wraps a net.Conn with a buffered writer and in-place TLS upgrade.
//
// The reactor-style contract described for a ReadStream (register a reader
// callback, an interest set of ERROR|READ|WRITE, EWOULDBLOCK handling) is
// collapsed here: a single goroutine owns the connection and calls Read and
// Write synchronously, so there is no interest set to maintain and no
// partial-write retry loop to hand-roll — net.Conn and bufio.Writer already
// block until they make progress or fail.
type Conn struct {
	mu  sync.Mutex
	rwc net.Conn
	bw  *bufio.Writer

	closed bool
}

// New wraps rwc for XMPP stream I/O.
func New(rwc net.Conn) *Conn {
	return &Conn{rwc: rwc, bw: bufio.NewWriter(rwc)}
}

// Read implements io.Reader, reading raw bytes from the underlying
// connection. It is normally only called by a Tokenizer.
func (c *Conn) Read(p []byte) (int, error) {
	return c.rwc.Read(p)
}

// Write buffers p and immediately attempts to drain the buffer, so that by
// the time Write returns, p (and anything queued before it) has either
// reached the kernel or an error has been reported.
func (c *Conn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, err := c.bw.Write(p)
	if err != nil {
		return n, err
	}
	return n, c.bw.Flush()
}

// StartTLS flushes any buffered writes, then wraps the connection with a
// TLS session and performs the handshake. On success the new TLS
// connection replaces the underlying socket for all further reads and
// writes. On failure the connection is left closed, matching the
// ReadStream contract that a failed upgrade tears the stream down.
func (c *Conn) StartTLS(config *tls.Config, server bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.bw.Flush(); err != nil {
		return err
	}

	var tlsConn *tls.Conn
	if server {
		tlsConn = tls.Server(c.rwc, config)
	} else {
		tlsConn = tls.Client(c.rwc, config)
	}
	if err := tlsConn.Handshake(); err != nil {
		c.rwc.Close()
		c.closed = true
		return err
	}

	c.rwc = tlsConn
	c.bw = bufio.NewWriter(tlsConn)
	return nil
}

// ConnectionState returns the TLS connection state, or the zero value and
// false if the connection is not (yet) secured.
func (c *Conn) ConnectionState() (tls.ConnectionState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tlsConn, ok := c.rwc.(*tls.Conn)
	if !ok {
		return tls.ConnectionState{}, false
	}
	return tlsConn.ConnectionState(), true
}

// Shutdown flushes any buffered writes and closes the connection.
func (c *Conn) Shutdown() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	flushErr := c.bw.Flush()
	closeErr := c.rwc.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// Close closes the connection immediately, without attempting to flush.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.rwc.Close()
}

// LocalAddr returns the underlying connection's local address.
func (c *Conn) LocalAddr() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rwc.LocalAddr()
}

// RemoteAddr returns the underlying connection's remote address.
func (c *Conn) RemoteAddr() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rwc.RemoteAddr()
}
