// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package conn

import (
	"crypto/tls"
	"net"
	"strconv"
	"strings"
	"time"

	"tesserairis.dev/xmpp/jid"
)

// Conn is a dialed transport connection to a remote XMPP endpoint.
type Conn struct {
	opts  options
	conn  net.Conn
	local jid.JID

	// DNS cache
	cname   string
	addrs   []*net.SRV
	srvtime time.Time
}

// Dial resolves local's domain to a set of SRV targets and connects to
// the first one that's reachable. If the SRV lookup itself fails (no
// records published, or the query errors), Dial falls back to dialing
// the bare domain on port 5222, per RFC 6120 section 3.2.1.
func Dial(local jid.JID, opts ...Option) (*Conn, error) {
	domain := local.Domainpart()
	c := &Conn{
		opts:  getOpts(domain, opts...),
		local: local,
	}

	if c.srvtime.Add(c.opts.srvExpiration).Before(time.Now()) {
		if err := c.lookupSRV(); err != nil {
			c.addrs = []*net.SRV{{Target: domain, Port: 5222}}
		}
	}

	var err error
	for _, addr := range c.addrs {
		target := strings.TrimSuffix(addr.Target, ".")
		nc, e := c.opts.dialer.Dial(
			c.opts.network,
			net.JoinHostPort(target, strconv.FormatUint(uint64(addr.Port), 10)),
		)
		if e != nil {
			err = e
			continue
		}
		err = nil
		c.conn = nc
		break
	}
	if err != nil {
		return nil, err
	}

	return c, nil
}

// lookupSRV fetches the SRV records published for the configured
// service (xmpp-client or xmpp-server) and domain and stores them, with
// the time of the lookup, on c. Dial calls it for each new Conn.
func (c *Conn) lookupSRV() error {
	cname, addrs, err := net.LookupSRV(c.opts.service, "tcp", c.opts.remote)
	if err != nil {
		return err
	}
	c.addrs = addrs
	c.cname = cname
	c.srvtime = time.Now()
	return nil
}

// TLSConfig returns the tls.Config attached via the TLS option, or nil.
// Dial never dials TLS directly since XMPP always starts in the clear
// and upgrades in place; this is only a place to stash the config a
// caller will hand to a StartTLS feature once negotiation asks for it.
func (c *Conn) TLSConfig() *tls.Config {
	return c.opts.tlsConfig
}

// Read reads data from the connection.
func (c *Conn) Read(b []byte) (n int, err error) {
	return c.conn.Read(b)
}

// Write writes data to the connection.
func (c *Conn) Write(b []byte) (n int, err error) {
	return c.conn.Write(b)
}

// Close closes the connection.
// Any blocked Read or Write operations will be unblocked and return errors.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// LocalAddr returns the underlying connection's local network address.
func (c *Conn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// RemoteAddr returns the underlying connection's remote network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// SetDeadline sets the read and write deadlines associated with the connection.
// It is equivalent to calling both SetReadDeadline and SetWriteDeadline.
//
// A deadline is an absolute time after which I/O operations fail with a timeout
// (see type Error) instead of blocking. The deadline applies to all future I/O,
// not just the immediately following call to Read or Write.
//
// An idle timeout can be implemented by repeatedly extending the deadline after
// successful Read or Write calls.
//
// A zero value for t means I/O operations will not time out.
func (c *Conn) SetDeadline(t time.Time) error {
	return c.conn.SetDeadline(t)
}

// SetReadDeadline sets the deadline for future Read calls. A zero value for t
// means Read will not time out.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

// SetWriteDeadline sets the deadline for future Write calls. Even if write
// times out, it may return n > 0, indicating that some of the data was
// successfully written. A zero value for t means Write will not time out.
func (c *Conn) SetWriteDeadline(t time.Time) error {
	return c.conn.SetWriteDeadline(t)
}
