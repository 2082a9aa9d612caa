// Copyright 2016 Sam Whited.
// Use of this source code is governed by the BSD 2-clause license that can be
// found in the LICENSE file.

package conn

import (
	"crypto/tls"
	"io"
	"log"
	"net"
	"time"
)

// Option configures a Dial call.
type Option func(*options)

type options struct {
	log           *log.Logger
	tlsConfig     *tls.Config
	srvExpiration time.Duration
	dialer        net.Dialer
	network       string
	service       string
	remote        string
}

func getOpts(domain string, o ...Option) (res options) {
	for _, f := range o {
		f(&res)
	}

	// Log to /dev/null by default.
	if res.log == nil {
		res.log = log.New(io.Discard, "", log.LstdFlags)
	}
	if res.network == "" {
		res.network = "tcp"
	}
	if res.service == "" {
		res.service = "xmpp-client"
	}
	if res.remote == "" {
		res.remote = domain
	}
	return
}

// Logger has the connection log debug messages (SRV lookups, fallback
// dials) to logger.
func Logger(logger *log.Logger) Option {
	return func(o *options) {
		o.log = logger
	}
}

// Remote overrides the domain whose SRV records are resolved. By
// default this is the domain part of the JID passed to Dial.
func Remote(domain string) Option {
	return func(o *options) {
		o.remote = domain
	}
}

// TLS attaches a tls.Config a caller can later use to upgrade the
// dialed connection once STARTTLS negotiation asks for it. Dial itself
// never dials TLS directly; XMPP always starts in the clear and
// upgrades in-place.
func TLS(config *tls.Config) Option {
	return func(o *options) {
		o.tlsConfig = config
	}
}

// SRVExpiration sets how long looked-up DNS SRV records stay valid on a
// Conn. Dial builds a new Conn on every call, so records are not reused
// across Dial calls and every call looks them up fresh, whatever this is
// set to. The default is 0.
func SRVExpiration(exp time.Duration) Option {
	return func(o *options) {
		o.srvExpiration = exp
	}
}

// Dialer configures the underlying net.Dialer (timeout, local address,
// dual-stack behavior, ...).
func Dialer(dialer net.Dialer) Option {
	return func(o *options) {
		o.dialer = dialer
	}
}

// Network sets the network to dial. Nothing is guaranteed to work if
// this isn't left at the default, "tcp".
func Network(network string) Option {
	return func(o *options) {
		o.network = network
	}
}

// Service selects which SRV service name to resolve: "xmpp-client"
// (the default) for C2S connections, or "xmpp-server" for S2S.
func Service(name string) Option {
	return func(o *options) {
		o.service = name
	}
}
