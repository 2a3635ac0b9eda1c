package validator

import (
	"context"
	"net"
	"time"
)

// DefaultProbeTimeout bounds a single DNS probe, a hung resolution should never stall a worker indefinitely.
const DefaultProbeTimeout = 5 * time.Second

func NewResolver(lookup LookupResolver, probeTimeout time.Duration) Resolver {
	if lookup == nil {
		lookup = net.DefaultResolver
	}

	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}

	return Resolver{
		lookup:       lookup,
		probeTimeout: probeTimeout,
	}
}

// Resolver wraps the two network probes behind a uniform success/failure contract. Every non-affirmative
// outcome collapses to false: NXDOMAIN, an empty answer, a timeout and a resolver fault all look the same to
// the caller. This mirrors the source behavior and conflates "confirmed absent" with "transient error".
type Resolver struct {
	lookup       LookupResolver
	probeTimeout time.Duration
}

// HasMX reports if the domain publishes at least one MX record. The record's host isn't vetted, the
// signal means "the domain advertises a mail exchanger", not "mail would be accepted there".
func (r Resolver) HasMX(ctx context.Context, domain string) bool {
	ctx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	mxs, err := r.lookup.LookupMX(ctx, domain)

	return err == nil && len(mxs) > 0
}

// DomainExists reports if the domain resolves to at least one A/AAAA address.
func (r Resolver) DomainExists(ctx context.Context, domain string) bool {
	ctx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	addrs, err := r.lookup.LookupHost(ctx, domain)

	return err == nil && len(addrs) > 0
}

// NewCustomLookupResolver returns a resolver that sends its queries to the name server at ip, port 53,
// instead of the system default.
func NewCustomLookupResolver(ip net.IP) *net.Resolver {
	return &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			d := net.Dialer{}
			return d.DialContext(ctx, network, net.JoinHostPort(ip.String(), `53`))
		},
	}
}

// MightBeAHostOrIP is a very rudimentary check to see if the argument could be either a host name or IP
// address. It aims on speed and not for correctness. It's intended to weed-out bogus responses such as '.'
func MightBeAHostOrIP(h string) bool {

	// Normally we can assume that host names have a tld or consists at least out of 4 characters
	lastCharIndex := len(h) - 1
	if 4 >= lastCharIndex || lastCharIndex >= 253 {
		return false
	}

	var dotCount uint8
	for i, c := range h {
		switch {
		case 48 <= c && c <= 57 /* 0-9 */ :
		case 65 <= c && c <= 90 /* A-Z */ :
		case 97 <= c && c <= 122 /* a-z */ :
		case c == 45 /* dash - */ :
		case c == 46 && 0 < i && i < lastCharIndex /* dot . */ :
			dotCount++
		default:
			return false
		}
	}

	// We need at least one dot for a domain to be valid
	return dotCount > 0
}
