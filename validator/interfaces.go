package validator

import (
	"context"
	"net"
)

// LookupResolver is the part of net.Resolver the probes need. Tests swap it for a stub, so no test ever
// performs an actual DNS round trip.
type LookupResolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
	LookupHost(ctx context.Context, host string) ([]string, error)
}
