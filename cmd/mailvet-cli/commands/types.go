package commands

import "net"

type CheckSettings struct {
	SkipMX     bool
	SkipDomain bool
	Resolver   net.IP
	JSONOutput bool
}

type FileSettings struct {
	SkipMX     bool
	SkipDomain bool
	Resolver   net.IP
	Workers    int
	Output     string
	Format     string
}

type ExtractSettings struct {
	Output string
}
