package probe

import (
	"context"
	"time"
)

const (
	// DefaultTCPTimeout is the connect timeout of the TCP port probe
	DefaultTCPTimeout = time.Second
	// DefaultPingTimeout bounds one ICMP echo round trip, including the
	// ping utility's startup when ExecPinger is used
	DefaultPingTimeout = 2 * time.Second
)

// HostProber checks whether a single host answers one ICMP echo request.
// Implementations enforce their own timeout and never block past it.
type HostProber interface {
	Alive(ctx context.Context, host string) bool
}

// PortProber checks the state of a single TCP port on host
type PortProber interface {
	Probe(ctx context.Context, host string, port int) Verdict
}
