package probe

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/projectdiscovery/gologger"
)

// TCPProber performs a full TCP connect to decide whether a port is open
type TCPProber struct {
	Timeout time.Duration
}

// NewTCPProber returns a prober with the given connect timeout. A zero
// timeout uses DefaultTCPTimeout.
func NewTCPProber(timeout time.Duration) *TCPProber {
	if timeout <= 0 {
		timeout = DefaultTCPTimeout
	}
	return &TCPProber{Timeout: timeout}
}

// Probe connects to host:port. A completed handshake is Open; the
// connection is then shut down in both directions and closed. A refused
// connection is Closed, anything else is Filtered.
func (p *TCPProber) Probe(ctx context.Context, host string, port int) Verdict {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	dialer := &net.Dialer{Timeout: p.Timeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		verdict := classifyDialError(err)
		gologger.Debug().Msgf("tcp connect %s: %s (%v)", addr, verdict, err)
		return verdict
	}
	defer func() {
		_ = conn.Close()
	}()

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.CloseRead()
		_ = tcpConn.CloseWrite()
	}
	return Open
}

// classifyDialError maps a dial failure to Closed or Filtered
func classifyDialError(err error) Verdict {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return Closed
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Filtered
	}

	// windows reports WSAECONNREFUSED, which does not match the errno above
	if strings.Contains(err.Error(), "refused") {
		return Closed
	}
	return Filtered
}
