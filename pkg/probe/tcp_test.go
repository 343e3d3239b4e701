package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func listenLoopback(t *testing.T) (int, func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()
	return ln.Addr().(*net.TCPAddr).Port, func() { _ = ln.Close() }
}

// closedLoopbackPort returns a port that was just released and has no listener
func closedLoopbackPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestTCPProberOpen(t *testing.T) {
	port, stop := listenLoopback(t)
	defer stop()

	prober := NewTCPProber(0)
	require.Equal(t, DefaultTCPTimeout, prober.Timeout)

	// same target, same conditions, same verdict
	for i := 0; i < 2; i++ {
		require.Equal(t, Open, prober.Probe(context.Background(), "127.0.0.1", port))
	}
}

func TestTCPProberClosed(t *testing.T) {
	port := closedLoopbackPort(t)
	prober := NewTCPProber(time.Second)

	require.Equal(t, Closed, prober.Probe(context.Background(), "127.0.0.1", port))
	require.False(t, prober.Probe(context.Background(), "127.0.0.1", port).Positive())
}

func TestTCPProberTimeoutBounded(t *testing.T) {
	if os.Getenv("RECONPOOL_SKIP_NETWORK_TESTS") != "" {
		t.Skip("network tests disabled")
	}

	// TEST-NET-1 is reserved and never routed, the SYN goes unanswered or the
	// host is unreachable; either way the probe must return within the timeout
	prober := NewTCPProber(300 * time.Millisecond)
	start := time.Now()
	verdict := prober.Probe(context.Background(), "192.0.2.1", 65000)
	elapsed := time.Since(start)

	require.NotEqual(t, Open, verdict)
	require.Less(t, elapsed, 2*time.Second)
}

func TestTCPProberContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prober := NewTCPProber(time.Second)
	require.Equal(t, Filtered, prober.Probe(ctx, "192.0.2.1", 80))
}

func TestClassifyDialError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Verdict
	}{
		{
			name: "refused errno",
			err:  &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)},
			want: Closed,
		},
		{
			name: "refused text",
			err:  errors.New("connectex: No connection could be made because the target machine actively refused it."),
			want: Closed,
		},
		{
			name: "timeout",
			err:  &net.OpError{Op: "dial", Net: "tcp", Err: timeoutError{}},
			want: Filtered,
		},
		{
			name: "unreachable",
			err:  fmt.Errorf("dial: %w", syscall.EHOSTUNREACH),
			want: Filtered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, classifyDialError(tt.err))
		})
	}
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestVerdictString(t *testing.T) {
	tests := []struct {
		verdict  Verdict
		want     string
		positive bool
	}{
		{Up, "UP", true},
		{Down, "DOWN", false},
		{Open, "OPEN", true},
		{Closed, "CLOSED", false},
		{Filtered, "FILTERED", false},
		{Verdict(42), "UNKNOWN", false},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, tt.verdict.String())
			require.Equal(t, tt.positive, tt.verdict.Positive())
		})
	}
	require.Equal(t, Up, HostVerdict(true))
	require.Equal(t, Down, HostVerdict(false))
}
