//go:build windows
// +build windows

package probe

import (
	"bytes"
	"context"
	"errors"
	"time"
)

// singleEchoArgs returns the ping arguments requesting exactly one echo request
func singleEchoArgs(host string) []string {
	return []string{"-n", "1", host}
}

// echoReplied reports whether ping output contains an echo reply. Windows
// ping exits 0 when the only answer is an ICMP error such as "Destination
// host unreachable", so only lines carrying a TTL count as replies.
func echoReplied(output []byte) bool {
	return bytes.Contains(bytes.ToUpper(output), []byte("TTL="))
}

// RawPinger is not available on windows
type RawPinger struct{}

// NewRawPinger always fails on windows; use ExecPinger instead
func NewRawPinger(timeout time.Duration) (*RawPinger, error) {
	return nil, errors.New("raw ICMP sockets are not supported on windows")
}

// Alive always reports the host as down
func (p *RawPinger) Alive(ctx context.Context, host string) bool {
	return false
}

// Close is a no-op
func (p *RawPinger) Close() error {
	return nil
}
