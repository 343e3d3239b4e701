//go:build windows

package probe

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEchoReplied(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   bool
	}{
		{
			name: "reply",
			output: "Pinging 192.168.74.1 with 32 bytes of data:\r\n" +
				"Reply from 192.168.74.1: bytes=32 time<1ms TTL=64\r\n\r\n" +
				"Ping statistics for 192.168.74.1:\r\n" +
				"    Packets: Sent = 1, Received = 1, Lost = 0 (0% loss),\r\n",
			want: true,
		},
		{
			name: "destination host unreachable",
			output: "Pinging 192.168.74.9 with 32 bytes of data:\r\n" +
				"Reply from 192.168.74.20: Destination host unreachable.\r\n\r\n" +
				"Ping statistics for 192.168.74.9:\r\n" +
				"    Packets: Sent = 1, Received = 1, Lost = 0 (0% loss),\r\n",
			want: false,
		},
		{
			name: "ttl expired in transit",
			output: "Pinging 10.9.9.9 with 32 bytes of data:\r\n" +
				"Reply from 10.0.0.1: TTL expired in transit.\r\n",
			want: false,
		},
		{
			name:   "empty",
			output: "",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, echoReplied([]byte(tt.output)))
		})
	}
}

// fakePing writes a batch script standing in for the ping utility
func fakePing(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ping.cmd")
	script := "@echo off\r\n" + strings.Join(lines, "\r\n") + "\r\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestExecPingerUnreachableReplyIsDown(t *testing.T) {
	pinger := NewExecPinger(5 * time.Second)

	pinger.Binary = fakePing(t, "echo Reply from 192.168.74.20: Destination host unreachable.", "exit /b 0")
	require.False(t, pinger.Alive(context.Background(), "192.168.74.9"))

	pinger.Binary = fakePing(t, "echo Reply from 192.168.74.1: bytes=32 time<1ms TTL=64", "exit /b 0")
	require.True(t, pinger.Alive(context.Background(), "192.168.74.1"))
}
