package probe

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/projectdiscovery/gologger"
)

// DefaultPingBinary is the external utility used by ExecPinger
const DefaultPingBinary = "ping"

// ExecPinger checks liveness by running the system ping utility with a
// single echo request. The verdict comes from the utility's exit status:
// with one request, exit status 0 means the reply was received.
type ExecPinger struct {
	Binary  string
	Timeout time.Duration
}

// NewExecPinger returns a pinger running DefaultPingBinary. A zero timeout
// uses DefaultPingTimeout.
func NewExecPinger(timeout time.Duration) *ExecPinger {
	if timeout <= 0 {
		timeout = DefaultPingTimeout
	}
	return &ExecPinger{
		Binary:  DefaultPingBinary,
		Timeout: timeout,
	}
}

// Alive sends one echo request to host. Any failure of the utility,
// including a timeout or a missing binary, reports the host as down.
func (p *ExecPinger) Alive(ctx context.Context, host string) bool {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.Binary, singleEchoArgs(host)...)
	// don't wait on pipes held open by children of a killed utility
	cmd.WaitDelay = 100 * time.Millisecond

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			gologger.Debug().Msgf("ping %s: timed out after %s", host, p.Timeout)
		} else {
			gologger.Debug().Msgf("ping %s: %v: %s", host, err, strings.TrimSpace(string(output)))
		}
		return false
	}
	if !echoReplied(output) {
		gologger.Debug().Msgf("ping %s: no echo reply: %s", host, strings.TrimSpace(string(output)))
		return false
	}
	return true
}
