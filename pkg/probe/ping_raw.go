//go:build !windows

package probe

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/projectdiscovery/gcache"
	"github.com/projectdiscovery/gologger"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

var echoPayload = []byte("HELLO-R-U-THERE")

// readRetryDelay paces the receiver after a failed read
const readRetryDelay = 10 * time.Millisecond

type packetReader interface {
	ReadFrom(b []byte) (int, net.Addr, error)
}

// RawPinger sends echo requests over one shared raw ICMP socket and matches
// replies by identifier and sequence number. It is safe for concurrent use.
type RawPinger struct {
	conn    *icmp.PacketConn
	timeout time.Duration
	id      int
	seq     atomic.Uint32
	// seq -> in-flight echo; entries expire so replies that arrive after
	// their probe gave up are dropped
	pending gcache.Cache[int, *pendingEcho]
	closed  chan struct{}
	once    sync.Once
}

// pendingEcho tracks a sent echo request waiting for its reply
type pendingEcho struct {
	ip    net.IP
	reply chan struct{}
	once  sync.Once
}

func (e *pendingEcho) resolve() {
	e.once.Do(func() { close(e.reply) })
}

// NewRawPinger opens the shared raw socket and starts the reply receiver.
// It needs raw socket privileges. A zero timeout uses DefaultPingTimeout.
func NewRawPinger(timeout time.Duration) (*RawPinger, error) {
	if timeout <= 0 {
		timeout = DefaultPingTimeout
	}

	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		return nil, fmt.Errorf("failed to open raw ICMP socket: %w", err)
	}

	p := &RawPinger{
		conn:    conn,
		timeout: timeout,
		id:      os.Getpid() & 0xffff,
		pending: gcache.New[int, *pendingEcho](1 << 16).
			LRU().
			Expiration(2 * timeout).
			Build(),
		closed: make(chan struct{}),
	}
	go p.receive(conn)
	return p, nil
}

// Alive sends one echo request to host and waits for its reply
func (p *RawPinger) Alive(ctx context.Context, host string) bool {
	ip := net.ParseIP(host).To4()
	if ip == nil {
		gologger.Debug().Msgf("raw ping %s: not an IPv4 address", host)
		return false
	}

	seq := int(p.seq.Add(1) & 0xffff)
	echo := &pendingEcho{ip: ip, reply: make(chan struct{})}
	if err := p.pending.Set(seq, echo); err != nil {
		return false
	}
	defer p.pending.Remove(seq)

	msg := &icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   p.id,
			Seq:  seq,
			Data: echoPayload,
		},
	}
	msgBytes, err := msg.Marshal(nil)
	if err != nil {
		return false
	}
	if _, err := p.conn.WriteTo(msgBytes, &net.IPAddr{IP: ip}); err != nil {
		gologger.Debug().Msgf("raw ping %s: %v", host, err)
		return false
	}

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case <-echo.reply:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	case <-p.closed:
		return false
	}
}

// receive matches echo replies to pending requests until the pinger is closed
func (p *RawPinger) receive(conn packetReader) {
	protocol := ipv4.ICMPTypeEchoReply.Protocol()
	buf := make([]byte, 1500)

	for {
		n, peer, err := conn.ReadFrom(buf)
		if err != nil {
			gologger.Debug().Msgf("raw ping read: %v", err)
			select {
			case <-p.closed:
				return
			case <-time.After(readRetryDelay):
				continue
			}
		}

		rm, err := icmp.ParseMessage(protocol, buf[:n])
		if err != nil || rm.Type != ipv4.ICMPTypeEchoReply {
			continue
		}
		echo, ok := rm.Body.(*icmp.Echo)
		if !ok || echo.ID != p.id {
			continue
		}

		pending, err := p.pending.Get(echo.Seq)
		if err != nil {
			continue
		}
		if peerAddr, ok := peer.(*net.IPAddr); !ok || !peerAddr.IP.Equal(pending.ip) {
			continue
		}
		pending.resolve()
	}
}

// Close stops the receiver and releases the raw socket
func (p *RawPinger) Close() error {
	var err error
	p.once.Do(func() {
		close(p.closed)
		err = p.conn.Close()
	})
	return err
}
