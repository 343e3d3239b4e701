// Package probe implements the single-shot network probes run by the scan workers.
//
// Two capabilities are provided:
//   - HostProber: host liveness via one ICMP echo request (ExecPinger, RawPinger)
//   - PortProber: TCP connect to one port (TCPProber)
//
// Probes never return errors. Every failure (timeout, refusal, missing ping
// utility, insufficient privileges at send time) is mapped to a negative
// verdict so a worker can always mark its task done.
//
// Every probe bounds its own latency:
//   - TCPProber uses a dialer timeout (1s by default)
//   - ExecPinger runs the ping utility under a context deadline (2s by default)
//   - RawPinger waits for the matching echo reply for at most its timeout
//
// Privilege Requirements:
//   - RawPinger opens a raw ICMP socket and needs root/CAP_NET_RAW
//   - ExecPinger relies on the system ping utility's own privileges
package probe
