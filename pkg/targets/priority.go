package targets

import (
	"bytes"
	"net"
	"sort"
)

// Priority tiers based on real-world /24 allocation patterns
const (
	PriorityGateway   = 100 // .1, .254
	PriorityReserved  = 90  // .2-.5, .250-.253
	PriorityEarlyDHCP = 80  // .6-.10
	PriorityDHCPPeak  = 70  // .50, .100, .150
	PriorityDHCPPool  = 50  // .51-.99, .101-.149, .151-.200
	PriorityLongTail  = 20  // .11-.49, .201-.249
	PriorityExcluded  = 0   // network/broadcast
)

type octetRange struct {
	start, end int
	priority   int
}

var octetPriorities = []octetRange{
	{start: 1, end: 1, priority: PriorityGateway},
	{start: 254, end: 254, priority: PriorityGateway},
	{start: 2, end: 5, priority: PriorityReserved},
	{start: 250, end: 253, priority: PriorityReserved},
	{start: 6, end: 10, priority: PriorityEarlyDHCP},
	{start: 50, end: 50, priority: PriorityDHCPPeak},
	{start: 100, end: 100, priority: PriorityDHCPPeak},
	{start: 150, end: 150, priority: PriorityDHCPPeak},
	{start: 51, end: 99, priority: PriorityDHCPPool},
	{start: 101, end: 149, priority: PriorityDHCPPool},
	{start: 151, end: 200, priority: PriorityDHCPPool},
}

// Priority scores how likely ip is to be online (0-100). Non-IPv4 addresses
// get PriorityLongTail.
func Priority(ip net.IP, network *net.IPNet) int {
	ip4 := ip.To4()
	if ip4 == nil {
		return PriorityLongTail
	}
	if IsNetworkOrBroadcast(ip, network) {
		return PriorityExcluded
	}

	lastOctet := int(ip4[3])
	for _, r := range octetPriorities {
		if lastOctet >= r.start && lastOctet <= r.end {
			return r.priority
		}
	}
	return PriorityLongTail
}

// Prioritize orders hosts so the most likely online addresses come first.
// Ties keep ascending address order. Entries that are not IP addresses are
// kept at the end in their original order.
func Prioritize(hosts []string, cidr string) []string {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		network = nil
	}

	type scored struct {
		host     string
		ip       net.IP
		priority int
	}

	scoredHosts := make([]scored, 0, len(hosts))
	for _, host := range hosts {
		ip := net.ParseIP(host)
		priority := -1
		if ip != nil {
			priority = Priority(ip, network)
		}
		scoredHosts = append(scoredHosts, scored{host: host, ip: ip, priority: priority})
	}

	sort.SliceStable(scoredHosts, func(i, j int) bool {
		if scoredHosts[i].priority != scoredHosts[j].priority {
			return scoredHosts[i].priority > scoredHosts[j].priority
		}
		return compareIP(scoredHosts[i].ip, scoredHosts[j].ip) < 0
	})

	ordered := make([]string, 0, len(scoredHosts))
	for _, s := range scoredHosts {
		ordered = append(ordered, s.host)
	}
	return ordered
}

// compareIP orders IPv4 before IPv6, then byte-wise
func compareIP(a, b net.IP) int {
	a4, b4 := a.To4(), b.To4()
	switch {
	case a4 != nil && b4 != nil:
		return bytes.Compare(a4, b4)
	case a4 != nil:
		return -1
	case b4 != nil:
		return 1
	}
	return bytes.Compare(a.To16(), b.To16())
}
