package targets

import (
	"net"

	"github.com/projectdiscovery/mapcidr"
	errorutil "github.com/projectdiscovery/utils/errors"
)

// MaxHostBits caps the host part of a swept prefix: the host list is built
// in memory, so at most 2^20 addresses (an IPv4 /12) are accepted
const MaxHostBits = 20

// ParseCIDR parses cidr and rejects prefixes with more than 2^MaxHostBits
// addresses
func ParseCIDR(cidr string) (*net.IPNet, error) {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, errorutil.NewWithErr(err).Msgf("invalid CIDR %q", cidr)
	}
	ones, bits := network.Mask.Size()
	if bits-ones > MaxHostBits {
		return nil, errorutil.New("CIDR %s is too large: %d host bits exceeds the limit of %d (%d addresses)", network, bits-ones, MaxHostBits, 1<<MaxHostBits)
	}
	return network, nil
}

// Hosts returns every usable host address of cidr, in ascending order.
// The network and broadcast addresses are excluded, so a /24 yields 254
// hosts. A /31 or /32 yields its addresses unchanged as there is no room
// for a network/broadcast pair.
func Hosts(cidr string) ([]string, error) {
	network, err := ParseCIDR(cidr)
	if err != nil {
		return nil, err
	}

	ips, err := mapcidr.IPAddresses(network.String())
	if err != nil {
		return nil, errorutil.NewWithErr(err).Msgf("failed to expand CIDR %s", network)
	}

	ones, bits := network.Mask.Size()
	if bits-ones <= 1 {
		return ips, nil
	}

	hosts := make([]string, 0, len(ips))
	for _, ipStr := range ips {
		ip := net.ParseIP(ipStr)
		if ip == nil {
			continue
		}
		if IsNetworkOrBroadcast(ip, network) {
			continue
		}
		hosts = append(hosts, ipStr)
	}
	return hosts, nil
}

// IsNetworkOrBroadcast reports whether ip is the first address of network
// or, for an IPv4 network with a 4-byte mask, its all-ones broadcast address.
// Other IPv6 addresses only match when multicast. A nil network never matches.
func IsNetworkOrBroadcast(ip net.IP, network *net.IPNet) bool {
	if network == nil {
		return false
	}

	if ip.Equal(network.IP) {
		return true
	}

	if ip4 := ip.To4(); ip4 != nil {
		base := network.IP.To4()
		if base == nil || len(network.Mask) != net.IPv4len {
			return false
		}
		broadcast := make(net.IP, net.IPv4len)
		for i := range broadcast {
			broadcast[i] = base[i] | ^network.Mask[i]
		}
		return ip4.Equal(broadcast)
	}

	return ip.IsMulticast()
}

// ValidateHost checks that host is a literal IP address or a resolvable name
func ValidateHost(host string) error {
	if host == "" {
		return errorutil.New("empty target host")
	}
	if net.ParseIP(host) != nil {
		return nil
	}
	if _, err := net.LookupHost(host); err != nil {
		return errorutil.NewWithErr(err).Msgf("could not resolve target host %q", host)
	}
	return nil
}
