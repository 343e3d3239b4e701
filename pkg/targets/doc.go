// Package targets builds the task universe of a scan.
//
// The package provides:
//   - Hosts: usable host addresses of a CIDR (network and broadcast excluded)
//   - ParsePorts: port lists and inclusive ranges ("22,80,1000-2000")
//   - Prioritize: orders hosts so routers, gateways and early DHCP
//     allocations are probed first
//
// Example:
//
//	hosts, err := targets.Hosts("192.168.1.0/24") // 254 hosts, .1-.254
//	ports, err := targets.ParsePorts(targets.DefaultPortRange) // 1-65534
package targets
