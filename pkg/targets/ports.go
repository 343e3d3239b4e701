package targets

import (
	"net"
	"strconv"
	"strings"

	errorutil "github.com/projectdiscovery/utils/errors"
	sliceutil "github.com/projectdiscovery/utils/slice"
)

const (
	// DefaultFirstPort and DefaultLastPort bound the default port universe
	DefaultFirstPort = 1
	DefaultLastPort  = 65534
	maxPort          = 65535
)

// DefaultPortRange is the port expression scanned when none is given
var DefaultPortRange = strconv.Itoa(DefaultFirstPort) + "-" + strconv.Itoa(DefaultLastPort)

// PortTask is a port paired with the fixed scan target
type PortTask struct {
	Host string
	Port int
}

func (p PortTask) String() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// ParsePorts expands a port expression such as "22,80,8000-8100" into the
// list of ports it names. Ranges are inclusive; duplicates are dropped and
// the first occurrence order is kept.
func ParsePorts(expr string) ([]int, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errorutil.New("empty port expression")
	}

	var ports []int
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		low, high, isRange := strings.Cut(part, "-")
		if !isRange {
			high = low
		}

		first, err := parsePort(low)
		if err != nil {
			return nil, err
		}
		last, err := parsePort(high)
		if err != nil {
			return nil, err
		}
		if first > last {
			return nil, errorutil.New("invalid port range %q: start is greater than end", part)
		}

		for port := first; port <= last; port++ {
			ports = append(ports, port)
		}
	}

	if len(ports) == 0 {
		return nil, errorutil.New("no ports in expression %q", expr)
	}
	return sliceutil.Dedupe(ports), nil
}

func parsePort(value string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, errorutil.NewWithErr(err).Msgf("invalid port %q", value)
	}
	if port < 1 || port > maxPort {
		return 0, errorutil.New("port %d out of range 1-%d", port, maxPort)
	}
	return port, nil
}

// PortTasks pairs every port with host
func PortTasks(host string, ports []int) []PortTask {
	tasks := make([]PortTask, 0, len(ports))
	for _, port := range ports {
		tasks = append(tasks, PortTask{Host: host, Port: port})
	}
	return tasks
}
