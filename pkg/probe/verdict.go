package probe

// Verdict is the outcome of a single probe
type Verdict int

const (
	// Down means the host did not answer the echo request
	Down Verdict = iota
	// Up means exactly one echo reply came back
	Up
	// Closed means the port actively refused the connection
	Closed
	// Filtered means the connection attempt timed out or the host was unreachable
	Filtered
	// Open means the TCP handshake completed
	Open
)

func (v Verdict) String() string {
	switch v {
	case Up:
		return "UP"
	case Down:
		return "DOWN"
	case Open:
		return "OPEN"
	case Closed:
		return "CLOSED"
	case Filtered:
		return "FILTERED"
	default:
		return "UNKNOWN"
	}
}

// Positive reports whether the verdict is a finding (UP or OPEN)
func (v Verdict) Positive() bool {
	return v == Up || v == Open
}

// HostVerdict converts a liveness result to UP/DOWN
func HostVerdict(alive bool) Verdict {
	if alive {
		return Up
	}
	return Down
}
