//go:build windows
// +build windows

package limits

// FileLimit is not enforced per process on windows
func FileLimit() (uint64, error) {
	return 0, nil
}

// IsPrivileged always returns false; raw ICMP is not used on windows
func IsPrivileged() bool {
	return false
}
