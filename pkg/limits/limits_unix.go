//go:build !windows
// +build !windows

package limits

import "golang.org/x/sys/unix"

// FileLimit returns the soft RLIMIT_NOFILE of the process
func FileLimit() (uint64, error) {
	var rlimit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlimit); err != nil {
		return 0, err
	}
	return uint64(rlimit.Cur), nil
}

// IsPrivileged reports whether the process runs as root and can open raw sockets
func IsPrivileged() bool {
	return unix.Geteuid() == 0
}
