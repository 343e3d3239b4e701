// Package limits inspects the process resources a scan consumes.
//
// Every in-flight TCP probe holds one file descriptor, and every ExecPinger
// probe holds the pipes of a child process, so a pool larger than the
// descriptor limit fails probes with EMFILE. Those failures degrade to
// negative verdicts, which silently hides open ports.
package limits

import (
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

// descriptorsPerWorker is the worst case number of descriptors one worker holds
const descriptorsPerWorker = 3

// OpenFiles returns the number of file descriptors the current process has open
func OpenFiles() (int, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	n, err := proc.NumFDs()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// CheckWorkers reports whether a pool of workers fits in the descriptor limit.
// It returns the limit it compared against; ok is always true when the limit
// cannot be determined.
func CheckWorkers(workers int) (limit uint64, ok bool) {
	limit, err := FileLimit()
	if err != nil || limit == 0 {
		return 0, true
	}
	inUse := 0
	if n, err := OpenFiles(); err == nil {
		inUse = n
	}
	needed := uint64(inUse) + uint64(workers*descriptorsPerWorker)
	return limit, needed <= limit
}
