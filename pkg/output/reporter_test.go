package output

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/projectdiscovery/reconpool/pkg/probe"
	"github.com/stretchr/testify/require"
)

// slowWriter splits every write into single bytes so unsynchronized callers
// would interleave
type slowWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *slowWriter) Write(p []byte) (int, error) {
	for i := range p {
		w.mu.Lock()
		w.buf.WriteByte(p[i])
		w.mu.Unlock()
	}
	return len(p), nil
}

func (w *slowWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

func TestReporterLines(t *testing.T) {
	var buf bytes.Buffer
	r, err := New(Options{Writer: &buf, NoColor: true})
	require.NoError(t, err)

	r.ReportHost(probe.Up, "192.168.74.1")
	r.ReportHost(probe.Down, "192.168.74.2")
	r.ReportPort(probe.Open, "192.168.74.131", 22)
	r.ReportPort(probe.Closed, "192.168.74.131", 23)
	r.ReportPort(probe.Filtered, "192.168.74.131", 24)

	require.Equal(t,
		"[*] 192.168.74.1 is UP\n"+
			"[*] 192.168.74.2 is DOWN\n"+
			"[+] Port 22 on 192.168.74.131 is OPEN\n",
		buf.String())
	require.Equal(t, 1, r.Count(probe.Up))
	require.Equal(t, 1, r.Count(probe.Down))
	require.Equal(t, 1, r.Count(probe.Open))
	require.Equal(t, 0, r.Count(probe.Closed))
}

func TestReporterConcurrentLinesDoNotInterleave(t *testing.T) {
	const writers = 200

	w := &slowWriter{}
	r, err := New(Options{Writer: w, NoColor: true})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				r.ReportHost(probe.Up, fmt.Sprintf("10.0.%d.%d", i/256, i%256))
			} else {
				r.ReportPort(probe.Open, "10.0.0.1", i)
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(w.String(), "\n"), "\n")
	require.Len(t, lines, writers)

	wellFormed := regexp.MustCompile(`^(\[\*\] 10\.0\.\d+\.\d+ is UP|\[\+\] Port \d+ on 10\.0\.0\.1 is OPEN)$`)
	for _, line := range lines {
		require.Regexp(t, wellFormed, line)
	}
}

func TestReporterOutputFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "results.txt")

	r, err := New(Options{Writer: &buf, OutputFile: path})
	require.NoError(t, err)

	r.ReportPort(probe.Open, "127.0.0.1", 9000)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "[+] Port 9000 on 127.0.0.1 is OPEN\n", string(data), "file output is never colored")
	require.Contains(t, buf.String(), "9000")
}

func TestReporterBadOutputFile(t *testing.T) {
	_, err := New(Options{OutputFile: filepath.Join(t.TempDir(), "missing", "dir", "out.txt")})
	require.Error(t, err)
}

func TestReporterElapsed(t *testing.T) {
	var buf bytes.Buffer
	r, err := New(Options{Writer: &buf, NoColor: true})
	require.NoError(t, err)

	r.ReportElapsed(1234567 * time.Microsecond)
	require.Equal(t, "\nAll workers completed their tasks after 1.23 seconds\n", buf.String())
}
