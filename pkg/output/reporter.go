// Package output serializes scan verdicts from concurrent workers into
// whole text lines.
package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/logrusorgru/aurora/v4"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/reconpool/pkg/probe"
)

// Reporter writes one line per reported verdict. Writes are guarded by a
// single mutex so lines from concurrent workers never interleave.
type Reporter struct {
	mu     sync.Mutex
	out    io.Writer
	file   io.WriteCloser
	au     *aurora.Aurora
	counts map[probe.Verdict]int
}

// Options configures a Reporter
type Options struct {
	// Writer receives report lines; defaults to os.Stdout
	Writer io.Writer
	// NoColor disables ANSI colors on Writer
	NoColor bool
	// OutputFile, when set, also receives every line without colors
	OutputFile string
}

// New creates a reporter
func New(options Options) (*Reporter, error) {
	r := &Reporter{
		out:    options.Writer,
		au:     aurora.New(aurora.WithColors(!options.NoColor)),
		counts: make(map[probe.Verdict]int),
	}
	if r.out == nil {
		r.out = os.Stdout
	}

	if options.OutputFile != "" {
		file, err := os.Create(options.OutputFile)
		if err != nil {
			return nil, fmt.Errorf("could not create output file %s: %w", options.OutputFile, err)
		}
		r.file = file
	}
	return r, nil
}

// ReportHost writes the liveness verdict of host
func (r *Reporter) ReportHost(verdict probe.Verdict, host string) {
	plain := fmt.Sprintf("[*] %s is %s\n", host, verdict)
	colored := fmt.Sprintf("[%s] %s is %s\n", r.au.Blue("*"), host, r.colorize(verdict))
	r.write(verdict, plain, colored)
}

// ReportPort writes an open port finding. Closed and filtered ports only
// show up in the verbose log.
func (r *Reporter) ReportPort(verdict probe.Verdict, host string, port int) {
	if verdict != probe.Open {
		gologger.Verbose().Msgf("Port %d on %s is %s", port, host, verdict)
		return
	}
	plain := fmt.Sprintf("[+] Port %d on %s is %s\n", port, host, verdict)
	colored := fmt.Sprintf("[%s] Port %d on %s is %s\n", r.au.Green("+"), port, host, r.colorize(verdict))
	r.write(verdict, plain, colored)
}

// ReportElapsed writes the run summary line with the total wall-clock
// duration in seconds, rounded to two decimals
func (r *Reporter) ReportElapsed(elapsed time.Duration) {
	line := fmt.Sprintf("\nAll workers completed their tasks after %.2f seconds\n", elapsed.Seconds())

	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = io.WriteString(r.out, line)
	if r.file != nil {
		_, _ = io.WriteString(r.file, line)
	}
}

// Count returns how many lines were reported with verdict
func (r *Reporter) Count(verdict probe.Verdict) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[verdict]
}

// Close flushes and closes the output file, if any
func (r *Reporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func (r *Reporter) write(verdict probe.Verdict, plain, colored string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = io.WriteString(r.out, colored)
	if r.file != nil {
		_, _ = io.WriteString(r.file, plain)
	}
	r.counts[verdict]++
}

func (r *Reporter) colorize(verdict probe.Verdict) aurora.Value {
	switch verdict {
	case probe.Up, probe.Open:
		return r.au.Green(verdict.String()).Bold()
	default:
		return r.au.Red(verdict.String())
	}
}
