package runner

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/reconpool/pkg/limits"
	"github.com/projectdiscovery/reconpool/pkg/output"
	"github.com/projectdiscovery/reconpool/pkg/probe"
	"github.com/projectdiscovery/reconpool/pkg/targets"
	"github.com/projectdiscovery/reconpool/pkg/taskqueue"
	"github.com/projectdiscovery/reconpool/pkg/workerpool"
	errorutil "github.com/projectdiscovery/utils/errors"
	mapsutil "github.com/projectdiscovery/utils/maps"
	"github.com/rs/xid"
)

// Runner contains the internal logic of the program
type Runner struct {
	options    *Options
	config     ScanConfig
	runID      string
	reporter   *output.Reporter
	hostProber probe.HostProber
	portProber probe.PortProber
	closers    []io.Closer
	// positive verdicts keyed by host or host:port
	findings *mapsutil.SyncLockMap[string, probe.Verdict]
}

// NewRunner validates options and prepares the probes and reporter
func NewRunner(options *Options) (*Runner, error) {
	config, err := options.ScanConfig()
	if err != nil {
		return nil, err
	}

	reporter, err := output.New(output.Options{
		Writer:     options.Writer,
		NoColor:    options.NoColor,
		OutputFile: options.Output,
	})
	if err != nil {
		return nil, err
	}

	r := &Runner{
		options:  options,
		config:   config,
		runID:    xid.New().String(),
		reporter: reporter,
		findings: mapsutil.NewSyncLockMap[string, probe.Verdict](),
	}

	switch config.Type {
	case ScanTypeSweep:
		hostProber, err := r.newHostProber()
		if err != nil {
			_ = reporter.Close()
			return nil, err
		}
		r.hostProber = hostProber
	case ScanTypePort:
		r.portProber = probe.NewTCPProber(config.TCPTimeout)
	}

	return r, nil
}

// newHostProber picks the ICMP implementation for the configured mode
func (r *Runner) newHostProber() (probe.HostProber, error) {
	mode := r.config.ICMPMode
	if mode == ICMPModeAuto {
		mode = ICMPModeExec
		if limits.IsPrivileged() {
			mode = ICMPModeRaw
		}
	}

	if mode != ICMPModeRaw {
		return probe.NewExecPinger(r.config.PingTimeout), nil
	}

	pinger, err := probe.NewRawPinger(r.config.PingTimeout)
	if err != nil {
		if r.config.ICMPMode == ICMPModeAuto {
			gologger.Warning().Msgf("Falling back to ping utility: %s", err)
			return probe.NewExecPinger(r.config.PingTimeout), nil
		}
		return nil, errorutil.NewWithErr(err).Msgf("could not create raw icmp prober")
	}
	r.closers = append(r.closers, pinger)
	return pinger, nil
}

// Run executes the configured scan and blocks until every task is done
func (r *Runner) Run(ctx context.Context) error {
	gologger.Verbose().Msgf("Starting %s scan %s with %d workers", r.config.Type, r.runID, r.config.Workers)

	if limit, ok := limits.CheckWorkers(r.config.Workers); !ok {
		gologger.Warning().Msgf("%d workers may exceed the open file limit (%d), probes failing with too many open files are reported as negative", r.config.Workers, limit)
	}

	var (
		elapsed time.Duration
		err     error
	)
	switch r.config.Type {
	case ScanTypeSweep:
		elapsed, err = r.runSweep(ctx)
	case ScanTypePort:
		elapsed, err = r.runPortScan(ctx)
	default:
		return errorutil.New("unsupported scan type %q", r.config.Type)
	}
	if err != nil {
		return err
	}

	r.reporter.ReportElapsed(elapsed)
	r.logSummary()
	return nil
}

func (r *Runner) runSweep(ctx context.Context) (time.Duration, error) {
	hosts, err := targets.Hosts(r.config.CIDR)
	if err != nil {
		return 0, err
	}
	if r.config.Prioritize {
		hosts = targets.Prioritize(hosts, r.config.CIDR)
	}

	queue := taskqueue.New[string]()
	pool, err := workerpool.New(r.config.Workers, queue, func(ctx context.Context, host string) {
		verdict := probe.HostVerdict(r.hostProber.Alive(ctx, host))
		if verdict.Positive() {
			_ = r.findings.Set(host, verdict)
		}
		r.reporter.ReportHost(verdict, host)
	}, workerpool.WithRateLimit(r.config.Rate))
	if err != nil {
		return 0, err
	}

	gologger.Info().Msgf("Creating a task request for each host in %s (%s hosts)", r.config.CIDR, humanize.Comma(int64(len(hosts))))
	return drain(ctx, pool, queue, hosts)
}

func (r *Runner) runPortScan(ctx context.Context) (time.Duration, error) {
	tasks := targets.PortTasks(r.config.Host, r.config.Ports)

	queue := taskqueue.New[targets.PortTask]()
	pool, err := workerpool.New(r.config.Workers, queue, func(ctx context.Context, task targets.PortTask) {
		verdict := r.portProber.Probe(ctx, task.Host, task.Port)
		if verdict.Positive() {
			_ = r.findings.Set(task.String(), verdict)
		}
		r.reporter.ReportPort(verdict, task.Host, task.Port)
	}, workerpool.WithRateLimit(r.config.Rate))
	if err != nil {
		return 0, err
	}

	gologger.Info().Msgf("Creating a task request for each port on %s (%s ports)", r.config.Host, humanize.Comma(int64(len(tasks))))
	return drain(ctx, pool, queue, tasks)
}

// drain starts the pool, enqueues every task and waits until all of them are
// done. It returns the wall-clock time from the first enqueue to the drain.
func drain[T any](ctx context.Context, pool *workerpool.Pool[T], queue *taskqueue.Queue[T], tasks []T) (time.Duration, error) {
	pool.Start(ctx)
	defer pool.Stop()

	start := time.Now()
	for _, task := range tasks {
		if err := queue.Put(task); err != nil {
			return time.Since(start), errorutil.NewWithErr(err).Msgf("could not enqueue task %v", task)
		}
	}

	if err := queue.Join(ctx); err != nil {
		return time.Since(start), errorutil.NewWithErr(err).Msgf("scan interrupted with %d tasks unfinished", queue.Unfinished())
	}
	return time.Since(start), nil
}

// Findings returns the hosts or host:port pairs with a positive verdict, sorted
func (r *Runner) Findings() []string {
	var found []string
	_ = r.findings.Iterate(func(key string, _ probe.Verdict) error {
		found = append(found, key)
		return nil
	})
	sort.Strings(found)
	return found
}

func (r *Runner) logSummary() {
	switch r.config.Type {
	case ScanTypeSweep:
		gologger.Verbose().Msgf("Run %s: %d hosts up, %d hosts down", r.runID, r.reporter.Count(probe.Up), r.reporter.Count(probe.Down))
	case ScanTypePort:
		gologger.Verbose().Msgf("Run %s: %d open ports", r.runID, r.reporter.Count(probe.Open))
	}
	if fds, err := limits.OpenFiles(); err == nil {
		gologger.Verbose().Msgf("Open file descriptors after scan: %d", fds)
	}
}

// Close the runner instance
func (r *Runner) Close() {
	for _, closer := range r.closers {
		_ = closer.Close()
	}
	if err := r.reporter.Close(); err != nil {
		gologger.Warning().Msgf("Could not close output file: %s", err)
	}
}
