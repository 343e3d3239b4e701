package runner

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
	"github.com/projectdiscovery/reconpool/pkg/probe"
	"github.com/projectdiscovery/reconpool/pkg/targets"
	"github.com/projectdiscovery/reconpool/pkg/version"
	"github.com/projectdiscovery/reconpool/pkg/workerpool"
	envutil "github.com/projectdiscovery/utils/env"
	errorutil "github.com/projectdiscovery/utils/errors"
)

// ScanType selects which scan the runner performs
type ScanType string

const (
	// ScanTypeSweep probes every host of a CIDR with one ICMP echo
	ScanTypeSweep ScanType = "sweep"
	// ScanTypePort connects to every port of a range on one host
	ScanTypePort ScanType = "port"
)

// ICMP probe implementations
const (
	ICMPModeExec = "exec"
	ICMPModeRaw  = "raw"
	ICMPModeAuto = "auto"
)

const (
	// DefaultCIDR is the network swept when none is given
	DefaultCIDR = "192.168.74.0/24"
	// DefaultHost is the port scan target when none is given
	DefaultHost = "192.168.74.131"
)

var (
	CIDREnv    = envutil.GetEnvOrDefault("RECONPOOL_CIDR", DefaultCIDR)
	HostEnv    = envutil.GetEnvOrDefault("RECONPOOL_HOST", DefaultHost)
	WorkersEnv = envutil.GetEnvOrDefault("RECONPOOL_WORKERS", strconv.Itoa(workerpool.DefaultSize))
)

// Options contains the configuration options for a scan run
type Options struct {
	ScanType    string
	CIDR        string
	Host        string
	Ports       string
	Workers     int
	Timeout     time.Duration
	PingTimeout time.Duration
	ICMPMode    string
	Rate        int
	Prioritize  bool

	Output     string
	ConfigFile string
	NoColor    bool
	Verbose    bool
	Silent     bool
	Version    bool

	// Writer receives report lines, os.Stdout when nil
	Writer io.Writer
}

// ScanConfig is the validated configuration handed to the runner
type ScanConfig struct {
	Type        ScanType
	CIDR        string
	Host        string
	Ports       []int
	Workers     int
	TCPTimeout  time.Duration
	PingTimeout time.Duration
	ICMPMode    string
	Rate        int
	Prioritize  bool
}

// DefaultOptions returns options with every documented default applied
func DefaultOptions() *Options {
	return &Options{
		ScanType:    string(ScanTypeSweep),
		CIDR:        DefaultCIDR,
		Host:        DefaultHost,
		Ports:       targets.DefaultPortRange,
		Workers:     workerpool.DefaultSize,
		Timeout:     probe.DefaultTCPTimeout,
		PingTimeout: probe.DefaultPingTimeout,
		ICMPMode:    ICMPModeExec,
	}
}

// ParseOptions parses the command line flags provided by a user
func ParseOptions() *Options {
	options := DefaultOptions()
	flagSet := goflags.NewFlagSet()

	flagSet.SetDescription(`reconpool sweeps a network for live hosts or a host for open TCP ports using a bounded worker pool`)

	defaultWorkers := workersFromEnv(WorkersEnv)

	flagSet.CreateGroup("target", "Target",
		flagSet.StringVarP(&options.ScanType, "scan-type", "s", string(ScanTypeSweep), "scan to run (sweep,port)"),
		flagSet.StringVarP(&options.CIDR, "cidr", "c", CIDREnv, "network to sweep for live hosts"),
		flagSet.StringVarP(&options.Host, "host", "t", HostEnv, "host to scan for open ports"),
		flagSet.StringVarP(&options.Ports, "ports", "p", targets.DefaultPortRange, "ports to scan (22,80,1000-2000)"),
		flagSet.BoolVar(&options.Prioritize, "prioritize", false, "probe likely online hosts (gateways, early dhcp) first"),
	)

	flagSet.CreateGroup("rate-limit", "Rate-Limit",
		flagSet.IntVarP(&options.Workers, "workers", "w", defaultWorkers, "number of concurrent workers"),
		flagSet.IntVarP(&options.Rate, "rate", "rl", 0, "maximum probes per second (0 = unlimited)"),
	)

	flagSet.CreateGroup("probe", "Probe",
		flagSet.DurationVar(&options.Timeout, "timeout", probe.DefaultTCPTimeout, "tcp connect timeout"),
		flagSet.DurationVar(&options.PingTimeout, "ping-timeout", probe.DefaultPingTimeout, "icmp echo timeout"),
		flagSet.StringVar(&options.ICMPMode, "icmp-mode", ICMPModeExec, "icmp probe implementation (exec,raw,auto)"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.StringVarP(&options.Output, "output", "o", "", "file to also write results to"),
		flagSet.BoolVarP(&options.NoColor, "no-color", "nc", false, "disable output content coloring (ANSI escape codes)"),
		flagSet.BoolVar(&options.Silent, "silent", false, "display results only"),
	)

	flagSet.CreateGroup("config", "Config",
		flagSet.StringVar(&options.ConfigFile, "config", "", "yaml configuration file"),
	)

	flagSet.CreateGroup("debug", "Debug",
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", false, "show verbose output"),
		flagSet.BoolVar(&options.Version, "version", false, "show version of the project"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}

	if options.ConfigFile != "" {
		if err := flagSet.MergeConfigFile(options.ConfigFile); err != nil {
			gologger.Fatal().Msgf("Could not read config file %s: %s\n", options.ConfigFile, err)
		}
	}

	options.configureOutput()

	showBanner()

	if options.Version {
		gologger.Info().Msgf("Current Version: %s\n", version.GetVersion())
		os.Exit(0)
	}

	if err := options.Validate(); err != nil {
		gologger.Fatal().Msgf("Program exiting: %s\n", err)
	}

	return options
}

// workersFromEnv parses the RECONPOOL_WORKERS value, falling back to
// workerpool.DefaultSize with a warning when it is not a number
func workersFromEnv(value string) int {
	workers, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		gologger.Warning().Msgf("Ignoring invalid RECONPOOL_WORKERS %q, using %d workers", value, workerpool.DefaultSize)
		return workerpool.DefaultSize
	}
	return workers
}

// configureOutput configures the output on the screen
func (options *Options) configureOutput() {
	if options.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if options.NoColor {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(true))
	}
	if options.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	}
}

// Validate checks the options for inconsistencies
func (options *Options) Validate() error {
	_, err := options.ScanConfig()
	return err
}

// ScanConfig validates the options and converts them to the runner configuration
func (options *Options) ScanConfig() (ScanConfig, error) {
	config := ScanConfig{
		Type:        ScanType(strings.ToLower(strings.TrimSpace(options.ScanType))),
		CIDR:        strings.TrimSpace(options.CIDR),
		Host:        strings.TrimSpace(options.Host),
		Workers:     options.Workers,
		TCPTimeout:  options.Timeout,
		PingTimeout: options.PingTimeout,
		ICMPMode:    strings.ToLower(strings.TrimSpace(options.ICMPMode)),
		Rate:        options.Rate,
		Prioritize:  options.Prioritize,
	}

	if config.Workers < 1 {
		return config, errorutil.New("invalid number of workers %d: must be at least 1", config.Workers)
	}
	if config.TCPTimeout <= 0 {
		return config, errorutil.New("invalid tcp timeout %s: must be positive", config.TCPTimeout)
	}
	if config.PingTimeout <= 0 {
		return config, errorutil.New("invalid ping timeout %s: must be positive", config.PingTimeout)
	}
	if config.Rate < 0 {
		return config, errorutil.New("invalid rate %d: must not be negative", config.Rate)
	}

	switch config.Type {
	case ScanTypeSweep:
		if _, err := targets.ParseCIDR(config.CIDR); err != nil {
			return config, err
		}
		switch config.ICMPMode {
		case ICMPModeExec, ICMPModeRaw, ICMPModeAuto:
		default:
			return config, errorutil.New("invalid icmp mode %q: must be one of exec, raw, auto", config.ICMPMode)
		}
	case ScanTypePort:
		if err := targets.ValidateHost(config.Host); err != nil {
			return config, err
		}
		ports, err := targets.ParsePorts(options.Ports)
		if err != nil {
			return config, err
		}
		config.Ports = ports
	default:
		return config, errorutil.New("invalid scan type %q: must be sweep or port", options.ScanType)
	}

	return config, nil
}
