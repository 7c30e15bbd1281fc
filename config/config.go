package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/swappiehq/kvprobe"
	"github.com/swappiehq/kvprobe/net"
)

type Config struct {
	ConfigFile string
	Flags      *flag.FlagSet

	// probe:
	URIs        *listFlag     `yaml:"uri"`
	Driver      string        `yaml:"driver"`
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password"`
	Key         string        `yaml:"key"`
	Value       string        `yaml:"value"`
	Info        bool          `yaml:"info"`
	Timeout     time.Duration `yaml:"timeout"`
	WaitTimeout time.Duration `yaml:"wait-timeout"`
	WaitPause   time.Duration `yaml:"wait-pause"`

	// logging, metrics:
	ApplicationLogLevel       log.Level `yaml:"-"`
	ApplicationLogLevelString string    `yaml:"application-log-level"`
	ApplicationLogPrefix      string    `yaml:"application-log-prefix"`
	ApplicationLogJSONEnabled bool      `yaml:"application-log-json-enabled"`
	SupportListener           string    `yaml:"support-listener"`
	MetricsPrefix             string    `yaml:"metrics-prefix"`
	EnableRuntimeMetrics      bool      `yaml:"runtime-metrics"`
	OpenTracing               string    `yaml:"opentracing"`
}

const (
	defaultApplicationLogLevel = "INFO"
	defaultMetricsPrefix       = "kvprobe."
	defaultOpenTracing         = "noop"

	passwordEnv = "KVPROBE_PASSWORD"
)

func NewConfig() *Config {
	cfg := new(Config)
	cfg.URIs = commaListFlag()

	flag := flag.NewFlagSet("", flag.ExitOnError)
	flag.StringVar(&cfg.ConfigFile, "config-file", "", "if provided the flags will be loaded/overwritten by the values on the file (yaml)")

	// probe:
	flag.Var(cfg.URIs, "uri", "store URIs as comma separated list, e.g. redis://127.0.0.1:6379,redis://127.0.0.1:6380")
	flag.StringVar(&cfg.Driver, "driver", net.DriverGoRedis, "store client, "+net.DriverGoRedis+" or "+net.DriverValkey)
	flag.StringVar(&cfg.Username, "username", "", "username used to connect to the stores")
	flag.StringVar(&cfg.Password, "password", "", "password used to connect to the stores.\nUse "+passwordEnv+" environment variable or 'password' key in config file to keep it off the command line")
	flag.StringVar(&cfg.Key, "key", kvprobe.DefaultKey, "key written and read by the probe")
	flag.StringVar(&cfg.Value, "value", kvprobe.DefaultValue, "value written by the probe and expected to be read back")
	flag.BoolVar(&cfg.Info, "info", false, "print the executable and version of every store, read with the INFO command")
	flag.DurationVar(&cfg.Timeout, "timeout", net.DefaultTimeout, "dial, read and write timeout of the store connections")
	flag.DurationVar(&cfg.WaitTimeout, "wait-timeout", net.DefaultWaitTimeout, "max time to wait until a store accepts connections")
	flag.DurationVar(&cfg.WaitPause, "wait-pause", net.DefaultWaitPause, "pause between the attempts to connect to a store")

	// logging, metrics:
	flag.StringVar(&cfg.ApplicationLogLevelString, "application-log-level", defaultApplicationLogLevel, "log level for application logs, possible values: PANIC, FATAL, ERROR, WARN, INFO, DEBUG")
	flag.StringVar(&cfg.ApplicationLogPrefix, "application-log-prefix", "", "prefix for each log entry")
	flag.BoolVar(&cfg.ApplicationLogJSONEnabled, "application-log-json-enabled", false, "when this flag is set, log in JSON format is used")
	flag.StringVar(&cfg.SupportListener, "support-listener", "", "network address used for exposing the /metrics endpoint. An empty value disables the endpoint.")
	flag.StringVar(&cfg.MetricsPrefix, "metrics-prefix", defaultMetricsPrefix, "prefix for the metrics, used as namespace of the prometheus metrics")
	flag.BoolVar(&cfg.EnableRuntimeMetrics, "runtime-metrics", false, "enables collection of Go runtime and process metrics")
	flag.StringVar(&cfg.OpenTracing, "opentracing", defaultOpenTracing, "list of arguments for opentracing (space separated), first argument is the tracer implementation: noop, jaeger or basic")

	cfg.Flags = flag
	return cfg
}

func validate(c *Config) error {
	if _, err := log.ParseLevel(c.ApplicationLogLevelString); err != nil {
		return err
	}

	switch c.Driver {
	case net.DriverGoRedis, net.DriverValkey:
	default:
		return fmt.Errorf("%w: %q", net.ErrUnknownDriver, c.Driver)
	}

	if len(c.URIs.values) == 0 {
		return fmt.Errorf("no store uri specified, use -uri or the 'uri' key in the config file")
	}
	for _, uri := range c.URIs.values {
		if _, err := net.ParseEndpoint(uri); err != nil {
			return fmt.Errorf("invalid uri: %w", err)
		}
	}

	if len(c.OpenTracingArgs()) == 0 {
		return fmt.Errorf("no tracer specified, use -opentracing=noop to disable tracing")
	}

	if c.Timeout <= 0 || c.WaitTimeout <= 0 || c.WaitPause <= 0 {
		return fmt.Errorf("timeouts must be positive: timeout %s, wait-timeout %s, wait-pause %s", c.Timeout, c.WaitTimeout, c.WaitPause)
	}

	return nil
}

func (c *Config) Parse() error {
	return c.ParseArgs(os.Args[0], os.Args[1:])
}

func (c *Config) ParseArgs(progname string, args []string) error {
	c.Flags.Init(progname, flag.ExitOnError)
	err := c.Flags.Parse(args)
	if err != nil {
		return err
	}

	// check if arguments were correctly parsed.
	if len(c.Flags.Args()) != 0 {
		return fmt.Errorf("invalid arguments: %s", c.Flags.Args())
	}

	if c.ConfigFile != "" {
		yamlFile, err := os.ReadFile(c.ConfigFile)
		if err != nil {
			return fmt.Errorf("invalid config file: %w", err)
		}

		err = yaml.Unmarshal(yamlFile, c)
		if err != nil {
			return fmt.Errorf("unmarshalling config file error: %w", err)
		}

		// flags take precedence over the file
		err = c.Flags.Parse(args)
		if err != nil {
			return err
		}
	}

	c.parseEnv()

	if err := validate(c); err != nil {
		return err
	}

	c.ApplicationLogLevel, _ = log.ParseLevel(c.ApplicationLogLevelString)

	return nil
}

func (c *Config) parseEnv() {
	// Set the password from environment variable if not set earlier (flag or configuration file)
	if c.Password == "" {
		c.Password = os.Getenv(passwordEnv)
	}
}

// OpenTracingArgs returns the tracer name followed by its options.
func (c *Config) OpenTracingArgs() []string {
	return strings.Fields(c.OpenTracing)
}

func (c *Config) ToOptions() kvprobe.Options {
	return kvprobe.Options{
		URIs:        c.URIs.values,
		Driver:      c.Driver,
		Username:    c.Username,
		Password:    c.Password,
		Key:         c.Key,
		Value:       c.Value,
		Info:        c.Info,
		Timeout:     c.Timeout,
		WaitTimeout: c.WaitTimeout,
		WaitPause:   c.WaitPause,
	}
}
