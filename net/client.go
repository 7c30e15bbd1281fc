package net

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go/valkeyhook"

	"github.com/swappiehq/kvprobe/logging"
	"github.com/swappiehq/kvprobe/metrics"
)

const (
	// DriverGoRedis selects the client based on github.com/redis/go-redis.
	DriverGoRedis = "go-redis"
	// DriverValkey selects the client based on github.com/valkey-io/valkey-go.
	DriverValkey = "valkey"

	DefaultTimeout = 5 * time.Second
)

var (
	// ErrNotFound is returned by Get when the key does not exist.
	ErrNotFound = errors.New("key not found")

	ErrUnknownDriver = errors.New("unknown store client driver")
)

// Client is the subset of the store commands used by the probe.
type Client interface {
	Ping(ctx context.Context) error
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
	// Info returns the raw reply of the INFO command, see ParseInfo.
	Info(ctx context.Context, sections ...string) (string, error)
	Close() error
}

// ClientOptions is used to configure a single node store client.
type ClientOptions struct {
	// Driver is DriverGoRedis (default) or DriverValkey.
	Driver string

	// Addr of the store, host:port
	Addr string

	// Username used to connect to the store, requires ACL support
	Username string
	// Password is the password needed to connect to the store
	Password string
	// Database to select after connecting
	Database int

	// TLSConfig enables TLS when set
	TLSConfig *tls.Config

	// DialTimeout is the max time.Duration to dial a new connection
	DialTimeout time.Duration
	// ReadTimeout for socket reads
	ReadTimeout time.Duration
	// WriteTimeout for socket writes
	WriteTimeout time.Duration

	// ConnMetricsInterval defines the frequency of updating the
	// connection pool metrics. When it is 0 the pool metrics are
	// published once, on Close. Only supported by the go-redis driver.
	ConnMetricsInterval time.Duration
	// Metrics collector
	Metrics metrics.Metrics
	// MetricsPrefix is the prefix for the client metrics,
	// defaults to "<driver>." if not set
	MetricsPrefix string
	// Log is the logger that is used
	Log logging.Logger

	// Hook intercepts the commands of the valkey driver, see
	// https://pkg.go.dev/github.com/valkey-io/valkey-go/valkeyhook
	Hook valkeyhook.Hook
}

func (o *ClientOptions) withDefaults() *ClientOptions {
	opt := ClientOptions{}
	if o != nil {
		opt = *o
	}

	if opt.Driver == "" {
		opt.Driver = DriverGoRedis
	}
	if opt.DialTimeout == 0 {
		opt.DialTimeout = DefaultTimeout
	}
	if opt.ReadTimeout == 0 {
		opt.ReadTimeout = DefaultTimeout
	}
	if opt.WriteTimeout == 0 {
		opt.WriteTimeout = DefaultTimeout
	}
	if opt.Metrics == nil {
		opt.Metrics = metrics.Default
	}
	if opt.MetricsPrefix == "" {
		opt.MetricsPrefix = opt.Driver + "."
	}
	if opt.Log == nil {
		opt.Log = &logging.DefaultLog{}
	}
	return &opt
}

// NewClient creates the client of the configured driver. The options
// are copied, the caller may reuse them.
func NewClient(o *ClientOptions) (Client, error) {
	opt := o.withDefaults()
	if opt.Addr == "" {
		return nil, errors.New("store client requires an address")
	}

	switch opt.Driver {
	case DriverGoRedis:
		return NewRedisClient(opt), nil
	case DriverValkey:
		return NewValkeyClient(opt)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opt.Driver)
	}
}
