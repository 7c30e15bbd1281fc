package kvprobe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opentracing/opentracing-go"
	"golang.org/x/sync/errgroup"

	"github.com/swappiehq/kvprobe/logging"
	"github.com/swappiehq/kvprobe/metrics"
	"github.com/swappiehq/kvprobe/net"
)

const (
	DefaultKey   = "foo"
	DefaultValue = "bar"
)

// ErrMismatch is returned by Run when the value read differs from the
// value written.
var ErrMismatch = errors.New("value read does not match value written")

// Options of Run.
type Options struct {
	// URIs of the stores to probe
	URIs []string

	// Driver, Username, Password and Timeout are passed to every
	// Application.
	Driver   string
	Username string
	Password string
	Timeout  time.Duration

	// Key and Value written by the round trip, default to
	// DefaultKey and DefaultValue
	Key   string
	Value string

	// Info enables reading the INFO fields of every store
	Info bool

	// WaitTimeout and WaitPause configure waiting until a store
	// accepts connections, see net.WaitUntilResponsive.
	WaitTimeout time.Duration
	WaitPause   time.Duration

	Log     logging.Logger
	Metrics metrics.Metrics
	Tracer  opentracing.Tracer

	newClient func(*net.ClientOptions) (net.Client, error)
}

// Result of probing one store.
type Result struct {
	// URI as passed in Options.URIs, with the password masked
	URI   string
	Value string

	// Info is only set when Options.Info is set
	Info map[string]string
}

// Run probes every store of o.URIs concurrently. It returns the results
// in the order of o.URIs, or the first error.
func Run(ctx context.Context, o Options) ([]Result, error) {
	if len(o.URIs) == 0 {
		return nil, errors.New("no store uri specified")
	}
	if o.Key == "" {
		o.Key = DefaultKey
	}
	if o.Value == "" {
		o.Value = DefaultValue
	}
	if o.Log == nil {
		o.Log = &logging.DefaultLog{}
	}

	results := make([]Result, len(o.URIs))
	g, ctx := errgroup.WithContext(ctx)
	for i, uri := range o.URIs {
		g.Go(func() error {
			r, err := probeOne(ctx, o, uri)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func probeOne(ctx context.Context, o Options, uri string) (Result, error) {
	redacted := net.Redact(uri)
	log := o.Log.WithFields(map[string]interface{}{"uri": redacted})
	app := &Application{
		StorageURI: uri,
		Driver:     o.Driver,
		Username:   o.Username,
		Password:   o.Password,
		Timeout:    o.Timeout,
		Log:        log,
		Metrics:    o.Metrics,
		Tracer:     o.Tracer,
		newClient:  o.newClient,
	}

	opts, err := app.clientOptions()
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	if err := net.WaitForStore(ctx, opts, o.WaitTimeout, o.WaitPause); err != nil {
		return Result{}, err
	}
	log.Debugf("Store responsive after %v", time.Since(start))

	got, err := app.RoundTrip(ctx, o.Key, o.Value)
	if err != nil {
		return Result{}, fmt.Errorf("probe of %s: %w", redacted, err)
	}
	if got != o.Value {
		return Result{}, fmt.Errorf("%w: %s: wrote %q, read %q", ErrMismatch, redacted, o.Value, got)
	}

	r := Result{URI: redacted, Value: got}
	if o.Info {
		r.Info, err = app.Info(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("info of %s: %w", redacted, err)
		}
		log.Infof("Store %s, version %s", r.Info["executable"], version(r.Info))
	}

	log.Infof("Round trip of %q succeeded", o.Key)
	return r, nil
}

// version returns the version field of the engine, KeyDB and Valkey
// report a redis_version for compatibility, too.
func version(info map[string]string) string {
	for _, k := range []string{"valkey_version", "redis_version"} {
		if v, ok := info[k]; ok {
			return v
		}
	}
	return "unknown"
}

// Version of the store engine, "unknown" without Info.
func (r Result) Version() string {
	return version(r.Info)
}
