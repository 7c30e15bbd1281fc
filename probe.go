package kvprobe

import (
	"context"
	"fmt"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"

	"github.com/swappiehq/kvprobe/logging"
	"github.com/swappiehq/kvprobe/metrics"
	"github.com/swappiehq/kvprobe/net"
)

const (
	opRoundTrip = "roundtrip"
	opInfo      = "info"
	opPing      = "ping"
)

// Application talks to one key-value store. Every operation opens a
// new connection and closes it before returning.
type Application struct {
	// StorageURI of the store, see net.ParseEndpoint. Its userinfo is
	// used when Username or Password are empty.
	StorageURI string

	// Driver selects the store client, see net.ClientOptions
	Driver string

	Username string
	Password string

	// Timeout for dialing, reading and writing, defaults to
	// net.DefaultTimeout
	Timeout time.Duration

	Log     logging.Logger
	Metrics metrics.Metrics
	Tracer  opentracing.Tracer

	// replaced in tests
	newClient func(*net.ClientOptions) (net.Client, error)
}

// Probe writes value to key at the store of ep, reads it back and
// returns what was read.
func Probe(ctx context.Context, ep net.Endpoint, key, value string) (string, error) {
	app := &Application{StorageURI: ep.URI()}
	return app.RoundTrip(ctx, key, value)
}

func (a *Application) clientOptions() (*net.ClientOptions, error) {
	ep, err := net.ParseEndpoint(a.StorageURI)
	if err != nil {
		return nil, err
	}

	// explicit credentials take precedence over the userinfo of the URI
	username, password := a.Username, a.Password
	if username == "" {
		username = ep.Username
	}
	if password == "" {
		password = ep.Password
	}

	return &net.ClientOptions{
		Driver:       a.Driver,
		Addr:         ep.Address(),
		Username:     username,
		Password:     password,
		Database:     ep.Database,
		TLSConfig:    ep.TLSConfig(),
		DialTimeout:  a.Timeout,
		ReadTimeout:  a.Timeout,
		WriteTimeout: a.Timeout,
		Metrics:      a.metrics(),
		Log:          a.log(),
	}, nil
}

func (a *Application) log() logging.Logger {
	if a.Log == nil {
		return &logging.DefaultLog{}
	}
	return a.Log
}

func (a *Application) metrics() metrics.Metrics {
	if a.Metrics == nil {
		return metrics.Default
	}
	return a.Metrics
}

func (a *Application) tracer() opentracing.Tracer {
	if a.Tracer == nil {
		return &opentracing.NoopTracer{}
	}
	return a.Tracer
}

// do runs f with a new client, measuring and tracing it as op.
func (a *Application) do(ctx context.Context, op string, f func(context.Context, net.Client) error) error {
	m := a.metrics()
	start := time.Now()
	defer m.MeasureSince("probe."+op, start)

	span, ctx := opentracing.StartSpanFromContextWithTracer(ctx, a.tracer(), "kvprobe."+op)
	defer span.Finish()
	ext.SpanKindRPCClient.Set(span)
	ext.DBType.Set(span, "redis")

	err := a.run(ctx, span, f)
	if err != nil {
		ext.Error.Set(span, true)
		span.LogKV("event", "error", "message", err.Error())
		m.IncCounter("probe." + op + ".failure")
		return fmt.Errorf("%s failed: %w", op, err)
	}

	m.IncCounter("probe." + op + ".success")
	return nil
}

func (a *Application) run(ctx context.Context, span opentracing.Span, f func(context.Context, net.Client) error) error {
	opts, err := a.clientOptions()
	if err != nil {
		return err
	}
	span.SetTag("store.address", opts.Addr)

	newClient := a.newClient
	if newClient == nil {
		newClient = net.NewClient
	}

	cli, err := newClient(opts)
	if err != nil {
		return err
	}
	defer cli.Close()

	if err := f(ctx, cli); err != nil {
		return fmt.Errorf("store %s: %w", opts.Addr, err)
	}
	return nil
}

// RoundTrip runs SET key value, then GET key, and returns the value
// read. Errors of either command are returned as they are, without
// retrying.
func (a *Application) RoundTrip(ctx context.Context, key, value string) (string, error) {
	var got string
	err := a.do(ctx, opRoundTrip, func(ctx context.Context, cli net.Client) error {
		if err := cli.Set(ctx, key, value); err != nil {
			return err
		}

		var err error
		got, err = cli.Get(ctx, key)
		return err
	})
	return got, err
}

// Info returns the fields of the INFO command, like "executable" or
// "redis_version".
func (a *Application) Info(ctx context.Context, sections ...string) (map[string]string, error) {
	var info map[string]string
	err := a.do(ctx, opInfo, func(ctx context.Context, cli net.Client) error {
		s, err := cli.Info(ctx, sections...)
		if err != nil {
			return err
		}

		info = net.ParseInfo(s)
		return nil
	})
	return info, err
}

// Ping checks that the store accepts connections and commands.
func (a *Application) Ping(ctx context.Context) error {
	return a.do(ctx, opPing, func(ctx context.Context, cli net.Client) error {
		return cli.Ping(ctx)
	})
}
