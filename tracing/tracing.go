/*
Package tracing creates the opentracing tracer used by the probe.

The tracer is selected by the first element of the options, the
remaining elements are passed to the tracer implementation:

	noop
	jaeger service-name=kvprobe sampler-type=const local-agent=127.0.0.1:6831
	basic sample-modulo=1 flush-interval=1s

Supported tracers are noop, jaeger and basic. The basic tracer logs the
sampled spans and is meant for debugging only.
*/
package tracing

import (
	"errors"
	"fmt"
	"io"

	ot "github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/swappiehq/kvprobe/tracing/tracers/basic"
	"github.com/swappiehq/kvprobe/tracing/tracers/jaeger"
)

var (
	// ErrUnsupportedTracer is returned when an unsupported opentracing
	// implementation was requested as tracer
	ErrUnsupportedTracer = errors.New("invalid argument, not a supported tracer")

	// ErrMissingArguments is returned when an empty list is passed to InitTracer()
	ErrMissingArguments = errors.New("no arguments passed")
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// InitTracer creates the tracer named by opts[0]. The returned closer
// flushes and stops the tracer. Tracer metrics are registered with reg
// when it is not nil.
func InitTracer(opts []string, reg prometheus.Registerer) (ot.Tracer, io.Closer, error) {
	if len(opts) == 0 {
		return nil, nil, ErrMissingArguments
	}

	impl, opts := opts[0], opts[1:]
	switch impl {
	case "noop":
		return &ot.NoopTracer{}, nopCloser{}, nil
	case "jaeger":
		t, c, err := jaeger.InitTracer(opts, reg)
		if err != nil {
			return nil, nil, fmt.Errorf("jaeger tracer: %w", err)
		}
		return t, c, nil
	case "basic":
		t, err := basic.InitTracer(opts)
		if err != nil {
			return nil, nil, fmt.Errorf("basic tracer: %w", err)
		}
		return t, t, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedTracer, impl)
	}
}
