package tracing

import (
	"testing"

	ot "github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracer(t *testing.T) {
	for _, tt := range []struct {
		name    string
		opts    []string
		wantErr error
	}{
		{name: "noop", opts: []string{"noop"}},
		{name: "jaeger", opts: []string{"jaeger", "sampler-type=const"}},
		{name: "basic", opts: []string{"basic", "flush-interval=10ms"}},
		{name: "no options", wantErr: ErrMissingArguments},
		{name: "unsupported", opts: []string{"zipkin"}, wantErr: ErrUnsupportedTracer},
	} {
		t.Run(tt.name, func(t *testing.T) {
			tracer, closer, err := InitTracer(tt.opts, prometheus.NewRegistry())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			tracer.StartSpan("kvprobe.ping").Finish()
			assert.NoError(t, closer.Close())
		})
	}
}

func TestInitTracerInvalidOptions(t *testing.T) {
	_, _, err := InitTracer([]string{"jaeger", "sampler-type=always"}, nil)
	assert.Error(t, err)

	_, _, err = InitTracer([]string{"basic", "sample-modulo=none"}, nil)
	assert.Error(t, err)
}

func TestInitTracerNoop(t *testing.T) {
	tracer, _, err := InitTracer([]string{"noop"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ot.NoopTracer{}, tracer)
}
