package jaeger

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/uber/jaeger-client-go/config"
	"github.com/uber/jaeger-lib/metrics/prometheus"
)

const defServiceName = "kvprobe"

// InitTracer creates a jaeger tracer from options of the form key=value.
// The tracer metrics are registered with reg, or with the default
// prometheus registry when reg is nil.
func InitTracer(opts []string, reg prom.Registerer) (opentracing.Tracer, io.Closer, error) {
	conf, err := parseOptions(opts)
	if err != nil {
		return nil, nil, err
	}

	var factory *prometheus.Factory
	if reg != nil {
		factory = prometheus.New(prometheus.WithRegisterer(reg))
	} else {
		factory = prometheus.New()
	}

	return conf.NewTracer(config.Metrics(factory))
}

func parseOptions(opts []string) (*config.Configuration, error) {
	conf := &config.Configuration{
		ServiceName: defServiceName,
		Sampler:     &config.SamplerConfig{},
		Reporter:    &config.ReporterConfig{},
	}

	for _, o := range opts {
		k, v, hasValue := strings.Cut(o, "=")
		switch k {
		case "service-name":
			if v != "" {
				conf.ServiceName = v
			}

		case "use-rpc-metrics":
			conf.RPCMetrics = true

		case "sampler-type":
			if !hasValue {
				return nil, missingArg(k)
			}

			typ, param, hasParam := strings.Cut(v, ":")
			conf.Sampler.Type = typ
			switch typ {
			case "const":
				conf.Sampler.Param = 1
			case "probabilistic", "rateLimiting", "remote":
				if !hasParam {
					return nil, missingArg(k)
				}

				p, err := strconv.ParseFloat(param, 64)
				if err != nil {
					return nil, invalidArg(k, err)
				}
				conf.Sampler.Param = p
			default:
				return nil, invalidArg(k, errors.New("invalid sampler type"))
			}

		case "sampler-url":
			if !hasValue {
				return nil, missingArg(k)
			}
			conf.Sampler.SamplingServerURL = v

		case "reporter-queue":
			if !hasValue {
				return nil, missingArg(k)
			}

			q, err := strconv.Atoi(v)
			if err != nil {
				return nil, invalidArg(k, err)
			}
			conf.Reporter.QueueSize = q

		case "reporter-interval":
			if !hasValue {
				return nil, missingArg(k)
			}

			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, invalidArg(k, err)
			}
			conf.Reporter.BufferFlushInterval = d

		case "local-agent":
			if !hasValue {
				return nil, missingArg(k)
			}
			conf.Reporter.LocalAgentHostPort = v

		case "tag":
			if !hasValue {
				return nil, missingArg(k)
			}

			tk, tv, ok := strings.Cut(v, "=")
			if !ok {
				return nil, fmt.Errorf("missing value for tag %s", tk)
			}
			conf.Tags = append(conf.Tags, opentracing.Tag{Key: tk, Value: tv})

		default:
			return nil, fmt.Errorf("unknown option %s", k)
		}
	}

	return conf, nil
}

func missingArg(opt string) error {
	return fmt.Errorf("missing argument for %s option", opt)
}

func invalidArg(opt string, err error) error {
	return fmt.Errorf("invalid argument for %s option: %w", opt, err)
}
