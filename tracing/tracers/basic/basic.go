// Package basic provides an in-memory tracer that logs the sampled spans.
// Do not use it in production.
package basic

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	basic "github.com/opentracing/basictracer-go"
	opentracing "github.com/opentracing/opentracing-go"
	log "github.com/sirupsen/logrus"
)

const defaultFlushInterval = time.Second

// spanBuffer keeps the sampled spans until the next flush.
type spanBuffer struct {
	mu    sync.Mutex
	spans []basic.RawSpan
}

func (b *spanBuffer) RecordSpan(s basic.RawSpan) {
	if !s.Context.Sampled {
		return
	}

	b.mu.Lock()
	b.spans = append(b.spans, s)
	b.mu.Unlock()
}

// take returns the buffered spans and empties the buffer.
func (b *spanBuffer) take() []basic.RawSpan {
	b.mu.Lock()
	defer b.mu.Unlock()
	spans := b.spans
	b.spans = nil
	return spans
}

// Tracer records spans in memory and logs them periodically.
type Tracer struct {
	opentracing.Tracer
	recorder *spanBuffer
	log      log.FieldLogger
	quit     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// InitTracer creates a Tracer from options of the form key=value.
func InitTracer(opts []string) (*Tracer, error) {
	var (
		dropAllLogs    bool
		sampleModulo   uint64 = 1
		maxLogsPerSpan        = 0
		flushInterval         = defaultFlushInterval
		err            error
	)

	for _, o := range opts {
		k, v, _ := strings.Cut(o, "=")
		switch k {
		case "drop-all-logs":
			dropAllLogs = true

		case "sample-modulo":
			if v == "" {
				return nil, missingArg(k)
			}
			sampleModulo, err = strconv.ParseUint(v, 10, 64)
			if err != nil {
				return nil, invalidArg(k, err)
			}
			if sampleModulo == 0 {
				return nil, invalidArg(k, fmt.Errorf("must be positive"))
			}

		case "max-logs-per-span":
			if v == "" {
				return nil, missingArg(k)
			}
			maxLogsPerSpan, err = strconv.Atoi(v)
			if err != nil {
				return nil, invalidArg(k, err)
			}

		case "flush-interval":
			if v == "" {
				return nil, missingArg(k)
			}
			flushInterval, err = time.ParseDuration(v)
			if err != nil {
				return nil, invalidArg(k, err)
			}
			if flushInterval <= 0 {
				return nil, invalidArg(k, fmt.Errorf("must be positive"))
			}

		default:
			return nil, fmt.Errorf("unknown option %s", k)
		}
	}

	recorder := &spanBuffer{}
	t := &Tracer{
		Tracer: basic.NewWithOptions(basic.Options{
			DropAllLogs:    dropAllLogs,
			ShouldSample:   func(traceID uint64) bool { return traceID%sampleModulo == 0 },
			MaxLogsPerSpan: maxLogsPerSpan,
			Recorder:       recorder,
		}),
		recorder: recorder,
		log:      log.WithField("tracer", "basic"),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	go t.run(flushInterval)
	return t, nil
}

func (t *Tracer) run(interval time.Duration) {
	defer close(t.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.flush()
		case <-t.quit:
			t.flush()
			return
		}
	}
}

func (t *Tracer) flush() {
	for _, s := range t.recorder.take() {
		t.log.WithFields(log.Fields{
			"trace":    strconv.FormatUint(s.Context.TraceID, 16),
			"span":     strconv.FormatUint(s.Context.SpanID, 16),
			"parent":   strconv.FormatUint(s.ParentSpanID, 16),
			"duration": s.Duration,
			"tags":     s.Tags,
		}).Info(s.Operation)
	}
}

// Close logs the remaining spans and stops the tracer.
func (t *Tracer) Close() error {
	t.once.Do(func() {
		close(t.quit)
	})
	<-t.done
	return nil
}

func missingArg(opt string) error {
	return fmt.Errorf("missing argument for %s option", opt)
}

func invalidArg(opt string, err error) error {
	return fmt.Errorf("invalid argument for %s option: %w", opt, err)
}
