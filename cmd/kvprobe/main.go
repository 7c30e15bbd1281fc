/*
This command writes a value to one or more Redis compatible stores,
reads it back and verifies it.

For the list of command line options, run:

	kvprobe -help

Example:

	kvprobe -uri=redis://127.0.0.1:6379 -info

For every store one line is printed with the uri and the value read. The
command exits with a non-zero status when any of the stores could not be
probed.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/swappiehq/kvprobe"
	"github.com/swappiehq/kvprobe/config"
	"github.com/swappiehq/kvprobe/logging"
	"github.com/swappiehq/kvprobe/metrics"
	"github.com/swappiehq/kvprobe/tracing"
)

const supportShutdownTimeout = 5 * time.Second

func newSupportServer(address string, m metrics.Metrics) *http.Server {
	handler := http.NewServeMux()
	m.RegisterHandler("/metrics", handler)
	return &http.Server{Addr: address, Handler: handler}
}

func printResults(w io.Writer, results []kvprobe.Result) {
	for _, r := range results {
		if r.Info == nil {
			fmt.Fprintf(w, "%s\t%s\n", r.URI, r.Value)
			continue
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.URI, r.Value, r.Info["executable"], r.Version())
	}
}

func initLogging(cfg *config.Config) {
	logging.Init(logging.Options{
		ApplicationLogPrefix:      cfg.ApplicationLogPrefix,
		ApplicationLogJSONEnabled: cfg.ApplicationLogJSONEnabled,
	})
	log.SetLevel(cfg.ApplicationLogLevel)
}

func run(ctx context.Context, cfg *config.Config, w io.Writer) error {
	m := metrics.NewPrometheus(metrics.Options{
		Prefix:               cfg.MetricsPrefix,
		EnableRuntimeMetrics: cfg.EnableRuntimeMetrics,
	})

	if cfg.SupportListener != "" {
		server := newSupportServer(cfg.SupportListener, m)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("Failed to start support listener on %s: %v", cfg.SupportListener, err)
			}
		}()

		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), supportShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(sctx); err != nil {
				log.Error("unable to shut down the support listener: ", err)
			}
		}()
	}

	tracer, closer, err := tracing.InitTracer(cfg.OpenTracingArgs(), m.Registerer())
	if err != nil {
		return err
	}
	defer closer.Close()

	o := cfg.ToOptions()
	o.Log = &logging.DefaultLog{}
	o.Metrics = m
	o.Tracer = tracer

	results, err := kvprobe.Run(ctx, o)
	if err != nil {
		return err
	}

	printResults(w, results)
	return nil
}

func main() {
	cfg := config.NewConfig()
	if err := cfg.Parse(); err != nil {
		log.Fatalf("Error processing config: %s", err)
	}

	initLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		stop()
		log.Fatal(err)
	}
}
