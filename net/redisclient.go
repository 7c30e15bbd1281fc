package net

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/swappiehq/kvprobe/logging"
	"github.com/swappiehq/kvprobe/metrics"
)

// RedisClient is a wrapper around a single node redis.Client. It logs to
// the logging.Logger interface, that you can pass, and optionally
// publishes the connection pool statistics as metrics.
type RedisClient struct {
	client        *redis.Client
	log           logging.Logger
	metrics       metrics.Metrics
	metricsPrefix string
	options       *ClientOptions
	quit          chan struct{}
	once          sync.Once
}

// NewRedisClient creates the client from the options. It does not
// connect, connections are dialed on the first command.
func NewRedisClient(o *ClientOptions) *RedisClient {
	opt := o.withDefaults()

	r := &RedisClient{
		client: redis.NewClient(&redis.Options{
			Addr:         opt.Addr,
			Username:     opt.Username,
			Password:     opt.Password,
			DB:           opt.Database,
			TLSConfig:    opt.TLSConfig,
			DialTimeout:  opt.DialTimeout,
			ReadTimeout:  opt.ReadTimeout,
			WriteTimeout: opt.WriteTimeout,
			PoolTimeout:  opt.DialTimeout,
			// -1 disables retries
			MaxRetries: -1,
		}),
		log:           opt.Log,
		metrics:       opt.Metrics,
		metricsPrefix: opt.MetricsPrefix,
		options:       opt,
		quit:          make(chan struct{}),
	}

	if opt.ConnMetricsInterval > 0 {
		r.startMetricsCollection()
	}
	return r
}

func (r *RedisClient) startMetricsCollection() {
	r.log.Debugf("Start collecting redis pool metrics for %s every %s", r.options.Addr, r.options.ConnMetricsInterval)
	go func() {
		ticker := time.NewTicker(r.options.ConnMetricsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.updatePoolMetrics()
			case <-r.quit:
				return
			}
		}
	}()
}

func (r *RedisClient) updatePoolMetrics() {
	stats := r.client.PoolStats()
	r.metrics.UpdateGauge(r.metricsPrefix+"hits", float64(stats.Hits))
	r.metrics.UpdateGauge(r.metricsPrefix+"idleconns", float64(stats.IdleConns))
	r.metrics.UpdateGauge(r.metricsPrefix+"misses", float64(stats.Misses))
	r.metrics.UpdateGauge(r.metricsPrefix+"staleconns", float64(stats.StaleConns))
	r.metrics.UpdateGauge(r.metricsPrefix+"timeouts", float64(stats.Timeouts))
	r.metrics.UpdateGauge(r.metricsPrefix+"totalconns", float64(stats.TotalConns))
}

func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisClient) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return val, err
}

func (r *RedisClient) Info(ctx context.Context, sections ...string) (string, error) {
	return r.client.Info(ctx, sections...).Result()
}

// Close stops the metrics collection, publishes the final pool
// statistics and closes the connection pool. It is safe to call Close
// more than once.
func (r *RedisClient) Close() error {
	var err error
	r.once.Do(func() {
		close(r.quit)
		r.updatePoolMetrics()
		err = r.client.Close()
	})
	return err
}
