package net

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/valkey-io/valkey-go"
	"github.com/valkey-io/valkey-go/valkeyhook"

	"github.com/swappiehq/kvprobe/logging"
)

func createValkeyClient(opt *ClientOptions) (valkey.Client, error) {
	clientOptions := valkey.ClientOption{
		Username:    opt.Username,
		Password:    opt.Password,
		InitAddress: []string{opt.Addr},
		SelectDB:    opt.Database,
		TLSConfig:   opt.TLSConfig,

		Dialer:           net.Dialer{Timeout: opt.DialTimeout},
		ConnWriteTimeout: opt.WriteTimeout,

		ForceSingleClient: true,
		DisableRetry:      true,

		// client side caching needs RESP3 and CLIENT TRACKING, which
		// not every redis compatible store supports
		DisableCache: true,
	}
	cli, err := valkey.NewClient(clientOptions)
	if err != nil {
		return nil, err
	}

	if opt.Hook != nil {
		cli = valkeyhook.WithHook(cli, opt.Hook)
	}
	return cli, nil
}

// ValkeyClient is a wrapper around a single node valkey.Client. Unlike
// the RedisClient, it connects already when created, so that a store
// that is not reachable fails NewValkeyClient.
type ValkeyClient struct {
	client valkey.Client
	log    logging.Logger
	addr   string
	once   sync.Once
}

func NewValkeyClient(o *ClientOptions) (*ValkeyClient, error) {
	opt := o.withDefaults()

	cli, err := createValkeyClient(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client for %s: %w", opt.Addr, err)
	}

	if opt.ConnMetricsInterval > 0 {
		opt.Log.Debugf("Pool metrics are not supported by the valkey client, ignoring interval %s", opt.ConnMetricsInterval)
	}

	return &ValkeyClient{
		client: cli,
		log:    opt.Log,
		addr:   opt.Addr,
	}, nil
}

func (vc *ValkeyClient) Ping(ctx context.Context) error {
	return vc.client.Do(ctx, vc.client.B().Ping().Build()).Error()
}

func (vc *ValkeyClient) Set(ctx context.Context, key, value string) error {
	return vc.client.Do(ctx, vc.client.B().Set().Key(key).Value(value).Build()).Error()
}

func (vc *ValkeyClient) Get(ctx context.Context, key string) (string, error) {
	val, err := vc.client.Do(ctx, vc.client.B().Get().Key(key).Build()).ToString()
	if valkey.IsValkeyNil(err) {
		return "", ErrNotFound
	}
	return val, err
}

func (vc *ValkeyClient) Info(ctx context.Context, sections ...string) (string, error) {
	if len(sections) == 0 {
		return vc.client.Do(ctx, vc.client.B().Info().Build()).ToString()
	}
	return vc.client.Do(ctx, vc.client.B().Info().Section(sections...).Build()).ToString()
}

// Close closes the underlying connections. It is safe to call Close
// more than once.
func (vc *ValkeyClient) Close() error {
	vc.once.Do(func() {
		vc.log.Debugf("Closing valkey client for %s", vc.addr)
		vc.client.Close()
	})
	return nil
}
