package net

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	DefaultWaitTimeout = 60 * time.Second
	DefaultWaitPause   = 100 * time.Millisecond
)

var ErrWaitTimeout = errors.New("timeout reached while waiting on service")

// WaitUntilResponsive calls check until it returns nil, pausing between
// the attempts. It fails with ErrWaitTimeout, wrapping the last error of
// check, when the timeout is reached, or with the context error when
// ctx is done earlier.
func WaitUntilResponsive(ctx context.Context, check func(context.Context) error, timeout, pause time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	if pause <= 0 {
		pause = DefaultWaitPause
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var last error
	_, err := backoff.Retry(waitCtx, func() (struct{}, error) {
		last = check(waitCtx)
		return struct{}{}, last
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(pause)),
		backoff.WithMaxElapsedTime(timeout),
	)
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w after %s: %w", ErrWaitTimeout, timeout, last)
}

// WaitForStore waits until the store at o.Addr answers PING, using a new
// client for every attempt.
func WaitForStore(ctx context.Context, o *ClientOptions, timeout, pause time.Duration) error {
	opt := o.withDefaults()

	attempts := 0
	err := WaitUntilResponsive(ctx, func(ctx context.Context) error {
		attempts++
		cli, err := NewClient(opt)
		if err != nil {
			return err
		}
		defer cli.Close()

		return cli.Ping(ctx)
	}, timeout, pause)

	if err != nil {
		return fmt.Errorf("store %s is not responsive: %w", opt.Addr, err)
	}

	opt.Log.WithFields(map[string]interface{}{"address": opt.Addr}).Debugf("Store responsive after %d attempts", attempts)
	return nil
}
