package net_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go"
	"github.com/valkey-io/valkey-go/valkeyhook"

	"github.com/swappiehq/kvprobe/net"
	"github.com/swappiehq/kvprobe/net/storetest"
)

// commandHook records the commands sent with Do. Only Do is used by
// the ValkeyClient, the embedded nil Hook covers the rest.
type commandHook struct {
	valkeyhook.Hook

	mu       sync.Mutex
	commands []string
}

func (h *commandHook) Do(client valkey.Client, ctx context.Context, cmd valkey.Completed) valkey.ValkeyResult {
	h.mu.Lock()
	h.commands = append(h.commands, strings.Join(cmd.Commands(), " "))
	h.mu.Unlock()

	return client.Do(ctx, cmd)
}

func TestValkeyClientRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping store container test in short mode")
	}

	ep, done := storetest.NewTestValkey(t)
	defer done()

	hook := &commandHook{}
	cli, err := net.NewValkeyClient(&net.ClientOptions{
		Driver: net.DriverValkey,
		Addr:   ep.Address(),
		Hook:   hook,
	})
	require.NoError(t, err)
	defer cli.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, cli.Set(ctx, "foo", "bar"))

	got, err := cli.Get(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, "bar", got)

	_, err = cli.Get(ctx, "missing")
	assert.ErrorIs(t, err, net.ErrNotFound)

	info, err := cli.Info(ctx, "server")
	require.NoError(t, err)
	assert.Contains(t, net.ParseInfo(info), "valkey_version")

	hook.mu.Lock()
	defer hook.mu.Unlock()
	assert.Equal(t, []string{"SET foo bar", "GET foo", "GET missing", "INFO server"}, hook.commands)
}

func TestValkeyClientDatabase(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping store container test in short mode")
	}

	ep, done := storetest.NewTestValkey(t)
	defer done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db1, err := net.NewValkeyClient(&net.ClientOptions{Driver: net.DriverValkey, Addr: ep.Address(), Database: 1})
	require.NoError(t, err)
	defer db1.Close()

	db0, err := net.NewValkeyClient(&net.ClientOptions{Driver: net.DriverValkey, Addr: ep.Address()})
	require.NoError(t, err)
	defer db0.Close()

	require.NoError(t, db1.Set(ctx, "foo", "bar"))

	_, err = db0.Get(ctx, "foo")
	assert.ErrorIs(t, err, net.ErrNotFound)
}
