package kvprobe

import (
	"context"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swappiehq/kvprobe/net"
	"github.com/swappiehq/kvprobe/net/storetest"
)

func TestRoundTripInRunningContainer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping store container test in short mode")
	}

	for _, e := range storetest.Engines {
		for _, driver := range []string{net.DriverGoRedis, net.DriverValkey} {
			t.Run(e.Name+"/"+driver, func(t *testing.T) {
				ep := session.Endpoint(t, e)

				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				app := &Application{StorageURI: ep.URI(), Driver: driver}
				got, err := app.RoundTrip(ctx, "foo", "bar")
				require.NoError(t, err)
				assert.Equal(t, "bar", got)
			})
		}
	}
}

func TestProbeInRunningRedisContainer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping store container test in short mode")
	}

	ep := session.Endpoint(t, storetest.Redis)

	got, err := Probe(context.Background(), ep, "foo", "bar")
	require.NoError(t, err)
	assert.Equal(t, "bar", got)
}

func TestExecutableInsideRunningContainer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping store container test in short mode")
	}

	for _, e := range storetest.Engines {
		t.Run(e.Name, func(t *testing.T) {
			ep := session.Endpoint(t, e)

			info, err := (&Application{StorageURI: ep.URI()}).Info(context.Background())
			require.NoError(t, err)

			// the path depends on the working directory of the image
			assert.Equal(t, e.Executable, path.Base(info["executable"]))
		})
	}
}

func TestRoundTripWithPassword(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping store container test in short mode")
	}
	const password = "pass"

	ep, done := storetest.NewTestRedisWithPassword(t, password)
	defer done()

	for _, driver := range []string{net.DriverGoRedis, net.DriverValkey} {
		t.Run(driver, func(t *testing.T) {
			app := &Application{StorageURI: ep.URI(), Driver: driver, Password: password}
			got, err := app.RoundTrip(context.Background(), "foo", "bar")
			require.NoError(t, err)
			assert.Equal(t, "bar", got)

			wrong := &Application{StorageURI: ep.URI(), Driver: driver, Password: "wrong"}
			_, err = wrong.RoundTrip(context.Background(), "foo", "bar")
			assert.Error(t, err)
		})
	}
}

func TestRunAgainstAllEngines(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping store container test in short mode")
	}

	var uris []string
	for _, e := range storetest.Engines {
		uris = append(uris, session.Endpoint(t, e).URI())
	}

	results, err := Run(context.Background(), Options{
		URIs:        uris,
		Info:        true,
		WaitTimeout: 10 * time.Second,
	})
	require.NoError(t, err)
	require.Len(t, results, len(uris))

	for i, r := range results {
		assert.Equal(t, uris[i], r.URI)
		assert.Equal(t, DefaultValue, r.Value)
		assert.Equal(t, storetest.Engines[i].Executable, path.Base(r.Info["executable"]))
	}
}
