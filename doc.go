/*
Package kvprobe checks that a redis compatible key-value store works, by
writing a key and reading it back.

The store is addressed by a URI, like redis://127.0.0.1:6379. Redis,
KeyDB and Valkey are supported, through either the go-redis or the
valkey-go client, see the net package.

# Probe

The simplest use is Probe, which connects, runs SET followed by GET,
and returns the value read:

	v, err := kvprobe.Probe(ctx, net.Endpoint{Host: "127.0.0.1", Port: 6379}, "foo", "bar")

Application does the same for a configured store, and additionally
records metrics and tracing spans for every operation. Its Info method
returns the parsed output of the INFO command.

# Runner

Run probes a list of stores concurrently, after waiting for each of them
to accept connections. The kvprobe command is a thin wrapper around it.

# Tests

The tests of this package start the stores in ephemeral containers with
the net/storetest package. They need a docker daemon, found through
DOCKER_HOST or the default socket. With -short, only the tests using an
in-process store are run:

	go test -short ./...
*/
package kvprobe
