// Package storetest starts redis compatible stores in ephemeral
// containers for tests.
//
// Every container is labeled with the project name, so that containers
// of one test run can be told apart from others. Containers of aborted
// runs are removed by the testcontainers reaper.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/swappiehq/kvprobe/net"
)

const (
	DefaultProject = "kvprobe-test"

	// ProjectLabel is set to the project name on every container.
	ProjectLabel = "kvprobe.project"
	// EngineLabel is set to the engine name on every container.
	EngineLabel = "kvprobe.engine"

	storePort = "6379"
)

// Engine describes how to run one redis compatible store.
type Engine struct {
	Name  string
	Image string

	// Executable is the base name of the server binary, as reported
	// in the executable field of INFO.
	Executable string

	// Command replaces the image command when arguments have to be
	// passed to the server. The arguments follow it.
	Command []string

	// ReadyLog is the log line the server prints when it accepts
	// connections. When empty, only the mapped port is awaited.
	ReadyLog string
}

var (
	Redis = Engine{
		Name:       "redis",
		Image:      "redis:6-alpine",
		Executable: "redis-server",
		ReadyLog:   "* Ready to accept connections",
	}

	KeyDB = Engine{
		Name:       "keydb",
		Image:      "eqalpha/keydb:latest",
		Executable: "keydb-server",
		// the default config binds to all interfaces
		Command: []string{"keydb-server", "/etc/keydb/keydb.conf"},
	}

	Valkey = Engine{
		Name:       "valkey",
		Image:      "valkey/valkey:8-alpine",
		Executable: "valkey-server",
		ReadyLog:   "* Ready to accept connections",
	}

	// Engines lists all known engines.
	Engines = []Engine{Redis, KeyDB, Valkey}
)

// Options of a store container.
type Options struct {
	Engine Engine

	// Password enables authentication with --requirepass
	Password string

	// Project labels the container, defaults to DefaultProject
	Project string

	// StartupTimeout bounds starting the container and waiting for
	// the store to answer PING, defaults to 2 minutes. The first
	// start takes longer because the image is pulled.
	StartupTimeout time.Duration

	// WaitTimeout and WaitPause configure the readiness wait, see
	// net.WaitUntilResponsive.
	WaitTimeout time.Duration
	WaitPause   time.Duration
}

// Store is a running store container.
type Store struct {
	Engine   Engine
	Endpoint net.Endpoint

	container testcontainers.Container
}

func (o Options) command() []string {
	if o.Password == "" {
		return nil
	}
	args := append([]string{}, o.Engine.Command...)
	return append(args, "--requirepass", o.Password)
}

func (o Options) waitStrategy() (wait.Strategy, error) {
	port, err := nat.NewPort("tcp", storePort)
	if err != nil {
		return nil, fmt.Errorf("failed to get new nat port: %w", err)
	}

	if o.Engine.ReadyLog == "" {
		return wait.NewHostPortStrategy(string(port)), nil
	}

	return wait.ForAll(
		wait.ForLog(o.Engine.ReadyLog),
		wait.NewHostPortStrategy(string(port)),
	), nil
}

// Start starts a store container and waits until the store answers
// PING. On error, the container is terminated.
func Start(ctx context.Context, o Options) (*Store, error) {
	if o.Engine.Image == "" {
		return nil, fmt.Errorf("no image for engine %q", o.Engine.Name)
	}
	if o.Project == "" {
		o.Project = DefaultProject
	}
	if o.StartupTimeout == 0 {
		o.StartupTimeout = 2 * time.Minute
	}

	ctx, cancel := context.WithTimeout(ctx, o.StartupTimeout)
	defer cancel()

	waitFor, err := o.waitStrategy()
	if err != nil {
		return nil, err
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        o.Engine.Image,
			Cmd:          o.command(),
			ExposedPorts: []string{storePort + "/tcp"},
			Labels: map[string]string{
				ProjectLabel: o.Project,
				EngineLabel:  o.Engine.Name,
			},
			WaitingFor: waitFor,
		},
		Started: true,
	})
	if err != nil {
		if container != nil {
			_ = container.Terminate(context.Background())
		}
		return nil, fmt.Errorf("failed to start %s server: %w", o.Engine.Name, err)
	}

	s := &Store{Engine: o.Engine, container: container}
	if err := s.init(ctx, o); err != nil {
		_ = s.Terminate(context.Background())
		return nil, err
	}

	return s, nil
}

func (s *Store) init(ctx context.Context, o Options) error {
	address, err := s.container.Endpoint(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to get %s address: %w", s.Engine.Name, err)
	}

	s.Endpoint, err = net.ParseEndpoint(address)
	if err != nil {
		return err
	}

	return net.WaitForStore(ctx, &net.ClientOptions{
		Addr:     s.Endpoint.Address(),
		Password: o.Password,
	}, o.WaitTimeout, o.WaitPause)
}

// Terminate stops and removes the container.
func (s *Store) Terminate(ctx context.Context) error {
	return s.container.Terminate(ctx)
}

// NewTestStore starts a store container for the test. It fails the test
// when the store does not become responsive. The returned func
// terminates the container.
func NewTestStore(t testing.TB, o Options) (endpoint net.Endpoint, done func()) {
	t.Helper()
	start := time.Now()

	s, err := Start(context.Background(), o)
	if err != nil {
		t.Fatalf("Failed to start %s server: %v", o.Engine.Name, err)
	}

	t.Logf("Started %s server at %s in %v", s.Engine.Name, s.Endpoint, time.Since(start))

	done = func() {
		t.Logf("Stopping %s server at %s", s.Engine.Name, s.Endpoint)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.Terminate(ctx); err != nil {
			t.Fatalf("Failed to stop %s: %v", s.Engine.Name, err)
		}
	}
	return s.Endpoint, done
}

func NewTestRedis(t testing.TB) (endpoint net.Endpoint, done func()) {
	t.Helper()
	return NewTestStore(t, Options{Engine: Redis})
}

func NewTestRedisWithPassword(t testing.TB, password string) (endpoint net.Endpoint, done func()) {
	t.Helper()
	return NewTestStore(t, Options{Engine: Redis, Password: password})
}

func NewTestKeyDB(t testing.TB) (endpoint net.Endpoint, done func()) {
	t.Helper()
	return NewTestStore(t, Options{Engine: KeyDB})
}

func NewTestValkey(t testing.TB) (endpoint net.Endpoint, done func()) {
	t.Helper()
	return NewTestStore(t, Options{Engine: Valkey})
}
