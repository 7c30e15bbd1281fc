package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/swappiehq/kvprobe/net"
)

// Session shares store containers between the tests of a package. One
// container per engine is started on first use and kept until Close,
// typically called from TestMain:
//
//	var session = storetest.NewSession(storetest.DefaultProject)
//
//	func TestMain(m *testing.M) {
//		code := m.Run()
//		session.Close()
//		os.Exit(code)
//	}
type Session struct {
	project string

	mu     sync.Mutex
	stores map[string]*sessionStore
	closed bool
}

type sessionStore struct {
	store *Store
	err   error
}

var errSessionClosed = errors.New("store session closed")

func NewSession(project string) *Session {
	if project == "" {
		project = DefaultProject
	}
	return &Session{
		project: project,
		stores:  make(map[string]*sessionStore),
	}
}

// Start returns the endpoint of the engine's container, starting it if
// needed. A failed start is remembered, later calls fail with the same
// error instead of trying again.
func (s *Session) Start(ctx context.Context, e Engine) (net.Endpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return net.Endpoint{}, errSessionClosed
	}

	if ss, ok := s.stores[e.Name]; ok {
		if ss.err != nil {
			return net.Endpoint{}, ss.err
		}
		return ss.store.Endpoint, nil
	}

	store, err := Start(ctx, Options{Engine: e, Project: s.project})
	s.stores[e.Name] = &sessionStore{store: store, err: err}
	if err != nil {
		return net.Endpoint{}, err
	}
	return store.Endpoint, nil
}

// Endpoint is like Start, but fails the test on error.
func (s *Session) Endpoint(t testing.TB, e Engine) net.Endpoint {
	t.Helper()
	start := time.Now()

	ep, err := s.Start(context.Background(), e)
	if err != nil {
		t.Fatalf("Failed to get %s server: %v", e.Name, err)
	}

	t.Logf("Using %s server at %s (%v)", e.Name, ep, time.Since(start))
	return ep
}

// Close terminates all containers started by the session. The session
// can not be used afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var errs []error
	for name, ss := range s.stores {
		if ss.store != nil {
			errs = append(errs, ss.store.Terminate(ctx))
		}
		delete(s.stores, name)
	}
	return errors.Join(errs...)
}
