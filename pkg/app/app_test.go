package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lk2023060901/coinbot/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	mu       sync.Mutex
	started  bool
	stopped  bool
	startErr error
}

func (s *fakeServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
	return s.startErr
}

func (s *fakeServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}

func TestBaseApp_RunAndShutdown(t *testing.T) {
	a := NewBaseApp(WithName("test"), WithLogger(logger.NewNoop()), WithStopTimeout(time.Second))
	srv := &fakeServer{}
	var order []int
	a.AppendServer(srv)
	a.AppendCloser(
		CloserFunc(func() error { order = append(order, 1); return nil }),
		CloserFunc(func() error { order = append(order, 2); return nil }),
	)

	done := make(chan error, 1)
	go func() { done <- a.Run() }()

	require.Eventually(t, func() bool {
		srv.mu.Lock()
		defer srv.mu.Unlock()
		return srv.started
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, a.Shutdown())
	require.NoError(t, <-done)

	assert.True(t, srv.stopped)
	assert.Equal(t, []int{2, 1}, order)
	assert.ErrorIs(t, a.Run(), ErrAppAlreadyRunning)
}

func TestBaseApp_StartFailure(t *testing.T) {
	a := NewBaseApp(WithLogger(logger.NewNoop()))
	boom := errors.New("bind failed")
	a.AppendServer(&fakeServer{startErr: boom})

	err := a.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestBaseApp_CloserErrorsJoined(t *testing.T) {
	a := NewBaseApp(WithLogger(logger.NewNoop()))
	e1 := errors.New("db")
	e2 := errors.New("redis")
	a.AppendCloser(CloserFunc(func() error { return e1 }), CloserFunc(func() error { return e2 }))

	err := a.Shutdown()
	assert.ErrorIs(t, err, e1)
	assert.ErrorIs(t, err, e2)
	assert.NoError(t, a.Shutdown())
}

func TestLifecycle_Uptime(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now := start.Add(90*time.Minute + 1500*time.Millisecond)
	l := NewLifecycleAt("node-1", start, func() time.Time { return now })

	assert.Equal(t, "node-1", l.ID())
	assert.Equal(t, start, l.StartedAt())
	assert.Equal(t, 90*time.Minute+time.Second, l.Uptime())
}

func TestBind(t *testing.T) {
	a := NewBaseApp(WithLogger(logger.NewNoop()))
	srv := &fakeServer{}
	Bind(a, Components{Servers: []Server{srv}})
	assert.Len(t, a.servers, 1)
	assert.Same(t, a.Lifecycle(), ProvideLifecycle(a))
}
