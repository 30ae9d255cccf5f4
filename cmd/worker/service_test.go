package main

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/afrifood/afrifood-backend/pkg/logger"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubWatcher struct {
	started atomic.Bool
	stopped atomic.Bool
	err     error
}

func (w *stubWatcher) Start(context.Context) error {
	if w.err != nil {
		return w.err
	}
	w.started.Store(true)
	return nil
}

func (w *stubWatcher) Stop() { w.stopped.Store(true) }

type stubScheduler struct {
	onceCalls int
}

func (s *stubScheduler) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (s *stubScheduler) RunOnce(context.Context) error {
	s.onceCalls++
	return nil
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "worker-test", Output: io.Discard})
}

func TestServiceRunStopsCleanlyOnCancel(t *testing.T) {
	w := &stubWatcher{}
	svc, err := NewService(ServiceParams{
		Logger:  quietLogger(),
		Deps:    map[string]pinger{"db": stubPinger{}},
		Watcher: w,
		Cron:    &stubScheduler{},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.Eventually(t, func() bool { return w.started.Load() }, time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
	require.True(t, w.stopped.Load())
}

func TestServiceRunFailsOnUnreadyDependency(t *testing.T) {
	w := &stubWatcher{}
	svc, err := NewService(ServiceParams{
		Logger:  quietLogger(),
		Deps:    map[string]pinger{"redis": stubPinger{err: errors.New("down")}},
		Watcher: w,
		Cron:    &stubScheduler{},
	})
	require.NoError(t, err)

	err = svc.Run(context.Background())
	require.ErrorContains(t, err, "redis ping failed")
	require.False(t, w.started.Load())
}

func TestServiceRunSurfacesWatcherStartError(t *testing.T) {
	svc, err := NewService(ServiceParams{
		Logger:  quietLogger(),
		Watcher: &stubWatcher{err: errors.New("store down")},
		Cron:    &stubScheduler{},
	})
	require.NoError(t, err)
	require.ErrorContains(t, svc.Run(context.Background()), "start notification watcher")
}

func TestServiceRunOnceSkipsWatcher(t *testing.T) {
	w := &stubWatcher{}
	sched := &stubScheduler{}
	svc, err := NewService(ServiceParams{Logger: quietLogger(), Watcher: w, Cron: sched})
	require.NoError(t, err)

	require.NoError(t, svc.RunOnce(context.Background()))
	require.Equal(t, 1, sched.onceCalls)
	require.False(t, w.started.Load())
}

func TestNewServiceValidates(t *testing.T) {
	_, err := NewService(ServiceParams{Watcher: &stubWatcher{}, Cron: &stubScheduler{}})
	require.Error(t, err)
	_, err = NewService(ServiceParams{Logger: quietLogger(), Cron: &stubScheduler{}})
	require.Error(t, err)
	_, err = NewService(ServiceParams{Logger: quietLogger(), Watcher: &stubWatcher{}})
	require.Error(t, err)
}
