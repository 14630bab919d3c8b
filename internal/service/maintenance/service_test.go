package maintenance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockHistory implements History for testing
type mockHistory struct {
	mu            sync.Mutex
	cleanupCount  int
	cleanupErr    error
	cleanupCalled int
	cleanupMaxAge time.Duration
	markCount     int
	markErr       error
	markCalled    int
}

func (m *mockHistory) CleanupFinishedTasks(olderThan time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanupCalled++
	m.cleanupMaxAge = olderThan
	return m.cleanupCount, m.cleanupErr
}

func (m *mockHistory) MarkInterruptedTasks() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markCalled++
	return m.markCount, m.markErr
}

func (m *mockHistory) calls() (cleanup, mark int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleanupCalled, m.markCalled
}

func runService(t *testing.T, s *Service, wait time.Duration) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx)
	}()

	time.Sleep(wait)
	cancel()
	s.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Start() did not return after Stop()")
	}
}

func TestService_New(t *testing.T) {
	logger := zap.NewNop()
	history := &mockHistory{}

	// Test with nil config (should use defaults)
	s := New(nil, history, logger)
	require.NotNil(t, s)
	assert.Equal(t, time.Hour, s.config.CleanupInterval)
	assert.Equal(t, 7*24*time.Hour, s.config.HistoryMaxAge)

	// Zero fields are defaulted
	s = New(&Config{HistoryMaxAge: time.Hour}, history, logger)
	assert.Equal(t, time.Hour, s.config.CleanupInterval)
	assert.Equal(t, time.Hour, s.config.HistoryMaxAge)
}

func TestService_RecoverInterrupted(t *testing.T) {
	history := &mockHistory{markCount: 2}
	s := New(&Config{CleanupInterval: time.Hour}, history, zap.NewNop())

	marked, err := s.RecoverInterrupted()
	require.NoError(t, err)
	assert.Equal(t, 2, marked)

	// Start must not touch rows recorded after recovery
	runService(t, s, 20*time.Millisecond)

	cleanup, mark := history.calls()
	assert.Equal(t, 1, mark)
	assert.Equal(t, 0, cleanup)
}

func TestService_RecoverInterruptedError(t *testing.T) {
	history := &mockHistory{markErr: errors.New("database is locked")}
	s := New(nil, history, zap.NewNop())

	marked, err := s.RecoverInterrupted()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	assert.Zero(t, marked)
}

func TestService_PrunesHistory(t *testing.T) {
	history := &mockHistory{cleanupCount: 3}
	cfg := &Config{
		CleanupInterval: 10 * time.Millisecond,
		HistoryMaxAge:   12 * time.Hour,
	}
	s := New(cfg, history, zap.NewNop())

	runService(t, s, 50*time.Millisecond)

	cleanup, _ := history.calls()
	assert.Positive(t, cleanup)

	history.mu.Lock()
	assert.Equal(t, 12*time.Hour, history.cleanupMaxAge)
	history.mu.Unlock()
}

func TestService_ErrorsDoNotStopLoop(t *testing.T) {
	history := &mockHistory{cleanupErr: errors.New("database is locked")}
	s := New(&Config{CleanupInterval: 5 * time.Millisecond}, history, zap.NewNop())

	runService(t, s, 40*time.Millisecond)

	cleanup, mark := history.calls()
	assert.Equal(t, 0, mark)
	assert.Greater(t, cleanup, 1)
}

func TestService_DoubleStart(t *testing.T) {
	s := New(nil, &mockHistory{}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan error, 1)
	go func() {
		started <- s.Start(ctx)
	}()
	time.Sleep(10 * time.Millisecond)

	err := s.Start(ctx)
	assert.Error(t, err)

	s.Stop()
	select {
	case err := <-started:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("first Start() did not return")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 7*24*time.Hour, cfg.HistoryMaxAge)
}
