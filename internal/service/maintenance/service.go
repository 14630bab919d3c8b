package maintenance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// History is the part of the task history the service maintains
type History interface {
	CleanupFinishedTasks(olderThan time.Duration) (int, error)
	MarkInterruptedTasks() (int, error)
}

// Config contains maintenance service configuration
type Config struct {
	// CleanupInterval is how often to prune the history
	CleanupInterval time.Duration

	// HistoryMaxAge is how long finished tasks are kept
	HistoryMaxAge time.Duration
}

// DefaultConfig returns default maintenance configuration
func DefaultConfig() *Config {
	return &Config{
		CleanupInterval: time.Hour,
		HistoryMaxAge:   7 * 24 * time.Hour,
	}
}

// Service handles periodic maintenance tasks
type Service struct {
	config  *Config
	history History
	logger  *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a new maintenance Service
func New(cfg *Config, history History, logger *zap.Logger) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = time.Hour
	}
	if cfg.HistoryMaxAge == 0 {
		cfg.HistoryMaxAge = 7 * 24 * time.Hour
	}

	return &Service{
		config:  cfg,
		history: history,
		logger:  logger,
	}
}

// Start prunes the history periodically until ctx is cancelled or Stop is
// called. Interrupted tasks are not touched; call RecoverInterrupted before
// accepting new tasks.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("maintenance service already running")
	}
	s.running = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.logger.Info("maintenance service started",
		zap.Duration("cleanup_interval", s.config.CleanupInterval),
		zap.Duration("history_max_age", s.config.HistoryMaxAge))

	s.wg.Add(1)
	go s.maintenanceLoop(ctx)

	<-ctx.Done()
	s.wg.Wait()
	s.logger.Info("maintenance service stopped")
	return nil
}

// Stop stops the maintenance service
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.running = false
}

// maintenanceLoop handles periodic maintenance tasks
func (s *Service) maintenanceLoop(ctx context.Context) {
	defer s.wg.Done()

	cleanupTicker := time.NewTicker(s.config.CleanupInterval)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cleanupTicker.C:
			s.pruneHistory()
		}
	}
}

// RecoverInterrupted fails tasks a previous process left running. It must
// run before the first task of this process is recorded.
func (s *Service) RecoverInterrupted() (int, error) {
	marked, err := s.history.MarkInterruptedTasks()
	if err != nil {
		s.logger.Error("failed to mark interrupted tasks", zap.Error(err))
		return 0, fmt.Errorf("mark interrupted tasks: %w", err)
	}
	if marked > 0 {
		s.logger.Info("marked interrupted tasks as failed", zap.Int("count", marked))
	}
	return marked, nil
}

// pruneHistory removes old finished tasks
func (s *Service) pruneHistory() {
	cleared, err := s.history.CleanupFinishedTasks(s.config.HistoryMaxAge)
	if err != nil {
		s.logger.Error("failed to prune task history", zap.Error(err))
	} else if cleared > 0 {
		s.logger.Info("pruned task history", zap.Int("count", cleared))
	}
}
