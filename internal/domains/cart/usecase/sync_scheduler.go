package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Pusher interface {
	PushRemote(ctx context.Context) (int, error)
}

// SyncScheduler coalesces bursts of local cart edits into one remote push.
// Callers schedule explicitly after mutating; nothing observes the cart.
type SyncScheduler struct {
	pusher Pusher
	delay  time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	stopped bool
	lastErr error
}

func NewSyncScheduler(pusher Pusher, delay time.Duration, logger *slog.Logger) *SyncScheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if delay < 0 {
		delay = 0
	}
	return &SyncScheduler{pusher: pusher, delay: delay, logger: logger}
}

// Schedule (re)arms the debounce timer.
func (s *SyncScheduler) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.pending = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

func (s *SyncScheduler) fire() {
	if !s.take() {
		return
	}
	_, err := s.pusher.PushRemote(context.Background())
	s.record(err)
	if err != nil {
		s.logger.Warn("debounced cart push failed", "error", err)
	}
}

// Flush pushes immediately when a push is pending. It returns nil when
// nothing was pending.
func (s *SyncScheduler) Flush(ctx context.Context) error {
	if !s.take() {
		return nil
	}
	_, err := s.pusher.PushRemote(ctx)
	s.record(err)
	return err
}

// Cancel drops a pending push without sending it. Later calls to Schedule
// still arm the timer.
func (s *SyncScheduler) Cancel() {
	s.take()
}

// Stop cancels any pending push and ignores every later Schedule.
func (s *SyncScheduler) Stop() {
	s.take()
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

func (s *SyncScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *SyncScheduler) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *SyncScheduler) take() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pending {
		return false
	}
	s.pending = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	return true
}

func (s *SyncScheduler) record(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}
