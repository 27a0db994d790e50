package scheduler

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"sellerops-backend/internal/order/usecase"
)

// SyncScheduler drives the sync orchestrator on a fixed interval and accepts
// on-demand triggers. Runs are single-flight: a trigger that arrives while a
// pass is active is dropped, since two concurrent passes over the same
// account could race the already-processed check and double-create orders.
type SyncScheduler struct {
	syncUsecase usecase.SyncUsecase
	interval    time.Duration
	stopChan    chan struct{}
	triggerChan chan struct{}
	running     atomic.Bool
	started     atomic.Bool
}

// NewSyncScheduler creates a new scheduler
func NewSyncScheduler(syncUsecase usecase.SyncUsecase, interval time.Duration) *SyncScheduler {
	return &SyncScheduler{
		syncUsecase: syncUsecase,
		interval:    interval,
		stopChan:    make(chan struct{}),
		triggerChan: make(chan struct{}, 1),
	}
}

// Start begins the scheduler loop. Safe to call once.
func (s *SyncScheduler) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}

	log.Printf("[SyncScheduler] Starting (interval: %s)", s.interval)

	go func() {
		// Run once on startup so a restart doesn't wait a full interval
		s.runOnce()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runOnce()
			case <-s.triggerChan:
				s.runOnce()
			case <-s.stopChan:
				log.Println("[SyncScheduler] Stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *SyncScheduler) Stop() {
	if s.started.Load() {
		close(s.stopChan)
	}
}

// TriggerSync requests an immediate pass. Returns false when a pass is
// already active or queued.
func (s *SyncScheduler) TriggerSync() bool {
	if s.running.Load() {
		return false
	}
	select {
	case s.triggerChan <- struct{}{}:
		return true
	default:
		return false
	}
}

// IsRunning reports whether a sync pass is currently active
func (s *SyncScheduler) IsRunning() bool {
	return s.running.Load()
}

func (s *SyncScheduler) runOnce() {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	defer s.running.Store(false)

	if err := s.syncUsecase.SyncAllAccounts(context.Background()); err != nil {
		log.Printf("[SyncScheduler] Sync pass error: %v", err)
	}
}
