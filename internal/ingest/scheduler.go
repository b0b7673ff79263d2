package ingest

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// cycleRunner lets scheduler tests substitute a fake engine.
type cycleRunner interface {
	RunCycle(ctx context.Context) Summary
}

// Scheduler drives the ingestion engine on a fixed wall-clock interval.
// Cycles run sequentially on a single goroutine, so a cycle that outlives
// the interval simply delays the next tick; cycles never overlap.
type Scheduler struct {
	ctx      context.Context
	wg       *sync.WaitGroup
	engine   cycleRunner
	interval time.Duration
	logger   *zap.SugaredLogger
}

// NewScheduler creates a scheduler bound to the application lifecycle.
func NewScheduler(ctx context.Context, wg *sync.WaitGroup, engine cycleRunner, interval time.Duration, logger *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		ctx:      ctx,
		wg:       wg,
		engine:   engine,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the scheduling goroutine. Shutdown is driven by the
// context passed at construction; the WaitGroup drains the in-flight
// cycle.
func (s *Scheduler) Start() {
	s.logger.Infof("starting ingestion scheduler, interval %v", s.interval)
	s.wg.Add(1)
	go s.run()
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	// time.Ticker's only begin to fire *after* the interval has elapsed,
	// so run the first cycle now rather than waiting out a full interval.
	s.engine.RunCycle(s.ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.engine.RunCycle(s.ctx)
		case <-s.ctx.Done():
			s.logger.Info("ingestion scheduler stopping")
			return
		}
	}
}
