// Package scheduler runs the engine's periodic background tasks:
// the expired-hold sweep and the waitlist expiry pass.  Tasks
// coordinate with request handlers through the inventory's per-show
// locks, not through the scheduler itself.
package scheduler

import (
	"context"
	"log"
	"time"
)

// Task is one periodic job.  It returns how many records it touched
// so the tick can be logged meaningfully.
type Task func(ctx context.Context) (int, error)

// Scheduler ticks a single task at a fixed interval until its
// context is cancelled.  Task errors are logged and retried on the
// next tick; they are never fatal to the process.
type Scheduler struct {
	name     string
	interval time.Duration
	task     Task
}

// New constructs a scheduler for one named task.
func New(name string, interval time.Duration, task Task) *Scheduler {
	return &Scheduler{name: name, interval: interval, task: task}
}

// Start blocks, running the task every interval, until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("scheduler %s: started (interval=%s)", s.name, s.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("scheduler %s: stopped", s.name)
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	n, err := s.task(ctx)
	if err != nil {
		log.Printf("scheduler %s: tick failed: %v", s.name, err)
		return
	}
	if n > 0 {
		log.Printf("scheduler %s: processed %d records", s.name, n)
	}
}
