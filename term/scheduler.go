// Copyright © 2025 Texelmap contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/scheduler.go
// Summary: Queue that funnels callbacks into the terminal event loop
// goroutine.

package term

import "sync"

// Scheduler queues callbacks for execution on the goroutine that owns
// the screen. Post never blocks and never drops: the render gate's
// release travels through here, so losing a task would leave the gate
// locked forever. The queue grows as needed; the owning loop drains it
// whenever Wake fires.
type Scheduler struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{wake: make(chan struct{}, 1)}
}

// Post queues fn for the event loop and signals Wake.
func (s *Scheduler) Post(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Wake receives one signal whenever tasks are pending. The event loop
// selects on it and calls Drain.
func (s *Scheduler) Wake() <-chan struct{} {
	return s.wake
}

// Drain runs all queued tasks, including ones posted by the tasks
// themselves, and returns how many ran.
func (s *Scheduler) Drain() int {
	n := 0
	for {
		s.mu.Lock()
		tasks := s.queue
		s.queue = nil
		s.mu.Unlock()
		if len(tasks) == 0 {
			return n
		}
		for _, fn := range tasks {
			fn()
			n++
		}
	}
}
