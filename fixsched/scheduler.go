/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package fixsched provides a deadline-ordered timed queue used to drive
// heartbeats, per-request timeouts, periodic refreshes, and TTL expiry from a
// single worker goroutine instead of one timer per concern.
package fixsched

import (
	"container/heap"
	"sync"
	"time"
)

// maxWait bounds a single timer wait so the worker re-polls the queue
// periodically even under clock anomalies, rather than arming an
// arbitrarily long time.Timer.
const maxWait = (1<<31 - 1) * time.Millisecond

// Scheduler is a multi-producer, multi-consumer timed queue: any number of
// goroutines may Push, and any number may Wait, though the typical use is a
// single consumer. Items with equal deadlines come out in the order they
// were pushed.
type Scheduler struct {
	mu    sync.Mutex
	items itemHeap
	seq   uint64
	wake  chan struct{}
}

// New returns an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{wake: make(chan struct{}, 1)}
}

// Push adds value to the queue, to be delivered by Wait once when has
// passed.
func (s *Scheduler) Push(value interface{}, when time.Time) {
	s.mu.Lock()
	s.seq++
	heap.Push(&s.items, &item{value: value, when: when, seq: s.seq})
	s.mu.Unlock()
	s.nudge()
}

// nudge wakes a blocked Wait so it re-evaluates the new head, without
// blocking itself if nobody is listening.
func (s *Scheduler) nudge() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Wait blocks until the earliest pending item's deadline passes and returns
// it, or returns with cancelled=true once cancel fires. The queue is
// re-polled every time a new item is pushed or a timer fires, so a later
// Push with an earlier deadline than the one currently being waited on is
// picked up immediately.
func (s *Scheduler) Wait(cancel <-chan struct{}) (value interface{}, cancelled bool) {
	for {
		s.mu.Lock()
		if len(s.items) == 0 {
			s.mu.Unlock()
			select {
			case <-s.wake:
				continue
			case <-cancel:
				return nil, true
			}
		}

		head := s.items[0]
		now := time.Now()
		if !head.when.After(now) {
			heap.Pop(&s.items)
			s.mu.Unlock()
			return head.value, false
		}
		d := head.when.Sub(now)
		s.mu.Unlock()

		if d > maxWait {
			d = maxWait
		}
		timer := time.NewTimer(d)
		select {
		case <-timer.C:
		case <-s.wake:
			timer.Stop()
		case <-cancel:
			timer.Stop()
			return nil, true
		}
	}
}

// Len reports the number of items currently queued.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
