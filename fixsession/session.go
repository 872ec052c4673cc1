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

// Package fixsession implements the durable connection: a logical link that
// is really a sequence of short-lived, reference-counted sessions, each
// reopened and re-logged-on transparently after a disconnect.
package fixsession

import (
	"sync"

	"github.com/buybackoff/fixtrader/fixtransport"
)

// session is one short-lived leg of the durable connection. It starts life
// with refCount 1, representing the Durable's own "current session" slot;
// every Send/Receive call that borrows it adds and removes a reference.
type session struct {
	id        string
	transport *fixtransport.Transport

	mu       sync.Mutex
	refCount int
	retiring bool

	zero     chan struct{}
	zeroOnce sync.Once
}

func newSession(id string, t *fixtransport.Transport) *session {
	return &session{id: id, transport: t, refCount: 1, zero: make(chan struct{})}
}

// incRef holds the session for an in-flight Send or Receive. It fails once
// the session has already reached refcount zero.
func (s *session) incRef() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refCount == 0 {
		return false
	}
	s.refCount++
	return true
}

func (s *session) decRef() {
	s.mu.Lock()
	s.refCount--
	rc := s.refCount
	retiring := s.retiring
	s.mu.Unlock()

	if rc == 0 {
		s.zeroOnce.Do(func() { close(s.zero) })
		if retiring {
			s.transport.Close()
		}
	}
}

// retire closes the socket immediately, aborting any in-flight read or
// write, and releases the session's owner reference. Safe to call once.
func (s *session) retire() {
	s.transport.CloseForCancel()
	s.mu.Lock()
	s.retiring = true
	s.mu.Unlock()
	s.decRef()
}

// dispose retires the session and then blocks until every borrowed
// reference has been released — "cancel then wait", not "wait then cancel".
func (s *session) dispose() {
	s.retire()
	<-s.zero
}
