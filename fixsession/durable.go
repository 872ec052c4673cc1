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

package fixsession

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/buybackoff/fixtrader/fixerr"
	"github.com/buybackoff/fixtrader/fixmsg"
	"github.com/buybackoff/fixtrader/fixtransport"
)

// DurableSeqNum correlates a message to the specific reconnect-scoped
// session that carried it: sequence numbers reset to 1 on every reconnect,
// so a seq_num alone is ambiguous across sessions.
type DurableSeqNum struct {
	SessionID string
	SeqNum    int64
}

// Connector opens a fresh transport for a new session.
type Connector func() (*fixtransport.Transport, error)

// Initializer runs the session's handshake (Logon) over a freshly dialed
// transport. An error here causes the partial session to be discarded and
// reconnection to retry after backoff.
type Initializer func(t *fixtransport.Transport) error

const reconnectBackoff = time.Second

// Durable owns the logical connection: a sequence of sessions, reconnected
// transparently behind Send/Receive.
type Durable struct {
	connect    Connector
	initialize Initializer
	cancel     chan struct{}

	mu           sync.Mutex
	cur          *session
	disposed     bool
	initializing bool
	readyCh      chan struct{}

	sendMu sync.Mutex
}

// NewDurable constructs a Durable connection. No socket is opened until the
// first Send or Receive call.
func NewDurable(connect Connector, initialize Initializer) *Durable {
	return &Durable{
		connect:    connect,
		initialize: initialize,
		cancel:     make(chan struct{}),
		readyCh:    make(chan struct{}),
	}
}

// Send assigns and transmits msg on the current session if one is
// available. It never blocks waiting for a reconnect: if no session is
// currently up, it returns (nil, nil) and leaves reconnection to proceed in
// the background. Returns an error only once the Durable is disposed.
func (d *Durable) Send(h fixmsg.Header, msg fixmsg.Message) (*DurableSeqNum, error) {
	d.sendMu.Lock()
	defer d.sendMu.Unlock()

	d.mu.Lock()
	disposed := d.disposed
	d.mu.Unlock()
	if disposed {
		return nil, fixerr.ObjectDisposed
	}

	s, ok := d.trySession()
	if !ok {
		return nil, nil
	}
	defer s.decRef()

	seq, err := s.transport.Send(h, msg)
	if err != nil {
		d.invalidate(s)
		return nil, nil
	}
	return &DurableSeqNum{SessionID: s.id, SeqNum: seq}, nil
}

// Receive blocks until a message arrives, reconnecting transparently on any
// transport error. Only one goroutine may call Receive at a time.
func (d *Durable) Receive() (fixmsg.Message, fixmsg.Header, DurableSeqNum, error) {
	for {
		s, err := d.blockingSession()
		if err != nil {
			return nil, fixmsg.Header{}, DurableSeqNum{}, err
		}

		msg, h, err := s.transport.Receive()
		if err != nil {
			d.invalidate(s)
			s.decRef()
			d.mu.Lock()
			disposed := d.disposed
			d.mu.Unlock()
			if disposed {
				return nil, fixmsg.Header{}, DurableSeqNum{}, fixerr.ObjectDisposed
			}
			continue
		}

		dsn := DurableSeqNum{SessionID: s.id, SeqNum: h.MsgSeqNum}
		s.decRef()
		return msg, h, dsn, nil
	}
}

// Reconnect marks the current session invalid; the next Send or Receive
// call reopens. Non-blocking.
func (d *Durable) Reconnect() {
	d.mu.Lock()
	s := d.cur
	d.cur = nil
	disposed := d.disposed
	d.mu.Unlock()

	if s != nil {
		go s.retire()
	}
	if !disposed {
		go d.maintainSession()
	}
}

// Dispose is cancel-all + drain + close: it cancels the current session's
// I/O, then blocks until every borrowed reference has been released. Safe
// to call concurrently with any other call, and more than once.
func (d *Durable) Dispose() {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		return
	}
	d.disposed = true
	s := d.cur
	d.cur = nil
	d.mu.Unlock()

	close(d.cancel)
	if s != nil {
		s.dispose()
	}
}

// trySession returns the current session with an extra reference held, if
// one is live right now. It never blocks; if no session is available it
// kicks off a background reconnect attempt (unless one is already running).
func (d *Durable) trySession() (*session, bool) {
	d.mu.Lock()
	cur := d.cur
	disposed := d.disposed
	initializing := d.initializing
	d.mu.Unlock()

	if disposed || cur == nil {
		if !disposed && !initializing {
			go d.maintainSession()
		}
		return nil, false
	}
	return cur, cur.incRef()
}

// blockingSession waits for a session to become available, driving
// reconnection if necessary. Used only by Receive, which tolerates being
// blocked on the network.
func (d *Durable) blockingSession() (*session, error) {
	for {
		d.mu.Lock()
		if d.disposed {
			d.mu.Unlock()
			return nil, fixerr.ObjectDisposed
		}
		cur := d.cur
		ready := d.readyCh
		initializing := d.initializing
		d.mu.Unlock()

		if cur != nil && cur.incRef() {
			return cur, nil
		}
		if !initializing {
			go d.maintainSession()
		}
		select {
		case <-ready:
		case <-d.cancel:
			return nil, fixerr.ObjectDisposed
		}
	}
}

// invalidate drops s as the current session (if it still is) and schedules
// reconnection.
func (d *Durable) invalidate(s *session) {
	d.mu.Lock()
	wasCurrent := d.cur == s
	if wasCurrent {
		d.cur = nil
	}
	disposed := d.disposed
	d.mu.Unlock()

	if wasCurrent {
		s.retire()
	}
	if !disposed {
		go d.maintainSession()
	}
}

// maintainSession is the session initializer: only one instance runs at a
// time, retrying with a 1s backoff until a session is established or the
// Durable is disposed.
func (d *Durable) maintainSession() {
	d.mu.Lock()
	if d.initializing || d.disposed {
		d.mu.Unlock()
		return
	}
	d.initializing = true
	d.mu.Unlock()

	for {
		s, err := d.openSession()

		d.mu.Lock()
		if err == nil {
			if d.disposed {
				d.initializing = false
				d.mu.Unlock()
				s.dispose()
				return
			}
			d.cur = s
			d.initializing = false
			oldReady := d.readyCh
			d.readyCh = make(chan struct{})
			d.mu.Unlock()
			close(oldReady)
			return
		}
		disposed := d.disposed
		d.mu.Unlock()
		if disposed {
			d.mu.Lock()
			d.initializing = false
			d.mu.Unlock()
			return
		}

		select {
		case <-time.After(reconnectBackoff):
		case <-d.cancel:
			d.mu.Lock()
			d.initializing = false
			d.mu.Unlock()
			return
		}
	}
}

func (d *Durable) openSession() (*session, error) {
	t, err := d.connect()
	if err != nil {
		return nil, err
	}
	if err := d.initialize(t); err != nil {
		t.Close()
		return nil, err
	}
	return newSession(uuid.NewString(), t), nil
}
