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

// Package fixpump runs the single receive loop that drains the durable
// connection and dispatches every decoded message to a callback.
package fixpump

import (
	"errors"
	"log"

	"github.com/buybackoff/fixtrader/fixerr"
	"github.com/buybackoff/fixtrader/fixmsg"
	"github.com/buybackoff/fixtrader/fixsession"
)

// Handler is invoked once per decoded inbound message, in wire order. It
// runs on the pump's own goroutine — the single serialization path for all
// order and session callbacks — so it must not block or call back into
// anything that waits on the pump itself.
type Handler func(msg fixmsg.Message, h fixmsg.Header, dsn fixsession.DurableSeqNum)

// Pump is the sole consumer of a Durable connection's receive side.
type Pump struct {
	durable *fixsession.Durable
	handle  Handler
	stop    chan struct{}
	done    chan struct{}
}

// New constructs a Pump. Call Run to start it on its own goroutine.
func New(durable *fixsession.Durable, handle Handler) *Pump {
	return &Pump{
		durable: durable,
		handle:  handle,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Run blocks the calling goroutine, reading and dispatching until Stop is
// called or the durable connection is disposed.
func (p *Pump) Run() {
	defer close(p.done)
	for {
		select {
		case <-p.stop:
			return
		default:
		}

		msg, h, dsn, err := p.durable.Receive()
		if err != nil {
			if errors.Is(err, fixerr.ObjectDisposed) {
				return
			}
			log.Printf("fixpump: receive error: %v", err)
			continue
		}
		if msg == nil {
			// An unrecognized MsgType was skipped by the decoder.
			continue
		}

		p.dispatch(msg, h, dsn)
	}
}

func (p *Pump) dispatch(msg fixmsg.Message, h fixmsg.Header, dsn fixsession.DurableSeqNum) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("fixpump: handler panicked on %s: %v", msg.MsgType(), r)
		}
	}()
	p.handle(msg, h, dsn)
}

// Stop requests the loop to exit. It does not interrupt an in-flight
// Receive; disposing the durable connection is what actually unblocks it.
func (p *Pump) Stop() {
	close(p.stop)
}

// Done is closed once Run has returned.
func (p *Pump) Done() <-chan struct{} {
	return p.done
}
