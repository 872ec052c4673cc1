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
	"net"
	"testing"
	"time"

	"github.com/buybackoff/fixtrader/fixmsg"
	"github.com/buybackoff/fixtrader/fixtransport"
)

func pipePair() (net.Conn, net.Conn) {
	return net.Pipe()
}

// newPipeConnector returns a Connector backed by net.Pipe and a channel that
// yields the peer half of every connection it opens, so a test can play the
// exchange side.
func newPipeConnector() (Connector, chan net.Conn) {
	peers := make(chan net.Conn, 8)
	connector := func() (*fixtransport.Transport, error) {
		client, peer := net.Pipe()
		peers <- peer
		return fixtransport.FromConn(client, 4096), nil
	}
	return connector, peers
}

func noopInitializer(*fixtransport.Transport) error { return nil }

func TestDurable_SendReceive(t *testing.T) {
	connector, peers := newPipeConnector()
	d := NewDurable(connector, noopInitializer)
	defer d.Dispose()

	h := fixmsg.Header{SenderCompID: "C", TargetCompID: "S"}

	seqCh := make(chan *DurableSeqNum, 1)
	errCh := make(chan error, 1)
	go func() {
		var seq *DurableSeqNum
		var err error
		for i := 0; i < 200; i++ {
			seq, err = d.Send(h, fixmsg.Heartbeat{})
			if err != nil || seq != nil {
				break
			}
			time.Sleep(2 * time.Millisecond)
		}
		seqCh <- seq
		errCh <- err
	}()

	peer := <-peers
	server := fixtransport.FromConn(peer, 4096)
	msg, _, err := server.Receive()
	if err != nil {
		t.Fatalf("server receive: %v", err)
	}
	if _, ok := msg.(fixmsg.Heartbeat); !ok {
		t.Fatalf("expected Heartbeat, got %T", msg)
	}

	seq := <-seqCh
	if err := <-errCh; err != nil {
		t.Fatalf("send error: %v", err)
	}
	if seq == nil {
		t.Fatal("expected a non-nil DurableSeqNum once connected")
	}
	if seq.SeqNum != 1 {
		t.Errorf("got seqnum %d, want 1", seq.SeqNum)
	}
}

func TestDispose_BlocksUntilRefsReleased(t *testing.T) {
	connector, peers := newPipeConnector()
	d := NewDurable(connector, noopInitializer)

	go d.maintainSession()

	var s *session
	for i := 0; i < 200; i++ {
		d.mu.Lock()
		s = d.cur
		d.mu.Unlock()
		if s != nil {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}
	if s == nil {
		t.Fatal("session never became ready")
	}
	<-peers // drain the dialed peer half

	if !s.incRef() {
		t.Fatal("incRef failed")
	}

	disposeDone := make(chan struct{})
	go func() {
		d.Dispose()
		close(disposeDone)
	}()

	select {
	case <-disposeDone:
		t.Fatal("Dispose returned before the outstanding reference was released")
	case <-time.After(30 * time.Millisecond):
	}

	s.decRef()

	select {
	case <-disposeDone:
	case <-time.After(time.Second):
		t.Fatal("Dispose did not return after the reference was released")
	}
}

func TestDurable_SendAfterDisposeFails(t *testing.T) {
	connector, _ := newPipeConnector()
	d := NewDurable(connector, noopInitializer)
	d.Dispose()

	_, err := d.Send(fixmsg.Header{}, fixmsg.Heartbeat{})
	if err == nil {
		t.Fatal("expected ObjectDisposed error after Dispose")
	}
}
