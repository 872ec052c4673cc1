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

package fixtransport

import (
	"net"
	"testing"
	"time"

	"github.com/buybackoff/fixtrader/fixmsg"
)

// TestSendAssignsIncreasingSeqNum verifies sends ordered on the wire
// carry strictly increasing sequence numbers.
func TestSendAssignsIncreasingSeqNum(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	client := FromConn(clientConn, 4096)
	server := FromConn(serverConn, 4096)

	h := fixmsg.Header{SenderCompID: "C", TargetCompID: "S", SendingTime: time.Now()}

	done := make(chan struct{})
	var seq1, seq2 int64
	var err1, err2 error
	go func() {
		seq1, err1 = client.Send(h, fixmsg.Heartbeat{})
		seq2, err2 = client.Send(h, fixmsg.TestRequest{TestReqID: "x"})
		close(done)
	}()

	msg1, _, err := server.Receive()
	if err != nil {
		t.Fatalf("receive 1: %v", err)
	}
	if _, ok := msg1.(fixmsg.Heartbeat); !ok {
		t.Fatalf("expected Heartbeat, got %T", msg1)
	}

	msg2, _, err := server.Receive()
	if err != nil {
		t.Fatalf("receive 2: %v", err)
	}
	if _, ok := msg2.(fixmsg.TestRequest); !ok {
		t.Fatalf("expected TestRequest, got %T", msg2)
	}

	<-done
	if err1 != nil || err2 != nil {
		t.Fatalf("send errors: %v, %v", err1, err2)
	}
	if seq1 != 1 || seq2 != 2 {
		t.Errorf("got seqNums %d, %d, want 1, 2", seq1, seq2)
	}
}
