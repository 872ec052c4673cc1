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

// Package fakeexchange is a toy TCP FIX acceptor used only by integration
// tests: it accepts a single connection, replies to Logon, and lets the
// test script drive arbitrary scripted replies (ExecutionReport,
// OrderCancelReject, market data, ...) in response to whatever the client
// under test sends.
package fakeexchange

import (
	"net"
	"sync"

	"github.com/buybackoff/fixtrader/fixmsg"
	"github.com/buybackoff/fixtrader/fixtransport"
)

// Exchange is a single-connection fake FIX venue. Tests drive it by calling
// Accept to obtain the Transport-shaped view of the one connection a client
// under test dials into, then read/write fixmsg.Message values directly.
type Exchange struct {
	ln net.Listener

	mu   sync.Mutex
	conn *fixtransport.Transport
}

// Listen starts listening on an OS-assigned loopback port and returns the
// address clients should dial.
func Listen() (*Exchange, string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, "", err
	}
	return &Exchange{ln: ln}, ln.Addr().String(), nil
}

// Accept blocks for the next inbound connection and wraps it as a
// fixtransport.Transport so the test can Send/Receive fixmsg.Message values
// using the same API the real client uses.
func (e *Exchange) Accept() (*fixtransport.Transport, error) {
	conn, err := e.ln.Accept()
	if err != nil {
		return nil, err
	}
	t := fixtransport.FromConn(conn, 0)
	e.mu.Lock()
	e.conn = t
	e.mu.Unlock()
	return t, nil
}

// Close shuts down the listener and any accepted connection.
func (e *Exchange) Close() error {
	e.mu.Lock()
	conn := e.conn
	e.mu.Unlock()
	if conn != nil {
		conn.CloseForCancel()
	}
	return e.ln.Close()
}

// ReplyLogon reads the inbound Logon the test expects the client to send
// first, then replies with an accepting Logon of its own — the minimal
// handshake every scenario in this package starts from.
func ReplyLogon(t *fixtransport.Transport, senderCompID, targetCompID string) (fixmsg.Logon, error) {
	msg, _, err := t.Receive()
	if err != nil {
		return fixmsg.Logon{}, err
	}
	logon, _ := msg.(fixmsg.Logon)

	reply := fixmsg.Logon{
		EncryptMethod:   "0",
		HeartBtInt:      logon.HeartBtInt,
		ResetSeqNumFlag: true,
	}
	_, err = t.Send(fixmsg.Header{SenderCompID: targetCompID, TargetCompID: senderCompID}, reply)
	return logon, err
}
