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

package fixclient_test

import (
	"testing"
	"time"

	"github.com/buybackoff/fixtrader/fixclient"
	"github.com/buybackoff/fixtrader/fixcodec"
	"github.com/buybackoff/fixtrader/fixmsg"
	"github.com/buybackoff/fixtrader/fixorder"
	"github.com/buybackoff/fixtrader/internal/fakeexchange"
)

func newTestClient(t *testing.T, addr string) *fixclient.Client {
	t.Helper()
	cfg := fixclient.Config{
		Addr:                  addr,
		SenderCompID:          "CLIENT",
		TargetCompID:          "VENUE",
		ClOrdIDPrefix:         "it",
		HeartBtInt:            30,
		RequestTimeoutSeconds: 5,
		OrderStatusSyncPeriod: time.Hour,
	}
	c, err := fixclient.NewClient(cfg, "")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

// TestLogonThenHeartbeat: after connect the client logs on, and replies to
// an inbound TestRequest with a matching Heartbeat.
func TestLogonThenHeartbeat(t *testing.T) {
	ex, addr, err := fakeexchange.Listen()
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ex.Close()

	c := newTestClient(t, addr)
	c.Start()
	defer c.Dispose()

	conn, err := ex.Accept()
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := fakeexchange.ReplyLogon(conn, "CLIENT", "VENUE"); err != nil {
		t.Fatalf("logon: %v", err)
	}

	if _, err := conn.Send(fixmsg.Header{SenderCompID: "VENUE", TargetCompID: "CLIENT"}, fixmsg.TestRequest{TestReqID: "abc"}); err != nil {
		t.Fatalf("send test request: %v", err)
	}

	msg, _, err := conn.Receive()
	if err != nil {
		t.Fatalf("receive heartbeat reply: %v", err)
	}
	hb, ok := msg.(fixmsg.Heartbeat)
	if !ok {
		t.Fatalf("expected Heartbeat, got %T", msg)
	}
	if hb.TestReqID != "abc" {
		t.Errorf("expected TestReqID=abc, got %q", hb.TestReqID)
	}
}

// TestSubmitThenAccept: a submitted limit buy is acknowledged by the venue
// and the order store reflects Accepted state.
func TestSubmitThenAccept(t *testing.T) {
	ex, addr, err := fakeexchange.Listen()
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ex.Close()

	c := newTestClient(t, addr)
	c.Start()
	defer c.Dispose()

	conn, err := ex.Accept()
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := fakeexchange.ReplyLogon(conn, "CLIENT", "VENUE"); err != nil {
		t.Fatalf("logon: %v", err)
	}

	// The venue's Logon reply is in flight when ReplyLogon returns; retry
	// until the client has installed the session.
	var op fixorder.OrderOpID
	submitDeadline := time.Now().Add(2 * time.Second)
	for {
		var err error
		op, err = c.Submit(fixorder.SubmitRequest{
			Symbol:      "USD000UTSTOM",
			Side:        fixorder.Buy,
			Qty:         fixcodec.Decimal("1"),
			Price:       fixcodec.Decimal("36.08"),
			OrdType:     "2",
			TimeInForce: "1",
		})
		if err == nil {
			break
		}
		if time.Now().After(submitDeadline) {
			t.Fatalf("submit: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	msg, _, err := conn.Receive()
	if err != nil {
		t.Fatalf("receive new order: %v", err)
	}
	nos, ok := msg.(fixmsg.NewOrderSingle)
	if !ok {
		t.Fatalf("expected NewOrderSingle, got %T", msg)
	}
	if nos.ClOrdID != op.ClOrdID {
		t.Errorf("expected ClOrdID %s, got %s", op.ClOrdID, nos.ClOrdID)
	}
	if nos.Symbol != "USD000UTSTOM" || nos.Side != "1" || nos.Price != "36.08" {
		t.Errorf("unexpected NewOrderSingle fields: %+v", nos)
	}

	er := fixmsg.ExecutionReport{
		OrderID:   "E1",
		ClOrdID:   nos.ClOrdID,
		ExecType:  "0",
		OrdStatus: "0",
		Symbol:    "USD000UTSTOM",
		Side:      "1",
		OrderQty:  fixcodec.Decimal("1"),
		Price:     fixcodec.Decimal("36.08"),
		LeavesQty: fixcodec.Decimal("1"),
		CumQty:    fixcodec.Decimal("0"),
	}
	if _, err := conn.Send(fixmsg.Header{SenderCompID: "VENUE", TargetCompID: "CLIENT"}, er); err != nil {
		t.Fatalf("send execution report: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	var order *fixclient.Order
	for time.Now().Before(deadline) {
		order = c.Orders.GetOrder(op.ClOrdID)
		if order != nil && order.Status == fixorder.Accepted.String() {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if order == nil {
		t.Fatal("order never appeared in the store")
	}
	if order.Status != fixorder.Accepted.String() {
		t.Errorf("expected status Accepted, got %s", order.Status)
	}
	if order.LeftQty != fixcodec.Decimal("1") {
		t.Errorf("expected LeftQty=1, got %s", order.LeftQty)
	}
	if order.OrderID != "E1" {
		t.Errorf("expected OrderID=E1, got %s", order.OrderID)
	}
}
