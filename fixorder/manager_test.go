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

package fixorder

import (
	"sync"
	"testing"
	"time"

	"github.com/buybackoff/fixtrader/fixcodec"
	"github.com/buybackoff/fixtrader/fixerr"
	"github.com/buybackoff/fixtrader/fixmsg"
	"github.com/buybackoff/fixtrader/fixsession"
)

type fakeSender struct {
	mu        sync.Mutex
	sessionID string
	seq       int64
	sent      []fixmsg.Message
	fail      bool
}

func (s *fakeSender) Send(h fixmsg.Header, msg fixmsg.Message) (*fixsession.DurableSeqNum, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, nil
	}
	s.seq++
	s.sent = append(s.sent, msg)
	return &fixsession.DurableSeqNum{SessionID: s.sessionID, SeqNum: s.seq}, nil
}

func (s *fakeSender) last() fixmsg.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent[len(s.sent)-1]
}

func newTestManager(sender *fakeSender) (*Manager, *[]Event, *[]OpResult) {
	ids := NewClOrdIDGenerator("T", time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	events := &[]Event{}
	ops := &[]OpResult{}
	m := NewManager(sender, ids, fixmsg.Header{SenderCompID: "C", TargetCompID: "S"},
		func(e Event) { *events = append(*events, e) },
		func(o OpResult) { *ops = append(*ops, o) })
	return m, events, ops
}

func TestManager_SubmitThenAccept(t *testing.T) {
	sender := &fakeSender{sessionID: "s1"}
	m, events, ops := newTestManager(sender)

	op, err := m.Submit(SubmitRequest{UserID: "u1", Symbol: "USD000UTSTOM", Side: Buy, Qty: "1", Price: "36.08", OrdType: "2"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	nos, ok := sender.last().(fixmsg.NewOrderSingle)
	if !ok {
		t.Fatalf("expected NewOrderSingle, got %T", sender.last())
	}
	if nos.ClOrdID != op.ClOrdID || nos.Symbol != "USD000UTSTOM" || nos.OrderQty != "1" || nos.Price != "36.08" {
		t.Errorf("unexpected NewOrderSingle: %+v", nos)
	}

	m.Handle(fixmsg.ExecutionReport{
		OrderID: "E1", ClOrdID: op.ClOrdID, ExecType: "0", OrdStatus: "0",
		LeavesQty: "1", CumQty: "0",
	}, op.Seq)

	if len(*events) != 1 {
		t.Fatalf("got %d events, want 1", len(*events))
	}
	ev := (*events)[0]
	if ev.State.Status != Accepted || ev.State.LeftQty != "1" || ev.State.FillQty != "0" || ev.State.Price != "36.08" {
		t.Errorf("unexpected state: %+v", ev.State)
	}
	if ev.OrderID != "E1" {
		t.Errorf("got orderID %q, want E1", ev.OrderID)
	}
	if len(*ops) != 1 || (*ops)[0].Status != fixerr.RequestOK {
		t.Errorf("unexpected op results: %+v", *ops)
	}
}

func TestManager_PartialFillThenCancel(t *testing.T) {
	sender := &fakeSender{sessionID: "s1"}
	m, events, _ := newTestManager(sender)

	op, err := m.Submit(SubmitRequest{UserID: "u1", Symbol: "USD000UTSTOM", Side: Buy, Qty: "1", Price: "36.08", OrdType: "2"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	m.Handle(fixmsg.ExecutionReport{
		OrderID: "E1", ClOrdID: op.ClOrdID, ExecType: "0", OrdStatus: "0",
		LeavesQty: "1", CumQty: "0",
	}, op.Seq)

	m.Handle(fixmsg.ExecutionReport{
		OrderID: "E1", ClOrdID: op.ClOrdID, ExecType: "1", OrdStatus: "1",
		LastQty: "0.4", LastPx: "36.07", LeavesQty: "0.6", CumQty: "0.4",
	}, op.Seq)

	fillEv := (*events)[len(*events)-1]
	if fillEv.Fill == nil || fillEv.Fill.Quantity != "0.4" || fillEv.Fill.Price != "36.07" {
		t.Fatalf("unexpected fill: %+v", fillEv.Fill)
	}
	if fillEv.State.Status != PartiallyFilled || fillEv.State.LeftQty != "0.6" || fillEv.State.FillQty != "0.4" {
		t.Errorf("unexpected state: %+v", fillEv.State)
	}

	cancelOp, err := m.Cancel(op.ClOrdID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	ocr, ok := sender.last().(fixmsg.OrderCancelRequest)
	if !ok || ocr.OrigClOrdID != op.ClOrdID {
		t.Fatalf("unexpected cancel request: %+v", sender.last())
	}

	// Pending-cancel report: status moves to TearingDown; a spuriously
	// reported LeavesQty=0 must not override the real remaining quantity.
	m.Handle(fixmsg.ExecutionReport{
		OrderID: "E1", ClOrdID: ocr.ClOrdID, ExecType: "6", OrdStatus: "6",
		LeavesQty: "0", CumQty: "0.4",
	}, cancelOp.Seq)
	tdEv := (*events)[len(*events)-1]
	if tdEv.State.Status != TearingDown || tdEv.State.LeftQty != "0.6" {
		t.Fatalf("unexpected tearing-down state: %+v", tdEv.State)
	}

	// Final cancel confirmation carries no LeavesQty; it stays at 0.6.
	m.Handle(fixmsg.ExecutionReport{
		OrderID: "E1", ClOrdID: ocr.ClOrdID, ExecType: "4", OrdStatus: "4",
		CumQty: "0.4",
	}, cancelOp.Seq)
	final := (*events)[len(*events)-1]
	if final.State.Status != Finished || final.State.LeftQty != "0.6" || final.State.FillQty != "0.4" {
		t.Errorf("unexpected final state: %+v", final.State)
	}
}

func TestManager_ReplaceRejected(t *testing.T) {
	sender := &fakeSender{sessionID: "s1"}
	m, events, ops := newTestManager(sender)

	op, err := m.Submit(SubmitRequest{UserID: "u1", Symbol: "USD000UTSTOM", Side: Buy, Qty: "1", Price: "36.08", OrdType: "2"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	m.Handle(fixmsg.ExecutionReport{
		OrderID: "E1", ClOrdID: op.ClOrdID, ExecType: "0", OrdStatus: "0",
		LeavesQty: "1", CumQty: "0",
	}, op.Seq)

	repOp, err := m.Replace(op.ClOrdID, ReplaceRequest{Qty: "2", Price: "36.05", OrdType: "2"})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	replace, ok := sender.last().(fixmsg.OrderCancelReplaceRequest)
	if !ok || replace.OrigClOrdID != op.ClOrdID || replace.OrderQty != "2" || replace.Price != "36.05" {
		t.Fatalf("unexpected replace request: %+v", sender.last())
	}

	m.Handle(fixmsg.OrderCancelReject{
		OrderID: "E1", ClOrdID: replace.ClOrdID, OrigClOrdID: op.ClOrdID,
		OrdStatus: "8", CxlRejResponseTo: "2", CxlRejReason: "1",
	}, repOp.Seq)

	// ops[0] is the submit resolved OK by the accepting report; ops[1] is
	// the rejected replace.
	if len(*ops) != 2 || (*ops)[1].Status != fixerr.RequestError {
		t.Fatalf("unexpected op results: %+v", *ops)
	}
	if len(*events) != 2 {
		t.Fatalf("got %d events, want 2 (accept + finish)", len(*events))
	}
	last := (*events)[len(*events)-1]
	if last.State.Status != Finished {
		t.Errorf("got status %v, want Finished", last.State.Status)
	}

	// Single inflight op is honored even after finalization: no further
	// operation can be issued against an order that no longer exists.
	if _, err := m.Cancel(op.ClOrdID); err == nil {
		t.Errorf("expected Cancel on a finished order to fail")
	}
}

func TestManager_SingleInflightOp(t *testing.T) {
	sender := &fakeSender{sessionID: "s1"}
	m, _, _ := newTestManager(sender)

	op, err := m.Submit(SubmitRequest{UserID: "u1", Symbol: "X", Side: Buy, Qty: "1", Price: "1", OrdType: "2"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	m.Handle(fixmsg.ExecutionReport{OrderID: "E1", ClOrdID: op.ClOrdID, ExecType: "0", OrdStatus: "0", LeavesQty: "1", CumQty: "0"}, op.Seq)

	if _, err := m.Cancel(op.ClOrdID); err != nil {
		t.Fatalf("first Cancel: %v", err)
	}
	if _, err := m.Replace(op.ClOrdID, ReplaceRequest{Qty: "2", Price: "1", OrdType: "2"}); err == nil {
		t.Fatalf("expected second concurrent op to fail fast")
	}
}

func TestManager_FinishedIsTerminalAndFinal(t *testing.T) {
	sender := &fakeSender{sessionID: "s1"}
	m, events, _ := newTestManager(sender)

	op, err := m.Submit(SubmitRequest{UserID: "u1", Symbol: "X", Side: Sell, Qty: "1", Price: "1", OrdType: "2"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	m.Handle(fixmsg.ExecutionReport{OrderID: "E1", ClOrdID: op.ClOrdID, ExecType: "0", OrdStatus: "0", LeavesQty: "1", CumQty: "0"}, op.Seq)
	m.Handle(fixmsg.ExecutionReport{OrderID: "E1", ClOrdID: op.ClOrdID, ExecType: "2", OrdStatus: "2", LeavesQty: "0", CumQty: "1", LastQty: "1", LastPx: "1"}, op.Seq)
	// A stray late report for the same order must produce no further event.
	m.Handle(fixmsg.ExecutionReport{OrderID: "E1", ClOrdID: op.ClOrdID, ExecType: "2", OrdStatus: "2", LeavesQty: "0", CumQty: "1"}, op.Seq)

	finished := 0
	var totalFill fixcodec.Decimal
	for i, ev := range *events {
		if ev.State.Status == Finished {
			finished++
			if i != len(*events)-1 {
				t.Errorf("Finished event at index %d is not the last event", i)
			}
		}
		if ev.Fill != nil {
			total, err := addDecimalForTest(totalFill, ev.Fill.Quantity)
			if err != nil {
				t.Fatalf("bad fill quantity: %v", err)
			}
			totalFill = total
		}
	}
	if finished != 1 {
		t.Fatalf("got %d Finished events, want exactly 1", finished)
	}
	if totalFill != "1" {
		t.Errorf("summed fill quantity %q, want 1", totalFill)
	}
}

func TestManager_CancelExpired(t *testing.T) {
	sender := &fakeSender{sessionID: "s1"}
	m, _, _ := newTestManager(sender)

	ttl := time.Date(2026, 1, 1, 12, 5, 0, 0, time.UTC)
	op, err := m.Submit(SubmitRequest{UserID: "u1", Symbol: "X", Side: Buy, Qty: "1", Price: "1", OrdType: "2", ValidUntil: ttl})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	nos := sender.last().(fixmsg.NewOrderSingle)
	if !nos.ValidUntilTime.Equal(ttl) {
		t.Errorf("ValidUntilTime not carried on the wire: %+v", nos.ValidUntilTime)
	}
	m.Handle(fixmsg.ExecutionReport{OrderID: "E1", ClOrdID: op.ClOrdID, ExecType: "0", OrdStatus: "0", LeavesQty: "1", CumQty: "0"}, op.Seq)

	m.CancelExpired(op.ClOrdID)
	ocr, ok := sender.last().(fixmsg.OrderCancelRequest)
	if !ok || ocr.OrigClOrdID != op.ClOrdID {
		t.Fatalf("expected a cancel request for the expired order, got %+v", sender.last())
	}

	// With a cancel already inflight, a second expiry must not stack
	// another operation.
	sent := len(sender.sent)
	m.CancelExpired(op.ClOrdID)
	if len(sender.sent) != sent {
		t.Error("CancelExpired issued a second operation while one was pending")
	}

	// Once the order finishes, expiry is a silent no-op.
	m.Handle(fixmsg.ExecutionReport{OrderID: "E1", ClOrdID: ocr.ClOrdID, ExecType: "4", OrdStatus: "4", CumQty: "0"}, op.Seq)
	sent = len(sender.sent)
	m.CancelExpired(op.ClOrdID)
	if len(sender.sent) != sent {
		t.Error("CancelExpired acted on a finished order")
	}
}

func TestManager_MassStatusCompletion(t *testing.T) {
	sender := &fakeSender{sessionID: "s1"}
	m, _, _ := newTestManager(sender)
	var results []MassStatusResult
	m.SetMassStatusHandler(func(r MassStatusResult) { results = append(results, r) })

	m.TrackMassStatus("MS1")
	dsn := fixsession.DurableSeqNum{SessionID: "s1", SeqNum: 99}

	m.Handle(fixmsg.ExecutionReport{OrderID: "E1", ExecType: "I", OrdStatus: "0", MassStatusReqID: "MS1", TotNumReports: 2}, dsn)
	m.Handle(fixmsg.ExecutionReport{OrderID: "E2", ExecType: "I", OrdStatus: "0", MassStatusReqID: "MS1", TotNumReports: 2, LastRptRequested: true}, dsn)
	// A report for an untracked request id is ignored.
	m.Handle(fixmsg.ExecutionReport{OrderID: "E3", ExecType: "I", OrdStatus: "0", MassStatusReqID: "MS-unknown"}, dsn)

	if len(results) != 2 {
		t.Fatalf("got %d progress calls, want 2", len(results))
	}
	if results[0].Complete || results[0].ReportsReceived != 1 || results[0].TotNumReports != 2 {
		t.Errorf("unexpected first progress: %+v", results[0])
	}
	last := results[1]
	if !last.Complete || last.ReportsReceived != 2 || last.MassStatusReqID != "MS1" {
		t.Errorf("unexpected completion: %+v", last)
	}

	// Completion drops the tracker: further reports for MS1 are ignored.
	m.Handle(fixmsg.ExecutionReport{OrderID: "E4", ExecType: "I", OrdStatus: "0", MassStatusReqID: "MS1"}, dsn)
	if len(results) != 2 {
		t.Errorf("tracker survived completion: %d progress calls", len(results))
	}
}

func TestManager_BuilderQuirks(t *testing.T) {
	sender := &fakeSender{sessionID: "s1"}
	m, _, _ := newTestManager(sender)
	m.SetBuilderQuirks(BuilderQuirks{
		IdentifyByOrigClOrdID: true,
		ExtraOrderFields: func(qty string) map[string]string {
			return map[string]string{"MinQty": qty, "CoinType": "1"}
		},
	})

	op, err := m.Submit(SubmitRequest{UserID: "u1", Symbol: "X", Side: Buy, Qty: "0.25", Price: "1", OrdType: "2"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	nos := sender.last().(fixmsg.NewOrderSingle)
	if nos.MinQty != "0.25" || nos.CoinType != "1" {
		t.Errorf("extra order fields not applied: %+v", nos)
	}

	m.Handle(fixmsg.ExecutionReport{OrderID: "E1", ClOrdID: op.ClOrdID, ExecType: "0", OrdStatus: "0", LeavesQty: "0.25", CumQty: "0"}, op.Seq)

	// Replace so the current ClOrdID moves past the submit one, then cancel:
	// the quirk must pin OrigClOrdID to the submit-time handle and suppress
	// the exchange OrderID.
	repOp, err := m.Replace(op.ClOrdID, ReplaceRequest{Qty: "0.5", Price: "1", OrdType: "2"})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	rep := sender.last().(fixmsg.OrderCancelReplaceRequest)
	if rep.OrigClOrdID != op.ClOrdID || rep.OrderID != "" {
		t.Errorf("replace should identify by the original ClOrdID only: %+v", rep)
	}
	m.Handle(fixmsg.ExecutionReport{OrderID: "E1", ClOrdID: rep.ClOrdID, OrigClOrdID: op.ClOrdID, ExecType: "E", OrdStatus: "E", LeavesQty: "0.5", CumQty: "0"}, repOp.Seq)

	if _, err := m.Cancel(op.ClOrdID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	ocr := sender.last().(fixmsg.OrderCancelRequest)
	if ocr.OrigClOrdID != op.ClOrdID || ocr.OrderID != "" {
		t.Errorf("cancel should identify by the original ClOrdID only: %+v", ocr)
	}
}

// addDecimalForTest adds two Decimal strings via the same big.Rat path
// SubDecimal uses, so the test doesn't need its own decimal parser.
func addDecimalForTest(a, b fixcodec.Decimal) (fixcodec.Decimal, error) {
	if a == "" {
		a = "0"
	}
	neg, err := fixcodec.SubDecimal("0", b)
	if err != nil {
		return "", err
	}
	return fixcodec.SubDecimal(a, neg)
}
