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
	"log"
	"sync"
	"time"

	"github.com/buybackoff/fixtrader/fixcodec"
	"github.com/buybackoff/fixtrader/fixerr"
	"github.com/buybackoff/fixtrader/fixmsg"
	"github.com/buybackoff/fixtrader/fixsession"
)

// Sender is the subset of fixsession.Durable the manager needs to place
// outbound requests. Send is non-blocking: a nil *DurableSeqNum with a nil
// error means "not currently connected".
type Sender interface {
	Send(h fixmsg.Header, msg fixmsg.Message) (*fixsession.DurableSeqNum, error)
}

// SubmitRequest describes a new order to place.
type SubmitRequest struct {
	UserID         string
	Symbol         string
	Side           Side
	Qty            fixcodec.Decimal
	Price          fixcodec.Decimal
	OrdType        string
	TimeInForce    string
	Account        string
	HandlInst      string
	ExecInst       string
	TargetStrategy string

	// ValidUntil, if non-zero, is the order's time-to-live deadline: it is
	// sent on the wire as ValidUntilTime(62), and the caller is expected to
	// schedule CancelExpired for the same instant.
	ValidUntil time.Time
}

// ReplaceRequest describes a quantity/price amendment.
type ReplaceRequest struct {
	Qty     fixcodec.Decimal
	Price   fixcodec.Decimal
	OrdType string
}

// Manager is a triple-indexed registry of open orders (by exchange
// OrderID, by ClOrdID, and by the DurableSeqNum of each inflight request),
// and the state machine that applies inbound reports to them. All reads and
// writes happen under a single mutex; callbacks run outside it but from the
// caller's own goroutine, so events for every order are totally ordered as
// long as Handle is only ever invoked from one place (the message pump).
type Manager struct {
	mu              sync.Mutex
	byOrderID       map[string]*order
	byClOrdID       map[string]*order
	byDurableSeqNum map[fixsession.DurableSeqNum]*order
	massStatus      map[string]*MassStatusResult

	send   Sender
	ids    *ClOrdIDGenerator
	header fixmsg.Header // SenderCompID/TargetCompID template; MsgSeqNum/SendingTime are per-send
	quirks BuilderQuirks
	now    func() time.Time

	onEvent      Handler
	onOp         OpHandler
	onMassStatus MassStatusHandler
}

// NewManager constructs an empty Manager. header supplies the
// SenderCompID/TargetCompID used on every outgoing message; onEvent and
// onOp may be nil if the caller doesn't need one of the two callback
// streams.
func NewManager(send Sender, ids *ClOrdIDGenerator, header fixmsg.Header, onEvent Handler, onOp OpHandler) *Manager {
	return &Manager{
		byOrderID:       make(map[string]*order),
		byClOrdID:       make(map[string]*order),
		byDurableSeqNum: make(map[fixsession.DurableSeqNum]*order),
		massStatus:      make(map[string]*MassStatusResult),
		send:            send,
		ids:             ids,
		header:          header,
		now:             time.Now,
		onEvent:         onEvent,
		onOp:            onOp,
	}
}

// SetBuilderQuirks installs venue-specific message-building adjustments.
// Call before the first Submit; quirks are read without locking.
func (m *Manager) SetBuilderQuirks(q BuilderQuirks) {
	m.quirks = q
}

// SetMassStatusHandler installs the mass-status progress callback. Call
// before the first TrackMassStatus; the handler is read without locking.
func (m *Manager) SetMassStatusHandler(h MassStatusHandler) {
	m.onMassStatus = h
}

// TrackMassStatus registers an outgoing OrderMassStatusRequest so the
// execution reports it triggers can be counted and the batch's completion
// detected.
func (m *Manager) TrackMassStatus(reqID string) {
	m.mu.Lock()
	m.massStatus[reqID] = &MassStatusResult{MassStatusReqID: reqID}
	m.mu.Unlock()
}

// noteMassStatusReport folds one mass-status-correlated report into its
// tracked request, firing the progress handler and dropping the tracker
// once the batch is complete.
func (m *Manager) noteMassStatusReport(er fixmsg.ExecutionReport) {
	m.mu.Lock()
	res, ok := m.massStatus[er.MassStatusReqID]
	if !ok {
		m.mu.Unlock()
		return
	}
	res.ReportsReceived++
	if er.TotNumReports != 0 {
		res.TotNumReports = er.TotNumReports
	}
	if er.LastRptRequested || (res.TotNumReports > 0 && res.ReportsReceived >= res.TotNumReports) {
		res.Complete = true
		delete(m.massStatus, er.MassStatusReqID)
	}
	snapshot := *res
	m.mu.Unlock()

	if m.onMassStatus != nil {
		m.onMassStatus(snapshot)
	}
}

func (m *Manager) sendHeader() fixmsg.Header {
	h := m.header
	h.SendingTime = m.now().UTC()
	return h
}

// Submit places a new order and returns the OrderOp tracking it; the
// returned handle (op.ClOrdID) is also the order's stable identity for
// Cancel/Replace/StatusRequest.
func (m *Manager) Submit(req SubmitRequest) (OrderOpID, error) {
	clOrdID := m.ids.Next()
	o := &order{
		handle: clOrdID,
		state: State{
			UserID:  req.UserID,
			Symbol:  req.Symbol,
			Side:    req.Side,
			Status:  Created,
			LeftQty: req.Qty,
			Price:   req.Price,
		},
	}
	o.addClOrdID(clOrdID)

	msg := fixmsg.NewOrderSingle{
		ClOrdID:        clOrdID,
		Account:        req.Account,
		Symbol:         req.Symbol,
		Side:           req.Side.wireCode(),
		TransactTime:   m.now(),
		OrderQty:       req.Qty,
		OrdType:        req.OrdType,
		Price:          req.Price,
		TimeInForce:    req.TimeInForce,
		HandlInst:      req.HandlInst,
		ExecInst:       req.ExecInst,
		TargetStrategy: req.TargetStrategy,
		ValidUntilTime: req.ValidUntil,
	}
	if m.quirks.ExtraOrderFields != nil {
		extra := m.quirks.ExtraOrderFields(string(req.Qty))
		msg.MinQty = fixcodec.Decimal(extra["MinQty"])
		msg.CoinType = extra["CoinType"]
	}

	dsn, err := m.send.Send(m.sendHeader(), msg)
	if err != nil {
		return OrderOpID{}, err
	}
	if dsn == nil {
		return OrderOpID{}, fixerr.New(fixerr.KindInternalError, "not connected")
	}

	op := OrderOpID{Seq: *dsn, ClOrdID: clOrdID}
	m.mu.Lock()
	o.pending = &op
	m.byClOrdID[clOrdID] = o
	m.byDurableSeqNum[*dsn] = o
	m.mu.Unlock()
	return op, nil
}

// beginOp locks the order identified by handle, verifies no OrderOp is
// already inflight, and marks a placeholder pending op before
// unlocking so concurrent callers fail fast instead of racing on the
// network round trip. The caller must finish with endOp.
func (m *Manager) beginOp(handle string) (*order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byClOrdID[handle]
	if !ok {
		return nil, fixerr.New(fixerr.KindInternalError, "unknown order handle")
	}
	if o.pending != nil {
		return nil, fixerr.New(fixerr.KindInternalError, "an operation is already inflight for this order")
	}
	o.pending = &OrderOpID{} // placeholder: blocks a racing beginOp, seq filled in by endOp
	return o, nil
}

// endOp installs the real OrderOpID on success, or clears the placeholder
// on failure so a later call can retry.
func (m *Manager) endOp(o *order, clOrdID string, dsn *fixsession.DurableSeqNum, err error) (OrderOpID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil || dsn == nil {
		o.pending = nil
		if err != nil {
			return OrderOpID{}, err
		}
		return OrderOpID{}, fixerr.New(fixerr.KindInternalError, "not connected")
	}
	op := OrderOpID{Seq: *dsn, ClOrdID: clOrdID}
	o.addClOrdID(clOrdID)
	o.pending = &op
	m.byClOrdID[clOrdID] = o
	m.byDurableSeqNum[*dsn] = o
	return op, nil
}

// Cancel requests cancellation of the order identified by handle.
func (m *Manager) Cancel(handle string) (OrderOpID, error) {
	o, err := m.beginOp(handle)
	if err != nil {
		return OrderOpID{}, err
	}

	m.mu.Lock()
	origClOrdID, orderID, symbol, side := o.clOrdID, o.orderID, o.state.Symbol, o.state.Side
	m.mu.Unlock()
	if m.quirks.IdentifyByOrigClOrdID {
		origClOrdID, orderID = handle, ""
	}

	clOrdID := m.ids.Next()
	msg := fixmsg.OrderCancelRequest{
		OrigClOrdID:  origClOrdID,
		ClOrdID:      clOrdID,
		OrderID:      orderID,
		Symbol:       symbol,
		Side:         side.wireCode(),
		TransactTime: m.now(),
	}
	dsn, sendErr := m.send.Send(m.sendHeader(), msg)
	return m.endOp(o, clOrdID, dsn, sendErr)
}

// Replace requests a quantity/price amendment of the order identified by
// handle.
func (m *Manager) Replace(handle string, req ReplaceRequest) (OrderOpID, error) {
	o, err := m.beginOp(handle)
	if err != nil {
		return OrderOpID{}, err
	}

	m.mu.Lock()
	origClOrdID, orderID, symbol, side := o.clOrdID, o.orderID, o.state.Symbol, o.state.Side
	m.mu.Unlock()
	if m.quirks.IdentifyByOrigClOrdID {
		origClOrdID, orderID = handle, ""
	}

	clOrdID := m.ids.Next()
	msg := fixmsg.OrderCancelReplaceRequest{
		OrigClOrdID:  origClOrdID,
		ClOrdID:      clOrdID,
		OrderID:      orderID,
		Symbol:       symbol,
		Side:         side.wireCode(),
		TransactTime: m.now(),
		OrderQty:     req.Qty,
		OrdType:      req.OrdType,
		Price:        req.Price,
	}
	dsn, sendErr := m.send.Send(m.sendHeader(), msg)
	return m.endOp(o, clOrdID, dsn, sendErr)
}

// StatusRequest asks the exchange to report the order's current state.
func (m *Manager) StatusRequest(handle string) (OrderOpID, error) {
	o, err := m.beginOp(handle)
	if err != nil {
		return OrderOpID{}, err
	}

	m.mu.Lock()
	orderID, symbol, side := o.orderID, o.state.Symbol, o.state.Side
	m.mu.Unlock()

	clOrdID := m.ids.Next()
	msg := fixmsg.OrderStatusRequest{
		OrderID: orderID,
		ClOrdID: clOrdID,
		Symbol:  symbol,
		Side:    side.wireCode(),
	}
	dsn, sendErr := m.send.Send(m.sendHeader(), msg)
	return m.endOp(o, clOrdID, dsn, sendErr)
}

// ExpireOp is called by a scheduler-driven timeout: if op is still the
// order's pending operation, it is cleared and reported Unknown, but the
// order itself is left exactly as the exchange last reported it.
func (m *Manager) ExpireOp(op OrderOpID) {
	m.mu.Lock()
	o := m.byDurableSeqNum[op.Seq]
	if o == nil || o.pending == nil || o.pending.ClOrdID != op.ClOrdID {
		m.mu.Unlock()
		return
	}
	o.pending = nil
	delete(m.byDurableSeqNum, op.Seq)
	m.mu.Unlock()

	if m.onOp != nil {
		m.onOp(OpResult{Op: op, Status: fixerr.RequestUnknown})
	}
}

// CancelExpired is invoked by a scheduler when an order's time-to-live
// deadline passes: if the order is still tracked, a cancel request is
// issued for it. Orders that already reached Finished are silently ignored,
// and an order with another operation inflight keeps that operation — the
// exchange's eventual report settles the order either way.
func (m *Manager) CancelExpired(handle string) {
	m.mu.Lock()
	o, tracked := m.byClOrdID[handle]
	pending := tracked && o.pending != nil
	m.mu.Unlock()

	if !tracked || pending {
		return
	}
	if _, err := m.Cancel(handle); err != nil {
		log.Printf("fixorder: ttl cancel of %s failed: %v", handle, err)
	}
}

// finalize removes o from every index. Must be called with mu held.
func (m *Manager) finalize(o *order) {
	if o.orderID != "" {
		delete(m.byOrderID, o.orderID)
	}
	for _, id := range o.clOrdIDs {
		delete(m.byClOrdID, id)
	}
	if o.pending != nil {
		delete(m.byDurableSeqNum, o.pending.Seq)
		o.pending = nil
	}
}

// resolveOrder applies the three correlation rules in order: RefSeqNum,
// then ClOrdID, then OrigClOrdID. If the first two both match but disagree,
// the match is ambiguous and nil is returned. Must be called with mu held.
func (m *Manager) resolveOrder(sessionID string, refSeqNum int64, clOrdID, origClOrdID string) *order {
	var byRef *order
	if refSeqNum != 0 {
		byRef = m.byDurableSeqNum[fixsession.DurableSeqNum{SessionID: sessionID, SeqNum: refSeqNum}]
	}
	var byCl *order
	if clOrdID != "" {
		byCl = m.byClOrdID[clOrdID]
	}
	if byRef != nil && byCl != nil && byRef != byCl {
		log.Printf("fixorder: ambiguous correlation for clordid=%s refseqnum=%d, dropping", clOrdID, refSeqNum)
		return nil
	}
	if byRef != nil {
		return byRef
	}
	if byCl != nil {
		return byCl
	}
	if origClOrdID != "" {
		return m.byClOrdID[origClOrdID]
	}
	return nil
}

// Handle dispatches one inbound message to the appropriate update logic.
// dsn is the DurableSeqNum the message itself arrived under, used to scope
// RefSeqNum-based correlation to the session that delivered it. Call this
// only from the single serialization path that drains the message pump.
func (m *Manager) Handle(msg fixmsg.Message, dsn fixsession.DurableSeqNum) {
	switch v := msg.(type) {
	case fixmsg.ExecutionReport:
		m.handleExecutionReport(v, dsn)
	case fixmsg.OrderCancelReject:
		m.handleOrderCancelReject(v, dsn)
	case fixmsg.Reject:
		m.handleSessionReject(v, dsn)
	}
}

func (m *Manager) handleExecutionReport(er fixmsg.ExecutionReport, dsn fixsession.DurableSeqNum) {
	if er.MassStatusReqID != "" {
		m.noteMassStatusReport(er)
	}

	m.mu.Lock()
	o := m.resolveOrder(dsn.SessionID, 0, er.ClOrdID, er.OrigClOrdID)
	if o == nil {
		m.mu.Unlock()
		log.Printf("fixorder: execution report for unknown order clordid=%s origclordid=%s", er.ClOrdID, er.OrigClOrdID)
		return
	}

	if er.OrderID != "" {
		if existing, ok := m.byOrderID[er.OrderID]; ok && existing != o {
			m.mu.Unlock()
			log.Printf("fixorder: orderid %s already bound to a different order, dropping report", er.OrderID)
			return
		}
		if o.orderID == "" {
			o.orderID = er.OrderID
			m.byOrderID[er.OrderID] = o
		}
	}

	newStatus := o.state.Status
	if st, ok := statusFromOrdStatus(er.OrdStatus); ok {
		newStatus = st
	}

	var fillEvt *Fill
	if er.CumQty != "" {
		if cmp, cerr := fixcodec.CompareDecimal(er.CumQty, o.state.FillQty); cerr == nil && cmp > 0 {
			if delta, derr := fixcodec.SubDecimal(er.CumQty, o.state.FillQty); derr == nil {
				fillEvt = &Fill{Quantity: delta, Price: er.LastPx}
			}
		}
		o.state.FillQty = er.CumQty
	}
	leavesIsZero := false
	if er.LeavesQty != "" {
		if cmp, cerr := fixcodec.CompareDecimal(er.LeavesQty, "0"); cerr == nil && cmp == 0 {
			leavesIsZero = true
		}
	}
	if er.LeavesQty != "" && !(newStatus == TearingDown && leavesIsZero) {
		o.state.LeftQty = er.LeavesQty
	}
	if er.Price != "" {
		o.state.Price = er.Price
	}
	o.state.Status = newStatus

	var resolved *OpResult
	if o.pending != nil && o.pending.ClOrdID == er.ClOrdID {
		status := fixerr.RequestOK
		if er.ExecType == "8" || er.OrdRejReason != "" {
			status = fixerr.RequestError
		}
		resolved = &OpResult{Op: *o.pending, Status: status}
		delete(m.byDurableSeqNum, o.pending.Seq)
		o.pending = nil
	}

	// A report that isn't Created or Finished but carries no order_id means
	// the New Order Single it answers was malformed; there is nothing left
	// to track.
	if o.orderID == "" && o.state.Status != Created && o.state.Status != Finished {
		o.state.Status = Finished
	}
	if o.state.Status == Finished {
		m.finalize(o)
	}

	state, handle, orderID := o.state, o.handle, o.orderID
	m.mu.Unlock()

	if m.onEvent != nil {
		m.onEvent(Event{Handle: handle, OrderID: orderID, State: state, Fill: fillEvt})
	}
	if resolved != nil && m.onOp != nil {
		m.onOp(*resolved)
	}
}

func (m *Manager) handleOrderCancelReject(rej fixmsg.OrderCancelReject, dsn fixsession.DurableSeqNum) {
	m.mu.Lock()
	o := m.resolveOrder(dsn.SessionID, 0, rej.ClOrdID, rej.OrigClOrdID)
	if o == nil {
		m.mu.Unlock()
		log.Printf("fixorder: cancel reject for unknown order clordid=%s origclordid=%s", rej.ClOrdID, rej.OrigClOrdID)
		return
	}

	var resolved *OpResult
	if o.pending != nil && o.pending.ClOrdID == rej.ClOrdID {
		resolved = &OpResult{Op: *o.pending, Status: fixerr.RequestError}
		delete(m.byDurableSeqNum, o.pending.Seq)
		o.pending = nil
	}

	if cancelRejectIsTerminal(rej.CxlRejReason) {
		o.state.Status = Finished
		m.finalize(o)
	}

	state, handle, orderID := o.state, o.handle, o.orderID
	m.mu.Unlock()

	if resolved != nil && m.onOp != nil {
		m.onOp(*resolved)
	}
	if state.Status == Finished && m.onEvent != nil {
		m.onEvent(Event{Handle: handle, OrderID: orderID, State: state})
	}
}

func (m *Manager) handleSessionReject(rej fixmsg.Reject, dsn fixsession.DurableSeqNum) {
	m.mu.Lock()
	o := m.resolveOrder(dsn.SessionID, rej.RefSeqNum, "", "")
	if o == nil {
		m.mu.Unlock()
		log.Printf("fixorder: session reject refseqnum=%d has no matching order", rej.RefSeqNum)
		return
	}

	var resolved *OpResult
	if o.pending != nil {
		resolved = &OpResult{Op: *o.pending, Status: fixerr.RequestError}
		delete(m.byDurableSeqNum, o.pending.Seq)
		o.pending = nil
	}

	// A malformed request can only mean the order never reached the
	// exchange if it was never acknowledged.
	if o.orderID == "" {
		o.state.Status = Finished
		m.finalize(o)
	}

	state, handle, orderID := o.state, o.handle, o.orderID
	m.mu.Unlock()

	if resolved != nil && m.onOp != nil {
		m.onOp(*resolved)
	}
	if state.Status == Finished && m.onEvent != nil {
		m.onEvent(Event{Handle: handle, OrderID: orderID, State: state})
	}
}
