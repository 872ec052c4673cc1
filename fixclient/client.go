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

package fixclient

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/buybackoff/fixtrader/fixdialect"
	"github.com/buybackoff/fixtrader/fixerr"
	"github.com/buybackoff/fixtrader/fixmsg"
	"github.com/buybackoff/fixtrader/fixorder"
	"github.com/buybackoff/fixtrader/fixpump"
	"github.com/buybackoff/fixtrader/fixsched"
	"github.com/buybackoff/fixtrader/fixsession"
	"github.com/buybackoff/fixtrader/fixstore"
	"github.com/buybackoff/fixtrader/fixtransport"
)

// MassCancelRequestType and OrderMassStatusType values this client sends.
// These are the standard FIX 4.4 codes; no exchange dialect overrides them.
const (
	massCancelAllOrders       = "7"
	massCancelOrdersForSymbol = "1"
	massStatusAllOrders       = "7"
)

// SubscriptionRequestType(263) values.
const (
	SubscriptionRequestTypeSnapshot    = "0"
	SubscriptionRequestTypeSubscribe   = "1"
	SubscriptionRequestTypeUnsubscribe = "2"
)

type jobKind int

const (
	jobHeartbeat jobKind = iota
	jobStatusSync
	jobOpTimeout
	jobOrderTTL
)

// schedJob is the value type pushed onto the generic fixsched.Scheduler;
// the scheduler itself knows nothing about FIX, so every concern it drives
// here (heartbeats, status sync, per-request timeouts, order TTL expiry)
// is distinguished by kind.
type schedJob struct {
	kind   jobKind
	op     fixorder.OrderOpID
	handle string // jobOrderTTL: the order to cancel at its deadline
}

// Client is the public facade: it wires a durable reconnecting connection,
// its message pump, the order manager, an optional audit-trail store, and a
// FIX-specific scheduler (heartbeats, per-request timeouts, periodic order
// status sync, order TTL expiry) into one trading session. The client
// answers an inbound TestRequest with a Heartbeat but never issues a
// TestRequest of its own.
type Client struct {
	cfg Config

	durable *fixsession.Durable
	pump    *fixpump.Pump
	mgr     *fixorder.Manager
	store   *fixstore.Store
	sched   *fixsched.Scheduler

	Orders *OrderStore
	Trades *TradeStore

	schedCancel chan struct{}
	schedDone   chan struct{}

	mu          sync.Mutex
	lastDSN     fixsession.DurableSeqNum
	lastAccount fixmsg.AccountInfoResponse
}

// NewClient wires a Client from cfg. storePath, if non-empty, opens a
// fixstore.Store so market data, order events, and account snapshots are
// persisted as they're observed.
func NewClient(cfg Config, storePath string) (*Client, error) {
	var store *fixstore.Store
	if storePath != "" {
		s, err := fixstore.Open(storePath)
		if err != nil {
			return nil, err
		}
		store = s
	}

	c := &Client{
		cfg:         cfg,
		store:       store,
		sched:       fixsched.New(),
		Orders:      NewOrderStore(),
		Trades:      NewTradeStore(10000),
		schedCancel: make(chan struct{}),
		schedDone:   make(chan struct{}),
	}

	c.durable = fixsession.NewDurable(c.connect, c.logon)
	ids := fixorder.NewClOrdIDGenerator(cfg.ClOrdIDPrefix, time.Now())
	header := fixmsg.Header{SenderCompID: cfg.SenderCompID, TargetCompID: cfg.TargetCompID}
	c.mgr = fixorder.NewManager(c.durable, ids, header, c.onOrderEvent, c.onOrderOp)
	c.mgr.SetMassStatusHandler(func(res fixorder.MassStatusResult) {
		if res.Complete {
			log.Printf("fixclient: mass status %s complete after %d reports", res.MassStatusReqID, res.ReportsReceived)
		}
	})
	d := cfg.dialect()
	c.mgr.SetBuilderQuirks(fixorder.BuilderQuirks{
		IdentifyByOrigClOrdID: d.IdentifyByOrigClOrdID,
		ExtraOrderFields:      d.ExtraOrderFields,
	})
	c.pump = fixpump.New(c.durable, c.dispatch)
	return c, nil
}

func (c *Client) connect() (*fixtransport.Transport, error) {
	return fixtransport.Dial(fixtransport.Config{
		Addr:   c.cfg.Addr,
		UseTLS: c.cfg.UseTLS,
		TLS:    c.cfg.TLS,
	})
}

// logon runs once per freshly dialed transport, as the Durable's
// Initializer: it sends the dialect-appropriate Logon and requires a Logon
// back before the session is considered up.
func (c *Client) logon(t *fixtransport.Transport) error {
	logon := buildLogon(c.cfg, time.Now(), 1)
	h := fixmsg.Header{SenderCompID: c.cfg.SenderCompID, TargetCompID: c.cfg.TargetCompID, SendingTime: time.Now().UTC()}
	if _, err := t.Send(h, logon); err != nil {
		return err
	}
	msg, _, err := t.Receive()
	if err != nil {
		return err
	}
	if _, ok := msg.(fixmsg.Logon); !ok {
		return fixerr.New(fixerr.KindUnexpectedMessage, "expected Logon reply to handshake")
	}
	displayConnectionSuccess()
	return nil
}

// Start launches the pump's receive loop and the scheduler's timer loop,
// each on its own goroutine. Call once, after NewClient.
func (c *Client) Start() {
	go c.pump.Run()
	go c.runScheduler()
}

// Dispose tears the client down: stops the scheduler and pump, disposes the
// durable connection (which aborts any in-flight read), and waits for both
// goroutines to exit before closing the store.
func (c *Client) Dispose() {
	close(c.schedCancel)
	c.pump.Stop()
	c.durable.Dispose()
	<-c.pump.Done()
	<-c.schedDone
	if c.store != nil {
		c.store.Close()
	}
}

func (c *Client) header() fixmsg.Header {
	return fixmsg.Header{SenderCompID: c.cfg.SenderCompID, TargetCompID: c.cfg.TargetCompID, SendingTime: time.Now().UTC()}
}

func (c *Client) runScheduler() {
	defer close(c.schedDone)
	hb := time.Duration(c.cfg.heartBtInt()) * time.Second
	c.sched.Push(schedJob{kind: jobHeartbeat}, time.Now().Add(hb))
	c.sched.Push(schedJob{kind: jobStatusSync}, time.Now().Add(c.cfg.statusSyncPeriod()))

	for {
		v, cancelled := c.sched.Wait(c.schedCancel)
		if cancelled {
			return
		}
		job := v.(schedJob)
		switch job.kind {
		case jobHeartbeat:
			if _, err := c.durable.Send(c.header(), fixmsg.Heartbeat{}); err != nil {
				log.Printf("fixclient: heartbeat send failed: %v", err)
			}
			c.sched.Push(schedJob{kind: jobHeartbeat}, time.Now().Add(hb))
		case jobStatusSync:
			if _, err := c.MassStatusRequest(); err != nil {
				log.Printf("fixclient: periodic status sync failed: %v", err)
			}
			c.sched.Push(schedJob{kind: jobStatusSync}, time.Now().Add(c.cfg.statusSyncPeriod()))
		case jobOpTimeout:
			c.mgr.ExpireOp(job.op)
		case jobOrderTTL:
			c.mgr.CancelExpired(job.handle)
		}
	}
}

// scheduleTimeout arms ExpireOp to fire after the configured request
// timeout. ExpireOp is a no-op if the operation has already resolved by
// then, so this never needs to be cancelled on the success path.
func (c *Client) scheduleTimeout(op fixorder.OrderOpID, err error) {
	if err != nil {
		return
	}
	c.sched.Push(schedJob{kind: jobOpTimeout, op: op}, time.Now().Add(c.cfg.requestTimeout()))
}

// --- Order entry ---

// Submit places a new order. The returned OrderOpID's ClOrdID is also the
// order's stable handle for Cancel/Replace/StatusRequest. If the request
// carries a ValidUntil deadline, an auto-cancel is scheduled for it.
func (c *Client) Submit(req fixorder.SubmitRequest) (fixorder.OrderOpID, error) {
	op, err := c.mgr.Submit(req)
	c.scheduleTimeout(op, err)
	if err == nil && !req.ValidUntil.IsZero() {
		c.sched.Push(schedJob{kind: jobOrderTTL, handle: op.ClOrdID}, req.ValidUntil)
	}
	return op, err
}

// Cancel requests cancellation of the order identified by handle.
func (c *Client) Cancel(handle string) (fixorder.OrderOpID, error) {
	op, err := c.mgr.Cancel(handle)
	c.scheduleTimeout(op, err)
	return op, err
}

// Replace requests a quantity/price amendment of the order identified by
// handle.
func (c *Client) Replace(handle string, req fixorder.ReplaceRequest) (fixorder.OrderOpID, error) {
	op, err := c.mgr.Replace(handle, req)
	c.scheduleTimeout(op, err)
	return op, err
}

// StatusRequest asks the exchange to report the order's current state.
func (c *Client) StatusRequest(handle string) (fixorder.OrderOpID, error) {
	op, err := c.mgr.StatusRequest(handle)
	c.scheduleTimeout(op, err)
	return op, err
}

// MassStatusRequest asks the exchange to report every open order. Called
// automatically by the scheduler every OrderStatusSyncPeriod, and may also
// be invoked directly. The resulting report batch is tracked by the order
// manager, which announces progress and completion via its mass-status
// handler.
func (c *Client) MassStatusRequest() (*fixsession.DurableSeqNum, error) {
	reqID := uuid.NewString()
	msg := fixmsg.OrderMassStatusRequest{MassStatusReqID: reqID, MassStatusType: massStatusAllOrders}
	dsn, err := c.durable.Send(c.header(), msg)
	if err == nil && dsn != nil {
		c.mgr.TrackMassStatus(reqID)
	}
	return dsn, err
}

// MassCancelRequest cancels every open order, or every open order for
// symbol if symbol is non-empty.
func (c *Client) MassCancelRequest(symbol string) (*fixsession.DurableSeqNum, error) {
	reqType := massCancelAllOrders
	if symbol != "" {
		reqType = massCancelOrdersForSymbol
	}
	msg := fixmsg.OrderMassCancelRequest{
		ClOrdID:               uuid.NewString(),
		MassCancelRequestType: reqType,
		Symbol:                symbol,
	}
	return c.durable.Send(c.header(), msg)
}

// --- Market data ---

// SubscribeMarketData requests depth/trade data for symbol. If subscribe is
// false, or the configured dialect's Quirks.SnapshotOnlyDepth forbids
// incremental subscriptions (OKCoin), the request is downgraded to a single
// snapshot. Returns the MDReqID that identifies the (un)subscription.
func (c *Client) SubscribeMarketData(symbol string, subscribe bool, depth int64, entryTypes []string) (string, error) {
	reqType := SubscriptionRequestTypeSubscribe
	if !subscribe || c.cfg.dialect().SnapshotOnlyDepth {
		reqType = SubscriptionRequestTypeSnapshot
	}
	reqID := uuid.NewString()
	msg := fixmsg.MarketDataRequest{
		MDReqID:                 reqID,
		SubscriptionRequestType: reqType,
		MarketDepth:             depth,
		EntryTypes:              entryTypes,
		Symbol:                  symbol,
	}
	if _, err := c.durable.Send(c.header(), msg); err != nil {
		return "", err
	}
	c.Trades.AddSubscription(symbol, reqType, reqID)
	return reqID, nil
}

// UnsubscribeMarketData cancels a previously established subscription.
func (c *Client) UnsubscribeMarketData(symbol, mdReqID string) error {
	msg := fixmsg.MarketDataRequest{
		MDReqID:                 mdReqID,
		SubscriptionRequestType: SubscriptionRequestTypeUnsubscribe,
		Symbol:                  symbol,
	}
	_, err := c.durable.Send(c.header(), msg)
	c.Trades.RemoveSubscriptionByReqID(mdReqID)
	return err
}

// --- Account info (OKCoin/Huobi/BTCC dialects only; Coinbase carries
// account/balance information on the Logon handshake itself) ---

// RequestAccountInfo queries the configured dialect's account balance
// endpoint. The response is delivered asynchronously and is readable
// afterward via LastAccountInfo.
func (c *Client) RequestAccountInfo() error {
	if c.cfg.Extension == fixdialect.None {
		return fixerr.New(fixerr.KindInternalError, "account info request is not supported by the Coinbase dialect")
	}

	req := fixmsg.AccountInfoRequest{Account: c.cfg.Account, AccessKey: c.cfg.ApiKey}
	d := c.cfg.dialect()
	if d.Signer != nil {
		sig := d.Sign(signableFields(c.cfg, time.Now(), fixmsg.MsgTypeAccountInfoRequest, 0, "accountinfo"))
		if d.Account != nil {
			req.Account = d.Account(c.cfg.ApiKey, sig)
		}
	}
	_, err := c.durable.Send(c.header(), req)
	return err
}

// LastAccountInfo returns the most recently received account balance
// snapshot, or the zero value if none has arrived yet.
func (c *Client) LastAccountInfo() fixmsg.AccountInfoResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastAccount
}

// --- Inbound dispatch: the pump's single Handler ---

func (c *Client) dispatch(msg fixmsg.Message, h fixmsg.Header, dsn fixsession.DurableSeqNum) {
	c.mu.Lock()
	c.lastDSN = dsn
	c.mu.Unlock()

	switch m := msg.(type) {
	case fixmsg.TestRequest:
		if _, err := c.durable.Send(c.header(), fixmsg.Heartbeat{TestReqID: m.TestReqID}); err != nil {
			log.Printf("fixclient: heartbeat reply to test request failed: %v", err)
		}
	case fixmsg.ExecutionReport:
		displayExecutionReport(m)
		c.mgr.Handle(m, dsn)
	case fixmsg.OrderCancelReject:
		displayOrderCancelReject(m)
		c.mgr.Handle(m, dsn)
	case fixmsg.Reject:
		displaySessionReject(m)
		c.mgr.Handle(m, dsn)
	case fixmsg.MarketDataSnapshotFullRefresh:
		c.handleSnapshot(m)
	case fixmsg.MarketDataIncrementalRefresh:
		c.handleIncremental(m)
	case fixmsg.OrderMassCancelReport:
		displayMassCancelReport(m)
	case fixmsg.MarketDataRequestReject:
		displayMarketDataReject(m.MDReqID, m.MDReqRejReason, getMdReqRejReasonDesc(m.MDReqRejReason), m.Text)
		c.Trades.RemoveSubscriptionByReqID(m.MDReqID)
	case fixmsg.AccountInfoResponse:
		displayAccountInfo(m)
		c.mu.Lock()
		c.lastAccount = m
		c.mu.Unlock()
		if c.store != nil {
			if err := c.store.StoreAccountInfo(c.cfg.Extension, m); err != nil {
				log.Printf("fixclient: store account info: %v", err)
			}
		}
	case fixmsg.Heartbeat, fixmsg.Logon, fixmsg.SequenceReset, fixmsg.ResendRequest:
		// session-level housekeeping only; Receive itself already keeps the
		// connection's read loop alive.
	default:
		log.Printf("fixclient: unhandled message type %s", msg.MsgType())
	}
}

func (c *Client) onOrderEvent(ev fixorder.Event) {
	c.Orders.UpdateFromEvent(ev)
	if ev.State.Status == fixorder.Finished {
		c.Orders.RemoveOrder(ev.Handle)
	}
	if c.store != nil {
		c.mu.Lock()
		dsn := c.lastDSN
		c.mu.Unlock()
		if err := c.store.StoreOrderEvent(ev, dsn); err != nil {
			log.Printf("fixclient: store order event: %v", err)
		}
	}
}

func (c *Client) onOrderOp(res fixorder.OpResult) {
	if res.Status != fixerr.RequestOK {
		log.Printf("fixclient: order operation %s resolved %s", res.Op.ClOrdID, res.Status)
	}
}

func (c *Client) handleSnapshot(m fixmsg.MarketDataSnapshotFullRefresh) {
	trades := make([]Trade, 0, len(m.Entries))
	for _, e := range m.Entries {
		trades = append(trades, tradeFromMDEntry(e))
	}
	displayMarketDataReceived(fixmsg.MsgTypeMarketDataSnapshot, m.Symbol, m.MDReqID, len(trades), 0)
	displaySnapshotTrades(trades, m.Symbol)
	c.Trades.AddTrades(m.Symbol, trades, true, m.MDReqID)
	if c.store != nil {
		if err := c.store.StoreSnapshot(m); err != nil {
			log.Printf("fixclient: store market data snapshot: %v", err)
		}
	}
}

func (c *Client) handleIncremental(m fixmsg.MarketDataIncrementalRefresh) {
	trades := make([]Trade, 0, len(m.Entries))
	for _, e := range m.Entries {
		trades = append(trades, tradeFromMDEntry(e))
	}
	displayIncrementalTrades(m.Symbol, trades)
	c.Trades.AddTrades(m.Symbol, trades, false, "")
	if c.store != nil {
		if err := c.store.StoreIncremental(m); err != nil {
			log.Printf("fixclient: store market data incremental: %v", err)
		}
	}
}
