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

	"github.com/buybackoff/fixtrader/fixcodec"
	"github.com/buybackoff/fixtrader/fixmsg"
)

// Trade is one market data entry — a book level or a trade print — folded
// out of a snapshot or incremental refresh and stamped with local receive
// time. Price and Size stay as exact decimal text; nothing in the display
// or persistence path needs float arithmetic on them.
type Trade struct {
	Received  time.Time
	Symbol    string
	Price     fixcodec.Decimal
	Size      fixcodec.Decimal
	Time      string // venue's MDEntryTime text, when sent
	Aggressor string
	MDReqID   string
	EntryType string // MDEntryType: 0=Bid, 1=Offer, 2=Trade, 4/5/7/8=OHLC, B=Volume
	Position  string // book position for bid/offer levels
	Snapshot  bool   // true if this entry came from a full refresh
}

// tradeFromMDEntry flattens a decoded fixmsg.MDEntry into the store's row
// shape. The symbol and request id live on the enclosing message, not the
// entry, so the caller supplies them.
func tradeFromMDEntry(e fixmsg.MDEntry) Trade {
	return Trade{
		Price:     e.Price,
		Size:      e.Size,
		Time:      e.Time,
		Aggressor: e.Aggressor,
		EntryType: e.EntryType,
		Position:  e.PositionNo,
	}
}

// TradeStore keeps the most recent market data entries in a fixed-capacity
// ring: the buffer is allocated once, inserts are O(1), and once full each
// insert overwrites the oldest entry. Every inbound market data message
// lands here, so the write path must not allocate or grow.
//
// One writer (the message pump) and any number of readers (the REPL's
// status/display commands) share the store under a RWMutex.
type TradeStore struct {
	mu            sync.RWMutex
	ring          []Trade
	head          int // index of the oldest entry
	count         int // live entries, 0..cap(ring)
	subscriptions map[string]*Subscription
	totalAdded    int64
}

// Subscription is the store's record of one active market data request.
type Subscription struct {
	LastUpdate       time.Time
	TotalUpdates     int64
	Symbol           string
	SubscriptionType string // SubscriptionRequestType(263) code
	MDReqID          string
	Active           bool
	SnapshotReceived bool
}

// NewTradeStore allocates a store holding at most capacity entries.
func NewTradeStore(capacity int) *TradeStore {
	return &TradeStore{
		ring:          make([]Trade, capacity),
		subscriptions: make(map[string]*Subscription),
	}
}

// AddTrades inserts a batch of entries for symbol, tagging each with the
// request id and one shared receive timestamp. If mdReqID names a tracked
// subscription its counters are updated as well.
func (ts *TradeStore) AddTrades(symbol string, trades []Trade, snapshot bool, mdReqID string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if sub, ok := ts.subscriptions[mdReqID]; ok {
		sub.LastUpdate = time.Now()
		sub.TotalUpdates += int64(len(trades))
		if snapshot {
			sub.SnapshotReceived = true
		}
	}

	now := time.Now()
	for _, t := range trades {
		t.Received = now
		t.Symbol = symbol
		t.MDReqID = mdReqID
		t.Snapshot = snapshot

		ts.ring[(ts.head+ts.count)%len(ts.ring)] = t
		if ts.count < len(ts.ring) {
			ts.count++
		} else {
			ts.head = (ts.head + 1) % len(ts.ring)
		}
		ts.totalAdded++
	}
}

// RecentTrades returns up to limit of the newest entries for symbol, oldest
// first. Two passes over the ring: one to size the result exactly, one to
// fill it back-to-front, so the whole call costs a single allocation.
func (ts *TradeStore) RecentTrades(symbol string, limit int) []Trade {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	n := 0
	for i := 0; i < ts.count && n < limit; i++ {
		if ts.at(ts.count - 1 - i).Symbol == symbol {
			n++
		}
	}
	if n == 0 {
		return nil
	}

	out := make([]Trade, n)
	w := n - 1
	for i := 0; i < ts.count && w >= 0; i++ {
		if e := ts.at(ts.count - 1 - i); e.Symbol == symbol {
			out[w] = e
			w--
		}
	}
	return out
}

// AllTrades copies out every buffered entry, oldest first.
func (ts *TradeStore) AllTrades() []Trade {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	if ts.count == 0 {
		return nil
	}
	out := make([]Trade, ts.count)
	for i := range out {
		out[i] = ts.at(i)
	}
	return out
}

// TotalAdded reports how many entries have ever been inserted, including
// ones since evicted from the ring.
func (ts *TradeStore) TotalAdded() int64 {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.totalAdded
}

// at indexes the ring in logical order: 0 is the oldest live entry. Callers
// must hold the lock.
func (ts *TradeStore) at(i int) Trade {
	return ts.ring[(ts.head+i)%len(ts.ring)]
}

// AddSubscription registers an outgoing market data request so later
// updates can be attributed to it.
func (ts *TradeStore) AddSubscription(symbol, subscriptionType, mdReqID string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.subscriptions[mdReqID] = &Subscription{
		Symbol:           symbol,
		SubscriptionType: subscriptionType,
		MDReqID:          mdReqID,
		Active:           true,
		LastUpdate:       time.Now(),
	}
	log.Printf("subscribed %s (type=%s, reqId=%s)", symbol, getSubscriptionTypeDesc(subscriptionType), mdReqID)
}

// RemoveSubscription drops every subscription registered for symbol.
func (ts *TradeStore) RemoveSubscription(symbol string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	for reqID, sub := range ts.subscriptions {
		if sub.Symbol == symbol {
			delete(ts.subscriptions, reqID)
			log.Printf("unsubscribed %s (reqId=%s, updates=%d)", symbol, reqID, sub.TotalUpdates)
		}
	}
}

// RemoveSubscriptionByReqID drops the one subscription identified by reqID.
func (ts *TradeStore) RemoveSubscriptionByReqID(reqID string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if sub, ok := ts.subscriptions[reqID]; ok {
		delete(ts.subscriptions, reqID)
		log.Printf("unsubscribed %s (reqId=%s)", sub.Symbol, reqID)
	}
}

// GetSubscriptionStatus returns a copy of every tracked subscription keyed
// by request id.
func (ts *TradeStore) GetSubscriptionStatus() map[string]*Subscription {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	out := make(map[string]*Subscription, len(ts.subscriptions))
	for reqID, sub := range ts.subscriptions {
		cp := *sub
		out[reqID] = &cp
	}
	return out
}

// GetSubscriptionsBySymbol groups copies of the tracked subscriptions by
// symbol, for the REPL's per-symbol unsubscribe and status commands.
func (ts *TradeStore) GetSubscriptionsBySymbol() map[string][]*Subscription {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	out := make(map[string][]*Subscription)
	for _, sub := range ts.subscriptions {
		cp := *sub
		out[sub.Symbol] = append(out[sub.Symbol], &cp)
	}
	return out
}
