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
	"strconv"
	"sync"
	"testing"

	"github.com/buybackoff/fixtrader/fixcodec"
	"github.com/buybackoff/fixtrader/fixmsg"
)

func makeTrades(n int) []Trade {
	out := make([]Trade, n)
	for i := range out {
		out[i] = Trade{
			Price:     fixcodec.Decimal(strconv.Itoa(50000 + i)),
			Size:      "0.1",
			EntryType: "2",
		}
	}
	return out
}

func TestTradeStore_RecentTradesNewestLast(t *testing.T) {
	store := NewTradeStore(100)
	store.AddTrades("BTC-USD", makeTrades(5), false, "req-1")

	got := store.RecentTrades("BTC-USD", 10)
	if len(got) != 5 {
		t.Fatalf("expected 5 trades, got %d", len(got))
	}
	for i, tr := range got {
		want := fixcodec.Decimal(strconv.Itoa(50000 + i))
		if tr.Price != want {
			t.Errorf("trade %d: expected price %s, got %s", i, want, tr.Price)
		}
	}
}

func TestTradeStore_RecentTradesHonorsLimit(t *testing.T) {
	store := NewTradeStore(100)
	store.AddTrades("BTC-USD", makeTrades(20), false, "req-1")

	got := store.RecentTrades("BTC-USD", 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 trades, got %d", len(got))
	}
	// The 3 newest, oldest first.
	if got[0].Price != "50017" || got[2].Price != "50019" {
		t.Errorf("expected the newest 3 trades, got %s..%s", got[0].Price, got[2].Price)
	}
}

func TestTradeStore_RingEvictsOldest(t *testing.T) {
	store := NewTradeStore(10)
	store.AddTrades("BTC-USD", makeTrades(25), false, "req-1")

	got := store.AllTrades()
	if len(got) != 10 {
		t.Fatalf("expected the ring to hold 10 trades, got %d", len(got))
	}
	if got[0].Price != "50015" {
		t.Errorf("expected oldest surviving price 50015, got %s", got[0].Price)
	}
	if got[9].Price != "50024" {
		t.Errorf("expected newest price 50024, got %s", got[9].Price)
	}
	if store.TotalAdded() != 25 {
		t.Errorf("expected TotalAdded=25, got %d", store.TotalAdded())
	}
}

func TestTradeStore_WrapAroundKeepsInsertionOrder(t *testing.T) {
	store := NewTradeStore(8)
	// Three batches, 13 inserts total, so head wraps mid-buffer. The
	// survivors must be the last 8 inserts in order: all of the second
	// batch, then the third.
	store.AddTrades("BTC-USD", makeTrades(5), false, "b1")
	store.AddTrades("BTC-USD", makeTrades(5), false, "b2")
	store.AddTrades("BTC-USD", makeTrades(3), false, "b3")

	got := store.AllTrades()
	if len(got) != 8 {
		t.Fatalf("expected 8 trades after wrap, got %d", len(got))
	}
	for i := 0; i < 5; i++ {
		if got[i].MDReqID != "b2" {
			t.Fatalf("trade %d: expected batch b2, got %s", i, got[i].MDReqID)
		}
	}
	for i := 5; i < 8; i++ {
		if got[i].MDReqID != "b3" {
			t.Fatalf("trade %d: expected batch b3, got %s", i, got[i].MDReqID)
		}
	}
	if got[0].Price != "50000" || got[4].Price != "50004" || got[7].Price != "50002" {
		t.Errorf("within-batch order lost: %s %s %s", got[0].Price, got[4].Price, got[7].Price)
	}
}

func TestTradeStore_FiltersBySymbol(t *testing.T) {
	store := NewTradeStore(100)
	store.AddTrades("BTC-USD", makeTrades(4), false, "req-btc")
	store.AddTrades("ETH-USD", makeTrades(6), false, "req-eth")

	if got := store.RecentTrades("BTC-USD", 100); len(got) != 4 {
		t.Errorf("expected 4 BTC trades, got %d", len(got))
	}
	if got := store.RecentTrades("ETH-USD", 100); len(got) != 6 {
		t.Errorf("expected 6 ETH trades, got %d", len(got))
	}
	if got := store.RecentTrades("SOL-USD", 100); got != nil {
		t.Errorf("expected nil for an unknown symbol, got %d trades", len(got))
	}
}

func TestTradeStore_EmptyStoreReturnsNil(t *testing.T) {
	store := NewTradeStore(16)
	if got := store.RecentTrades("BTC-USD", 10); got != nil {
		t.Error("expected nil from RecentTrades on an empty store")
	}
	if got := store.AllTrades(); got != nil {
		t.Error("expected nil from AllTrades on an empty store")
	}
}

func TestTradeStore_StampsBatchMetadata(t *testing.T) {
	store := NewTradeStore(16)
	store.AddTrades("BTC-USD", makeTrades(1), true, "req-snapshot")

	got := store.RecentTrades("BTC-USD", 1)
	if len(got) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(got))
	}
	tr := got[0]
	if !tr.Snapshot {
		t.Error("expected Snapshot=true")
	}
	if tr.MDReqID != "req-snapshot" {
		t.Errorf("expected MDReqID req-snapshot, got %s", tr.MDReqID)
	}
	if tr.Symbol != "BTC-USD" {
		t.Errorf("expected Symbol BTC-USD, got %s", tr.Symbol)
	}
	if tr.Received.IsZero() {
		t.Error("expected a receive timestamp")
	}
}

func TestTradeStore_SubscriptionCounters(t *testing.T) {
	store := NewTradeStore(16)
	store.AddSubscription("BTC-USD", "1", "req-1")

	store.AddTrades("BTC-USD", makeTrades(3), true, "req-1")
	store.AddTrades("BTC-USD", makeTrades(2), false, "req-1")
	// Updates attributed to an unknown request id must not disturb counters.
	store.AddTrades("BTC-USD", makeTrades(7), false, "req-unknown")

	sub, ok := store.GetSubscriptionStatus()["req-1"]
	if !ok {
		t.Fatal("subscription req-1 not tracked")
	}
	if sub.TotalUpdates != 5 {
		t.Errorf("expected 5 attributed updates, got %d", sub.TotalUpdates)
	}
	if !sub.SnapshotReceived {
		t.Error("expected SnapshotReceived after a snapshot batch")
	}
	if !sub.Active {
		t.Error("expected subscription to be active")
	}
}

func TestTradeStore_RemoveSubscription(t *testing.T) {
	store := NewTradeStore(16)
	store.AddSubscription("BTC-USD", "1", "req-1")
	store.AddSubscription("BTC-USD", "1", "req-2")
	store.AddSubscription("ETH-USD", "1", "req-3")

	store.RemoveSubscription("BTC-USD")
	subs := store.GetSubscriptionStatus()
	if len(subs) != 1 {
		t.Fatalf("expected 1 remaining subscription, got %d", len(subs))
	}
	if _, ok := subs["req-3"]; !ok {
		t.Error("expected the ETH subscription to survive")
	}

	store.RemoveSubscriptionByReqID("req-3")
	if len(store.GetSubscriptionStatus()) != 0 {
		t.Error("expected no subscriptions after removing req-3")
	}
}

func TestTradeStore_GetSubscriptionsBySymbolReturnsCopies(t *testing.T) {
	store := NewTradeStore(16)
	store.AddSubscription("BTC-USD", "1", "req-1")

	bySym := store.GetSubscriptionsBySymbol()
	if len(bySym["BTC-USD"]) != 1 {
		t.Fatalf("expected 1 BTC subscription, got %d", len(bySym["BTC-USD"]))
	}
	bySym["BTC-USD"][0].TotalUpdates = 999

	again := store.GetSubscriptionsBySymbol()
	if again["BTC-USD"][0].TotalUpdates != 0 {
		t.Error("mutating a returned subscription leaked into the store")
	}
}

func TestTradeFromMDEntry(t *testing.T) {
	tr := tradeFromMDEntry(fixmsg.MDEntry{
		EntryType:  "0",
		Price:      "36.08",
		Size:       "12",
		Time:       "10:30:00",
		PositionNo: "1",
		Aggressor:  "2",
	})
	if tr.EntryType != "0" || tr.Price != "36.08" || tr.Size != "12" {
		t.Errorf("unexpected flattening: %+v", tr)
	}
	if tr.Time != "10:30:00" || tr.Position != "1" || tr.Aggressor != "2" {
		t.Errorf("optional entry fields not carried over: %+v", tr)
	}
}

func TestTradeStore_ConcurrentReadersAndWriter(t *testing.T) {
	store := NewTradeStore(256)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			store.AddTrades("BTC-USD", makeTrades(10), false, "req-1")
		}
	}()
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = store.RecentTrades("BTC-USD", 10)
				_ = store.AllTrades()
				_ = store.GetSubscriptionStatus()
			}
		}()
	}
	wg.Wait()

	if store.TotalAdded() != 500 {
		t.Errorf("expected 500 total adds, got %d", store.TotalAdded())
	}
	if got := store.AllTrades(); len(got) != 256 {
		t.Errorf("expected a full ring of 256, got %d", len(got))
	}
}
