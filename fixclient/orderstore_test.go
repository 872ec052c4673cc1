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
	"sync"
	"testing"

	"github.com/buybackoff/fixtrader/fixcodec"
	"github.com/buybackoff/fixtrader/fixorder"
)

func newOrderEvent(handle, orderID string, status fixorder.Status) fixorder.Event {
	return fixorder.Event{
		Handle:  handle,
		OrderID: orderID,
		State: fixorder.State{
			Symbol:  "BTC-USD",
			Side:    fixorder.Buy,
			Status:  status,
			LeftQty: fixcodec.Decimal("0.01"),
			Price:   fixcodec.Decimal("50000"),
		},
	}
}

// TestOrderStore_UpdateFromEvent_CreatesThenUpdates verifies an unseen
// Handle creates an entry, and a later event with the same Handle updates
// it in place rather than creating a second one.
func TestOrderStore_UpdateFromEvent_CreatesThenUpdates(t *testing.T) {
	store := NewOrderStore()

	store.UpdateFromEvent(newOrderEvent("h1", "", fixorder.Created))
	store.UpdateFromEvent(newOrderEvent("h1", "ord-1", fixorder.Accepted))

	got := store.GetOrder("h1")
	if got == nil {
		t.Fatal("expected to retrieve order")
	}
	if got.OrderID != "ord-1" {
		t.Errorf("expected OrderID=ord-1, got %q", got.OrderID)
	}
	if got.Status != fixorder.Accepted.String() {
		t.Errorf("expected Status=Accepted, got %q", got.Status)
	}
	if len(store.GetAllOrders()) != 1 {
		t.Errorf("expected exactly one tracked order, got %d", len(store.GetAllOrders()))
	}
}

// TestOrderStore_GetOrder_ReturnsDefensiveCopy verifies that GetOrder returns
// a copy, not the original reference, so callers can't mutate internal state.
func TestOrderStore_GetOrder_ReturnsDefensiveCopy(t *testing.T) {
	store := NewOrderStore()
	store.UpdateFromEvent(newOrderEvent("h1", "", fixorder.Created))

	got := store.GetOrder("h1")
	got.Symbol = "MODIFIED"

	original := store.GetOrder("h1")
	if original.Symbol == "MODIFIED" {
		t.Error("GetOrder should return a defensive copy, but the original was modified")
	}
}

// TestOrderStore_GetOrder_NotFound verifies nil return for an unknown handle.
func TestOrderStore_GetOrder_NotFound(t *testing.T) {
	store := NewOrderStore()
	if store.GetOrder("nonexistent") != nil {
		t.Error("expected nil for non-existent order")
	}
}

// TestOrderStore_GetOrderByOrderID verifies lookup by exchange-assigned
// OrderID, which only becomes known once the exchange has acknowledged.
func TestOrderStore_GetOrderByOrderID(t *testing.T) {
	store := NewOrderStore()
	store.UpdateFromEvent(newOrderEvent("h1", "ord-1", fixorder.Accepted))

	got := store.GetOrderByOrderID("ord-1")
	if got == nil {
		t.Fatal("expected to retrieve order by OrderID")
	}
	if got.Handle != "h1" {
		t.Errorf("expected Handle=h1, got %q", got.Handle)
	}
}

// TestOrderStore_GetOpenOrders_ExcludesFinished verifies GetOpenOrders omits
// any order whose last reported Status is Finished.
func TestOrderStore_GetOpenOrders_ExcludesFinished(t *testing.T) {
	store := NewOrderStore()
	store.UpdateFromEvent(newOrderEvent("h1", "ord-1", fixorder.Accepted))
	store.UpdateFromEvent(newOrderEvent("h2", "ord-2", fixorder.Finished))

	open := store.GetOpenOrders()
	if len(open) != 1 {
		t.Fatalf("expected 1 open order, got %d", len(open))
	}
	if open[0].Handle != "h1" {
		t.Errorf("expected open order h1, got %q", open[0].Handle)
	}
}

// TestOrderStore_RemoveOrder verifies a removed handle is no longer
// retrievable by either index.
func TestOrderStore_RemoveOrder(t *testing.T) {
	store := NewOrderStore()
	store.UpdateFromEvent(newOrderEvent("h1", "ord-1", fixorder.Finished))

	store.RemoveOrder("h1")

	if store.GetOrder("h1") != nil {
		t.Error("expected order to be removed")
	}
	if store.GetOrderByOrderID("ord-1") != nil {
		t.Error("expected order to be unreachable by OrderID after removal")
	}
}

// TestOrderStore_UpdateFromEvent_CapturesFill verifies the last fill
// quantity/price are recorded when an event carries one.
func TestOrderStore_UpdateFromEvent_CapturesFill(t *testing.T) {
	store := NewOrderStore()
	ev := newOrderEvent("h1", "ord-1", fixorder.PartiallyFilled)
	ev.Fill = &fixorder.Fill{Quantity: fixcodec.Decimal("0.005"), Price: fixcodec.Decimal("50010")}

	store.UpdateFromEvent(ev)

	got := store.GetOrder("h1")
	if got.LastFillQty != fixcodec.Decimal("0.005") {
		t.Errorf("expected LastFillQty=0.005, got %q", got.LastFillQty)
	}
	if got.LastFillPrice != fixcodec.Decimal("50010") {
		t.Errorf("expected LastFillPrice=50010, got %q", got.LastFillPrice)
	}
}

// TestOrderStore_ConcurrentAccess exercises the store under concurrent
// writers and readers; the race detector, not an assertion, is what this
// test is for.
func TestOrderStore_ConcurrentAccess(t *testing.T) {
	store := NewOrderStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			handle := "h"
			store.UpdateFromEvent(newOrderEvent(handle, "ord", fixorder.Accepted))
		}(i)
		go func() {
			defer wg.Done()
			store.GetAllOrders()
			store.GetOpenOrders()
		}()
	}
	wg.Wait()
}
