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

// OrderStore is a read-side cache of order state, kept in sync with
// fixorder.Manager's authoritative state machine via UpdateFromEvent. It
// exists for display and lookup (the REPL's "orders" command, status
// queries) — the manager itself, not this cache, is what Cancel/Replace
// correlate against.
package fixclient

import (
	"sync"
	"time"

	"github.com/buybackoff/fixtrader/fixcodec"
	"github.com/buybackoff/fixtrader/fixorder"
)

// Order is a display snapshot of one tracked order.
type Order struct {
	CreatedAt time.Time
	UpdatedAt time.Time

	Handle  string // the ClOrdID the order was originally submitted under
	OrderID string
	UserID  string
	Symbol  string
	Side    string
	Status  string

	LeftQty fixcodec.Decimal
	FillQty fixcodec.Decimal
	Price   fixcodec.Decimal

	LastFillQty   fixcodec.Decimal
	LastFillPrice fixcodec.Decimal
}

// OrderStore provides thread-safe storage of order display snapshots, keyed
// by Handle.
type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]*Order
}

// NewOrderStore creates an empty OrderStore.
func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[string]*Order)}
}

// UpdateFromEvent folds one fixorder.Event into the cached snapshot for its
// Handle, creating the entry on first sight, and returns the updated copy.
func (os *OrderStore) UpdateFromEvent(ev fixorder.Event) *Order {
	os.mu.Lock()
	defer os.mu.Unlock()

	o, exists := os.orders[ev.Handle]
	if !exists {
		o = &Order{Handle: ev.Handle, CreatedAt: time.Now()}
		os.orders[ev.Handle] = o
	}
	o.UpdatedAt = time.Now()
	o.OrderID = ev.OrderID
	o.UserID = ev.State.UserID
	o.Symbol = ev.State.Symbol
	o.Side = ev.State.Side.String()
	o.Status = ev.State.Status.String()
	o.LeftQty = ev.State.LeftQty
	o.FillQty = ev.State.FillQty
	o.Price = ev.State.Price
	if ev.Fill != nil {
		o.LastFillQty = ev.Fill.Quantity
		o.LastFillPrice = ev.Fill.Price
	}

	copy := *o
	return &copy
}

// GetOrder retrieves a snapshot by Handle.
func (os *OrderStore) GetOrder(handle string) *Order {
	os.mu.RLock()
	defer os.mu.RUnlock()
	if o, exists := os.orders[handle]; exists {
		copy := *o
		return &copy
	}
	return nil
}

// GetOrderByOrderID retrieves a snapshot by exchange OrderID.
func (os *OrderStore) GetOrderByOrderID(orderID string) *Order {
	os.mu.RLock()
	defer os.mu.RUnlock()
	for _, o := range os.orders {
		if o.OrderID == orderID {
			copy := *o
			return &copy
		}
	}
	return nil
}

// GetAllOrders returns a copy of every tracked order.
func (os *OrderStore) GetAllOrders() []*Order {
	os.mu.RLock()
	defer os.mu.RUnlock()
	result := make([]*Order, 0, len(os.orders))
	for _, o := range os.orders {
		copy := *o
		result = append(result, &copy)
	}
	return result
}

// GetOpenOrders returns every tracked order whose Status is not Finished.
func (os *OrderStore) GetOpenOrders() []*Order {
	os.mu.RLock()
	defer os.mu.RUnlock()
	result := make([]*Order, 0)
	for _, o := range os.orders {
		if o.Status != fixorder.Finished.String() {
			copy := *o
			result = append(result, &copy)
		}
	}
	return result
}

// RemoveOrder drops a snapshot from the cache, typically once Finished has
// been observed and display no longer needs the entry.
func (os *OrderStore) RemoveOrder(handle string) {
	os.mu.Lock()
	defer os.mu.Unlock()
	delete(os.orders, handle)
}
