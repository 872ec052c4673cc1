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

// Benchmarks for the market data hot path: every inbound snapshot or
// incremental refresh lands in TradeStore, so AddTrades must stay
// allocation-free and RecentTrades must stay a single allocation.
// Run with: go test -bench=TradeStore -benchmem ./fixclient/
package fixclient

import (
	"fmt"
	"sync"
	"testing"
)

func benchTrades(n int) []Trade {
	trades := make([]Trade, n)
	for i := range trades {
		trades[i] = Trade{
			Price:     "50000.25",
			Size:      "0.125",
			EntryType: "2",
		}
	}
	return trades
}

func BenchmarkTradeStoreAddTrades(b *testing.B) {
	for _, batch := range []int{1, 10, 100} {
		b.Run(fmt.Sprintf("batch-%d", batch), func(b *testing.B) {
			store := NewTradeStore(10000)
			trades := benchTrades(batch)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				store.AddTrades("BTC-USD", trades, false, "req-1")
			}
		})
	}
}

func BenchmarkTradeStoreRecentTrades(b *testing.B) {
	for _, limit := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("limit-%d", limit), func(b *testing.B) {
			store := NewTradeStore(10000)
			store.AddTrades("BTC-USD", benchTrades(5000), false, "req-1")
			store.AddTrades("ETH-USD", benchTrades(5000), false, "req-2")
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = store.RecentTrades("BTC-USD", limit)
			}
		})
	}
}

func BenchmarkTradeStoreAllTrades(b *testing.B) {
	store := NewTradeStore(10000)
	store.AddTrades("BTC-USD", benchTrades(10000), false, "req-1")
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.AllTrades()
	}
}

// BenchmarkTradeStoreMixed exercises the store the way the live client
// does: one writer goroutine streaming updates while readers poll.
func BenchmarkTradeStoreMixed(b *testing.B) {
	store := NewTradeStore(10000)
	trades := benchTrades(10)
	b.ReportAllocs()
	b.ResetTimer()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < b.N; i++ {
			store.AddTrades("BTC-USD", trades, false, "req-1")
		}
	}()
	for i := 0; i < b.N; i++ {
		_ = store.RecentTrades("BTC-USD", 50)
	}
	wg.Wait()
}
