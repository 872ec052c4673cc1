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

package fixstore

import (
	"path/filepath"
	"testing"

	"github.com/buybackoff/fixtrader/fixdialect"
	"github.com/buybackoff/fixtrader/fixmsg"
	"github.com/buybackoff/fixtrader/fixorder"
	"github.com/buybackoff/fixtrader/fixsession"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixtrader.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func countRows(t *testing.T, s *Store, table string) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestStore_StoreSnapshotAndIncremental(t *testing.T) {
	s := openTestStore(t)

	snap := fixmsg.MarketDataSnapshotFullRefresh{
		MDReqID: "md-1",
		Symbol:  "BTC-USD",
		Entries: []fixmsg.MDEntry{
			{EntryType: "0", Price: "50000", Size: "1.5"},
			{EntryType: "1", Price: "50010", Size: "2.0"},
		},
	}
	if err := s.StoreSnapshot(snap); err != nil {
		t.Fatalf("StoreSnapshot() error = %v", err)
	}

	inc := fixmsg.MarketDataIncrementalRefresh{
		Symbol: "BTC-USD",
		Entries: []fixmsg.MDEntry{
			{UpdateAction: "1", EntryType: "0", Price: "50000", Size: "0.5"},
		},
	}
	if err := s.StoreIncremental(inc); err != nil {
		t.Fatalf("StoreIncremental() error = %v", err)
	}

	if got, want := countRows(t, s, "market_data_entries"), 3; got != want {
		t.Fatalf("market_data_entries rows = %d, want %d", got, want)
	}
}

func TestStore_StoreOrderEvent(t *testing.T) {
	s := openTestStore(t)

	ev := fixorder.Event{
		Handle:  "h-1",
		OrderID: "ord-1",
		State: fixorder.State{
			UserID: "u1",
			Symbol: "BTC-USD",
			Side:   fixorder.Buy,
			Status: fixorder.PartiallyFilled,
			LeftQty: "0.6",
			FillQty: "0.4",
			Price:   "50000",
		},
		Fill: &fixorder.Fill{Quantity: "0.4", Price: "50000"},
	}
	dsn := fixsession.DurableSeqNum{SessionID: "sess-1", SeqNum: 7}

	if err := s.StoreOrderEvent(ev, dsn); err != nil {
		t.Fatalf("StoreOrderEvent() error = %v", err)
	}

	var status, sessionID string
	var seqNum int64
	row := s.db.QueryRow("SELECT status, session_id, seq_num FROM order_events WHERE handle = ?", "h-1")
	if err := row.Scan(&status, &sessionID, &seqNum); err != nil {
		t.Fatalf("scan order_events: %v", err)
	}
	if status != "PartiallyFilled" || sessionID != "sess-1" || seqNum != 7 {
		t.Fatalf("got (%q, %q, %d), want (PartiallyFilled, sess-1, 7)", status, sessionID, seqNum)
	}
}

func TestStore_StoreAccountInfo(t *testing.T) {
	s := openTestStore(t)

	resp := fixmsg.AccountInfoResponse{Account: "acct-1", FilledAmt: "1.5", NetAvgPx: "36.08"}
	if err := s.StoreAccountInfo(fixdialect.Huobi, resp); err != nil {
		t.Fatalf("StoreAccountInfo() error = %v", err)
	}

	var extension, account string
	row := s.db.QueryRow("SELECT extension, account FROM account_snapshots WHERE account = ?", "acct-1")
	if err := row.Scan(&extension, &account); err != nil {
		t.Fatalf("scan account_snapshots: %v", err)
	}
	if extension != "huobi" {
		t.Fatalf("extension = %q, want huobi", extension)
	}
}
