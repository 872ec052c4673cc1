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
	"database/sql"

	"github.com/buybackoff/fixtrader/fixmsg"
)

// StoreMDEntry persists a single book level or trade print from a market
// data snapshot or incremental refresh.
func (s *Store) StoreMDEntry(symbol, mdReqID string, isSnapshot bool, e fixmsg.MDEntry) error {
	_, err := s.stmtMDEntry.Exec(symbol, mdReqID, e.EntryType, e.UpdateAction, e.Price, e.Size, isSnapshot)
	return err
}

// StoreMDEntryBatch inserts one entry using the prepared statement bound to
// tx, for callers replaying an entire snapshot or incremental refresh inside
// one transaction.
func (s *Store) StoreMDEntryBatch(tx *sql.Tx, symbol, mdReqID string, isSnapshot bool, e fixmsg.MDEntry) error {
	_, err := tx.Stmt(s.stmtMDEntry).Exec(symbol, mdReqID, e.EntryType, e.UpdateAction, e.Price, e.Size, isSnapshot)
	return err
}

// StoreSnapshot persists every entry of a full refresh in one transaction.
func (s *Store) StoreSnapshot(snap fixmsg.MarketDataSnapshotFullRefresh) error {
	tx, err := s.BeginTransaction()
	if err != nil {
		return err
	}
	for _, e := range snap.Entries {
		if err := s.StoreMDEntryBatch(tx, snap.Symbol, snap.MDReqID, true, e); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// StoreIncremental persists every level of an incremental refresh in one
// transaction.
func (s *Store) StoreIncremental(inc fixmsg.MarketDataIncrementalRefresh) error {
	tx, err := s.BeginTransaction()
	if err != nil {
		return err
	}
	for _, e := range inc.Entries {
		if err := s.StoreMDEntryBatch(tx, inc.Symbol, "", false, e); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
