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

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS market_data_entries (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol         TEXT NOT NULL,
		md_req_id      TEXT,
		entry_type     TEXT NOT NULL,
		update_action  TEXT,
		price          TEXT,
		size           TEXT,
		is_snapshot    INTEGER NOT NULL,
		recorded_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_market_data_entries_symbol
		ON market_data_entries(symbol, recorded_at)`,

	`CREATE TABLE IF NOT EXISTS order_events (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		handle         TEXT NOT NULL,
		order_id       TEXT,
		user_id        TEXT,
		symbol         TEXT,
		side           TEXT,
		status         TEXT NOT NULL,
		left_qty       TEXT,
		fill_qty       TEXT,
		price          TEXT,
		fill_delta_qty TEXT,
		fill_delta_px  TEXT,
		session_id     TEXT,
		seq_num        INTEGER,
		recorded_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_events_handle
		ON order_events(handle, recorded_at)`,

	`CREATE TABLE IF NOT EXISTS account_snapshots (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		extension      TEXT NOT NULL,
		account        TEXT,
		filled_amt     TEXT,
		net_avg_px     TEXT,
		recorded_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_account_snapshots_extension
		ON account_snapshots(extension, recorded_at)`,
}

const insertMDEntryQuery = `
	INSERT INTO market_data_entries
		(symbol, md_req_id, entry_type, update_action, price, size, is_snapshot)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

const insertOrderEventQuery = `
	INSERT INTO order_events
		(handle, order_id, user_id, symbol, side, status, left_qty, fill_qty,
		 price, fill_delta_qty, fill_delta_px, session_id, seq_num)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertAccountSnapshotQuery = `
	INSERT INTO account_snapshots
		(extension, account, filled_amt, net_avg_px)
	VALUES (?, ?, ?, ?)`
