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

// Package fixstore provides SQLite storage for market data, order lifecycle
// history, and dialect account snapshots. Prepared statements are
// initialized once at Open and reused for every insert, avoiding SQL
// parsing overhead on the hot paths (book updates, execution reports).
package fixstore

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the single handle through which every package that observes
// market data, order events, or account snapshots persists them.
type Store struct {
	db *sql.DB

	stmtMDEntry   *sql.Stmt
	stmtOrderEvnt *sql.Stmt
	stmtAccount   *sql.Stmt
}

// Open opens (creating if absent) the SQLite database at path, enables
// WAL mode for concurrent readers alongside the writer, and prepares
// every insert statement used by the batch and non-batch paths alike.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("fixstore: open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("fixstore: init schema: %w", err)
	}

	if s.stmtMDEntry, err = db.Prepare(insertMDEntryQuery); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("fixstore: prepare market data statement: %w", err)
	}
	if s.stmtOrderEvnt, err = db.Prepare(insertOrderEventQuery); err != nil {
		_ = s.stmtMDEntry.Close()
		_ = db.Close()
		return nil, fmt.Errorf("fixstore: prepare order event statement: %w", err)
	}
	if s.stmtAccount, err = db.Prepare(insertAccountSnapshotQuery); err != nil {
		_ = s.stmtMDEntry.Close()
		_ = s.stmtOrderEvnt.Close()
		_ = db.Close()
		return nil, fmt.Errorf("fixstore: prepare account snapshot statement: %w", err)
	}

	log.Printf("fixstore: database initialized at %s", path)
	return s, nil
}

// Close releases every prepared statement, then the database handle itself.
// Errors from statement Close are logged rather than returned: the caller
// is shutting down regardless and the database handle's own Close error is
// the one that matters.
func (s *Store) Close() error {
	if s.stmtMDEntry != nil {
		if err := s.stmtMDEntry.Close(); err != nil {
			log.Printf("fixstore: close market data statement: %v", err)
		}
	}
	if s.stmtOrderEvnt != nil {
		if err := s.stmtOrderEvnt.Close(); err != nil {
			log.Printf("fixstore: close order event statement: %v", err)
		}
	}
	if s.stmtAccount != nil {
		if err := s.stmtAccount.Close(); err != nil {
			log.Printf("fixstore: close account snapshot statement: %v", err)
		}
	}
	return s.db.Close()
}

// BeginTransaction exposes the underlying *sql.Tx so callers can batch a
// burst of inserts (e.g. every level of an incremental refresh) atomically.
func (s *Store) BeginTransaction() (*sql.Tx, error) {
	return s.db.Begin()
}

func (s *Store) initSchema() error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
