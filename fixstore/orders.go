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
	"github.com/buybackoff/fixtrader/fixorder"
	"github.com/buybackoff/fixtrader/fixsession"
)

// StoreOrderEvent persists one order lifecycle transition. dsn identifies
// the durable session that delivered the report the event was derived
// from.
func (s *Store) StoreOrderEvent(ev fixorder.Event, dsn fixsession.DurableSeqNum) error {
	var fillQty, fillPx interface{}
	if ev.Fill != nil {
		fillQty, fillPx = string(ev.Fill.Quantity), string(ev.Fill.Price)
	}

	_, err := s.stmtOrderEvnt.Exec(
		ev.Handle,
		ev.OrderID,
		ev.State.UserID,
		ev.State.Symbol,
		ev.State.Side.String(),
		ev.State.Status.String(),
		string(ev.State.LeftQty),
		string(ev.State.FillQty),
		string(ev.State.Price),
		fillQty,
		fillPx,
		dsn.SessionID,
		dsn.SeqNum,
	)
	return err
}
