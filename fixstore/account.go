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
	"github.com/buybackoff/fixtrader/fixdialect"
	"github.com/buybackoff/fixtrader/fixmsg"
)

// extensionName renders a dialect extension for storage; unexported wire
// codes don't exist for these, so the name is descriptive rather than a
// protocol value.
func extensionName(e fixdialect.Extension) string {
	switch e {
	case fixdialect.OKCoin:
		return "okcoin"
	case fixdialect.Huobi:
		return "huobi"
	case fixdialect.BTCC:
		return "btcc"
	default:
		return "coinbase"
	}
}

// StoreAccountInfo persists a dialect's account balance snapshot.
func (s *Store) StoreAccountInfo(e fixdialect.Extension, resp fixmsg.AccountInfoResponse) error {
	_, err := s.stmtAccount.Exec(extensionName(e), resp.Account, string(resp.FilledAmt), string(resp.NetAvgPx))
	return err
}
