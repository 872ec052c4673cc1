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

// Package fixclient is the public facade: a single Client type that wires
// the transport, durable connection, message pump, scheduler, order
// manager, dialect, and persistence packages into one trading session.
package fixclient

import (
	"time"

	"github.com/buybackoff/fixtrader/fixdialect"
	"github.com/buybackoff/fixtrader/fixtransport"
)

// Config holds every field a Client needs to dial, authenticate, and drive
// a FIX 4.4 session against any of the supported exchange dialects.
type Config struct {
	Addr   string
	UseTLS bool
	TLS    fixtransport.TLSRelaxations

	SenderCompID string
	TargetCompID string

	// ApiKey/ApiSecret/Passphrase/Account authenticate the Logon handshake.
	// For the default Coinbase dialect, Account is the portfolio id; for
	// Huobi/BTCC/OKCoin it is the plain or dialect-packed account id.
	ApiKey     string
	ApiSecret  string
	Passphrase string
	Account    string

	Username string
	Password string

	HeartBtInt            int64
	ClOrdIDPrefix         string
	RequestTimeoutSeconds int64
	OrderStatusSyncPeriod time.Duration

	// Extension selects the dialect's signing algorithm and order/market
	// data quirks. Zero value (fixdialect.None) is Coinbase's own.
	Extension fixdialect.Extension
}

func (c Config) dialect() fixdialect.Dialect {
	return fixdialect.ForExtension(c.Extension)
}

func (c Config) heartBtInt() int64 {
	if c.HeartBtInt > 0 {
		return c.HeartBtInt
	}
	return 30
}

func (c Config) requestTimeout() time.Duration {
	if c.RequestTimeoutSeconds > 0 {
		return time.Duration(c.RequestTimeoutSeconds) * time.Second
	}
	return 10 * time.Second
}

func (c Config) statusSyncPeriod() time.Duration {
	if c.OrderStatusSyncPeriod > 0 {
		return c.OrderStatusSyncPeriod
	}
	return time.Minute
}
