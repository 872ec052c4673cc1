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

// Package fixdialect holds the exchange-specific signature and ordering
// quirks the message builder needs for non-Coinbase venues. These are
// compatibility shims selected by configuration, not core engine behavior:
// the transport, session, and order manager never import this package.
package fixdialect

// Extension selects which venue's quirks the message builder applies.
type Extension int

const (
	// None is the default Coinbase Prime dialect: HMAC-SHA256 Logon
	// signature (computed by the builder itself, not a Signer here), no
	// order-identification or market-depth overrides.
	None Extension = iota
	OKCoin
	Huobi
	BTCC
)

// SignableFields carries everything any one dialect's signature algorithm
// might read. A given Signer implementation only uses the subset its
// algorithm actually needs.
type SignableFields struct {
	Timestamp    string
	MsgType      string
	SeqNum       int64
	APIKey       string
	TargetCompID string
	Passphrase   string
	Secret       string
	Method       string            // BTCC's "method" request parameter
	Params       map[string]string // Huobi's signed parameter set
}

// Signer computes a dialect's handshake or per-request signature.
type Signer interface {
	Sign(f SignableFields) string
}

// Quirks captures the non-signature behavioral differences a dialect
// imposes on order entry and market-data requests.
type Quirks struct {
	// IdentifyByOrigClOrdID: OKCoin requires cancel/replace correlation by
	// OrigClOrdID even after the exchange has assigned an OrderID.
	IdentifyByOrigClOrdID bool
	// SnapshotOnlyDepth: OKCoin rejects incremental market depth
	// subscriptions; only full-refresh snapshots are honored.
	SnapshotOnlyDepth bool
	// ExtraOrderFields returns custom tag/value pairs to merge into a
	// NewOrderSingle for this dialect (e.g. Huobi's MinQty/CoinType),
	// given the order's quantity. Nil if the dialect adds nothing.
	ExtraOrderFields func(orderQty string) map[string]string
	// Account, if non-nil, overrides the wire Account(1) field with a
	// value derived from the API key and this request's signature (BTCC
	// packs base64(accesskey:signature) into it).
	Account func(apiKey, signature string) string
}

// Dialect bundles a venue's Signer and Quirks.
type Dialect struct {
	Signer
	Quirks
}

// ForExtension returns the Dialect for e. None carries no Signer (the
// Coinbase Logon signature is computed by fixclient's Logon builder) and
// no quirks.
func ForExtension(e Extension) Dialect {
	switch e {
	case OKCoin:
		return Dialect{Signer: okCoinSigner{}, Quirks: Quirks{
			IdentifyByOrigClOrdID: true,
			SnapshotOnlyDepth:     true,
		}}
	case Huobi:
		return Dialect{Signer: huobiSigner{}, Quirks: Quirks{
			ExtraOrderFields: huobiExtraOrderFields,
		}}
	case BTCC:
		return Dialect{Signer: btccSigner{}, Quirks: Quirks{
			Account: btccAccount,
		}}
	default:
		return Dialect{}
	}
}
