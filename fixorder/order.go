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

// Package fixorder tracks the client's view of every open order: a state
// machine driven by exchange execution reports, triple-indexed so incoming
// replies can be matched back to the request that produced them.
package fixorder

import (
	"github.com/buybackoff/fixtrader/fixcodec"
	"github.com/buybackoff/fixtrader/fixerr"
	"github.com/buybackoff/fixtrader/fixsession"
)

// Status is a position in the order lifecycle. The exchange is ground
// truth: the manager accepts any transition it reports, even one outside
// the normal progression below.
type Status int

const (
	Created Status = iota
	Accepted
	PartiallyFilled
	TearingDown
	Finished
)

func (s Status) String() string {
	switch s {
	case Created:
		return "Created"
	case Accepted:
		return "Accepted"
	case PartiallyFilled:
		return "PartiallyFilled"
	case TearingDown:
		return "TearingDown"
	case Finished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// Side is the order's buy/sell direction.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) wireCode() string {
	if s == Sell {
		return "2"
	}
	return "1"
}

func (s Side) String() string {
	if s == Sell {
		return "Sell"
	}
	return "Buy"
}

// State is a point-in-time snapshot handed to callbacks. It is a plain
// value: callers may keep or mutate their copy freely without affecting the
// manager.
type State struct {
	UserID  string
	Symbol  string
	Side    Side
	Status  Status
	LeftQty fixcodec.Decimal
	FillQty fixcodec.Decimal
	Price   fixcodec.Decimal
}

// Fill describes one execution folded into a state update, derived from the
// increase in cumulative filled quantity rather than taken verbatim from
// the report (some reports omit LastQty/LastPx on non-fill transitions).
type Fill struct {
	Quantity fixcodec.Decimal
	Price    fixcodec.Decimal
}

// Event is delivered to a Handler once per processed ExecutionReport that
// resolves to a known order, and for an OrderCancelReject or session-level
// Reject only when it finishes the order.
type Event struct {
	// Handle is the ClOrdID the order was originally submitted under — the
	// stable external identity a caller uses across Cancel/Replace calls.
	Handle  string
	OrderID string
	State   State
	Fill    *Fill
}

// Handler receives order state-change events. It always runs on the same
// serialization path that processes inbound exchange messages, so events
// for every order of a client are totally ordered; it must not block.
type Handler func(Event)

// OrderOpID identifies one inflight client-initiated operation: a submit,
// cancel, replace, or status request.
type OrderOpID struct {
	Seq     fixsession.DurableSeqNum
	ClOrdID string
}

// OpResult reports the outcome of an OrderOp once the manager considers it
// resolved — by an accepting report, a rejection, or (driven externally by
// a scheduler) a timeout.
type OpResult struct {
	Op     OrderOpID
	Status fixerr.RequestStatus
}

// OpHandler receives OrderOp outcomes, from the same serialization path as
// Handler.
type OpHandler func(OpResult)

// MassStatusResult tracks one OrderMassStatusRequest's resulting stream of
// execution reports. The exchange closes the batch either by flagging the
// final report (LastRptRequested) or by announcing the total count up front
// (TotNumReports); completion is reached on whichever arrives first.
type MassStatusResult struct {
	MassStatusReqID string
	TotNumReports   int64
	ReportsReceived int64
	Complete        bool
}

// MassStatusHandler receives mass-status progress, one call per correlated
// report, from the same serialization path as Handler.
type MassStatusHandler func(MassStatusResult)

// BuilderQuirks are venue-specific adjustments the manager applies when
// building outgoing order messages. They are expressed here in the
// manager's own terms so this package stays independent of any particular
// exchange dialect; the facade translates its configured dialect into one
// of these.
type BuilderQuirks struct {
	// IdentifyByOrigClOrdID makes Cancel/Replace reference the order by the
	// ClOrdID it was originally submitted under, and never by the
	// exchange-assigned OrderID (OKCoin requires this).
	IdentifyByOrigClOrdID bool
	// ExtraOrderFields, if non-nil, returns additional named fields to set
	// on every NewOrderSingle, keyed by field name ("MinQty", "CoinType"),
	// given the order's quantity.
	ExtraOrderFields func(orderQty string) map[string]string
}

// order is the manager's internal, mutable record. Never handed to a
// caller directly — State is cloned out of it for every event.
type order struct {
	handle    string // the ClOrdID assigned at Submit; the caller-visible identity
	clOrdIDs  []string
	clOrdID   string // current ClOrdID; changes on every Cancel/Replace/status request
	orderID   string // exchange-assigned; empty until the first acknowledging report
	state     State
	pending   *OrderOpID
}

func (o *order) addClOrdID(id string) {
	o.clOrdIDs = append(o.clOrdIDs, id)
	o.clOrdID = id
}

// statusFromOrdStatus maps a wire OrdStatus(39) code to a Status, per the
// subset of codes this client recognizes. Unrecognized codes leave the
// order's status untouched rather than guessing.
func statusFromOrdStatus(code string) (Status, bool) {
	switch code {
	case "6": // Pending Cancel
		return TearingDown, true
	case "0": // New
		return Accepted, true
	case "1": // Partially Filled
		return PartiallyFilled, true
	case "2", "4", "8", "9": // Filled, Canceled, Rejected, Suspended
		return Finished, true
	case "E": // Pending Replace
		return Accepted, true
	default:
		return 0, false
	}
}

// cancelRejectIsTerminal reports whether a CxlRejReason means the exchange
// has no further use for the order (so the client should stop tracking it)
// as opposed to a transient rejection the order survives (e.g. "too late to
// cancel").
func cancelRejectIsTerminal(reason string) bool {
	return reason == "1" // Unknown order
}
