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

package fixmsg

import (
	"time"

	"github.com/buybackoff/fixtrader/fixcodec"
)

func init() {
	register(MsgTypeNewOrderSingle, func(b []fixcodec.Field) (Message, error) { return decodeNewOrderSingle(b) })
	register(MsgTypeOrderCancelRequest, func(b []fixcodec.Field) (Message, error) { return decodeOrderCancelRequest(b) })
	register(MsgTypeOrderCancelReplace, func(b []fixcodec.Field) (Message, error) { return decodeOrderCancelReplaceRequest(b) })
	register(MsgTypeExecutionReport, func(b []fixcodec.Field) (Message, error) { return decodeExecutionReport(b) })
	register(MsgTypeOrderCancelReject, func(b []fixcodec.Field) (Message, error) { return decodeOrderCancelReject(b) })
	register(MsgTypeOrderStatusRequest, func(b []fixcodec.Field) (Message, error) { return decodeOrderStatusRequest(b) })
	register(MsgTypeOrderMassStatusRequest, func(b []fixcodec.Field) (Message, error) { return decodeOrderMassStatusRequest(b) })
	register(MsgTypeOrderMassCancelRequest, func(b []fixcodec.Field) (Message, error) { return decodeOrderMassCancelRequest(b) })
	register(MsgTypeOrderMassCancelReport, func(b []fixcodec.Field) (Message, error) { return decodeOrderMassCancelReport(b) })
}

// Order-entry MsgType values.
const (
	MsgTypeNewOrderSingle         = "D"
	MsgTypeOrderCancelRequest     = "F"
	MsgTypeOrderCancelReplace     = "G"
	MsgTypeExecutionReport        = "8"
	MsgTypeOrderCancelReject      = "9"
	MsgTypeOrderStatusRequest     = "H"
	MsgTypeOrderMassStatusRequest = "AF"
	MsgTypeOrderMassCancelRequest = "q"
	MsgTypeOrderMassCancelReport  = "r"
)

const (
	tagAccount          = 1
	tagAvgPx            = 6
	tagClOrdID          = 11
	tagCumQty           = 14
	tagExecID           = 17
	tagExecInst         = 18
	tagHandlInst        = 21
	tagLastPx           = 31
	tagLastQty          = 32
	tagOrderID          = 37
	tagOrderQty         = 38
	tagOrdStatus        = 39
	tagOrdType          = 40
	tagOrigClOrdID      = 41
	tagPrice            = 44
	tagSide             = 54
	tagSymbol           = 55
	tagTimeInForce      = 59
	tagTransactTime     = 60
	tagOrdRejReason     = 103
	tagCxlRejReason     = 102
	tagExecType         = 150
	tagLeavesQty        = 151
	tagMinQty           = 110
	tagValidUntilTime   = 62
	tagCxlRejRespTo     = 434
	tagMassStatusReqID  = 584
	tagMassStatusType   = 585
	tagTotNumReports    = 911
	tagLastRptRequested = 912
	tagMassCancelType   = 530
	tagMassCancelResp   = 531
	tagMassCancelRej    = 532
	tagTargetStrategy   = 847

	// tagCoinType is Huobi's non-standard spot-market discriminator; no
	// other venue reads or emits it.
	tagCoinType = 10002
)

// NewOrderSingle submits a new order.
type NewOrderSingle struct {
	ClOrdID        string
	Account        string
	Symbol         string
	Side           string
	TransactTime   time.Time
	OrderQty       fixcodec.Decimal
	OrdType        string
	Price          fixcodec.Decimal
	TimeInForce    string
	HandlInst      string
	ExecInst       string
	TargetStrategy string

	// ValidUntilTime is the order's time-to-live deadline; the zero value
	// means no expiry.
	ValidUntilTime time.Time

	// MinQty and CoinType are only set by exchange-dialect quirks (Huobi
	// requires both); the default dialect leaves them empty.
	MinQty   fixcodec.Decimal
	CoinType string
}

func (NewOrderSingle) MsgType() string { return MsgTypeNewOrderSingle }

func (m NewOrderSingle) BodyFields() []fixcodec.Field {
	f := []fixcodec.Field{
		strField(tagClOrdID, m.ClOrdID),
	}
	f = appendIfNotEmpty(f, tagAccount, m.Account)
	f = append(f,
		strField(tagHandlInst, m.HandlInst),
		strField(tagSymbol, m.Symbol),
		strField(tagSide, m.Side),
		tsField(tagTransactTime, m.TransactTime),
		decField(tagOrderQty, m.OrderQty),
		strField(tagOrdType, m.OrdType),
	)
	f = appendDecIfNotEmpty(f, tagPrice, m.Price)
	f = appendIfNotEmpty(f, tagTimeInForce, m.TimeInForce)
	f = appendIfNotEmpty(f, tagExecInst, m.ExecInst)
	f = appendIfNotEmpty(f, tagTargetStrategy, m.TargetStrategy)
	if !m.ValidUntilTime.IsZero() {
		f = append(f, tsField(tagValidUntilTime, m.ValidUntilTime))
	}
	f = appendDecIfNotEmpty(f, tagMinQty, m.MinQty)
	f = appendIfNotEmpty(f, tagCoinType, m.CoinType)
	return f
}

func decodeNewOrderSingle(b []fixcodec.Field) (NewOrderSingle, error) {
	var m NewOrderSingle
	var err error
	if m.ClOrdID, err = parseOptString(b, tagClOrdID); err != nil {
		return m, err
	}
	if m.Account, err = parseOptString(b, tagAccount); err != nil {
		return m, err
	}
	if m.HandlInst, err = parseOptString(b, tagHandlInst); err != nil {
		return m, err
	}
	if m.Symbol, err = parseOptString(b, tagSymbol); err != nil {
		return m, err
	}
	if m.Side, err = parseOptString(b, tagSide); err != nil {
		return m, err
	}
	if f, ok := fieldByTag(b, tagTransactTime); ok {
		if m.TransactTime, err = fixcodec.ParseTimestamp(f.Value); err != nil {
			return m, err
		}
	}
	if m.OrderQty, err = parseOptDecimal(b, tagOrderQty); err != nil {
		return m, err
	}
	if m.OrdType, err = parseOptString(b, tagOrdType); err != nil {
		return m, err
	}
	if m.Price, err = parseOptDecimal(b, tagPrice); err != nil {
		return m, err
	}
	if m.TimeInForce, err = parseOptString(b, tagTimeInForce); err != nil {
		return m, err
	}
	if m.ExecInst, err = parseOptString(b, tagExecInst); err != nil {
		return m, err
	}
	if m.TargetStrategy, err = parseOptString(b, tagTargetStrategy); err != nil {
		return m, err
	}
	if f, ok := fieldByTag(b, tagValidUntilTime); ok {
		if m.ValidUntilTime, err = fixcodec.ParseTimestamp(f.Value); err != nil {
			return m, err
		}
	}
	if m.MinQty, err = parseOptDecimal(b, tagMinQty); err != nil {
		return m, err
	}
	m.CoinType, err = parseOptString(b, tagCoinType)
	return m, err
}

// OrderCancelRequest requests cancellation of the order identified by
// OrigClOrdID (and OrderID, when the exchange has assigned one and the
// dialect honors it).
type OrderCancelRequest struct {
	OrigClOrdID  string
	ClOrdID      string
	OrderID      string
	Symbol       string
	Side         string
	TransactTime time.Time
}

func (OrderCancelRequest) MsgType() string { return MsgTypeOrderCancelRequest }

func (m OrderCancelRequest) BodyFields() []fixcodec.Field {
	f := []fixcodec.Field{
		strField(tagOrigClOrdID, m.OrigClOrdID),
		strField(tagClOrdID, m.ClOrdID),
	}
	f = appendIfNotEmpty(f, tagOrderID, m.OrderID)
	return append(f,
		strField(tagSymbol, m.Symbol),
		strField(tagSide, m.Side),
		tsField(tagTransactTime, m.TransactTime),
	)
}

func decodeOrderCancelRequest(b []fixcodec.Field) (OrderCancelRequest, error) {
	var m OrderCancelRequest
	var err error
	if m.OrigClOrdID, err = parseOptString(b, tagOrigClOrdID); err != nil {
		return m, err
	}
	if m.ClOrdID, err = parseOptString(b, tagClOrdID); err != nil {
		return m, err
	}
	if m.OrderID, err = parseOptString(b, tagOrderID); err != nil {
		return m, err
	}
	if m.Symbol, err = parseOptString(b, tagSymbol); err != nil {
		return m, err
	}
	if m.Side, err = parseOptString(b, tagSide); err != nil {
		return m, err
	}
	if f, ok := fieldByTag(b, tagTransactTime); ok {
		m.TransactTime, err = fixcodec.ParseTimestamp(f.Value)
	}
	return m, err
}

// OrderCancelReplaceRequest requests a quantity/price amendment of the order
// identified by OrigClOrdID.
type OrderCancelReplaceRequest struct {
	OrigClOrdID  string
	ClOrdID      string
	OrderID      string
	Symbol       string
	Side         string
	TransactTime time.Time
	OrderQty     fixcodec.Decimal
	OrdType      string
	Price        fixcodec.Decimal
}

func (OrderCancelReplaceRequest) MsgType() string { return MsgTypeOrderCancelReplace }

func (m OrderCancelReplaceRequest) BodyFields() []fixcodec.Field {
	f := []fixcodec.Field{
		strField(tagOrigClOrdID, m.OrigClOrdID),
		strField(tagClOrdID, m.ClOrdID),
	}
	f = appendIfNotEmpty(f, tagOrderID, m.OrderID)
	return append(f,
		strField(tagSymbol, m.Symbol),
		strField(tagSide, m.Side),
		tsField(tagTransactTime, m.TransactTime),
		decField(tagOrderQty, m.OrderQty),
		strField(tagOrdType, m.OrdType),
		decField(tagPrice, m.Price),
	)
}

func decodeOrderCancelReplaceRequest(b []fixcodec.Field) (OrderCancelReplaceRequest, error) {
	var m OrderCancelReplaceRequest
	var err error
	if m.OrigClOrdID, err = parseOptString(b, tagOrigClOrdID); err != nil {
		return m, err
	}
	if m.ClOrdID, err = parseOptString(b, tagClOrdID); err != nil {
		return m, err
	}
	if m.OrderID, err = parseOptString(b, tagOrderID); err != nil {
		return m, err
	}
	if m.Symbol, err = parseOptString(b, tagSymbol); err != nil {
		return m, err
	}
	if m.Side, err = parseOptString(b, tagSide); err != nil {
		return m, err
	}
	if f, ok := fieldByTag(b, tagTransactTime); ok {
		if m.TransactTime, err = fixcodec.ParseTimestamp(f.Value); err != nil {
			return m, err
		}
	}
	if m.OrderQty, err = parseOptDecimal(b, tagOrderQty); err != nil {
		return m, err
	}
	if m.OrdType, err = parseOptString(b, tagOrdType); err != nil {
		return m, err
	}
	m.Price, err = parseOptDecimal(b, tagPrice)
	return m, err
}

// ExecutionReport is the exchange's authoritative report of an order's
// state: acknowledgement, fill, cancel, or rejection.
type ExecutionReport struct {
	OrderID     string
	ClOrdID     string
	OrigClOrdID string
	ExecID      string
	ExecType    string
	OrdStatus   string
	OrdRejReason string
	Symbol      string
	Side        string
	OrderQty    fixcodec.Decimal
	Price       fixcodec.Decimal
	LeavesQty   fixcodec.Decimal
	CumQty      fixcodec.Decimal
	AvgPx       fixcodec.Decimal
	LastQty     fixcodec.Decimal
	LastPx      fixcodec.Decimal
	Text        string

	// MassStatusReqID/TotNumReports/LastRptRequested are present only on
	// reports answering an OrderMassStatusRequest: they tie each report back
	// to the request and mark where the batch ends.
	MassStatusReqID  string
	TotNumReports    int64
	LastRptRequested bool
}

func (ExecutionReport) MsgType() string { return MsgTypeExecutionReport }

func (m ExecutionReport) BodyFields() []fixcodec.Field {
	f := []fixcodec.Field{
		strField(tagOrderID, m.OrderID),
	}
	f = appendIfNotEmpty(f, tagClOrdID, m.ClOrdID)
	f = appendIfNotEmpty(f, tagOrigClOrdID, m.OrigClOrdID)
	f = append(f,
		strField(tagExecID, m.ExecID),
		strField(tagExecType, m.ExecType),
		strField(tagOrdStatus, m.OrdStatus),
	)
	f = appendIfNotEmpty(f, tagOrdRejReason, m.OrdRejReason)
	f = appendIfNotEmpty(f, tagSymbol, m.Symbol)
	f = appendIfNotEmpty(f, tagSide, m.Side)
	f = appendDecIfNotEmpty(f, tagOrderQty, m.OrderQty)
	f = appendDecIfNotEmpty(f, tagPrice, m.Price)
	f = appendDecIfNotEmpty(f, tagLeavesQty, m.LeavesQty)
	f = appendDecIfNotEmpty(f, tagCumQty, m.CumQty)
	f = appendDecIfNotEmpty(f, tagAvgPx, m.AvgPx)
	f = appendDecIfNotEmpty(f, tagLastQty, m.LastQty)
	f = appendDecIfNotEmpty(f, tagLastPx, m.LastPx)
	f = appendIfNotEmpty(f, tagText, m.Text)
	f = appendIfNotEmpty(f, tagMassStatusReqID, m.MassStatusReqID)
	if m.TotNumReports != 0 {
		f = append(f, intField(tagTotNumReports, m.TotNumReports))
	}
	if m.LastRptRequested {
		f = append(f, boolField(tagLastRptRequested, m.LastRptRequested))
	}
	return f
}

func decodeExecutionReport(b []fixcodec.Field) (ExecutionReport, error) {
	var m ExecutionReport
	var err error
	if m.OrderID, err = parseOptString(b, tagOrderID); err != nil {
		return m, err
	}
	if m.ClOrdID, err = parseOptString(b, tagClOrdID); err != nil {
		return m, err
	}
	if m.OrigClOrdID, err = parseOptString(b, tagOrigClOrdID); err != nil {
		return m, err
	}
	if m.ExecID, err = parseOptString(b, tagExecID); err != nil {
		return m, err
	}
	if m.ExecType, err = parseOptString(b, tagExecType); err != nil {
		return m, err
	}
	if m.OrdStatus, err = parseOptString(b, tagOrdStatus); err != nil {
		return m, err
	}
	if m.OrdRejReason, err = parseOptString(b, tagOrdRejReason); err != nil {
		return m, err
	}
	if m.Symbol, err = parseOptString(b, tagSymbol); err != nil {
		return m, err
	}
	if m.Side, err = parseOptString(b, tagSide); err != nil {
		return m, err
	}
	if m.OrderQty, err = parseOptDecimal(b, tagOrderQty); err != nil {
		return m, err
	}
	if m.Price, err = parseOptDecimal(b, tagPrice); err != nil {
		return m, err
	}
	if m.LeavesQty, err = parseOptDecimal(b, tagLeavesQty); err != nil {
		return m, err
	}
	if m.CumQty, err = parseOptDecimal(b, tagCumQty); err != nil {
		return m, err
	}
	if m.AvgPx, err = parseOptDecimal(b, tagAvgPx); err != nil {
		return m, err
	}
	if m.LastQty, err = parseOptDecimal(b, tagLastQty); err != nil {
		return m, err
	}
	if m.LastPx, err = parseOptDecimal(b, tagLastPx); err != nil {
		return m, err
	}
	if m.Text, err = parseOptString(b, tagText); err != nil {
		return m, err
	}
	if m.MassStatusReqID, err = parseOptString(b, tagMassStatusReqID); err != nil {
		return m, err
	}
	if m.TotNumReports, err = parseOptInt(b, tagTotNumReports); err != nil {
		return m, err
	}
	if f, ok := fieldByTag(b, tagLastRptRequested); ok {
		if m.LastRptRequested, err = fixcodec.ParseBool(f.Value); err != nil {
			return m, err
		}
	}
	return m, nil
}

// OrderCancelReject reports failure of an OrderCancelRequest or
// OrderCancelReplaceRequest.
type OrderCancelReject struct {
	OrderID         string
	ClOrdID         string
	OrigClOrdID     string
	OrdStatus       string
	CxlRejResponseTo string
	CxlRejReason    string
	Text            string
}

func (OrderCancelReject) MsgType() string { return MsgTypeOrderCancelReject }

func (m OrderCancelReject) BodyFields() []fixcodec.Field {
	f := []fixcodec.Field{
		strField(tagOrderID, m.OrderID),
		strField(tagClOrdID, m.ClOrdID),
		strField(tagOrigClOrdID, m.OrigClOrdID),
		strField(tagOrdStatus, m.OrdStatus),
		strField(tagCxlRejRespTo, m.CxlRejResponseTo),
	}
	f = appendIfNotEmpty(f, tagCxlRejReason, m.CxlRejReason)
	f = appendIfNotEmpty(f, tagText, m.Text)
	return f
}

func decodeOrderCancelReject(b []fixcodec.Field) (OrderCancelReject, error) {
	var m OrderCancelReject
	var err error
	if m.OrderID, err = parseOptString(b, tagOrderID); err != nil {
		return m, err
	}
	if m.ClOrdID, err = parseOptString(b, tagClOrdID); err != nil {
		return m, err
	}
	if m.OrigClOrdID, err = parseOptString(b, tagOrigClOrdID); err != nil {
		return m, err
	}
	if m.OrdStatus, err = parseOptString(b, tagOrdStatus); err != nil {
		return m, err
	}
	if m.CxlRejResponseTo, err = parseOptString(b, tagCxlRejRespTo); err != nil {
		return m, err
	}
	if m.CxlRejReason, err = parseOptString(b, tagCxlRejReason); err != nil {
		return m, err
	}
	m.Text, err = parseOptString(b, tagText)
	return m, err
}

// OrderStatusRequest asks the exchange to report an order's current state.
type OrderStatusRequest struct {
	OrderID string
	ClOrdID string
	Symbol  string
	Side    string
}

func (OrderStatusRequest) MsgType() string { return MsgTypeOrderStatusRequest }

func (m OrderStatusRequest) BodyFields() []fixcodec.Field {
	f := []fixcodec.Field{strField(tagClOrdID, m.ClOrdID)}
	f = appendIfNotEmpty(f, tagOrderID, m.OrderID)
	f = appendIfNotEmpty(f, tagSymbol, m.Symbol)
	f = appendIfNotEmpty(f, tagSide, m.Side)
	return f
}

func decodeOrderStatusRequest(b []fixcodec.Field) (OrderStatusRequest, error) {
	var m OrderStatusRequest
	var err error
	if m.ClOrdID, err = parseOptString(b, tagClOrdID); err != nil {
		return m, err
	}
	if m.OrderID, err = parseOptString(b, tagOrderID); err != nil {
		return m, err
	}
	if m.Symbol, err = parseOptString(b, tagSymbol); err != nil {
		return m, err
	}
	m.Side, err = parseOptString(b, tagSide)
	return m, err
}

// OrderMassStatusRequest asks the exchange to report every open order,
// driven periodically by the scheduler's order_status_sync_period.
type OrderMassStatusRequest struct {
	MassStatusReqID string
	MassStatusType  string
}

func (OrderMassStatusRequest) MsgType() string { return MsgTypeOrderMassStatusRequest }

func (m OrderMassStatusRequest) BodyFields() []fixcodec.Field {
	return []fixcodec.Field{
		strField(tagMassStatusReqID, m.MassStatusReqID),
		strField(tagMassStatusType, m.MassStatusType),
	}
}

func decodeOrderMassStatusRequest(b []fixcodec.Field) (OrderMassStatusRequest, error) {
	var m OrderMassStatusRequest
	var err error
	if m.MassStatusReqID, err = parseOptString(b, tagMassStatusReqID); err != nil {
		return m, err
	}
	m.MassStatusType, err = parseOptString(b, tagMassStatusType)
	return m, err
}

// OrderMassCancelRequest cancels every open order, optionally scoped to a
// symbol.
type OrderMassCancelRequest struct {
	ClOrdID               string
	MassCancelRequestType string
	Symbol                string
}

func (OrderMassCancelRequest) MsgType() string { return MsgTypeOrderMassCancelRequest }

func (m OrderMassCancelRequest) BodyFields() []fixcodec.Field {
	f := []fixcodec.Field{
		strField(tagClOrdID, m.ClOrdID),
		strField(tagMassCancelType, m.MassCancelRequestType),
	}
	f = appendIfNotEmpty(f, tagSymbol, m.Symbol)
	return f
}

func decodeOrderMassCancelRequest(b []fixcodec.Field) (OrderMassCancelRequest, error) {
	var m OrderMassCancelRequest
	var err error
	if m.ClOrdID, err = parseOptString(b, tagClOrdID); err != nil {
		return m, err
	}
	if m.MassCancelRequestType, err = parseOptString(b, tagMassCancelType); err != nil {
		return m, err
	}
	m.Symbol, err = parseOptString(b, tagSymbol)
	return m, err
}

// OrderMassCancelReport is the exchange's reply to OrderMassCancelRequest.
type OrderMassCancelReport struct {
	ClOrdID                string
	MassCancelResponse     string
	MassCancelRejectReason string
}

func (OrderMassCancelReport) MsgType() string { return MsgTypeOrderMassCancelReport }

func (m OrderMassCancelReport) BodyFields() []fixcodec.Field {
	f := []fixcodec.Field{
		strField(tagClOrdID, m.ClOrdID),
		strField(tagMassCancelResp, m.MassCancelResponse),
	}
	f = appendIfNotEmpty(f, tagMassCancelRej, m.MassCancelRejectReason)
	return f
}

func decodeOrderMassCancelReport(b []fixcodec.Field) (OrderMassCancelReport, error) {
	var m OrderMassCancelReport
	var err error
	if m.ClOrdID, err = parseOptString(b, tagClOrdID); err != nil {
		return m, err
	}
	if m.MassCancelResponse, err = parseOptString(b, tagMassCancelResp); err != nil {
		return m, err
	}
	m.MassCancelRejectReason, err = parseOptString(b, tagMassCancelRej)
	return m, err
}
