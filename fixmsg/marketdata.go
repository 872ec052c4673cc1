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

import "github.com/buybackoff/fixtrader/fixcodec"

func init() {
	register(MsgTypeMarketDataRequest, func(b []fixcodec.Field) (Message, error) { return decodeMarketDataRequest(b) })
	register(MsgTypeMarketDataSnapshot, func(b []fixcodec.Field) (Message, error) { return decodeMarketDataSnapshot(b) })
	register(MsgTypeMarketDataIncremental, func(b []fixcodec.Field) (Message, error) { return decodeMarketDataIncremental(b) })
	register(MsgTypeMarketDataReject, func(b []fixcodec.Field) (Message, error) { return decodeMarketDataRequestReject(b) })
}

// Market data MsgType values.
const (
	MsgTypeMarketDataRequest     = "V"
	MsgTypeMarketDataSnapshot    = "W"
	MsgTypeMarketDataIncremental = "X"
	MsgTypeMarketDataReject      = "Y"
)

const (
	tagMDReqID                 = 262
	tagSubscriptionRequestType = 263
	tagMarketDepth             = 264
	tagNoMDEntryTypes          = 267
	tagNoMDEntries             = 268
	tagMDEntryType             = 269
	tagMDEntryPx               = 270
	tagMDEntrySize             = 271
	tagMDEntryTime             = 273
	tagNoRelatedSym            = 146
	tagMDUpdateAction          = 279
	tagMDReqRejReason          = 281
	tagMDEntryPositionNo       = 290
	tagAggressorSide           = 2446
)

// MarketDataRequest subscribes (or snapshots) a single symbol's book.
type MarketDataRequest struct {
	MDReqID                 string
	SubscriptionRequestType string
	MarketDepth             int64
	EntryTypes              []string
	Symbol                  string
}

func (MarketDataRequest) MsgType() string { return MsgTypeMarketDataRequest }

func (m MarketDataRequest) BodyFields() []fixcodec.Field {
	f := []fixcodec.Field{
		strField(tagMDReqID, m.MDReqID),
		strField(tagSubscriptionRequestType, m.SubscriptionRequestType),
		intField(tagMarketDepth, m.MarketDepth),
		intField(tagNoMDEntryTypes, int64(len(m.EntryTypes))),
	}
	for _, et := range m.EntryTypes {
		f = append(f, strField(tagMDEntryType, et))
	}
	f = append(f, intField(tagNoRelatedSym, 1), strField(tagSymbol, m.Symbol))
	return f
}

func decodeMarketDataRequest(b []fixcodec.Field) (MarketDataRequest, error) {
	var m MarketDataRequest
	var err error
	if m.MDReqID, err = parseOptString(b, tagMDReqID); err != nil {
		return m, err
	}
	if m.SubscriptionRequestType, err = parseOptString(b, tagSubscriptionRequestType); err != nil {
		return m, err
	}
	if m.MarketDepth, err = parseOptInt(b, tagMarketDepth); err != nil {
		return m, err
	}
	for _, grp := range splitOnRepeat(b, tagMDEntryType) {
		if f, ok := fieldByTag(grp, tagMDEntryType); ok {
			et, err := fixcodec.ParseString(f.Value)
			if err != nil {
				return m, err
			}
			m.EntryTypes = append(m.EntryTypes, et)
		}
	}
	m.Symbol, err = parseOptString(b, tagSymbol)
	return m, err
}

// MDEntry is a single book level or trade print within a snapshot or
// incremental refresh.
type MDEntry struct {
	UpdateAction string // incremental refresh only; empty on a snapshot
	EntryType    string
	Price        fixcodec.Decimal
	Size         fixcodec.Decimal
	Time         string // MDEntryTime(273), venue-local HH:MM:SS text
	PositionNo   string // book position for bid/offer levels
	Aggressor    string // AggressorSide(2446) on trade prints, when the venue sends it
}

// fields renders the portion of an entry shared by both message types,
// starting with MDEntryType, the snapshot group's lead tag. For an
// incremental refresh the caller MUST emit MDUpdateAction before these
// fields, since the decoder splits group elements on the lead tag's
// reappearance.
func (e MDEntry) fields() []fixcodec.Field {
	f := []fixcodec.Field{
		strField(tagMDEntryType, e.EntryType),
		decField(tagMDEntryPx, e.Price),
		decField(tagMDEntrySize, e.Size),
	}
	f = appendIfNotEmpty(f, tagMDEntryTime, e.Time)
	f = appendIfNotEmpty(f, tagMDEntryPositionNo, e.PositionNo)
	f = appendIfNotEmpty(f, tagAggressorSide, e.Aggressor)
	return f
}

func decodeMDEntry(grp []fixcodec.Field) (MDEntry, error) {
	var e MDEntry
	var err error
	if e.EntryType, err = parseOptString(grp, tagMDEntryType); err != nil {
		return e, err
	}
	if e.Price, err = parseOptDecimal(grp, tagMDEntryPx); err != nil {
		return e, err
	}
	if e.Size, err = parseOptDecimal(grp, tagMDEntrySize); err != nil {
		return e, err
	}
	if e.Time, err = parseOptString(grp, tagMDEntryTime); err != nil {
		return e, err
	}
	if e.PositionNo, err = parseOptString(grp, tagMDEntryPositionNo); err != nil {
		return e, err
	}
	e.Aggressor, err = parseOptString(grp, tagAggressorSide)
	return e, err
}

// MarketDataRequestReject declines a MarketDataRequest, referencing its
// MDReqID.
type MarketDataRequestReject struct {
	MDReqID        string
	MDReqRejReason string
	Text           string
}

func (MarketDataRequestReject) MsgType() string { return MsgTypeMarketDataReject }

func (m MarketDataRequestReject) BodyFields() []fixcodec.Field {
	f := []fixcodec.Field{strField(tagMDReqID, m.MDReqID)}
	f = appendIfNotEmpty(f, tagMDReqRejReason, m.MDReqRejReason)
	f = appendIfNotEmpty(f, tagText, m.Text)
	return f
}

func decodeMarketDataRequestReject(b []fixcodec.Field) (MarketDataRequestReject, error) {
	var m MarketDataRequestReject
	var err error
	if m.MDReqID, err = parseOptString(b, tagMDReqID); err != nil {
		return m, err
	}
	if m.MDReqRejReason, err = parseOptString(b, tagMDReqRejReason); err != nil {
		return m, err
	}
	m.Text, err = parseOptString(b, tagText)
	return m, err
}

// MarketDataSnapshotFullRefresh is a full order-book replacement for Symbol.
type MarketDataSnapshotFullRefresh struct {
	MDReqID string
	Symbol  string
	Entries []MDEntry
}

func (MarketDataSnapshotFullRefresh) MsgType() string { return MsgTypeMarketDataSnapshot }

func (m MarketDataSnapshotFullRefresh) BodyFields() []fixcodec.Field {
	f := appendIfNotEmpty(nil, tagMDReqID, m.MDReqID)
	f = append(f, strField(tagSymbol, m.Symbol), intField(tagNoMDEntries, int64(len(m.Entries))))
	for _, e := range m.Entries {
		f = append(f, e.fields()...)
	}
	return f
}

func decodeMarketDataSnapshot(b []fixcodec.Field) (MarketDataSnapshotFullRefresh, error) {
	var m MarketDataSnapshotFullRefresh
	var err error
	if m.MDReqID, err = parseOptString(b, tagMDReqID); err != nil {
		return m, err
	}
	if m.Symbol, err = parseOptString(b, tagSymbol); err != nil {
		return m, err
	}
	for _, grp := range splitOnRepeat(b, tagMDEntryType) {
		e, err := decodeMDEntry(grp)
		if err != nil {
			return m, err
		}
		m.Entries = append(m.Entries, e)
	}
	return m, nil
}

// MarketDataIncrementalRefresh carries one or more book-level deltas.
type MarketDataIncrementalRefresh struct {
	Symbol  string
	Entries []MDEntry
}

func (MarketDataIncrementalRefresh) MsgType() string { return MsgTypeMarketDataIncremental }

func (m MarketDataIncrementalRefresh) BodyFields() []fixcodec.Field {
	f := []fixcodec.Field{intField(tagNoMDEntries, int64(len(m.Entries)))}
	for _, e := range m.Entries {
		f = append(f, strField(tagMDUpdateAction, e.UpdateAction), strField(tagSymbol, m.Symbol))
		f = append(f, e.fields()...)
	}
	return f
}

func decodeMarketDataIncremental(b []fixcodec.Field) (MarketDataIncrementalRefresh, error) {
	var m MarketDataIncrementalRefresh
	for _, grp := range splitOnRepeat(b, tagMDUpdateAction) {
		if sym, err := parseOptString(grp, tagSymbol); err == nil && sym != "" {
			m.Symbol = sym
		}
		updateAction, err := parseOptString(grp, tagMDUpdateAction)
		if err != nil {
			return m, err
		}
		e, err := decodeMDEntry(grp)
		if err != nil {
			return m, err
		}
		e.UpdateAction = updateAction
		m.Entries = append(m.Entries, e)
	}
	return m, nil
}
