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
	register(MsgTypeAccountInfoRequest, func(b []fixcodec.Field) (Message, error) { return decodeAccountInfoRequest(b) })
	register(MsgTypeAccountInfoResponse, func(b []fixcodec.Field) (Message, error) { return decodeAccountInfoResponse(b) })
}

// AccountInfo MsgType values are not part of standard FIX 4.4; each exchange
// dialect this client speaks to (OKCoin, Huobi, BTCC) reuses a private-range
// MsgType pair for account balance queries.
const (
	MsgTypeAccountInfoRequest  = "UA"
	MsgTypeAccountInfoResponse = "UB"
)

const (
	tagAccessKey    = 9407
	tagDropCopyFlag = 9406
	tagNetAvgPrice  = 8006
	tagFilledAmt    = 8002
)

// AccountInfoRequest asks a dialect-speaking exchange for its account
// balance snapshot. Account carries the dialect-packed credential (BTCC
// packs accesskey:hash; Huobi and OKCoin use the plain account id).
type AccountInfoRequest struct {
	Account   string
	AccessKey string
}

func (AccountInfoRequest) MsgType() string { return MsgTypeAccountInfoRequest }

func (m AccountInfoRequest) BodyFields() []fixcodec.Field {
	f := []fixcodec.Field{strField(tagAccount, m.Account)}
	f = appendIfNotEmpty(f, tagAccessKey, m.AccessKey)
	return f
}

func decodeAccountInfoRequest(b []fixcodec.Field) (AccountInfoRequest, error) {
	var m AccountInfoRequest
	var err error
	if m.Account, err = parseOptString(b, tagAccount); err != nil {
		return m, err
	}
	m.AccessKey, err = parseOptString(b, tagAccessKey)
	return m, err
}

// AccountInfoResponse is the dialect's account balance snapshot.
type AccountInfoResponse struct {
	Account   string
	FilledAmt fixcodec.Decimal
	NetAvgPx  fixcodec.Decimal
}

func (AccountInfoResponse) MsgType() string { return MsgTypeAccountInfoResponse }

func (m AccountInfoResponse) BodyFields() []fixcodec.Field {
	f := []fixcodec.Field{strField(tagAccount, m.Account)}
	f = appendDecIfNotEmpty(f, tagFilledAmt, m.FilledAmt)
	f = appendDecIfNotEmpty(f, tagNetAvgPrice, m.NetAvgPx)
	return f
}

func decodeAccountInfoResponse(b []fixcodec.Field) (AccountInfoResponse, error) {
	var m AccountInfoResponse
	var err error
	if m.Account, err = parseOptString(b, tagAccount); err != nil {
		return m, err
	}
	if m.FilledAmt, err = parseOptDecimal(b, tagFilledAmt); err != nil {
		return m, err
	}
	m.NetAvgPx, err = parseOptDecimal(b, tagNetAvgPrice)
	return m, err
}
