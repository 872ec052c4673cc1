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
	register(MsgTypeLogon, func(b []fixcodec.Field) (Message, error) { return decodeLogon(b) })
	register(MsgTypeHeartbeat, func(b []fixcodec.Field) (Message, error) { return decodeHeartbeat(b) })
	register(MsgTypeTestRequest, func(b []fixcodec.Field) (Message, error) { return decodeTestRequest(b) })
	register(MsgTypeReject, func(b []fixcodec.Field) (Message, error) { return decodeReject(b) })
	register(MsgTypeSequenceReset, func(b []fixcodec.Field) (Message, error) { return decodeSequenceReset(b) })
	register(MsgTypeResendRequest, func(b []fixcodec.Field) (Message, error) { return decodeResendRequest(b) })
}

// Session-level MsgType values.
const (
	MsgTypeLogon         = "A"
	MsgTypeHeartbeat     = "0"
	MsgTypeTestRequest   = "1"
	MsgTypeReject        = "3"
	MsgTypeSequenceReset = "4"
	MsgTypeResendRequest = "2"
)

const (
	tagEncryptMethod    = 98
	tagHeartBtInt       = 108
	tagResetSeqNumFlag  = 141
	tagUsername         = 553
	tagPassword         = 554
	tagTestReqID        = 112
	tagRefSeqNum        = 45
	tagRefTagID         = 371
	tagRefMsgType       = 372
	tagSessionRejReason = 373
	tagText             = 58
	tagNewSeqNo         = 36
	tagGapFillFlag      = 123
	tagBeginSeqNo       = 7
	tagEndSeqNo         = 16
	tagHmac             = 96
)

// Logon is the session initializer message: EncryptMethod=0, HeartBtInt,
// optional Username/Password, and ResetSeqNumFlag. Account/Hmac/AccessKey/
// DropCopyFlag are Coinbase Prime's own credential-bearing extension of the
// handshake (the dialect signature and portfolio id travel on Logon itself
// rather than a separate auth message); the OKCoin/Huobi/BTCC dialects fill
// Account/Hmac/AccessKey from their own Signer and leave DropCopyFlag unset.
type Logon struct {
	EncryptMethod   string
	HeartBtInt      int64
	ResetSeqNumFlag bool
	Username        string
	Password        string
	Account         string
	Hmac            string
	AccessKey       string
	DropCopyFlag    bool
}

func (Logon) MsgType() string { return MsgTypeLogon }

func (m Logon) BodyFields() []fixcodec.Field {
	f := []fixcodec.Field{
		strField(tagEncryptMethod, m.EncryptMethod),
		intField(tagHeartBtInt, m.HeartBtInt),
		boolField(tagResetSeqNumFlag, m.ResetSeqNumFlag),
	}
	f = appendIfNotEmpty(f, tagUsername, m.Username)
	f = appendIfNotEmpty(f, tagPassword, m.Password)
	f = appendIfNotEmpty(f, tagAccount, m.Account)
	f = appendIfNotEmpty(f, tagHmac, m.Hmac)
	f = appendIfNotEmpty(f, tagAccessKey, m.AccessKey)
	if m.DropCopyFlag {
		f = append(f, boolField(tagDropCopyFlag, m.DropCopyFlag))
	}
	return f
}

func decodeLogon(b []fixcodec.Field) (Logon, error) {
	var m Logon
	var err error
	if m.EncryptMethod, err = parseOptString(b, tagEncryptMethod); err != nil {
		return m, err
	}
	if m.HeartBtInt, err = parseOptInt(b, tagHeartBtInt); err != nil {
		return m, err
	}
	if f, ok := fieldByTag(b, tagResetSeqNumFlag); ok {
		if m.ResetSeqNumFlag, err = fixcodec.ParseBool(f.Value); err != nil {
			return m, err
		}
	}
	if m.Username, err = parseOptString(b, tagUsername); err != nil {
		return m, err
	}
	if m.Password, err = parseOptString(b, tagPassword); err != nil {
		return m, err
	}
	if m.Account, err = parseOptString(b, tagAccount); err != nil {
		return m, err
	}
	if m.Hmac, err = parseOptString(b, tagHmac); err != nil {
		return m, err
	}
	if m.AccessKey, err = parseOptString(b, tagAccessKey); err != nil {
		return m, err
	}
	if f, ok := fieldByTag(b, tagDropCopyFlag); ok {
		if m.DropCopyFlag, err = fixcodec.ParseBool(f.Value); err != nil {
			return m, err
		}
	}
	return m, nil
}

// Heartbeat optionally echoes a TestReqID in reply to a TestRequest.
type Heartbeat struct {
	TestReqID string
}

func (Heartbeat) MsgType() string { return MsgTypeHeartbeat }

func (m Heartbeat) BodyFields() []fixcodec.Field {
	return appendIfNotEmpty(nil, tagTestReqID, m.TestReqID)
}

func decodeHeartbeat(b []fixcodec.Field) (Heartbeat, error) {
	var m Heartbeat
	var err error
	m.TestReqID, err = parseOptString(b, tagTestReqID)
	return m, err
}

// TestRequest demands a Heartbeat echoing TestReqID.
type TestRequest struct {
	TestReqID string
}

func (TestRequest) MsgType() string { return MsgTypeTestRequest }

func (m TestRequest) BodyFields() []fixcodec.Field {
	return []fixcodec.Field{strField(tagTestReqID, m.TestReqID)}
}

func decodeTestRequest(b []fixcodec.Field) (TestRequest, error) {
	var m TestRequest
	var err error
	m.TestReqID, err = parseOptString(b, tagTestReqID)
	return m, err
}

// Reject is the session-level reject, referencing the offending RefSeqNum.
type Reject struct {
	RefSeqNum           int64
	RefTagID            int64
	RefMsgType          string
	SessionRejectReason string
	Text                string
}

func (Reject) MsgType() string { return MsgTypeReject }

func (m Reject) BodyFields() []fixcodec.Field {
	f := []fixcodec.Field{intField(tagRefSeqNum, m.RefSeqNum)}
	if m.RefTagID != 0 {
		f = append(f, intField(tagRefTagID, m.RefTagID))
	}
	f = appendIfNotEmpty(f, tagRefMsgType, m.RefMsgType)
	f = appendIfNotEmpty(f, tagSessionRejReason, m.SessionRejectReason)
	f = appendIfNotEmpty(f, tagText, m.Text)
	return f
}

func decodeReject(b []fixcodec.Field) (Reject, error) {
	var m Reject
	var err error
	if m.RefSeqNum, err = parseOptInt(b, tagRefSeqNum); err != nil {
		return m, err
	}
	if m.RefTagID, err = parseOptInt(b, tagRefTagID); err != nil {
		return m, err
	}
	if m.RefMsgType, err = parseOptString(b, tagRefMsgType); err != nil {
		return m, err
	}
	if m.SessionRejectReason, err = parseOptString(b, tagSessionRejReason); err != nil {
		return m, err
	}
	m.Text, err = parseOptString(b, tagText)
	return m, err
}

// SequenceReset is not used to recover sequence numbers in this client
// (reconnect always resets to 1); it is still decoded so an unsolicited
// GapFill from the peer does not crash the pump.
type SequenceReset struct {
	NewSeqNo    int64
	GapFillFlag bool
}

func (SequenceReset) MsgType() string { return MsgTypeSequenceReset }

func (m SequenceReset) BodyFields() []fixcodec.Field {
	f := []fixcodec.Field{intField(tagNewSeqNo, m.NewSeqNo)}
	f = append(f, boolField(tagGapFillFlag, m.GapFillFlag))
	return f
}

func decodeSequenceReset(b []fixcodec.Field) (SequenceReset, error) {
	var m SequenceReset
	var err error
	if m.NewSeqNo, err = parseOptInt(b, tagNewSeqNo); err != nil {
		return m, err
	}
	if f, ok := fieldByTag(b, tagGapFillFlag); ok {
		m.GapFillFlag, err = fixcodec.ParseBool(f.Value)
	}
	return m, err
}

// ResendRequest is decoded but never honored with a replay: this client has
// no message store and always logs on with ResetSeqNumFlag.
type ResendRequest struct {
	BeginSeqNo int64
	EndSeqNo   int64
}

func (ResendRequest) MsgType() string { return MsgTypeResendRequest }

func (m ResendRequest) BodyFields() []fixcodec.Field {
	return []fixcodec.Field{
		intField(tagBeginSeqNo, m.BeginSeqNo),
		intField(tagEndSeqNo, m.EndSeqNo),
	}
}

func decodeResendRequest(b []fixcodec.Field) (ResendRequest, error) {
	var m ResendRequest
	var err error
	if m.BeginSeqNo, err = parseOptInt(b, tagBeginSeqNo); err != nil {
		return m, err
	}
	m.EndSeqNo, err = parseOptInt(b, tagEndSeqNo)
	return m, err
}
