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

// Package fixmsg implements the FIX 4.4 field/message schema: encoding a
// typed message to an ordered field list, and decoding an ordered field list
// back to a typed message by MsgType.
package fixmsg

import (
	"time"

	"github.com/buybackoff/fixtrader/fixcodec"
)

// SupportedBeginString is the only BeginString value this decoder accepts.
const SupportedBeginString = "FIX.4.4"

// Header carries the common session-level fields present on every message.
// MsgSeqNum is assigned by the transport at send time, not by the caller.
type Header struct {
	SenderCompID string
	TargetCompID string
	MsgSeqNum    int64
	SendingTime  time.Time
}

func (h Header) fields(msgType string) []fixcodec.Field {
	return []fixcodec.Field{
		strField(fixcodec.TagMsgType, msgType),
		strField(tagSenderCompID, h.SenderCompID),
		strField(tagTargetCompID, h.TargetCompID),
		intField(tagMsgSeqNum, h.MsgSeqNum),
		tsField(tagSendingTime, h.SendingTime),
	}
}

// Message is a decoded or to-be-encoded FIX application message.
type Message interface {
	// MsgType is the FIX MsgType(35) value identifying the schema.
	MsgType() string
	// BodyFields returns the body in schema order, excluding the header
	// fields Header already supplies.
	BodyFields() []fixcodec.Field
}

// Encode renders msg as a complete wire message: BeginString, BodyLength,
// the common header, the message's own body fields, and CheckSum.
func Encode(h Header, msg Message) []byte {
	fields := h.fields(msg.MsgType())
	fields = append(fields, msg.BodyFields()...)
	return fixcodec.EncodeMessage(SupportedBeginString, fields)
}

const (
	tagSenderCompID = 49
	tagTargetCompID = 56
	tagMsgSeqNum    = 34
	tagSendingTime  = 52
)
