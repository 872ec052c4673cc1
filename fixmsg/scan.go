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
	"bytes"
	"time"

	"github.com/buybackoff/fixtrader/fixcodec"
	"github.com/buybackoff/fixtrader/fixerr"
)

// ScanFields splits a complete raw message (as returned by the message
// reader, including its trailing CheckSum and SOH) into tag=value fields.
func ScanFields(raw []byte) ([]fixcodec.Field, error) {
	var fields []fixcodec.Field
	for len(raw) > 0 {
		eq := bytes.IndexByte(raw, '=')
		if eq == -1 {
			return nil, fixerr.New(fixerr.KindMalformedMessage, "field missing '='")
		}
		tag, err := fixcodec.ParseInt(raw[:eq])
		if err != nil {
			return nil, err
		}
		rest := raw[eq+1:]
		soh := bytes.IndexByte(rest, fixcodec.SOH)
		if soh == -1 {
			return nil, fixerr.New(fixerr.KindMalformedMessage, "field missing trailing SOH")
		}
		fields = append(fields, fixcodec.Field{Tag: int(tag), Value: rest[:soh]})
		raw = rest[soh+1:]
	}
	return fields, nil
}

// builder constructs a Message from its body fields (header fields and the
// envelope already stripped out).
type builder func(body []fixcodec.Field) (Message, error)

var registry = map[string]builder{}

func register(msgType string, b builder) {
	registry[msgType] = b
}

// Decode parses a complete raw message into its Header and typed Message.
// An unrecognized MsgType yields (nil, header, nil) — the caller is
// expected to skip it and continue reading, per the receiver's dispatch
// contract.
func Decode(raw []byte) (Message, Header, error) {
	fields, err := ScanFields(raw)
	if err != nil {
		return nil, Header{}, err
	}
	if len(fields) < 3 {
		return nil, Header{}, fixerr.New(fixerr.KindMalformedMessage, "message shorter than the minimal envelope")
	}
	if fields[0].Tag != fixcodec.TagBeginString {
		return nil, Header{}, fixerr.New(fixerr.KindMalformedMessage, "BeginString must be the first field")
	}
	beginString, err := fixcodec.ParseString(fields[0].Value)
	if err != nil {
		return nil, Header{}, err
	}
	if beginString != SupportedBeginString {
		return nil, Header{}, fixerr.New(fixerr.KindUnsupportedProtocol, "unregistered BeginString "+beginString)
	}
	if fields[1].Tag != fixcodec.TagBodyLength {
		return nil, Header{}, fixerr.New(fixerr.KindMalformedMessage, "BodyLength must follow BeginString")
	}
	if fields[2].Tag != fixcodec.TagMsgType {
		return nil, Header{}, fixerr.New(fixerr.KindMalformedMessage, "MsgType must follow BodyLength")
	}
	msgType, err := fixcodec.ParseString(fields[2].Value)
	if err != nil {
		return nil, Header{}, err
	}

	var h Header
	var body []fixcodec.Field
	for _, f := range fields[3:] {
		switch f.Tag {
		case fixcodec.TagCheckSum:
			continue
		case tagSenderCompID:
			h.SenderCompID, err = fixcodec.ParseString(f.Value)
		case tagTargetCompID:
			h.TargetCompID, err = fixcodec.ParseString(f.Value)
		case tagMsgSeqNum:
			h.MsgSeqNum, err = fixcodec.ParseInt(f.Value)
		case tagSendingTime:
			h.SendingTime, err = fixcodec.ParseTimestamp(f.Value)
		default:
			body = append(body, f)
		}
		if err != nil {
			return nil, Header{}, err
		}
	}

	b, ok := registry[msgType]
	if !ok {
		return nil, h, nil
	}
	msg, err := b(body)
	if err != nil {
		return nil, h, err
	}
	return msg, h, nil
}

// splitOnRepeat partitions fields into repeating-group elements, starting a
// new element every time leadTag reappears. This is the concrete reading of
// the schema's AlreadySet rule: a scalar field recurring inside a group
// closes the current element and opens a new one.
func splitOnRepeat(fields []fixcodec.Field, leadTag int) [][]fixcodec.Field {
	var groups [][]fixcodec.Field
	var cur []fixcodec.Field
	for _, f := range fields {
		if f.Tag == leadTag {
			if cur != nil {
				groups = append(groups, cur)
			}
			cur = []fixcodec.Field{f}
		} else if cur != nil {
			cur = append(cur, f)
		}
	}
	if cur != nil {
		groups = append(groups, cur)
	}
	return groups
}

func fieldByTag(fields []fixcodec.Field, tag int) (fixcodec.Field, bool) {
	for _, f := range fields {
		if f.Tag == tag {
			return f, true
		}
	}
	return fixcodec.Field{}, false
}

func strField(tag int, v string) fixcodec.Field { return fixcodec.Field{Tag: tag, Value: []byte(v)} }

func intField(tag int, v int64) fixcodec.Field {
	return fixcodec.Field{Tag: tag, Value: fixcodec.AppendInt(nil, v)}
}

func decField(tag int, v fixcodec.Decimal) fixcodec.Field {
	return fixcodec.Field{Tag: tag, Value: fixcodec.AppendDecimal(nil, v)}
}

func boolField(tag int, v bool) fixcodec.Field {
	return fixcodec.Field{Tag: tag, Value: fixcodec.AppendBool(nil, v)}
}

func tsField(tag int, v time.Time) fixcodec.Field {
	return fixcodec.Field{Tag: tag, Value: fixcodec.AppendTimestamp(nil, v)}
}

func charField(tag int, v byte) fixcodec.Field {
	return fixcodec.Field{Tag: tag, Value: []byte{v}}
}

func appendIfNotEmpty(fields []fixcodec.Field, tag int, v string) []fixcodec.Field {
	if v == "" {
		return fields
	}
	return append(fields, strField(tag, v))
}

func appendDecIfNotEmpty(fields []fixcodec.Field, tag int, v fixcodec.Decimal) []fixcodec.Field {
	if v == "" {
		return fields
	}
	return append(fields, decField(tag, v))
}

func parseOptString(fields []fixcodec.Field, tag int) (string, error) {
	f, ok := fieldByTag(fields, tag)
	if !ok {
		return "", nil
	}
	return fixcodec.ParseString(f.Value)
}

func parseOptDecimal(fields []fixcodec.Field, tag int) (fixcodec.Decimal, error) {
	f, ok := fieldByTag(fields, tag)
	if !ok {
		return "", nil
	}
	return fixcodec.ParseDecimal(f.Value)
}

func parseOptInt(fields []fixcodec.Field, tag int) (int64, error) {
	f, ok := fieldByTag(fields, tag)
	if !ok {
		return 0, nil
	}
	return fixcodec.ParseInt(f.Value)
}
