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

package fixclient

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"time"

	"github.com/buybackoff/fixtrader/fixcodec"
	"github.com/buybackoff/fixtrader/fixdialect"
	"github.com/buybackoff/fixtrader/fixmsg"
)

// coinbaseSign computes Coinbase Prime's own Logon signature: HMAC-SHA256
// over timestamp+msgtype+seqnum+apikey+targetcompid+passphrase,
// base64-encoded. This is the default (fixdialect.None) dialect, which
// carries no Signer of its own since the signature belongs to Coinbase
// itself rather than a compatibility shim for another venue.
func coinbaseSign(ts, msgType, seqNum, apiKey, targetCompID, passphrase, secret string) string {
	msg := ts + msgType + seqNum + apiKey + targetCompID + passphrase
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(msg))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// signableFields assembles the per-request input for a dialect's Signer.
// Each algorithm reads its own subset: BTCC consumes Timestamp as a
// microsecond Unix tonce, Huobi signs the sorted Params set, and the
// remaining fields carry the request's identity for any signer that wants
// them.
func signableFields(cfg Config, now time.Time, msgType string, seqNum int64, method string) fixdialect.SignableFields {
	return fixdialect.SignableFields{
		Timestamp:    strconv.FormatInt(now.UnixMicro(), 10),
		MsgType:      msgType,
		SeqNum:       seqNum,
		APIKey:       cfg.ApiKey,
		TargetCompID: cfg.TargetCompID,
		Passphrase:   cfg.Passphrase,
		Secret:       cfg.ApiSecret,
		Method:       method,
		Params: map[string]string{
			"access_key": cfg.ApiKey,
			"created":    strconv.FormatInt(now.Unix(), 10),
			"method":     method,
		},
	}
}

// buildLogon assembles the Logon message for the configured dialect. For
// None (Coinbase) it signs locally with coinbaseSign; for any other
// extension it delegates credential packing to the dialect's Signer via
// fixdialect.SignableFields: Hmac carries that signature (empty for OKCoin,
// whose Signer returns ""), AccessKey the API key, and Account the
// configured account or the dialect's packed value (BTCC). DropCopyFlag is
// set for None only.
func buildLogon(cfg Config, now time.Time, seqNum int64) fixmsg.Logon {
	logon := fixmsg.Logon{
		EncryptMethod:   "0",
		HeartBtInt:      cfg.heartBtInt(),
		ResetSeqNumFlag: true,
		Username:        cfg.Username,
		Password:        cfg.Password,
	}

	d := cfg.dialect()
	if cfg.Extension == fixdialect.None {
		ts := string(fixcodec.AppendTimestamp(nil, now))
		seq := string(fixcodec.AppendInt(nil, seqNum))
		logon.Password = cfg.Passphrase
		logon.Account = cfg.Account
		logon.AccessKey = cfg.ApiKey
		logon.DropCopyFlag = true
		logon.Hmac = coinbaseSign(ts, fixmsg.MsgTypeLogon, seq, cfg.ApiKey, cfg.TargetCompID, cfg.Passphrase, cfg.ApiSecret)
		return logon
	}

	if d.Signer != nil {
		sig := d.Sign(signableFields(cfg, now, fixmsg.MsgTypeLogon, seqNum, "logon"))
		account := cfg.Account
		if d.Account != nil {
			account = d.Account(cfg.ApiKey, sig)
		}
		logon.Account = account
		logon.AccessKey = cfg.ApiKey
		logon.Hmac = sig
	}
	return logon
}
