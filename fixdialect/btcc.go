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

package fixdialect

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// btccSigner signs a fixed-shape request string with HMAC-SHA1:
// "tonce=...&accesskey=...&requestmethod=post&id=1&method=...", where tonce
// is a microsecond timestamp supplied via SignableFields.Timestamp.
type btccSigner struct{}

func (btccSigner) Sign(f SignableFields) string {
	msg := fmt.Sprintf("tonce=%s&accesskey=%s&requestmethod=post&id=1&method=%s",
		f.Timestamp, f.APIKey, f.Method)

	mac := hmac.New(sha1.New, []byte(f.Secret))
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}

// btccAccount packs the API key and this request's signature into BTCC's
// expected Account(1) form: base64("accesskey:hash").
func btccAccount(apiKey, signature string) string {
	return base64.StdEncoding.EncodeToString([]byte(apiKey + ":" + signature))
}
