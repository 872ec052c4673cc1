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
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
)

// huobiSigner signs the request's parameter set with HMAC-MD5: parameters
// are sorted by key, joined as "k=v&k=v&...", and the MAC is hex-encoded.
type huobiSigner struct{}

func (huobiSigner) Sign(f SignableFields) string {
	keys := make([]string, 0, len(f.Params))
	for k := range f.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(f.Params[k])
	}

	mac := hmac.New(md5.New, []byte(f.Secret))
	mac.Write([]byte(b.String()))
	return hex.EncodeToString(mac.Sum(nil))
}

// huobiExtraOrderFields forces MinQty to equal OrderQty (Huobi rejects
// orders without it) and tags the order with the coin_type Huobi expects
// for spot trading.
func huobiExtraOrderFields(orderQty string) map[string]string {
	return map[string]string{
		"MinQty":   orderQty,
		"CoinType": "1",
	}
}
