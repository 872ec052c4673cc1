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

// okCoinSigner has no custom signature: it returns an empty string, so an
// OKCoin Logon carries no Hmac. Its quirks are entirely in
// Quirks.IdentifyByOrigClOrdID and Quirks.SnapshotOnlyDepth.
type okCoinSigner struct{}

func (okCoinSigner) Sign(SignableFields) string { return "" }
