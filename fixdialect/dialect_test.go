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
	"testing"
)

func TestForExtension_None(t *testing.T) {
	d := ForExtension(None)
	if d.Signer != nil {
		t.Fatalf("None dialect should carry no Signer, got %#v", d.Signer)
	}
	if d.IdentifyByOrigClOrdID || d.SnapshotOnlyDepth || d.ExtraOrderFields != nil || d.Account != nil {
		t.Fatalf("None dialect should carry no quirks, got %#v", d.Quirks)
	}
}

func TestOKCoinSigner_Empty(t *testing.T) {
	d := ForExtension(OKCoin)
	if got := d.Sign(SignableFields{Secret: "s"}); got != "" {
		t.Fatalf("OKCoin signer should return empty string, got %q", got)
	}
	if !d.IdentifyByOrigClOrdID || !d.SnapshotOnlyDepth {
		t.Fatalf("OKCoin quirks not set: %#v", d.Quirks)
	}
}

func TestHuobiSigner_SortsParamsByKey(t *testing.T) {
	d := ForExtension(Huobi)

	f := SignableFields{
		Secret: "topsecret",
		Params: map[string]string{
			"Symbol": "btcusdt",
			"Amount": "1.5",
			"Price":  "100",
		},
	}
	got := d.Sign(f)

	// Same params built in sorted order by hand must match.
	mac := hmac.New(md5.New, []byte("topsecret"))
	mac.Write([]byte("Amount=1.5&Price=100&Symbol=btcusdt"))
	if want := hex.EncodeToString(mac.Sum(nil)); got != want {
		t.Fatalf("got %q, want HMAC-MD5 of the sorted param string %q", got, want)
	}

	// Signing again verifies the signer is deterministic regardless of map
	// iteration order.
	again := d.Sign(f)
	if got != again {
		t.Fatalf("signature not deterministic: %q vs %q", got, again)
	}
	if got == "" {
		t.Fatal("expected non-empty signature")
	}

	// Changing one param's value must change the signature.
	f2 := SignableFields{Secret: "topsecret", Params: map[string]string{
		"Symbol": "btcusdt",
		"Amount": "2.5",
		"Price":  "100",
	}}
	if d.Sign(f2) == got {
		t.Fatal("signature did not change when a parameter changed")
	}
}

func TestHuobiExtraOrderFields(t *testing.T) {
	d := ForExtension(Huobi)
	if d.ExtraOrderFields == nil {
		t.Fatal("expected ExtraOrderFields to be set for Huobi")
	}
	fields := d.ExtraOrderFields("0.25")
	if fields["MinQty"] != "0.25" {
		t.Fatalf("expected MinQty to mirror order qty, got %q", fields["MinQty"])
	}
	if fields["CoinType"] == "" {
		t.Fatal("expected a CoinType field")
	}
}

func TestBTCCSigner_Deterministic(t *testing.T) {
	d := ForExtension(BTCC)
	f := SignableFields{
		Timestamp: "1690000000000000",
		APIKey:    "key123",
		Method:    "order",
		Secret:    "shh",
	}
	got := d.Sign(f)
	if got == "" {
		t.Fatal("expected non-empty signature")
	}
	if got != d.Sign(f) {
		t.Fatal("signature not deterministic for identical input")
	}

	f2 := f
	f2.Timestamp = "1690000000000001"
	if d.Sign(f2) == got {
		t.Fatal("signature did not change when tonce changed")
	}
}

func TestBTCCAccount_PacksKeyAndSignature(t *testing.T) {
	got := btccAccount("key123", "deadbeef")
	want := "a2V5MTIzOmRlYWRiZWVm" // base64("key123:deadbeef")
	if got != want {
		t.Fatalf("btccAccount() = %q, want %q", got, want)
	}
}
