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

// Package fixcodec parses and serializes the FIX primitive wire types and
// computes the framing (BodyLength, CheckSum) every message carries.
//
// Serialization of small non-negative integers and of the checksum is done
// via precomputed tables so the hot send path never allocates or calls
// strconv for the common case.
package fixcodec

// smallInts[i] is the decimal ASCII rendering of i, for 0 <= i < len(smallInts).
// Covers the range used by MsgSeqNum/BodyLength/tag numbers on most messages
// without falling back to strconv.
var smallInts [10000]string

// checksumTriplet[i] is the zero-padded three-digit rendering of i mod 256,
// i.e. the exact bytes FIX tag 10's value must contain.
var checksumTriplet [256]string

func init() {
	for i := range smallInts {
		smallInts[i] = formatUintSlow(uint64(i))
	}
	for i := range checksumTriplet {
		checksumTriplet[i] = threeDigits(i)
	}
}

func threeDigits(v int) string {
	b := make([]byte, 3)
	b[0] = byte('0' + (v/100)%10)
	b[1] = byte('0' + (v/10)%10)
	b[2] = byte('0' + v%10)
	return string(b)
}

func formatUintSlow(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// AppendUint appends the decimal ASCII form of v to dst, using the
// precomputed table for v < 10000 to avoid allocation.
func AppendUint(dst []byte, v uint64) []byte {
	if v < uint64(len(smallInts)) {
		return append(dst, smallInts[v]...)
	}
	return append(dst, formatUintSlow(v)...)
}

// AppendChecksum appends the three-digit, zero-padded checksum value to dst.
func AppendChecksum(dst []byte, sum byte) []byte {
	return append(dst, checksumTriplet[sum]...)
}
