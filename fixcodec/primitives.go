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

package fixcodec

import (
	"math/big"
	"time"

	"github.com/buybackoff/fixtrader/fixerr"
)

// TimestampLayout is the long form timestamp FIX 4.4 uses for
// SendingTime/TransactTime/OrigTime fields, UTC, millisecond precision.
const TimestampLayout = "20060102-15:04:05.000"

// timestampLayoutNoMillis is accepted on parse for peers that omit the
// fractional seconds component.
const timestampLayoutNoMillis = "20060102-15:04:05"

// ParseInt parses a signed, variable-width FIX integer. Empty input or any
// non-digit byte (aside from a leading '-') is a MalformedMessage error.
func ParseInt(raw []byte) (int64, error) {
	if len(raw) == 0 {
		return 0, fixerr.New(fixerr.KindMalformedMessage, "empty integer field")
	}
	neg := false
	i := 0
	if raw[0] == '-' {
		neg = true
		i = 1
	}
	if i == len(raw) {
		return 0, fixerr.New(fixerr.KindMalformedMessage, "integer field has no digits")
	}
	var v int64
	for ; i < len(raw); i++ {
		c := raw[i]
		if c < '0' || c > '9' {
			return 0, fixerr.New(fixerr.KindMalformedMessage, "non-digit byte in integer field")
		}
		v = v*10 + int64(c-'0')
	}
	if neg {
		v = -v
	}
	return v, nil
}

// AppendInt appends the decimal ASCII rendering of v to dst.
func AppendInt(dst []byte, v int64) []byte {
	if v < 0 {
		dst = append(dst, '-')
		return AppendUint(dst, uint64(-v))
	}
	return AppendUint(dst, uint64(v))
}

// Decimal is an exact base-10 value carried as its original ASCII digits —
// FIX decimals are never converted to binary floating point, to avoid
// losing precision or reintroducing scientific notation on the wire.
type Decimal string

// ParseDecimal validates that raw is a well-formed FIX decimal: an optional
// leading '-', digits, an optional single '.', more digits. No exponent, no
// leading '+', no empty mantissa.
func ParseDecimal(raw []byte) (Decimal, error) {
	if len(raw) == 0 {
		return "", fixerr.New(fixerr.KindMalformedMessage, "empty decimal field")
	}
	i := 0
	if raw[0] == '-' {
		i = 1
	}
	if i == len(raw) {
		return "", fixerr.New(fixerr.KindMalformedMessage, "decimal field has no digits")
	}
	sawDigit := false
	sawDot := false
	for ; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= '0' && c <= '9':
			sawDigit = true
		case c == '.' && !sawDot:
			sawDot = true
		default:
			return "", fixerr.New(fixerr.KindMalformedMessage, "invalid byte in decimal field")
		}
	}
	if !sawDigit {
		return "", fixerr.New(fixerr.KindMalformedMessage, "decimal field has no digits")
	}
	return Decimal(raw), nil
}

// AppendDecimal appends the Decimal's exact ASCII digits to dst.
func AppendDecimal(dst []byte, d Decimal) []byte {
	return append(dst, d...)
}

// ParseBool parses the FIX Y/N boolean encoding.
func ParseBool(raw []byte) (bool, error) {
	if len(raw) == 1 {
		switch raw[0] {
		case 'Y':
			return true, nil
		case 'N':
			return false, nil
		}
	}
	return false, fixerr.New(fixerr.KindMalformedMessage, "boolean field must be Y or N")
}

// AppendBool appends 'Y' or 'N'.
func AppendBool(dst []byte, v bool) []byte {
	if v {
		return append(dst, 'Y')
	}
	return append(dst, 'N')
}

// ParseChar parses a single-character FIX field.
func ParseChar(raw []byte) (byte, error) {
	if len(raw) != 1 {
		return 0, fixerr.New(fixerr.KindMalformedMessage, "char field must be exactly one byte")
	}
	return raw[0], nil
}

// ParseString validates raw is ASCII and returns it as a string. Non-ASCII
// input is an error — this implementation never falls back to a legacy
// 8-bit code page.
func ParseString(raw []byte) (string, error) {
	for _, c := range raw {
		if c > 0x7F {
			return "", fixerr.New(fixerr.KindMalformedMessage, "non-ASCII byte in string field")
		}
	}
	return string(raw), nil
}

// ParseTimestamp parses the two accepted FIX 4.4 timestamp forms,
// yyyyMMdd-HH:mm:ss and yyyyMMdd-HH:mm:ss.fff, both assumed UTC.
func ParseTimestamp(raw []byte) (time.Time, error) {
	s := string(raw)
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(timestampLayoutNoMillis, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fixerr.New(fixerr.KindMalformedMessage, "malformed timestamp field")
}

// AppendTimestamp appends t formatted as yyyyMMdd-HH:mm:ss.fff in UTC.
func AppendTimestamp(dst []byte, t time.Time) []byte {
	return t.UTC().AppendFormat(dst, TimestampLayout)
}

func decimalRat(d Decimal) (*big.Rat, error) {
	if d == "" {
		return new(big.Rat), nil
	}
	r, ok := new(big.Rat).SetString(string(d))
	if !ok {
		return nil, fixerr.New(fixerr.KindMalformedMessage, "invalid decimal value "+string(d))
	}
	return r, nil
}

// CompareDecimal compares a and b numerically, returning -1, 0, or 1. It
// tolerates differing textual forms of the same value (e.g. "1" vs "1.0").
func CompareDecimal(a, b Decimal) (int, error) {
	ra, err := decimalRat(a)
	if err != nil {
		return 0, err
	}
	rb, err := decimalRat(b)
	if err != nil {
		return 0, err
	}
	return ra.Cmp(rb), nil
}

// SubDecimal returns a-b rendered as a plain (non-exponential) decimal
// string with no more fractional digits than needed.
func SubDecimal(a, b Decimal) (Decimal, error) {
	ra, err := decimalRat(a)
	if err != nil {
		return "", err
	}
	rb, err := decimalRat(b)
	if err != nil {
		return "", err
	}
	diff := new(big.Rat).Sub(ra, rb)
	return Decimal(diff.FloatString(ratScale(diff))), nil
}

// ratScale picks enough fractional digits to render r exactly, up to a
// generous ceiling, trimming trailing zeros afterward.
func ratScale(r *big.Rat) int {
	const maxScale = 12
	s := r.FloatString(maxScale)
	i := len(s)
	for i > 0 && s[i-1] == '0' {
		i--
	}
	if i > 0 && s[i-1] == '.' {
		i--
	}
	dot := -1
	for j, c := range s[:i] {
		if c == '.' {
			dot = j
			break
		}
	}
	if dot == -1 {
		return 0
	}
	return i - dot - 1
}
