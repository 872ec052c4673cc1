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

package fixorder

import (
	"sync"
	"time"
)

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// encodeBase64 packs the low 6*n bits of v into n base64 characters,
// most-significant character first.
func encodeBase64(v uint32, n int) string {
	out := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = base64Alphabet[v&0x3F]
		v >>= 6
	}
	return string(out)
}

// ClOrdIDGenerator produces ClOrdID values of the form
// <prefix><sessionChars><seqChars>: a 3-character slice derived from wall
// clock seconds since local midnight (enough to disambiguate same-day
// restarts) followed by a 6-character slice of a monotone counter.
// Uniqueness is only required within a FIX session, which this trivially
// satisfies for any realistic message volume.
type ClOrdIDGenerator struct {
	prefix  string
	session string

	mu      sync.Mutex
	counter uint32
}

// NewClOrdIDGenerator creates a generator using now to derive the
// session-disambiguating prefix.
func NewClOrdIDGenerator(prefix string, now time.Time) *ClOrdIDGenerator {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	secs := uint32(now.Sub(midnight).Seconds())
	return &ClOrdIDGenerator{
		prefix:  prefix,
		session: encodeBase64(secs, 3),
	}
}

// Next returns the next ClOrdID, unique for the lifetime of this generator.
func (g *ClOrdIDGenerator) Next() string {
	g.mu.Lock()
	g.counter++
	c := g.counter
	g.mu.Unlock()
	return g.prefix + g.session + encodeBase64(c, 6)
}
