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

// Package fixio chunks a raw byte stream into complete FIX messages.
package fixio

import (
	"bytes"
	"io"

	"github.com/buybackoff/fixtrader/fixcodec"
	"github.com/buybackoff/fixtrader/fixerr"
)

// trailerPrefix is the byte sequence that opens the CheckSum field: the SOH
// closing the previous field followed by "10=".
var trailerPrefix = []byte{fixcodec.SOH, '1', '0', '='}

// Reader is a stateful reader over a byte stream that returns complete FIX
// messages. It owns a fixed-size buffer of maxMessageSize bytes; emitted
// message slices alias that buffer until the next ReadMessage call, so
// callers must copy anything they need to retain.
type Reader struct {
	src      io.Reader
	buf      []byte
	start    int
	end      int
	tooLarge bool
}

// NewReader returns a Reader over src with a fixed maxMessageSize buffer.
func NewReader(src io.Reader, maxMessageSize int) *Reader {
	return &Reader{src: src, buf: make([]byte, maxMessageSize)}
}

// ReadMessage blocks until a complete FIX message is available and returns
// the slice [start, end) spanning from the first byte of the message
// through the SOH that closes CheckSum(10), inclusive.
func (r *Reader) ReadMessage() ([]byte, error) {
	if r.tooLarge {
		return nil, fixerr.New(fixerr.KindMessageTooLarge, "reader is stuck after a previous MessageTooLarge failure")
	}
	for {
		if msg, ok := r.tryExtract(); ok {
			return msg, nil
		}
		if err := r.fill(); err != nil {
			return nil, err
		}
	}
}

func (r *Reader) tryExtract() ([]byte, bool) {
	window := r.buf[r.start:r.end]

	idx := bytes.Index(window, trailerPrefix)
	if idx == -1 {
		return nil, false
	}

	valueStart := idx + len(trailerPrefix)
	sohIdx := bytes.IndexByte(window[valueStart:], fixcodec.SOH)
	if sohIdx == -1 {
		return nil, false
	}

	end := valueStart + sohIdx + 1
	msg := window[:end]
	r.start += end
	return msg, true
}

func (r *Reader) fill() error {
	if r.start > 0 && r.end == len(r.buf) {
		copy(r.buf, r.buf[r.start:r.end])
		r.end -= r.start
		r.start = 0
	}

	if r.start == 0 && r.end == len(r.buf) {
		r.tooLarge = true
		return fixerr.New(fixerr.KindMessageTooLarge, "no trailer found before buffer filled")
	}

	n, err := r.src.Read(r.buf[r.end:])
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return fixerr.Wrap(fixerr.KindEmptyStream, "underlying stream closed before a trailer was found", err)
	}
	r.end += n
	return nil
}
