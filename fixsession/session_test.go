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

package fixsession

import (
	"testing"

	"github.com/buybackoff/fixtrader/fixtransport"
)

func TestSession_IncDecRef(t *testing.T) {
	c, s := pipePair()
	defer s.Close()
	sess := newSession("s1", fixtransport.FromConn(c, 4096))

	if !sess.incRef() {
		t.Fatal("incRef should succeed while refCount > 0")
	}
	// refCount is now 2 (owner + this borrow).
	sess.decRef()
	sess.decRef() // drops the owner ref too; refCount reaches 0

	select {
	case <-sess.zero:
	default:
		t.Fatal("zero channel should be closed once refCount reaches 0")
	}

	if sess.incRef() {
		t.Fatal("incRef must fail once refCount has reached 0")
	}
}

func TestSession_DisposeBlocksUntilLastRef(t *testing.T) {
	c, s := pipePair()
	defer s.Close()
	sess := newSession("s1", fixtransport.FromConn(c, 4096))

	if !sess.incRef() {
		t.Fatal("incRef failed")
	}

	done := make(chan struct{})
	go func() {
		sess.dispose()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("dispose must block while a reference is outstanding")
	default:
	}

	sess.decRef()
	<-done
}
