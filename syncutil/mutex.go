/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package syncutil provides the concurrency primitives the rest of this
// module builds its shared state on: a three-state mutex, a reentrant
// mutex, an RwLock, a spinlock, a condition variable and a scoped guard.
// None of them wrap sync.Mutex. Mutex's contended path parks on a real
// Linux futex (mutexPark, in the linux-only file) since its wait word is
// a single int32 that maps directly onto FUTEX_WAIT/FUTEX_WAKE; the other
// primitives' ready conditions aren't a plain word-equality check, so
// they — and Mutex itself on non-Linux platforms — fall back to the
// bounded adaptive spin followed by Gosched-based yielding below, with
// context.Context cancellation standing in for an interruptible park.
package syncutil

import (
	"context"
	"runtime"
	"sync/atomic"

	liberr "github.com/sabouaram/webcore/errors"
)

const (
	stateUnlocked  int32 = 0
	stateLockedOne int32 = 1
	stateContended int32 = 2
)

const spinLimit = 64

// Mutex is the three-state mutex described for the rest of this package's
// primitives: unlocked, locked with no known waiters, and locked with at
// least one waiter parked behind it.
type Mutex struct {
	state int32
}

// TryLock attempts the uncontended CAS unlocked→locked_once. It never
// retries on a spurious failure.
func (m *Mutex) TryLock() bool {
	return atomic.CompareAndSwapInt32(&m.state, stateUnlocked, stateLockedOne)
}

// Lock blocks until the mutex is acquired or ctx is canceled. A canceled
// ctx surfaces as a liberr.Error carrying CodeConcurrency.
func (m *Mutex) Lock(ctx context.Context) error {
	if m.TryLock() {
		return nil
	}

	for {
		prev := atomic.SwapInt32(&m.state, stateContended)
		if prev == stateUnlocked {
			return nil
		}

		if err := mutexPark(ctx, &m.state); err != nil {
			return err
		}
	}
}

// Unlock releases the mutex. Unlocking an already-unlocked mutex is a
// programmer error and panics, matching the Fatal error class.
func (m *Mutex) Unlock() {
	switch atomic.SwapInt32(&m.state, stateUnlocked) {
	case stateLockedOne:
		return
	case stateContended:
		mutexWake(&m.state)
		return
	default:
		panic("syncutil: unlock of unlocked Mutex")
	}
}

// park is the adaptive-spin-then-yield fallback used by every blocking
// primitive in this package: spin a bounded number of times, then yield
// the OS thread, checking ready and ctx.Done on every iteration.
func park(ctx context.Context, ready func() bool) error {
	for i := 0; i < spinLimit; i++ {
		if ready() {
			return nil
		}
		if ctx != nil {
			select {
			case <-ctx.Done():
				return liberr.Wrap(liberr.CodeConcurrency, "lock wait canceled", ctx.Err())
			default:
			}
		}
		procYield(i)
	}

	for {
		if ready() {
			return nil
		}
		if ctx != nil {
			select {
			case <-ctx.Done():
				return liberr.Wrap(liberr.CodeConcurrency, "lock wait canceled", ctx.Err())
			default:
			}
		}
		runtime.Gosched()
	}
}

func procYield(iteration int) {
	if iteration < 8 {
		runtime.Gosched()
		return
	}
	runtime.Gosched()
}
