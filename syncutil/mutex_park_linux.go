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

//go:build linux

package syncutil

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	liberr "github.com/sabouaram/webcore/errors"
)

// futexWaitSlice bounds how long a single FUTEX_WAIT call blocks before
// re-checking ctx; there's no portable way to interrupt a blocked futex
// call from another goroutine, so the wait is sliced instead of open-ended.
const futexWaitSlice = 2 * time.Millisecond

// mutexPark spins briefly, then parks state on a real futex rather than a
// pure Gosched loop: state is a single word and FUTEX_WAIT's "only sleep if
// *addr still equals val" check maps directly onto the contended state,
// per §9's invitation to use the platform's native wait primitive.
func mutexPark(ctx context.Context, state *int32) error {
	for i := 0; i < spinLimit; i++ {
		if atomic.LoadInt32(state) != stateContended {
			return nil
		}
		if ctxCanceled(ctx) {
			return parkCanceled(ctx)
		}
		runtime.Gosched()
	}

	ts := unix.NsecToTimespec(int64(futexWaitSlice))
	for {
		if atomic.LoadInt32(state) != stateContended {
			return nil
		}
		if ctxCanceled(ctx) {
			return parkCanceled(ctx)
		}
		_, _, errno := unix.Syscall6(
			unix.SYS_FUTEX,
			uintptr(unsafe.Pointer(state)),
			uintptr(unix.FUTEX_WAIT|unix.FUTEX_PRIVATE_FLAG),
			uintptr(uint32(stateContended)),
			uintptr(unsafe.Pointer(&ts)),
			0, 0,
		)
		// EAGAIN (state already changed) and ETIMEDOUT (slice elapsed) are
		// both expected wakeups; the top-of-loop load decides what's next.
		_ = errno
	}
}

// mutexWake wakes every waiter parked on state's futex word. FUTEX_WAKE is
// a no-op (returns 0 woken) when nobody is waiting, so Unlock can call this
// unconditionally once it observes stateContended.
func mutexWake(state *int32) {
	_, _, _ = unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(state)),
		uintptr(unix.FUTEX_WAKE|unix.FUTEX_PRIVATE_FLAG),
		uintptr(1<<30),
		0, 0, 0,
	)
}

func ctxCanceled(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func parkCanceled(ctx context.Context) error {
	return liberr.Wrap(liberr.CodeConcurrency, "lock wait canceled", ctx.Err())
}
