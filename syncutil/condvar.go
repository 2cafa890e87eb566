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

package syncutil

import (
	"context"
	"sync/atomic"
)

// CondVar is a condition variable bound to an external Mutex: Wait releases
// the mutex, parks until the next Signal/Broadcast bumps the epoch, then
// re-acquires before returning.
type CondVar struct {
	mu      *Mutex
	waiters int32
	epoch   int32
}

// NewCondVar binds a condition variable to mu, which callers must already
// hold when calling Wait.
func NewCondVar(mu *Mutex) *CondVar {
	return &CondVar{mu: mu}
}

// Wait releases mu, blocks until woken or ctx is canceled, then reacquires
// mu before returning — even on a canceled ctx, matching the scoped-guard
// discipline the rest of this package depends on.
func (c *CondVar) Wait(ctx context.Context) error {
	atomic.AddInt32(&c.waiters, 1)
	start := atomic.LoadInt32(&c.epoch)
	c.mu.Unlock()

	err := park(ctx, func() bool {
		return atomic.LoadInt32(&c.epoch) != start
	})

	atomic.AddInt32(&c.waiters, -1)

	if lockErr := c.mu.Lock(context.Background()); lockErr != nil && err == nil {
		err = lockErr
	}

	return err
}

// Signal wakes at least one waiter, if any are parked.
func (c *CondVar) Signal() {
	if atomic.LoadInt32(&c.waiters) > 0 {
		atomic.AddInt32(&c.epoch, 1)
	}
}

// Broadcast wakes every waiter currently parked.
func (c *CondVar) Broadcast() {
	if atomic.LoadInt32(&c.waiters) > 0 {
		atomic.AddInt32(&c.epoch, 1)
	}
}
