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

// ReentrantMutex wraps Mutex and lets the current owner re-acquire without
// deadlocking itself, tracking nesting depth so the inner Mutex releases
// only when the outermost Unlock runs.
type ReentrantMutex struct {
	inner Mutex
	owner int64
	depth int
}

// Lock acquires the mutex for goroutine id owner. Go has no public
// goroutine-id API, so callers pass a stable identifier of their own
// (a connection id, a worker index) that is unique per logical owner.
func (r *ReentrantMutex) Lock(ctx context.Context, owner int64) error {
	if atomic.LoadInt64(&r.owner) == owner && r.depth > 0 {
		r.depth++
		return nil
	}

	if err := r.inner.Lock(ctx); err != nil {
		return err
	}

	atomic.StoreInt64(&r.owner, owner)
	r.depth = 1
	return nil
}

// Unlock releases one level of nesting for owner, panicking if owner does
// not currently hold the mutex — an unlock by a non-owner is a programmer
// error.
func (r *ReentrantMutex) Unlock(owner int64) {
	if atomic.LoadInt64(&r.owner) != owner || r.depth == 0 {
		panic("syncutil: unlock of ReentrantMutex by non-owner")
	}

	r.depth--
	if r.depth == 0 {
		atomic.StoreInt64(&r.owner, 0)
		r.inner.Unlock()
	}
}
