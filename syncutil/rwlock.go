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

const writerBit uint32 = 1 << 31
const maxReaders uint32 = writerBit - 1

// RwLock packs writer-held and reader-count into a single word: the top
// bit marks a writer, the low 31 bits count readers. Writer starvation is
// accepted — callers needing fairness should use Mutex instead.
type RwLock struct {
	word uint32
}

func (l *RwLock) RLock(ctx context.Context) error {
	return park(ctx, func() bool {
		for {
			cur := atomic.LoadUint32(&l.word)
			if cur&writerBit != 0 || cur&maxReaders == maxReaders {
				return false
			}
			if atomic.CompareAndSwapUint32(&l.word, cur, cur+1) {
				return true
			}
		}
	})
}

func (l *RwLock) RUnlock() {
	atomic.AddUint32(&l.word, ^uint32(0))
}

func (l *RwLock) Lock(ctx context.Context) error {
	return park(ctx, func() bool {
		return atomic.CompareAndSwapUint32(&l.word, 0, writerBit)
	})
}

func (l *RwLock) Unlock() {
	atomic.StoreUint32(&l.word, 0)
}
