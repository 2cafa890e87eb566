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

import "context"

// Locker is satisfied by Mutex and RwLock's write side; Guard works with
// either so call sites never hand-roll defer Unlock().
type Locker interface {
	Lock(ctx context.Context) error
	Unlock()
}

// Guard acquires l and returns a release func that unlocks exactly once,
// including when called during a panic unwind — the idiomatic replacement
// for a scope-exit destructor in a language without one.
func Guard(ctx context.Context, l Locker) (func(), error) {
	if err := l.Lock(ctx); err != nil {
		return func() {}, err
	}

	var done bool
	return func() {
		if done {
			return
		}
		done = true
		l.Unlock()
	}, nil
}
