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

package syncutil_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	libsync "github.com/sabouaram/webcore/syncutil"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("[TC-SYNC] Mutex", func() {
	It("[TC-SYNC-001] TryLock only succeeds once until Unlock", func() {
		var m libsync.Mutex
		Expect(m.TryLock()).To(BeTrue())
		Expect(m.TryLock()).To(BeFalse())
		m.Unlock()
		Expect(m.TryLock()).To(BeTrue())
	})

	It("[TC-SYNC-002] Lock blocks a second goroutine until Unlock", func() {
		var m libsync.Mutex
		Expect(m.Lock(context.Background())).To(Succeed())

		var acquired int32
		go func() {
			_ = m.Lock(context.Background())
			atomic.StoreInt32(&acquired, 1)
		}()

		time.Sleep(20 * time.Millisecond)
		Expect(atomic.LoadInt32(&acquired)).To(Equal(int32(0)))

		m.Unlock()
		Eventually(func() int32 { return atomic.LoadInt32(&acquired) }, time.Second).Should(Equal(int32(1)))
	})

	It("[TC-SYNC-003] Lock returns an error when ctx is already canceled", func() {
		var m libsync.Mutex
		Expect(m.Lock(context.Background())).To(Succeed())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := m.Lock(ctx)
		Expect(err).To(HaveOccurred())
	})

	It("[TC-SYNC-004] Unlock of an unlocked Mutex panics", func() {
		var m libsync.Mutex
		Expect(func() { m.Unlock() }).To(Panic())
	})
})

var _ = Describe("[TC-SYNC] RwLock", func() {
	It("[TC-SYNC-010] allows multiple concurrent readers", func() {
		var l libsync.RwLock
		Expect(l.RLock(context.Background())).To(Succeed())
		Expect(l.RLock(context.Background())).To(Succeed())
		l.RUnlock()
		l.RUnlock()
	})

	It("[TC-SYNC-011] a writer excludes readers", func() {
		var l libsync.RwLock
		Expect(l.Lock(context.Background())).To(Succeed())

		done := make(chan struct{})
		go func() {
			_ = l.RLock(context.Background())
			close(done)
		}()

		select {
		case <-done:
			Fail("reader acquired lock while writer held it")
		case <-time.After(20 * time.Millisecond):
		}

		l.Unlock()
		Eventually(done, time.Second).Should(BeClosed())
	})
})

var _ = Describe("[TC-SYNC] ReentrantMutex", func() {
	It("[TC-SYNC-020] the same owner can re-acquire without deadlock", func() {
		var m libsync.ReentrantMutex
		Expect(m.Lock(context.Background(), 1)).To(Succeed())
		Expect(m.Lock(context.Background(), 1)).To(Succeed())
		m.Unlock(1)
		m.Unlock(1)
	})
})

var _ = Describe("[TC-SYNC] CondVar", func() {
	It("[TC-SYNC-030] Signal wakes a Wait-ing goroutine", func() {
		var m libsync.Mutex
		cv := libsync.NewCondVar(&m)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Lock(context.Background())
			_ = cv.Wait(context.Background())
			m.Unlock()
		}()

		time.Sleep(10 * time.Millisecond)
		Expect(m.Lock(context.Background())).To(Succeed())
		cv.Signal()
		m.Unlock()

		wg.Wait()
	})
})

var _ = Describe("[TC-SYNC] Guard", func() {
	It("[TC-SYNC-040] releases the lock exactly once", func() {
		var m libsync.Mutex
		release, err := libsync.Guard(context.Background(), &m)
		Expect(err).ToNot(HaveOccurred())

		release()
		release()

		Expect(m.TryLock()).To(BeTrue())
	})
})

var _ = Describe("[TC-SYNC] Spinlock", func() {
	It("[TC-SYNC-050] serializes access across goroutines", func() {
		var sl libsync.Spinlock
		var counter int

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				sl.Lock()
				counter++
				sl.Unlock()
			}()
		}
		wg.Wait()

		Expect(counter).To(Equal(50))
	})
})
