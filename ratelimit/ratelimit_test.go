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

package ratelimit_test

import (
	"time"

	"github.com/sabouaram/webcore/ratelimit"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type countingMetrics struct {
	counts map[string]int
}

func (m *countingMetrics) IncrementCounter(name string, labels map[string]string) {
	if m.counts == nil {
		m.counts = map[string]int{}
	}
	m.counts[name]++
}

var _ = Describe("[TC-RL] Limiter", func() {
	It("[TC-RL-001] admits up to maxRequests within a window and then denies", func() {
		l := ratelimit.New(3, time.Minute, 0, nil)
		defer l.Close()

		Expect(l.Allow("a")).To(BeTrue())
		Expect(l.Allow("a")).To(BeTrue())
		Expect(l.Allow("a")).To(BeTrue())
		Expect(l.Allow("a")).To(BeFalse())
	})

	It("[TC-RL-002] tracks independent windows per client id", func() {
		l := ratelimit.New(1, time.Minute, 0, nil)
		defer l.Close()

		Expect(l.Allow("a")).To(BeTrue())
		Expect(l.Allow("b")).To(BeTrue())
		Expect(l.Allow("a")).To(BeFalse())
		Expect(l.Allow("b")).To(BeFalse())
	})

	It("[TC-RL-003] resets the window once windowSize has elapsed", func() {
		l := ratelimit.New(1, 20*time.Millisecond, 0, nil)
		defer l.Close()

		Expect(l.Allow("a")).To(BeTrue())
		Expect(l.Allow("a")).To(BeFalse())

		Eventually(func() bool {
			return l.Allow("a")
		}, time.Second, 5*time.Millisecond).Should(BeTrue())
	})

	It("[TC-RL-004] reports a rejection through the injected Metrics collaborator", func() {
		m := &countingMetrics{}
		l := ratelimit.New(1, time.Minute, 0, m)
		defer l.Close()

		Expect(l.Allow("a")).To(BeTrue())
		Expect(l.Allow("a")).To(BeFalse())
		Expect(m.counts["ratelimit_rejected_total"]).To(Equal(1))
	})

	It("[TC-RL-005] the background sweep clears expired windows without panicking", func() {
		l := ratelimit.New(1, 10*time.Millisecond, 5*time.Millisecond, nil)
		defer l.Close()

		for i := 0; i < 20; i++ {
			l.Allow("a")
			time.Sleep(2 * time.Millisecond)
		}
	})
})
