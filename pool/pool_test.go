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

package pool_test

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	"github.com/sabouaram/webcore/pool"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeConn struct {
	net.Conn
	closed int32
}

func (f *fakeConn) Close() error {
	atomic.StoreInt32(&f.closed, 1)
	return nil
}

type fakeDialer struct {
	dials int32
}

func (d *fakeDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	atomic.AddInt32(&d.dials, 1)
	return &fakeConn{}, nil
}

var _ = Describe("[TC-POOL] Pool", func() {
	It("[TC-POOL-001] Acquire dials a fresh connection when none is idle", func() {
		d := &fakeDialer{}
		p := pool.New(d, pool.Options{MaxConnections: 2, CleanupInterval: time.Hour})
		defer p.Close()

		conn, err := p.Acquire(context.Background(), "example.com", 443)
		Expect(err).ToNot(HaveOccurred())
		Expect(conn).ToNot(BeNil())
		Expect(atomic.LoadInt32(&d.dials)).To(Equal(int32(1)))
	})

	It("[TC-POOL-002] Release then Acquire reuses the idle connection without a new dial", func() {
		d := &fakeDialer{}
		p := pool.New(d, pool.Options{MaxConnections: 2, CleanupInterval: time.Hour})
		defer p.Close()

		conn, err := p.Acquire(context.Background(), "example.com", 443)
		Expect(err).ToNot(HaveOccurred())
		p.Release(conn)

		_, err = p.Acquire(context.Background(), "example.com", 443)
		Expect(err).ToNot(HaveOccurred())
		Expect(atomic.LoadInt32(&d.dials)).To(Equal(int32(1)))
	})

	It("[TC-POOL-003] Acquire fails with ErrPoolExhausted past MaxConnections", func() {
		d := &fakeDialer{}
		p := pool.New(d, pool.Options{MaxConnections: 1, CleanupInterval: time.Hour})
		defer p.Close()

		_, err := p.Acquire(context.Background(), "a.example", 80)
		Expect(err).ToNot(HaveOccurred())

		_, err = p.Acquire(context.Background(), "b.example", 80)
		Expect(err).To(Equal(pool.ErrPoolExhausted))
	})

	It("[TC-POOL-004] the reaper evicts an idle connection once it outlives MaxLifetime, even if never idle-timed-out", func() {
		d := &fakeDialer{}
		p := pool.New(d, pool.Options{
			MaxConnections:  2,
			IdleTimeout:     time.Hour,
			MaxLifetime:     20 * time.Millisecond,
			CleanupInterval: 5 * time.Millisecond,
		})
		defer p.Close()

		conn, err := p.Acquire(context.Background(), "example.com", 443)
		Expect(err).ToNot(HaveOccurred())
		p.Release(conn)

		Eventually(func() int32 {
			_, _ = p.Acquire(context.Background(), "example.com", 443)
			return atomic.LoadInt32(&d.dials)
		}, time.Second, 5*time.Millisecond).Should(BeNumerically(">", 1))
	})
})
