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

// Package pool is the outbound connection pool: keyed by "host:port",
// acquire reuses an idle connection or dials a fresh one up to a configured
// ceiling, release returns it to the idle set, and a background reaper
// closes connections that outlived idleTimeout or maxLifetime.
package pool

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	liberr "github.com/sabouaram/webcore/errors"
	"github.com/sabouaram/webcore/syncutil"
)

var ErrPoolExhausted = liberr.New(liberr.CodeResource, "pool_exhausted")

// Dialer abstracts the outbound dial so the pool can be exercised by both a
// real TCP dialer and a test double.
type Dialer interface {
	Dial(ctx context.Context, network, address string) (net.Conn, error)
}

// PooledConnection wraps a net.Conn with the bookkeeping acquire/release
// need: which key it belongs to, how many holders reference it, and when it
// was last handed out.
type PooledConnection struct {
	Conn      net.Conn
	Key       string
	refCount  int32
	lastUsed  time.Time
	createdAt time.Time
}

func (c *PooledConnection) touch() {
	c.lastUsed = time.Now()
}

// Options configures pool limits and timings.
type Options struct {
	MaxConnections     int
	MaxIdleConnections int
	IdleTimeout        time.Duration
	MaxLifetime        time.Duration
	CleanupInterval    time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxConnections <= 0 {
		o.MaxConnections = 100
	}
	if o.MaxIdleConnections <= 0 {
		o.MaxIdleConnections = 16
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = 90 * time.Second
	}
	if o.MaxLifetime <= 0 {
		o.MaxLifetime = 30 * time.Minute
	}
	if o.CleanupInterval <= 0 {
		o.CleanupInterval = 30 * time.Second
	}
	return o
}

// Pool is the outbound connection pool described by §4.8: acquire/release
// around a per-key idle list, guarded by this package's own three-state
// mutex since the hot path (map lookup, slice pop) is short enough not to
// warrant finer-grained locking.
type Pool struct {
	mu     syncutil.Mutex
	dialer Dialer
	opts   Options

	count int
	idle  map[string][]*PooledConnection

	closeOnce sync.Once
	done      chan struct{}
}

// New builds a Pool dialing through d with the given options, and starts
// its background idle-connection reaper.
func New(d Dialer, opts Options) *Pool {
	p := &Pool{
		dialer: d,
		opts:   opts.withDefaults(),
		idle:   map[string][]*PooledConnection{},
		done:   make(chan struct{}),
	}
	go p.reap()
	return p
}

func key(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}

// Acquire returns an idle connection for host:port if one is available and
// not expired, else dials a fresh one if under MaxConnections, else fails
// with ErrPoolExhausted.
func (p *Pool) Acquire(ctx context.Context, host string, port int) (*PooledConnection, error) {
	k := key(host, port)

	_ = p.mu.Lock(context.Background())
	for list := p.idle[k]; len(list) > 0; list = p.idle[k] {
		conn := list[len(list)-1]
		p.idle[k] = list[:len(list)-1]
		if now := time.Now(); now.Sub(conn.lastUsed) > p.opts.IdleTimeout || now.Sub(conn.createdAt) > p.opts.MaxLifetime {
			_ = conn.Conn.Close()
			p.count--
			continue
		}
		atomic.AddInt32(&conn.refCount, 1)
		conn.touch()
		p.mu.Unlock()
		return conn, nil
	}

	if p.count >= p.opts.MaxConnections {
		p.mu.Unlock()
		return nil, ErrPoolExhausted
	}
	p.count++
	p.mu.Unlock()

	raw, err := p.dialer.Dial(ctx, "tcp", k)
	if err != nil {
		_ = p.mu.Lock(context.Background())
		p.count--
		p.mu.Unlock()
		return nil, err
	}

	now := time.Now()
	conn := &PooledConnection{Conn: raw, Key: k, refCount: 1, lastUsed: now, createdAt: now}
	return conn, nil
}

// Release decrements the holder count; at zero, the connection is parked
// idle (below MaxIdleConnections) or closed and forgotten.
func (p *Pool) Release(conn *PooledConnection) {
	if conn == nil {
		return
	}
	if atomic.AddInt32(&conn.refCount, -1) > 0 {
		return
	}

	conn.touch()

	_ = p.mu.Lock(context.Background())
	defer p.mu.Unlock()

	if len(p.idle[conn.Key]) < p.opts.MaxIdleConnections {
		p.idle[conn.Key] = append(p.idle[conn.Key], conn)
		return
	}

	_ = conn.Conn.Close()
	p.count--
}

func (p *Pool) reap() {
	t := time.NewTicker(p.opts.CleanupInterval)
	defer t.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-t.C:
			p.evictExpired()
		}
	}
}

func (p *Pool) evictExpired() {
	_ = p.mu.Lock(context.Background())
	defer p.mu.Unlock()

	now := time.Now()
	for k, list := range p.idle {
		kept := list[:0]
		for _, c := range list {
			if now.Sub(c.lastUsed) > p.opts.IdleTimeout || now.Sub(c.createdAt) > p.opts.MaxLifetime {
				_ = c.Conn.Close()
				p.count--
				continue
			}
			kept = append(kept, c)
		}
		p.idle[k] = kept
	}
}

// Close stops the reaper and closes every idle connection.
func (p *Pool) Close() {
	p.closeOnce.Do(func() { close(p.done) })

	_ = p.mu.Lock(context.Background())
	defer p.mu.Unlock()
	for k, list := range p.idle {
		for _, c := range list {
			_ = c.Conn.Close()
		}
		delete(p.idle, k)
	}
}
