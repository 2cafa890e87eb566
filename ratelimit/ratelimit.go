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

// Package ratelimit implements a fixed-window per-client request counter.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/sabouaram/webcore/syncutil"
)

// Metrics is the narrow slice of the metrics collaborator contract this
// package needs, so it doesn't depend on the concrete prometheus registry.
type Metrics interface {
	IncrementCounter(name string, labels map[string]string)
}

type window struct {
	start time.Time
	count int
}

// Limiter enforces maxRequests admissions per windowSize, per client id.
// A background sweep removes windows that have ended (started at least one
// windowSize ago), reaping via snapshot-then-delete so the cleanup never
// mutates the map while ranging over it.
type Limiter struct {
	mu         syncutil.Mutex
	windows    map[string]*window
	maxReq     int
	windowSize time.Duration
	metrics    Metrics

	closeOnce sync.Once
	done      chan struct{}
}

// New starts the background sweep, waking every cleanupInterval; a
// cleanupInterval of zero or less starts no sweep. Pass a nil Metrics to
// disable rejection counting.
func New(maxRequests int, windowSize, cleanupInterval time.Duration, metrics Metrics) *Limiter {
	l := &Limiter{
		windows:    map[string]*window{},
		maxReq:     maxRequests,
		windowSize: windowSize,
		metrics:    metrics,
		done:       make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go l.sweepLoop(cleanupInterval)
	}
	return l
}

// Allow reports whether id may proceed under the current window, advancing
// or resetting that client's window as a side effect.
func (l *Limiter) Allow(id string) bool {
	now := time.Now()

	_ = l.mu.Lock(context.Background())
	w, ok := l.windows[id]
	if !ok || now.Sub(w.start) >= l.windowSize {
		l.windows[id] = &window{start: now, count: 1}
		l.mu.Unlock()
		return true
	}

	if w.count < l.maxReq {
		w.count++
		l.mu.Unlock()
		return true
	}
	l.mu.Unlock()

	if l.metrics != nil {
		l.metrics.IncrementCounter("ratelimit_rejected_total", map[string]string{"client": id})
	}
	return false
}

func (l *Limiter) sweepLoop(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-t.C:
			l.sweep()
		}
	}
}

// sweep snapshots expired keys under the lock, then deletes them in a
// second pass rather than deleting from the live map while ranging over it.
func (l *Limiter) sweep() {
	now := time.Now()

	_ = l.mu.Lock(context.Background())
	defer l.mu.Unlock()

	var expired []string
	for id, w := range l.windows {
		if now.Sub(w.start) >= l.windowSize {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		delete(l.windows, id)
	}
}

// Close stops the background sweep.
func (l *Limiter) Close() {
	l.closeOnce.Do(func() { close(l.done) })
}
