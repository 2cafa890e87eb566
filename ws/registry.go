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

package ws

import (
	"context"

	"github.com/sabouaram/webcore/syncutil"
)

// Registry is a broadcast-capable set of live connections, guarded by this
// package's own three-state mutex since membership changes and broadcasts
// are both infrequent relative to per-connection message traffic.
type Registry struct {
	mu    syncutil.Mutex
	conns map[string]*Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: map[string]*Conn{}}
}

func (r *Registry) Add(c *Conn) {
	_ = r.mu.Lock(context.Background())
	defer r.mu.Unlock()
	r.conns[c.ID] = c
}

func (r *Registry) Remove(id string) {
	_ = r.mu.Lock(context.Background())
	defer r.mu.Unlock()
	delete(r.conns, id)
}

func (r *Registry) Len() int {
	_ = r.mu.Lock(context.Background())
	defer r.mu.Unlock()
	return len(r.conns)
}

// Broadcast best-effort sends msg to every live connection, dropping (and
// removing from the registry) any connection whose send fails.
func (r *Registry) Broadcast(f Frame) {
	_ = r.mu.Lock(context.Background())
	targets := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		targets = append(targets, c)
	}
	r.mu.Unlock()

	var dead []string
	for _, c := range targets {
		if err := c.Send(f); err != nil {
			dead = append(dead, c.ID)
		}
	}

	if len(dead) == 0 {
		return
	}
	_ = r.mu.Lock(context.Background())
	for _, id := range dead {
		delete(r.conns, id)
	}
	r.mu.Unlock()
}
