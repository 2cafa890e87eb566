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

package session

import (
	"context"
	"sync"
	"time"

	"github.com/sabouaram/webcore/syncutil"
)

// Store is the collaborator contract Manager drives.
type Store interface {
	Get(id string) (*Session, bool)
	Save(s *Session) error
	Destroy(id string) error
	Close()
}

// MemoryStore is a map<id, *Session> guarded by this package's own
// three-state mutex, with a background reaper removing sessions whose
// UpdatedAt is older than maxAge, grounded on the cache package's
// ticker-loop shape.
type MemoryStore struct {
	mu       syncutil.Mutex
	sessions map[string]*Session
	maxAge   time.Duration

	closeOnce sync.Once
	done      chan struct{}
}

// NewMemoryStore starts the reaper, waking every cleanupInterval; a
// cleanupInterval <= 0 starts no reaper.
func NewMemoryStore(maxAge, cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		sessions: map[string]*Session{},
		maxAge:   maxAge,
		done:     make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go s.reap(cleanupInterval)
	}
	return s
}

func (s *MemoryStore) Get(id string) (*Session, bool) {
	_ = s.mu.Lock(context.Background())
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *MemoryStore) Save(sess *Session) error {
	_ = s.mu.Lock(context.Background())
	defer s.mu.Unlock()
	s.sessions[sess.ID()] = sess
	return nil
}

func (s *MemoryStore) Destroy(id string) error {
	_ = s.mu.Lock(context.Background())
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) reap(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-t.C:
			s.evictExpired()
		}
	}
}

func (s *MemoryStore) evictExpired() {
	if s.maxAge <= 0 {
		return
	}
	_ = s.mu.Lock(context.Background())
	defer s.mu.Unlock()

	now := time.Now()
	for id, sess := range s.sessions {
		if now.Sub(sess.UpdatedAt()) > s.maxAge {
			delete(s.sessions, id)
		}
	}
}

func (s *MemoryStore) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}
