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

// Package session implements session-id generation, an in-memory store
// with a TTL reaper, and a file-backed store layered on top of it.
package session

import (
	"encoding/hex"
	"sync"
	"time"

	uuid "github.com/hashicorp/go-uuid"
)

// Session is a flat key/value bag with creation/update timestamps, matching
// the documented {id, created_at, updated_at, data} wire shape.
type Session struct {
	mu        sync.RWMutex
	id        string
	createdAt time.Time
	updatedAt time.Time
	data      map[string]interface{}
}

func newSession(id string) *Session {
	now := time.Now()
	return &Session{id: id, createdAt: now, updatedAt: now, data: map[string]interface{}{}}
}

// NewSession constructs a fresh, empty session bound to id. Most callers
// reach sessions through a Manager instead; this is exposed for stores and
// tests that need to build one directly.
func NewSession(id string) *Session {
	return newSession(id)
}

func (s *Session) ID() string { return s.id }

func (s *Session) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *Session) Set(key string, v interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = v
	s.updatedAt = time.Now()
}

func (s *Session) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

func (s *Session) snapshot() sessionDoc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data := make(map[string]interface{}, len(s.data))
	for k, v := range s.data {
		data[k] = v
	}
	return sessionDoc{ID: s.id, CreatedAt: s.createdAt, UpdatedAt: s.updatedAt, Data: data}
}

// sessionDoc is the documented flat JSON shape the file store persists.
type sessionDoc struct {
	ID        string                 `json:"id"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
	Data      map[string]interface{} `json:"data"`
}

func fromDoc(d sessionDoc) *Session {
	return &Session{id: d.ID, createdAt: d.CreatedAt, updatedAt: d.UpdatedAt, data: d.Data}
}

// NewID generates a session id as 32 cryptographically random bytes
// rendered as 64 lowercase hex characters.
func NewID() (string, error) {
	b, err := uuid.GenerateRandomBytes(32)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
