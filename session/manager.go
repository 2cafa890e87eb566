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
	"net/http"
	"time"

	"github.com/sabouaram/webcore/webctx"
)

// Config names the session cookie and its wire attributes.
type Config struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
	HTTPOnly   bool
	SameSite   http.SameSite
}

func (c Config) withDefaults() Config {
	if c.CookieName == "" {
		c.CookieName = "webcore_sid"
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 30 * time.Minute
	}
	if c.SameSite == 0 {
		c.SameSite = http.SameSiteLaxMode
	}
	return c
}

// Manager issues and resolves sessions against a Store, emitting the
// session cookie on first creation, per §4.10 and §4.5's cooperation
// contract.
type Manager struct {
	store Store
	cfg   Config
}

func NewManager(store Store, cfg Config) *Manager {
	return &Manager{store: store, cfg: cfg.withDefaults()}
}

// GetOrCreate resolves the session named by the incoming cookie, or issues
// a new one (emitting Set-Cookie) when absent or unknown to the store.
func (m *Manager) GetOrCreate(cs webctx.CookieSetter) webctx.Session {
	if id, ok := cs.GetCookie(m.cfg.CookieName); ok {
		if sess, ok := m.store.Get(id); ok {
			return sess
		}
	}

	id, err := NewID()
	if err != nil {
		id = ""
	}

	sess := newSession(id)
	_ = m.store.Save(sess)

	cs.SetCookie(&http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    id,
		MaxAge:   int(m.cfg.MaxAge.Seconds()),
		Secure:   m.cfg.Secure,
		HttpOnly: m.cfg.HTTPOnly,
		SameSite: m.cfg.SameSite,
		Path:     "/",
	})

	return sess
}

// Destroy removes the session named by the incoming cookie from the store
// and expires the cookie client-side.
func (m *Manager) Destroy(cs webctx.CookieSetter) {
	id, ok := cs.GetCookie(m.cfg.CookieName)
	if !ok {
		return
	}
	_ = m.store.Destroy(id)

	cs.SetCookie(&http.Cookie{Name: m.cfg.CookieName, Value: "", MaxAge: -1, Path: "/"})
}
