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

package webctx

import "net/http"

// Session is the subset of session.Session that a handler needs. Declaring
// it here, rather than importing the session package, keeps webctx free of
// a dependency on session's storage backends.
type Session interface {
	ID() string
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
}

// CookieSetter is satisfied by *Context; it's what a SessionManager needs
// to read the incoming session cookie and emit a new one.
type CookieSetter interface {
	GetCookie(name string) (string, bool)
	SetCookie(ck *http.Cookie)
}

// SessionManager is the collaborator contract a concrete session.Manager
// fulfills; wiring it in is the server package's job.
type SessionManager interface {
	GetOrCreate(cs CookieSetter) Session
	Destroy(cs CookieSetter)
}

// SetSessionManager injects the collaborator GetSession/SetSessionValue/
// DestroySession delegate to.
func (c *Context) SetSessionManager(mgr SessionManager) {
	c.sessionMgr = mgr
}

// GetSession returns the request's session, creating one via the injected
// SessionManager on first access — which also emits the session cookie.
func (c *Context) GetSession() Session {
	if c.session != nil {
		return c.session
	}
	if c.sessionMgr == nil {
		return nil
	}
	c.session = c.sessionMgr.GetOrCreate(c)
	return c.session
}

// SetSessionValue is a convenience wrapping GetSession().Set.
func (c *Context) SetSessionValue(key string, v interface{}) {
	if s := c.GetSession(); s != nil {
		s.Set(key, v)
	}
}

// DestroySession removes the session via the SessionManager and forgets the
// cached handle.
func (c *Context) DestroySession() {
	if c.sessionMgr != nil {
		c.sessionMgr.Destroy(c)
	}
	c.session = nil
}
