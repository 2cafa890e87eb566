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

// GetCookieJar lazily parses the request's Cookie header into a name→value
// map, reusing net/http's own cookie grammar rather than reimplementing it.
func (c *Context) GetCookieJar() (map[string]string, error) {
	if c.cookieDone {
		return c.cookies, nil
	}
	c.cookieDone = true
	c.cookies = map[string]string{}

	raw, ok := c.GetHeader("Cookie")
	if !ok || raw == "" {
		return c.cookies, nil
	}

	header := http.Header{}
	header.Add("Cookie", raw)
	req := &http.Request{Header: header}

	for _, ck := range req.Cookies() {
		c.cookies[ck.Name] = ck.Value
	}
	return c.cookies, nil
}

// GetCookie returns the named cookie's value.
func (c *Context) GetCookie(name string) (string, bool) {
	jar, err := c.GetCookieJar()
	if err != nil {
		return "", false
	}
	v, ok := jar[name]
	return v, ok
}

// SetCookie appends a Set-Cookie header via addHeader, so multiple cookies
// set within the same request are all honored.
func (c *Context) SetCookie(ck *http.Cookie) {
	c.resp.Header().Add("Set-Cookie", ck.String())
}

// DeleteCookie emits a Set-Cookie that expires name immediately.
func (c *Context) DeleteCookie(name string) {
	c.SetCookie(&http.Cookie{Name: name, Value: "", MaxAge: -1, Path: "/"})
}
