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

package webctx_test

import (
	"net/http"

	"github.com/sabouaram/webcore/ingest"
	"github.com/sabouaram/webcore/response"
	"github.com/sabouaram/webcore/webctx"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func newHead(path, query string) *ingest.RequestHead {
	h := &ingest.RequestHead{Method: "GET", Path: path, RawQuery: query, Proto: "HTTP/1.1", Headers: response.NewHeaders()}
	return h
}

type stubSession struct {
	id   string
	data map[string]interface{}
}

func (s *stubSession) ID() string { return s.id }
func (s *stubSession) Get(key string) (interface{}, bool) {
	v, ok := s.data[key]
	return v, ok
}
func (s *stubSession) Set(key string, v interface{}) { s.data[key] = v }

type stubManager struct {
	created int
	sess    *stubSession
}

func (m *stubManager) GetOrCreate(cs webctx.CookieSetter) webctx.Session {
	m.created++
	cs.SetCookie(&http.Cookie{Name: "sid", Value: "abc"})
	m.sess = &stubSession{id: "abc", data: map[string]interface{}{}}
	return m.sess
}
func (m *stubManager) Destroy(cs webctx.CookieSetter) {
	cs.SetCookie(&http.Cookie{Name: "sid", Value: "", MaxAge: -1})
}

var _ = Describe("[TC-WCX] Context accessors", func() {
	It("[TC-WCX-001] GetParam/GetQuery/GetHeader read from the request", func() {
		head := newHead("/widgets", "id=3")
		head.Headers.Set("X-A", "1")

		c := webctx.New(head, nil, map[string]string{"name": "gizmo"})

		v, ok := c.GetParam("name")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("gizmo"))

		q, ok := c.GetQuery("id")
		Expect(ok).To(BeTrue())
		Expect(q).To(Equal("3"))

		h, ok := c.GetHeader("x-a")
		Expect(ok).To(BeTrue())
		Expect(h).To(Equal("1"))
	})

	It("[TC-WCX-002] GetBody returns the staged body", func() {
		c := webctx.New(newHead("/", ""), []byte("payload"), nil)
		Expect(c.GetBody()).To(Equal([]byte("payload")))
	})

	It("[TC-WCX-003] SetState/GetState round-trips an opaque value", func() {
		c := webctx.New(newHead("/", ""), nil, nil)
		c.SetState("k", 42)

		v, ok := c.GetState("k")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(42))
	})
})

var _ = Describe("[TC-WCX] JSON parsing", func() {
	It("[TC-WCX-010] ParseJSON decodes the body into dest", func() {
		c := webctx.New(newHead("/", ""), []byte(`{"n":1}`), nil)

		var out struct {
			N int `json:"n"`
		}
		Expect(c.ParseJSON(&out)).To(Succeed())
		Expect(out.N).To(Equal(1))
	})

	It("[TC-WCX-011] ParseJSON surfaces invalid_json on malformed input", func() {
		c := webctx.New(newHead("/", ""), []byte(`{not json`), nil)
		var out map[string]int
		err := c.ParseJSON(&out)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("invalid_json"))
	})
})

var _ = Describe("[TC-WCX] Cookies", func() {
	It("[TC-WCX-020] GetCookie reads from the Cookie header", func() {
		head := newHead("/", "")
		head.Headers.Set("Cookie", "a=1; b=2")
		c := webctx.New(head, nil, nil)

		v, ok := c.GetCookie("b")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("2"))
	})

	It("[TC-WCX-021] SetCookie appends a Set-Cookie response header", func() {
		c := webctx.New(newHead("/", ""), nil, nil)
		c.SetCookie(&http.Cookie{Name: "a", Value: "1"})
		c.SetCookie(&http.Cookie{Name: "b", Value: "2"})

		Expect(c.Response().Header().Values("Set-Cookie")).To(HaveLen(2))
	})
})

var _ = Describe("[TC-WCX] Session cooperation", func() {
	It("[TC-WCX-030] GetSession creates through the manager and sets the cookie", func() {
		c := webctx.New(newHead("/", ""), nil, nil)
		mgr := &stubManager{}
		c.SetSessionManager(mgr)

		s := c.GetSession()
		Expect(s).ToNot(BeNil())
		Expect(mgr.created).To(Equal(1))
		Expect(c.Response().Header().Get("Set-Cookie")).To(ContainSubstring("sid=abc"))

		// second access reuses the cached session, not a new one.
		_ = c.GetSession()
		Expect(mgr.created).To(Equal(1))
	})
})
