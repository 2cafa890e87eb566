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

package router_test

import (
	"net/http"

	"github.com/sabouaram/webcore/middleware"
	"github.com/sabouaram/webcore/router"
	"github.com/sabouaram/webcore/webctx"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func noop(ctx *webctx.Context) {}

var _ = Describe("[TC-RT] Router", func() {
	It("[TC-RT-001] matches a literal route", func() {
		r := router.New()
		r.AddRoute(http.MethodGet, "/widgets", noop)

		route, ok := r.Find(http.MethodGet, "/widgets")
		Expect(ok).To(BeTrue())
		Expect(route.Handler).ToNot(BeNil())
	})

	It("[TC-RT-002] binds a :param segment", func() {
		r := router.New()
		r.AddRoute(http.MethodGet, "/widgets/:id", noop)

		route, ok := r.Find(http.MethodGet, "/widgets/42")
		Expect(ok).To(BeTrue())
		Expect(route.Params["id"]).To(Equal("42"))
	})

	It("[TC-RT-003] a *name wildcard binds the remainder and terminates", func() {
		r := router.New()
		r.AddRoute(http.MethodGet, "/static/*path", noop)

		route, ok := r.Find(http.MethodGet, "/static/css/site.css")
		Expect(ok).To(BeTrue())
		Expect(route.Params["path"]).To(Equal("css/site.css"))
	})

	It("[TC-RT-004] literal beats param at the same position", func() {
		r := router.New()
		r.AddRoute(http.MethodGet, "/widgets/new", noop)
		r.AddRoute(http.MethodGet, "/widgets/:id", noop)

		route, ok := r.Find(http.MethodGet, "/widgets/new")
		Expect(ok).To(BeTrue())
		Expect(route.Params).ToNot(HaveKey("id"))
	})

	It("[TC-RT-005] the root path matches the empty-segment path", func() {
		r := router.New()
		r.AddRoute(http.MethodGet, "/", noop)

		_, ok := r.Find(http.MethodGet, "/")
		Expect(ok).To(BeTrue())
	})

	It("[TC-RT-006] an unmatched method at a matched path reports no route", func() {
		r := router.New()
		r.AddRoute(http.MethodGet, "/widgets", noop)

		_, ok := r.Find(http.MethodPost, "/widgets")
		Expect(ok).To(BeFalse())
	})

	It("[TC-RT-007] two param children at one node collapse onto the first", func() {
		r := router.New()
		r.AddRoute(http.MethodGet, "/items/:id", noop)
		r.AddRoute(http.MethodGet, "/items/:code", noop)

		route, ok := r.Find(http.MethodGet, "/items/7")
		Expect(ok).To(BeTrue())
		Expect(route.Params).To(HaveKeyWithValue("id", "7"))
	})

	It("[TC-RT-008] a route's middlewares are returned alongside the handler", func() {
		r := router.New()
		mw := middleware.ProcessFunc(func(ctx *webctx.Context) (middleware.Result, error) {
			return middleware.Continue, nil
		})
		r.AddRoute(http.MethodGet, "/guarded", noop, mw)

		route, ok := r.Find(http.MethodGet, "/guarded")
		Expect(ok).To(BeTrue())
		Expect(route.Middlewares).To(HaveLen(1))
	})

	It("[TC-RT-009] Routes lists every registered method and path", func() {
		r := router.New()
		r.AddRoute(http.MethodGet, "/a", noop)
		r.AddRoute(http.MethodPost, "/b/:id", noop)

		infos := r.Routes()
		Expect(infos).To(HaveLen(2))
	})
})
