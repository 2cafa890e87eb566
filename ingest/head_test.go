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

package ingest_test

import (
	"bufio"
	"strings"

	"github.com/sabouaram/webcore/ingest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("[TC-ING] ParseHead", func() {
	It("[TC-ING-001] parses method, path, query and headers", func() {
		raw := "GET /widgets?id=3 HTTP/1.1\r\nHost: example.com\r\nX-A: 1\r\n\r\n"
		h, err := ingest.ParseHead(bufio.NewReader(strings.NewReader(raw)), 0)

		Expect(err).ToNot(HaveOccurred())
		Expect(h.Method).To(Equal("GET"))
		Expect(h.Path).To(Equal("/widgets"))
		Expect(h.RawQuery).To(Equal("id=3"))
		Expect(h.Headers.Get("Host")).To(Equal("example.com"))
		Expect(h.KeepAlive).To(BeTrue())
	})

	It("[TC-ING-002] rejects an invalid method token", func() {
		raw := "G T / HTTP/1.1\r\n\r\n"
		_, err := ingest.ParseHead(bufio.NewReader(strings.NewReader(raw)), 0)
		Expect(err).To(HaveOccurred())
	})

	It("[TC-ING-003] Connection: close overrides HTTP/1.1's default keep-alive", func() {
		raw := "GET / HTTP/1.1\r\nConnection: close\r\n\r\n"
		h, err := ingest.ParseHead(bufio.NewReader(strings.NewReader(raw)), 0)
		Expect(err).ToNot(HaveOccurred())
		Expect(h.KeepAlive).To(BeFalse())
	})

	It("[TC-ING-004] enforces max_header_size across the whole head", func() {
		raw := "GET / HTTP/1.1\r\nX-Big: " + strings.Repeat("a", 100) + "\r\n\r\n"
		_, err := ingest.ParseHead(bufio.NewReader(strings.NewReader(raw)), 32)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("[TC-ING] ReadBody", func() {
	It("[TC-ING-010] reads a Content-Length-delimited body", func() {
		head := &ingest.RequestHead{}
		headRaw := "GET / HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello"
		r := bufio.NewReader(strings.NewReader(headRaw))
		parsed, err := ingest.ParseHead(r, 0)
		Expect(err).ToNot(HaveOccurred())
		*head = *parsed

		body, err := ingest.ReadBody(r, head, 0, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(body)).To(Equal("hello"))
	})

	It("[TC-ING-011] reads a chunked body to completion", func() {
		headRaw := "POST / HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n"
		r := bufio.NewReader(strings.NewReader(headRaw))
		head, err := ingest.ParseHead(r, 0)
		Expect(err).ToNot(HaveOccurred())

		body, err := ingest.ReadBody(r, head, 0, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(body)).To(Equal("Wikipedia"))
	})

	It("[TC-ING-012] rejects a Content-Length body over max_body_size", func() {
		headRaw := "POST / HTTP/1.1\r\nContent-Length: 10\r\n\r\n0123456789"
		r := bufio.NewReader(strings.NewReader(headRaw))
		head, err := ingest.ParseHead(r, 0)
		Expect(err).ToNot(HaveOccurred())

		_, err = ingest.ReadBody(r, head, 4, nil)
		Expect(err).To(HaveOccurred())
	})
})
