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

// Package response builds an HTTP/1.1 response in memory — headers and body
// are accumulated independently of the wire and serialized exactly once by
// ToHTTPResponse.
package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const DefaultServerBanner = "webcore"

// RequestMeta carries the subset of the request head ToHTTPResponse needs to
// pick the wire framing — the protocol version line and whether the
// connection is being kept alive.
type RequestMeta struct {
	Proto     string
	KeepAlive bool
}

// Response accumulates a status, headers and body for a single request/
// response cycle. It is not safe for concurrent use — one per connection
// turn, matching the connection loop's single-goroutine-per-request shape.
type Response struct {
	status  int
	headers Headers
	body    bytes.Buffer
	sent    bool
}

// New returns a Response defaulted to 200 OK with no headers or body.
func New() *Response {
	r := &Response{}
	r.Reset()
	return r
}

// Reset clears status, headers, and body back to a fresh 200 response,
// keeping the header map's allocation. The connection loop does not reuse a
// Response across keep-alive turns; each request's Context builds a new one.
func (r *Response) Reset() {
	r.status = http.StatusOK
	if r.headers.byKey == nil {
		r.headers = newHeaders()
	} else {
		r.headers.reset()
	}
	r.body.Reset()
	r.sent = false
}

func (r *Response) SetStatus(code int) { r.status = code }
func (r *Response) Status() int        { return r.status }

func (r *Response) Header() *Headers { return &r.headers }

// Write appends p to the body buffer. It implements io.Writer so handlers
// can pass a Response wherever a writer is expected.
func (r *Response) Write(p []byte) (int, error) {
	return r.body.Write(p)
}

// WriteAll writes every chunk in order, stopping at the first error.
func (r *Response) WriteAll(chunks ...[]byte) (int, error) {
	var n int
	for _, c := range chunks {
		m, err := r.body.Write(c)
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// AppendSlice appends p to the body without requiring the caller to go
// through io.Writer — a direct path for handlers that already hold a byte
// slice they no longer need.
func (r *Response) AppendSlice(p []byte) {
	r.body.Write(p)
}

// WriteJSON marshals v, sets Content-Type to application/json if not already
// set, and appends the encoded bytes to the body.
func (r *Response) WriteJSON(v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if !r.headers.Has("Content-Type") {
		r.headers.Set("Content-Type", "application/json; charset=utf-8")
	}
	_, err = r.body.Write(b)
	return err
}

// Body returns the accumulated body bytes.
func (r *Response) Body() []byte {
	return r.body.Bytes()
}

// ToHTTPResponse serializes the status line, headers and body exactly once
// and flushes w. Calling it a second time on the same Response is a caller
// error the invariant does not protect against — Reset between turns.
func (r *Response) ToHTTPResponse(w io.Writer, meta RequestMeta, serverBanner string) error {
	if serverBanner == "" {
		serverBanner = DefaultServerBanner
	}

	proto := meta.Proto
	if proto == "" {
		proto = "HTTP/1.1"
	}

	reason := http.StatusText(r.status)
	if reason == "" {
		reason = "Status"
	}

	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "%s %d %s\r\n", proto, r.status, reason)
	fmt.Fprintf(buf, "Content-Length: %d\r\n", r.body.Len())

	connection := "close"
	if meta.KeepAlive {
		connection = "keep-alive"
	}
	fmt.Fprintf(buf, "Connection: %s\r\n", connection)
	fmt.Fprintf(buf, "Server: %s\r\n", serverBanner)

	r.headers.Range(func(name, value string) {
		fmt.Fprintf(buf, "%s: %s\r\n", name, value)
	})

	buf.WriteString("\r\n")
	buf.Write(r.body.Bytes())

	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}

	r.sent = true

	if f, ok := w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Sent reports whether ToHTTPResponse has already serialized this response.
func (r *Response) Sent() bool { return r.sent }
