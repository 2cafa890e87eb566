/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

// Package httpcli is the minimal pooled HTTP/1.1 client this engine offers
// to handlers that need to reach another service: a net/http.RoundTripper
// that acquires its connection from a pool.Pool instead of dialing fresh
// every time, and hands it back on response close. TLS and HTTP/2 are out
// of scope — handlers that need either should reach for net/http directly.
package httpcli

import (
	"bufio"
	"io"
	"net/http"
	"strconv"

	liberr "github.com/sabouaram/webcore/errors"
	"github.com/sabouaram/webcore/pool"
)

// Transport is a net/http.RoundTripper backed by a pool.Pool. One Transport
// can be shared by any number of *http.Client values.
type Transport struct {
	pool *pool.Pool
}

// New wraps p as a RoundTripper.
func New(p *pool.Pool) *Transport {
	return &Transport{pool: p}
}

// NewClient returns an *http.Client whose RoundTripper acquires its
// connections from p.
func NewClient(p *pool.Pool) *http.Client {
	return &http.Client{Transport: New(p)}
}

// RoundTrip implements http.RoundTripper. Only plain "http" requests are
// supported; the connection is acquired from the pool before the request is
// written and released back to it once the response body is closed.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "http" {
		return nil, liberr.New(liberr.CodeProtocol, "httpcli: only plain http is supported")
	}

	port := 80
	if p := req.URL.Port(); p != "" {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, liberr.Wrap(liberr.CodeProtocol, "httpcli: invalid port", err)
		}
		port = v
	}

	conn, err := t.pool.Acquire(req.Context(), req.URL.Hostname(), port)
	if err != nil {
		return nil, liberr.Wrap(liberr.CodeTransport, "httpcli: acquire failed", err)
	}

	if err := req.Write(conn.Conn); err != nil {
		_ = conn.Conn.Close()
		return nil, liberr.Wrap(liberr.CodeTransport, "httpcli: write failed", err)
	}

	resp, err := http.ReadResponse(bufio.NewReader(conn.Conn), req)
	if err != nil {
		_ = conn.Conn.Close()
		return nil, liberr.Wrap(liberr.CodeTransport, "httpcli: read response failed", err)
	}

	resp.Body = &releasingBody{ReadCloser: resp.Body, release: func() { t.pool.Release(conn) }}
	return resp, nil
}

// releasingBody defers the pool release until the caller closes the
// response body, matching net/http's own connection-reuse contract.
type releasingBody struct {
	io.ReadCloser
	release func()
	done    bool
}

func (b *releasingBody) Close() error {
	err := b.ReadCloser.Close()
	if !b.done {
		b.done = true
		b.release()
	}
	return err
}
