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

// Package webctx is the per-request facade handed to middlewares and
// handlers: the parsed request head, the staged body, route params, a
// response builder, an opaque state bag, lazy cookie/JSON/form/multipart
// parsing, and a session handle.
package webctx

import (
	"net/url"

	uuid "github.com/hashicorp/go-uuid"
	"github.com/sabouaram/webcore/ingest"
	"github.com/sabouaram/webcore/response"
)

// Context is not safe for concurrent use — one per connection turn, freed
// (via Destroy) when the turn completes, matching the connection loop's
// single-goroutine-per-request shape.
type Context struct {
	requestID string
	head      *ingest.RequestHead
	body      []byte
	params    map[string]string
	resp      *response.Response

	state map[string]interface{}

	query      url.Values
	queryDone  bool
	cookies    map[string]string
	cookieDone bool

	jsonCache      interface{}
	jsonDone       bool
	formCache      url.Values
	formDone       bool
	multipartDone  bool
	multipartForm  *multipartForm
	multipartError error

	session    Session
	sessionMgr SessionManager
}

// New builds a Context for one request. params is the route-match params
// map; the Context takes ownership of it.
func New(head *ingest.RequestHead, body []byte, params map[string]string) *Context {
	if params == nil {
		params = map[string]string{}
	}
	id, err := uuid.GenerateUUID()
	if err != nil {
		id = ""
	}
	return &Context{
		requestID: id,
		head:      head,
		body:      body,
		params:    params,
		resp:      response.New(),
		state:     make(map[string]interface{}),
	}
}

func (c *Context) RequestID() string { return c.requestID }

func (c *Context) Method() string { return c.head.Method }
func (c *Context) Path() string   { return c.head.Path }

func (c *Context) Response() *response.Response { return c.resp }

func (c *Context) RequestMeta() response.RequestMeta {
	return response.RequestMeta{Proto: c.head.Proto, KeepAlive: c.head.KeepAlive}
}

// GetParam returns a route param bound by the router, e.g. ":id".
func (c *Context) GetParam(name string) (string, bool) {
	v, ok := c.params[name]
	return v, ok
}

// GetQuery parses the target's query string on first call and caches it.
func (c *Context) GetQuery(name string) (string, bool) {
	if !c.queryDone {
		c.query, _ = url.ParseQuery(c.head.RawQuery)
		c.queryDone = true
	}
	if !c.query.Has(name) {
		return "", false
	}
	return c.query.Get(name), true
}

func (c *Context) GetHeader(name string) (string, bool) {
	v := c.head.Headers.Get(name)
	if v == "" && !c.head.Headers.Has(name) {
		return "", false
	}
	return v, true
}

// GetAllHeaders returns every request header keyed by its name as received;
// the values under one name keep their wire order.
func (c *Context) GetAllHeaders() map[string][]string {
	out := make(map[string][]string)
	c.head.Headers.Range(func(name, value string) {
		out[name] = append(out[name], value)
	})
	return out
}

// GetBody returns the staged body bytes, or an empty slice if none.
func (c *Context) GetBody() []byte {
	return c.body
}

// SetState stores an opaque value under key, owned by the Context.
func (c *Context) SetState(key string, v interface{}) {
	c.state[key] = v
}

// GetState retrieves a value stored by SetState.
func (c *Context) GetState(key string) (interface{}, bool) {
	v, ok := c.state[key]
	return v, ok
}
