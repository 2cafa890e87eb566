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

package router

import (
	"strings"
	"sync"

	"github.com/sabouaram/webcore/middleware"
)

// Route is the result of a successful Find: the matched handler, its
// middleware chain, and the params bound along the way. The caller owns
// Params and is free to mutate or discard it.
type Route struct {
	Handler     middleware.HandlerFunc
	Middlewares []middleware.Middleware
	Params      map[string]string
}

// RouteInfo is a read-only introspection record over the route table.
type RouteInfo struct {
	Method string
	Path   string
}

// Router is a segment trie keyed by "/" — literal children take precedence
// over the node's single param child, which takes precedence over its
// single wildcard child.
type Router struct {
	mu   sync.RWMutex
	root *node
}

func New() *Router {
	return &Router{root: newNode("")}
}

func splitPath(path string) []string {
	raw := strings.Split(path, "/")
	segments := make([]string, 0, len(raw))
	for _, s := range raw {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// AddRoute registers handler (with its middlewares) for method at path.
// A second param child at the same node collapses onto the first: the
// existing binding name wins, matching the "no conflict, precedence
// decides" edge case.
func (r *Router) AddRoute(method, path string, handler middleware.HandlerFunc, mws ...middleware.Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.root
	segments := splitPath(path)

	for i := 0; i < len(segments); i++ {
		seg := segments[i]

		switch {
		case strings.HasPrefix(seg, ":"):
			name := seg[1:]
			if cur.param == nil {
				cur.param = newNode(name)
			}
			cur = cur.param

		case strings.HasPrefix(seg, "*"):
			name := seg[1:]
			if cur.wildcard == nil {
				cur.wildcard = newNode(name)
			}
			cur = cur.wildcard
			i = len(segments) // wildcard consumes the remainder; stop.

		default:
			child, ok := cur.children[seg]
			if !ok {
				child = newNode(seg)
				cur.children[seg] = child
			}
			cur = child
		}
	}

	if cur.handlers == nil {
		cur.handlers = map[string]*routeEntry{}
	}
	cur.handlers[method] = &routeEntry{handler: handler, middlewares: mws}
}

// Find walks the trie for path, binding params and the wildcard remainder
// as it goes, and returns the entry registered for method at the terminal
// node. A missing route (wrong method or no match at all) reports false,
// which callers treat as a 404.
func (r *Router) Find(method, path string) (*Route, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	segments := splitPath(path)
	params := map[string]string{}

	cur := r.root
	for i := 0; i < len(segments); i++ {
		seg := segments[i]

		if child, ok := cur.children[seg]; ok {
			cur = child
			continue
		}
		if cur.param != nil {
			params[cur.param.segment] = seg
			cur = cur.param
			continue
		}
		if cur.wildcard != nil {
			params[cur.wildcard.segment] = strings.Join(segments[i:], "/")
			cur = cur.wildcard
			break
		}
		return nil, false
	}

	if cur.handlers == nil {
		return nil, false
	}
	entry, ok := cur.handlers[method]
	if !ok {
		return nil, false
	}

	return &Route{Handler: entry.handler, Middlewares: entry.middlewares, Params: params}, true
}

// Routes lists every registered (method, path) pair for introspection.
func (r *Router) Routes() []RouteInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []RouteInfo
	walkRoutes(r.root, "", &out)
	return out
}

func walkRoutes(n *node, prefix string, out *[]RouteInfo) {
	for method := range n.handlers {
		path := prefix
		if path == "" {
			path = "/"
		}
		*out = append(*out, RouteInfo{Method: method, Path: path})
	}

	for _, child := range n.children {
		walkRoutes(child, prefix+"/"+child.segment, out)
	}
	if n.param != nil {
		walkRoutes(n.param, prefix+"/:"+n.param.segment, out)
	}
	if n.wildcard != nil {
		walkRoutes(n.wildcard, prefix+"/*"+n.wildcard.segment, out)
	}
}
