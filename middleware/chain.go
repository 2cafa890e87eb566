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

package middleware

import "github.com/sabouaram/webcore/webctx"

// Chain composes global and route middlewares into a single ordered list,
// built once per matched route rather than re-concatenated every request.
type Chain struct {
	items []Middleware
}

// NewChain concatenates global middlewares ahead of route-specific ones,
// per the pipeline order: global first, then route, then the handler.
func NewChain(global, route []Middleware) Chain {
	items := make([]Middleware, 0, len(global)+len(route))
	items = append(items, global...)
	items = append(items, route...)
	return Chain{items: items}
}

// Run executes every middleware in order, stopping at the first one that
// doesn't report Continue. A returned error always means Error, even if the
// middleware itself reported Respond alongside it.
func (c Chain) Run(ctx *webctx.Context) (Result, error) {
	for _, m := range c.items {
		res, err := m.Process(ctx)
		if err != nil {
			return Error, err
		}
		if res != Continue {
			return res, nil
		}
	}
	return Continue, nil
}

// Destroy frees every middleware in the chain.
func (c Chain) Destroy() {
	for _, m := range c.items {
		m.Destroy()
	}
}
