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

// Package middleware defines the {continue, respond, error} short-circuit
// pipeline: a global ordered list, a per-route ordered list, then the
// handler, stopping at the first middleware that doesn't say continue.
package middleware

import "github.com/sabouaram/webcore/webctx"

// Result is what Process reports back to the Chain driving it.
type Result uint8

const (
	// Continue lets the next middleware (or the handler) run.
	Continue Result = iota
	// Respond means this middleware already wrote the response; stop the
	// pipeline without treating it as an error.
	Respond
	// Error means the pipeline should stop and render the returned error.
	Error
)

// Middleware is an object with a process capability and a virtual destroy
// capability, so the server can own and free heterogeneous middleware
// instances without a type switch.
type Middleware interface {
	Process(ctx *webctx.Context) (Result, error)
	Destroy()
}

// HandlerFunc is the terminal stage of a route: unlike a Middleware it
// always produces a response, so it has no Result to report.
type HandlerFunc func(ctx *webctx.Context)
