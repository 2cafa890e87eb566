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

// Package errors provides the code-based error taxonomy used across this
// engine: every error carries a Code (uint16, HTTP-status-like) plus an
// optional chain of parent errors, so the connection loop and the
// middleware pipeline can both log the full cause chain and pick the
// right wire status with a single StatusCode() call.
package errors

import "net/http"

// Code is a numeric error kind, grouped by the taxonomy of the connection
// loop's error handling design: protocol, routing, application, transport,
// resource and concurrency errors, plus a fatal kind for programmer errors.
type Code uint16

const (
	// CodeUnknown is the zero value: no specific kind was assigned.
	CodeUnknown Code = iota

	// CodeProtocol covers a malformed request head, an invalid method token,
	// or a header/body size over its configured limit.
	CodeProtocol

	// CodeRouting covers a request that matched no route and no static
	// collaborator handled the path.
	CodeRouting

	// CodeApplication covers a handler or middleware that returned an error.
	CodeApplication

	// CodeTransport covers read/write failures and unexpected EOF on the
	// connection; the connection loop closes the connection on these without
	// writing a response to the peer.
	CodeTransport

	// CodeResource covers pool exhaustion, out-of-memory and too-many-open-files.
	CodeResource

	// CodeConcurrency covers a lock or wait canceled during shutdown.
	CodeConcurrency

	// CodeFatal covers assertion violations such as unlocking an unlocked mutex.
	CodeFatal
)

// StatusCode maps a Code to the HTTP status the middleware pipeline's error
// responder (and the connection loop's direct writes) should use.
func (c Code) StatusCode() int {
	switch c {
	case CodeProtocol:
		return http.StatusBadRequest
	case CodeRouting:
		return http.StatusNotFound
	case CodeApplication:
		return http.StatusInternalServerError
	case CodeResource:
		return http.StatusServiceUnavailable
	case CodeConcurrency:
		return http.StatusServiceUnavailable
	case CodeFatal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func (c Code) String() string {
	switch c {
	case CodeProtocol:
		return "protocol_error"
	case CodeRouting:
		return "routing_miss"
	case CodeApplication:
		return "application_error"
	case CodeTransport:
		return "transport_error"
	case CodeResource:
		return "resource_error"
	case CodeConcurrency:
		return "concurrency_error"
	case CodeFatal:
		return "fatal_error"
	default:
		return "unknown_error"
	}
}
